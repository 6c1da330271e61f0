package iterator

import (
	"github.com/lsmtree/lsmkv/internal/block"
	"github.com/lsmtree/lsmkv/internal/sstable"
)

// TableIterator is a cursor spanning one SortedTable, moving block to block
// as it exhausts each one's entries.
type TableIterator struct {
	table   *sstable.SortedTable
	blkIdx  int
	blkIter *block.Iterator
}

// NewTableIterator creates an iterator over table, initially invalid;
// callers position it with SeekToFirst or SeekToKey.
func NewTableIterator(table *sstable.SortedTable) *TableIterator {
	return &TableIterator{table: table, blkIdx: -1}
}

// SeekToFirst positions the cursor at the table's first entry.
func (it *TableIterator) SeekToFirst() error {
	return it.seekBlock(0, nil)
}

// SeekToKey positions the cursor at the smallest entry whose key is >= k.
func (it *TableIterator) SeekToKey(k []byte) error {
	idx := it.table.FindBlockIdx(k)
	if err := it.seekBlock(idx, k); err != nil {
		return err
	}
	if !it.IsValid() && idx+1 < it.table.NumBlocks() {
		// k fell after every key in block idx: the next block may still
		// hold it (or the smallest key greater than it).
		return it.seekBlock(idx+1, nil)
	}
	return nil
}

// seekBlock loads block i and positions the block iterator: at key (via
// SeekToKey) if key is non-nil, otherwise at the first entry.
func (it *TableIterator) seekBlock(i int, key []byte) error {
	if i < 0 || i >= it.table.NumBlocks() {
		it.blkIdx = -1
		it.blkIter = nil
		return nil
	}
	blk, err := it.table.ReadBlockCached(i)
	if err != nil {
		return err
	}
	bi := block.NewIterator(blk)
	if key != nil {
		bi.SeekToKey(key)
	} else {
		bi.SeekToFirst()
	}
	it.blkIdx = i
	it.blkIter = bi
	return nil
}

// IsValid implements StorageIterator.
func (it *TableIterator) IsValid() bool {
	return it.blkIter != nil && it.blkIter.IsValid()
}

// Key implements StorageIterator.
func (it *TableIterator) Key() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.blkIter.Key()
}

// Value implements StorageIterator.
func (it *TableIterator) Value() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.blkIter.Value()
}

// Next implements StorageIterator: advances within the current block,
// rolling over to the next block (seeking it to first) when the current
// one is exhausted.
func (it *TableIterator) Next() error {
	if !it.IsValid() {
		return nil
	}
	it.blkIter.Next()
	if it.blkIter.IsValid() {
		return nil
	}
	return it.seekBlock(it.blkIdx+1, nil)
}
