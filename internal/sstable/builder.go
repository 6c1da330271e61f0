package sstable

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/lsmtree/lsmkv/internal/block"
	"github.com/lsmtree/lsmkv/internal/cache"
)

// Builder accumulates key-value pairs in sorted order, splitting them into
// fixed-budget Blocks, and materializes the finished SortedTable file only
// in Build.
//
// Grounded on aalhour-rockyardkv/internal/table/builder.go's pending-block /
// pending-index-entry bookkeeping, adapted to this package's block index
// format (see table.go's package doc) instead of the teacher's restart-point
// footer.
type Builder struct {
	blockSize int
	cur       *block.Builder
	curFirst  []byte

	finished     []finishedBlock
	finishedSize int // sum of encoded sizes of already-finished blocks
}

type finishedBlock struct {
	firstKey []byte
	data     []byte
}

// New creates a Builder that targets blockSize bytes per block.
func New(blockSize int) *Builder {
	return &Builder{
		blockSize: blockSize,
		cur:       block.NewBuilder(blockSize),
	}
}

// Add appends a (key, value) pair. Keys must be added in ascending order;
// the caller (the memtable flush path) is responsible for that ordering.
func (b *Builder) Add(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(ErrInvalidArgument, "sstable: empty key")
	}

	if b.cur.Empty() {
		b.curFirst = append([]byte(nil), key...)
	}

	if b.cur.Add(key, value) {
		return nil
	}

	// Current block is full: finalize it and retry against a fresh one.
	b.finishCurrent()
	b.curFirst = append([]byte(nil), key...)
	if !b.cur.Add(key, value) {
		// A single entry must always be accepted by a fresh builder; if not,
		// the pair itself is larger than any block could ever hold.
		return errors.Wrapf(ErrInvalidArgument, "sstable: entry for key %q exceeds block size %d", key, b.blockSize)
	}
	return nil
}

// finishCurrent encodes the in-progress block (if non-empty) and appends it
// to the finished list, then resets cur to a fresh empty builder.
func (b *Builder) finishCurrent() {
	if b.cur.Empty() {
		return
	}
	blk := b.cur.Build()
	data := encodeBlock(blk)
	b.finished = append(b.finished, finishedBlock{firstKey: b.curFirst, data: data})
	b.finishedSize += len(data)
	b.cur = block.NewBuilder(b.blockSize)
	b.curFirst = nil
}

// encodeBlock recovers the exact byte string block.Builder.Build produced:
// block.Block does not expose its raw bytes, so this rebuilds the identical
// encoding from the entries read back through a block.Iterator.
//
// This mirrors block.encode's own layout (data | offsets | footer) since
// both must agree bit-for-bit; see block.Block.Size, which this function's
// output must match in length.
func encodeBlock(blk *block.Block) []byte {
	n := blk.NumEntries()
	buf := make([]byte, 0, blk.Size())
	offsets := make([]uint16, n)

	it := block.NewIterator(blk)
	it.SeekToFirst()
	for i := 0; i < n; i++ {
		offsets[i] = uint16(len(buf))
		k, v := it.Key(), it.Value()
		buf = appendU16(buf, uint16(len(k)))
		buf = append(buf, k...)
		buf = appendU16(buf, uint16(len(v)))
		buf = append(buf, v...)
		it.Next()
	}
	for _, off := range offsets {
		buf = appendU16(buf, off)
	}
	buf = appendU16(buf, uint16(n))
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [u32Size]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// EstimatedSize returns the sum of the encoded sizes of already-finalized
// blocks; entries still in the in-progress block are not counted. Callers use
// this to decide when a table has grown large enough to stop adding to it.
func (b *Builder) EstimatedSize() int {
	return b.finishedSize
}

// Empty reports whether the builder has accepted no entries at all.
func (b *Builder) Empty() bool {
	return len(b.finished) == 0 && b.cur.Empty()
}

// Build finalizes any in-progress block, serializes the whole table to path
// (via a temp file renamed into place), and opens it as a SortedTable with
// id and the given block cache (which may be nil).
func (b *Builder) Build(id uint64, c cache.Cache, path string) (*SortedTable, error) {
	b.finishCurrent()
	if len(b.finished) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "sstable: cannot build an empty table")
	}

	var data []byte
	var index []byte

	// The offset of each block must be the running total of already
	// serialized block bytes, taken *before* that block's own bytes are
	// appended -- not after, which would off-by-one every block's recorded
	// start by the length of the block itself.
	offset := uint32(0)
	for _, fb := range b.finished {
		index = appendU32(index, offset)
		index = appendU32(index, uint32(len(fb.firstKey)))
		index = append(index, fb.firstKey...)

		data = append(data, fb.data...)
		offset += uint32(len(fb.data))
	}

	indexOffset := offset // == len(data), the start of the block index
	full := make([]byte, 0, len(data)+len(index)+u32Size)
	full = append(full, data...)
	full = append(full, index...)
	full = appendU32(full, indexOffset)

	if err := writeFileAtomic(path, full); err != nil {
		return nil, err
	}

	return Open(id, c, path)
}

// writeFileAtomic writes data to a temp file in the same directory as path
// and renames it into place, so a crash or concurrent reader never observes
// a partially-written table file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(ErrIO, "sstable: create temp file: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(ErrIO, "sstable: write: %v", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(ErrIO, "sstable: fsync: %v", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(ErrIO, "sstable: close temp file: %v", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(ErrIO, "sstable: rename into place: %v", err)
	}
	return nil
}
