// Package sstable implements the on-disk sorted-table (SST) format: an
// immutable file of Blocks plus a trailing block index and footer.
//
// File encoding (bit-exact):
//
//	[ Block #1 | Block #2 | ... | Block #N | BlockIndex | u32 BlockIndex-offset ]
//
// BlockIndex is the concatenation of per-block records
// `u32 block_offset | u32 first_key_len | first_key bytes`. The trailing
// u32 is the absolute byte offset of BlockIndex within the file. All u32
// fields are big-endian.
//
// Grounded on aalhour-rockyardkv/internal/table/builder.go and reader.go for
// the builder/reader split and the pending-index-entry bookkeeping idiom;
// the wire format itself follows SPEC_FULL.md §4.2 rather than the
// teacher's RocksDB-compatible block-based-table format.
package sstable

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/lsmtree/lsmkv/internal/block"
	"github.com/lsmtree/lsmkv/internal/cache"
	"github.com/lsmtree/lsmkv/internal/errkind"
)

const u32Size = 4

// Sentinel errors, shared with the root package via internal/errkind.
var (
	ErrIO              = errkind.IO
	ErrCorruption      = errkind.Corruption
	ErrOutOfRange      = errkind.OutOfRange
	ErrInvalidArgument = errkind.InvalidArgument
)

// blockMeta is one entry of the in-memory block index: the byte offset at
// which the block begins in the file, and its first key.
type blockMeta struct {
	offset   uint32
	firstKey []byte
}

// SortedTable is an immutable, numbered on-disk file composed of Blocks
// plus a block index. It is built once from a sorted stream and opened
// read-only thereafter.
type SortedTable struct {
	id          uint64
	file        *os.File
	meta        []blockMeta
	indexOffset uint32
	fileSize    int64
	cache       cache.Cache // optional; nil means no caching
}

// ID returns the table's monotonic identifier.
func (t *SortedTable) ID() uint64 { return t.id }

// NumBlocks returns the number of data blocks in the table.
func (t *SortedTable) NumBlocks() int { return len(t.meta) }

// FirstKey returns the first key of the whole table (the first key of
// block 0), or nil if the table somehow has no blocks.
func (t *SortedTable) FirstKey() []byte {
	if len(t.meta) == 0 {
		return nil
	}
	return t.meta[0].firstKey
}

// Open reads the footer and block index of the file at path and returns a
// read-only SortedTable. cache may be nil to disable block caching.
func Open(id uint64, c cache.Cache, path string) (*SortedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "sstable: open %s: %v", path, err)
	}

	t, err := openFile(id, c, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return t, nil
}

func openFile(id uint64, c cache.Cache, f *os.File) (*SortedTable, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "sstable: stat: %v", err)
	}
	size := info.Size()
	if size < u32Size {
		return nil, errors.Wrap(ErrCorruption, "sstable: file shorter than footer")
	}

	var footerBuf [u32Size]byte
	if _, err := f.ReadAt(footerBuf[:], size-u32Size); err != nil {
		return nil, errors.Wrapf(ErrIO, "sstable: read footer: %v", err)
	}
	indexOffset := binary.BigEndian.Uint32(footerBuf[:])
	if int64(indexOffset) > size-u32Size {
		return nil, errors.Wrap(ErrCorruption, "sstable: index offset beyond file")
	}

	indexBuf := make([]byte, int64(size-u32Size)-int64(indexOffset))
	if _, err := f.ReadAt(indexBuf, int64(indexOffset)); err != nil {
		return nil, errors.Wrapf(ErrIO, "sstable: read block index: %v", err)
	}

	meta, err := decodeBlockIndex(indexBuf)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, errors.Wrap(ErrCorruption, "sstable: empty block index")
	}

	return &SortedTable{
		id:          id,
		file:        f,
		meta:        meta,
		indexOffset: indexOffset,
		fileSize:    size,
		cache:       c,
	}, nil
}

func decodeBlockIndex(buf []byte) ([]blockMeta, error) {
	var metas []blockMeta
	for len(buf) > 0 {
		if len(buf) < u32Size*2 {
			return nil, errors.Wrap(ErrCorruption, "sstable: truncated block index record")
		}
		offset := binary.BigEndian.Uint32(buf)
		buf = buf[u32Size:]
		keyLen := binary.BigEndian.Uint32(buf)
		buf = buf[u32Size:]
		if uint32(len(buf)) < keyLen {
			return nil, errors.Wrap(ErrCorruption, "sstable: truncated first key")
		}
		firstKey := append([]byte(nil), buf[:keyLen]...)
		buf = buf[keyLen:]
		metas = append(metas, blockMeta{offset: offset, firstKey: firstKey})
	}
	return metas, nil
}

// Close closes the underlying file.
func (t *SortedTable) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// blockRange returns the [start, end) byte range of block i within the file.
func (t *SortedTable) blockRange(i int) (start, end uint32, err error) {
	if i < 0 || i >= len(t.meta) {
		return 0, 0, errors.Wrapf(ErrOutOfRange, "sstable: block index %d out of range [0,%d)", i, len(t.meta))
	}
	start = t.meta[i].offset
	if i+1 < len(t.meta) {
		end = t.meta[i+1].offset
	} else {
		end = t.indexOffset
	}
	return start, end, nil
}

// ReadBlock reads and decodes block i directly from the file, bypassing the
// cache.
func (t *SortedTable) ReadBlock(i int) (*block.Block, error) {
	start, end, err := t.blockRange(i)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, end-start)
	if _, err := t.file.ReadAt(buf, int64(start)); err != nil && err != io.EOF {
		return nil, errors.Wrapf(ErrIO, "sstable: read block %d: %v", i, err)
	}

	blk, err := block.Decode(buf)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruption, "sstable: decode block %d: %v", i, err)
	}
	return blk, nil
}

// ReadBlockCached reads block i, consulting the attached cache if any. If no
// cache is attached, it behaves exactly like ReadBlock.
func (t *SortedTable) ReadBlockCached(i int) (*block.Block, error) {
	if t.cache == nil {
		return t.ReadBlock(i)
	}
	key := cache.Key{TableID: t.id, BlockIndex: i}
	return t.cache.GetOrLoad(key, func() (*block.Block, error) {
		return t.ReadBlock(i)
	})
}

// FindBlockIdx returns the largest index i such that firstKey[i] <= k, or 0
// if k precedes every first key (the caller then knows "before the start of
// block 0" and recovers by probing forward).
func (t *SortedTable) FindBlockIdx(k []byte) int {
	lo, hi := 0, len(t.meta)
	for lo < hi {
		mid := (lo + hi) / 2
		if lessOrEqual(t.meta[mid].firstKey, k) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0
	}
	return lo - 1
}

func lessOrEqual(a, b []byte) bool {
	return compareBytes(a, b) <= 0
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
