// Package block implements the smallest unit of disk I/O and caching: an
// immutable, sorted, self-describing run of key-value entries with a
// trailing offset array for binary search.
//
// Encoding (bit-exact):
//
//	data section:   (u16 key_len | key | u16 value_len | value)*  in ascending key order
//	offset section: u16 big-endian byte-offset of each entry, in entry order
//	footer:         u16 big-endian count of entries
//
// All multi-byte integers are big-endian throughout. This layout is
// deliberately not prefix-compressed and carries no restart points: every
// entry has its own offset slot, so seeking within a block is a single
// binary search over the offset array rather than a binary search to a
// restart point followed by a linear scan.
package block

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const (
	u16Size = 2
	// footerSize is the trailing entry-count field.
	footerSize = u16Size
)

// Block is an immutable, sorted run of key-value entries, decoded lazily:
// the data section is kept as a slice of the original byte string and each
// entry is parsed on access; only the offset section is parsed up front.
type Block struct {
	data    []byte // the data section only (entries), not including offsets/footer
	offsets []uint16
}

// Decode parses a fully-encoded block. It fails if the buffer is shorter
// than the structure implied by its own trailing count.
func Decode(raw []byte) (*Block, error) {
	if len(raw) < footerSize {
		return nil, errors.Wrap(ErrBadBlock, "buffer shorter than footer")
	}

	count := binary.BigEndian.Uint16(raw[len(raw)-footerSize:])
	if count == 0 {
		return nil, errors.Wrap(ErrBadBlock, "block has zero entries")
	}

	offsetsSize := int(count) * u16Size
	offsetsEnd := len(raw) - footerSize
	offsetsStart := offsetsEnd - offsetsSize
	if offsetsStart < 0 {
		return nil, errors.Wrap(ErrBadBlock, "buffer shorter than offset section")
	}

	offsets := make([]uint16, count)
	for i := range offsets {
		offsets[i] = binary.BigEndian.Uint16(raw[offsetsStart+i*u16Size:])
	}

	return &Block{
		data:    raw[:offsetsStart],
		offsets: offsets,
	}, nil
}

// Size returns the byte length of the fully encoded block (data + offsets +
// footer), matching what Builder.Build would have produced.
func (b *Block) Size() int {
	return len(b.data) + len(b.offsets)*u16Size + footerSize
}

// NumEntries returns the number of key-value entries in the block.
func (b *Block) NumEntries() int {
	return len(b.offsets)
}

// entryAt decodes the entry starting at the given offset within the data
// section and returns the key, the value, and the offset of the entry
// immediately following it.
func (b *Block) entryAt(offset uint16) (key, value []byte, next uint16) {
	data := b.data[offset:]
	keyLen := binary.BigEndian.Uint16(data)
	data = data[u16Size:]
	key = data[:keyLen]
	data = data[keyLen:]
	valueLen := binary.BigEndian.Uint16(data)
	data = data[u16Size:]
	value = data[:valueLen]
	next = offset + u16Size + keyLen + u16Size + valueLen
	return key, value, next
}

// encode serializes entries (already sorted by key, with duplicate keys
// already collapsed to their latest value by the caller) into a full block
// byte string: data section, offset section, footer.
func encode(entries []entry) []byte {
	buf := make([]byte, 0, estimateEncodedSize(entries))
	offsets := make([]uint16, len(entries))

	for i, e := range entries {
		offsets[i] = uint16(len(buf))
		buf = appendU16(buf, uint16(len(e.key)))
		buf = append(buf, e.key...)
		buf = appendU16(buf, uint16(len(e.value)))
		buf = append(buf, e.value...)
	}
	for _, off := range offsets {
		buf = appendU16(buf, off)
	}
	buf = appendU16(buf, uint16(len(entries)))
	return buf
}

func estimateEncodedSize(entries []entry) int {
	size := footerSize
	for _, e := range entries {
		size += u16Size + len(e.key) + u16Size + len(e.value)
		size += u16Size // offset slot
	}
	return size
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [u16Size]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// entry is the builder's in-memory representation of one key-value pair.
type entry struct {
	key   []byte
	value []byte
}
