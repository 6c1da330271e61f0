package block

// Builder accumulates key-value pairs in sorted order and materializes the
// encoded block layout only in Build.
//
// Grounded on aalhour-rockyardkv/internal/block/builder.go's builder/Add/
// Finish split, without that teacher's prefix-compression and restart-point
// bookkeeping (this block format keeps a full offset per entry instead).
type Builder struct {
	targetSize int
	entries    []entry
	size       int // running encoded size estimate (footer excluded), see entrySize and Add
}

// NewBuilder creates a builder with the given target size budget. A single
// entry is always accepted regardless of size so that any key-value pair
// fits in some block.
func NewBuilder(targetSize int) *Builder {
	return &Builder{targetSize: targetSize}
}

// Add accepts a new (k, v) pair. It returns false (without modifying the
// builder) if adding would exceed the target size budget and the builder is
// already non-empty; the first entry is always accepted. If key already
// exists in the builder, its value is replaced and size accounting is
// corrected accordingly.
func (b *Builder) Add(key, value []byte) bool {
	if idx, found := b.find(key); found {
		old := b.entries[idx].value
		newSize := b.size + len(value) - len(old)
		b.entries[idx].value = append([]byte(nil), value...)
		b.size = newSize
		return true
	}

	added := entrySize(key, value)
	newSize := b.size + added
	if len(b.entries) > 0 && newSize > b.targetSize {
		return false
	}

	idx, _ := b.find(key)
	b.entries = append(b.entries, entry{})
	copy(b.entries[idx+1:], b.entries[idx:])
	b.entries[idx] = entry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)}
	b.size = newSize
	return true
}

// find returns the index at which key is (or would be inserted to keep the
// entries slice sorted), and whether it is already present.
func (b *Builder) find(key []byte) (idx int, found bool) {
	lo, hi := 0, len(b.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		switch compare(b.entries[mid].key, key) {
		case -1:
			lo = mid + 1
		case 0:
			return mid, true
		default:
			hi = mid
		}
	}
	return lo, false
}

// entrySize is the size-accounting formula from the design: two u16 length
// prefixes, the key and value bytes, and one offset slot.
func entrySize(key, value []byte) int {
	return len(key) + len(value) + 3*u16Size
}

// CurrentSize returns the current estimated encoded size of the block.
func (b *Builder) CurrentSize() int {
	if len(b.entries) == 0 {
		return 0
	}
	return b.size + footerSize
}

// Empty reports whether the builder has no entries.
func (b *Builder) Empty() bool {
	return len(b.entries) == 0
}

// FirstKey returns the smallest key currently in the builder, or nil if
// none has been added yet.
func (b *Builder) FirstKey() []byte {
	if len(b.entries) == 0 {
		return nil
	}
	return b.entries[0].key
}

// Build consumes the builder and returns the finished Block.
func (b *Builder) Build() *Block {
	raw := encode(b.entries)
	blk, err := Decode(raw)
	if err != nil {
		// encode() always produces a buffer Decode can parse; a failure here
		// would indicate a bug in encode/Decode, not a caller error.
		panic("block: internal encode/decode mismatch: " + err.Error())
	}
	return blk
}

func compare(a, b []byte) int {
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
