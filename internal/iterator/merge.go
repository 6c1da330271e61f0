package iterator

import (
	"bytes"
	"container/heap"
)

// MergeIterator merges k homogeneous StorageIterators into one sorted
// stream using a newer-source-smaller-index discipline: children[0] is the
// newest source. On a key collision across children, the lowest-indexed
// (newest) one is surfaced and every other child currently sitting on the
// same key is advanced past it, so callers never see stale duplicates.
//
// Grounded on aalhour-rockyardkv/internal/iterator/merging_iterator.go's
// container/heap min-heap shape, narrowed to this package's StorageIterator
// contract (no Prev/SeekToLast) and the tie-break rule SPEC_FULL.md §4.3
// requires.
type MergeIterator struct {
	children []StorageIterator
	h        *mergeHeap
	current  int // index into children of the currently-surfaced entry, -1 if invalid
}

// NewMergeIterator builds a MergeIterator over children (already positioned
// by the caller) where a lower index means a newer source.
func NewMergeIterator(children []StorageIterator) (*MergeIterator, error) {
	mi := &MergeIterator{
		children: children,
		h:        &mergeHeap{},
		current:  -1,
	}
	for i, c := range children {
		if c.IsValid() {
			heap.Push(mi.h, heapItem{index: i, key: c.Key()})
		}
	}
	mi.findSmallest()
	return mi, nil
}

// IsValid implements StorageIterator.
func (mi *MergeIterator) IsValid() bool {
	return mi.current >= 0
}

// Key implements StorageIterator.
func (mi *MergeIterator) Key() []byte {
	if !mi.IsValid() {
		return nil
	}
	return mi.children[mi.current].Key()
}

// Value implements StorageIterator.
func (mi *MergeIterator) Value() []byte {
	if !mi.IsValid() {
		return nil
	}
	return mi.children[mi.current].Value()
}

// Next implements StorageIterator: advances the surfaced child, then
// advances every other child whose top-of-heap key ties with the key just
// consumed, dropping their stale duplicate entries.
func (mi *MergeIterator) Next() error {
	if !mi.IsValid() {
		return nil
	}

	key := append([]byte(nil), mi.children[mi.current].Key()...)

	if err := mi.advanceTop(); err != nil {
		return err
	}

	for mi.h.Len() > 0 && bytes.Equal(mi.h.items[0].key, key) {
		if err := mi.advanceTop(); err != nil {
			return err
		}
	}

	mi.findSmallest()
	return nil
}

// advanceTop advances the child at the heap's root and fixes up the heap.
func (mi *MergeIterator) advanceTop() error {
	top := mi.h.items[0].index
	if err := mi.children[top].Next(); err != nil {
		return err
	}
	if mi.children[top].IsValid() {
		mi.h.items[0].key = mi.children[top].Key()
		heap.Fix(mi.h, 0)
	} else {
		heap.Pop(mi.h)
	}
	return nil
}

func (mi *MergeIterator) findSmallest() {
	if mi.h.Len() == 0 {
		mi.current = -1
		return
	}
	mi.current = mi.h.items[0].index
}

type heapItem struct {
	index int
	key   []byte
}

// mergeHeap orders by (key, index) ascending: on equal keys the
// lower-indexed (newer) source sorts first, implementing the tie-break
// discipline the MergeIterator doc describes.
type mergeHeap struct {
	items []heapItem
}

func (h *mergeHeap) Len() int { return len(h.items) }

func (h *mergeHeap) Less(i, j int) bool {
	c := bytes.Compare(h.items[i].key, h.items[j].key)
	if c != 0 {
		return c < 0
	}
	return h.items[i].index < h.items[j].index
}

func (h *mergeHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *mergeHeap) Push(x any) { h.items = append(h.items, x.(heapItem)) }

func (h *mergeHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
