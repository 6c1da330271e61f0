package iterator

import (
	"bytes"

	"github.com/lsmtree/lsmkv/internal/bound"
)

// LsmIterator wraps a lower StorageIterator (typically a TwoMergeIterator
// fusing memtable and table sources) and enforces the user-visible
// semantics of a scan: an upper bound and tombstone filtering. An error from
// the inner Next is returned to the caller; LsmIterator marks itself
// exhausted only when that error comes from the direct advance in Next, not
// from the tombstone skip. Full fuse semantics are FusedIterator's job, so
// the two compose.
type LsmIterator struct {
	inner StorageIterator
	upper bound.Bound
	done  bool // upper bound crossed, or inner exhausted
}

// NewLsmIterator wraps inner, immediately skipping past any leading
// tombstone and applying upper.
func NewLsmIterator(inner StorageIterator, upper bound.Bound) (*LsmIterator, error) {
	it := &LsmIterator{inner: inner, upper: upper}
	if err := it.skipToLive(); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *LsmIterator) withinUpper(key []byte) bool {
	switch it.upper.Kind {
	case bound.Unbounded:
		return true
	case bound.Included:
		return bytes.Compare(key, it.upper.Key) <= 0
	case bound.Excluded:
		return bytes.Compare(key, it.upper.Key) < 0
	default:
		return true
	}
}

// skipToLive advances inner past tombstones and past the upper bound,
// leaving it either invalid (done) or positioned on a live, in-range entry.
func (it *LsmIterator) skipToLive() error {
	for {
		if it.done || !it.inner.IsValid() {
			it.done = true
			return nil
		}
		if !it.withinUpper(it.inner.Key()) {
			it.done = true
			return nil
		}
		if len(it.inner.Value()) > 0 {
			return nil
		}
		if err := it.inner.Next(); err != nil {
			return err
		}
	}
}

// IsValid implements StorageIterator.
func (it *LsmIterator) IsValid() bool {
	return !it.done && it.inner.IsValid()
}

// Key implements StorageIterator.
func (it *LsmIterator) Key() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.inner.Key()
}

// Value implements StorageIterator.
func (it *LsmIterator) Value() []byte {
	if !it.IsValid() {
		return nil
	}
	return it.inner.Value()
}

// Next implements StorageIterator.
func (it *LsmIterator) Next() error {
	if !it.IsValid() {
		return nil
	}
	if err := it.inner.Next(); err != nil {
		it.done = true
		return err
	}
	return it.skipToLive()
}

// FusedIterator wraps a StorageIterator and becomes permanently invalid the
// first time invalidity or an error is observed, ignoring subsequent Next
// calls. This is the outermost layer handed back to Engine.Scan callers.
type FusedIterator struct {
	inner StorageIterator
	fused bool // true once permanently invalidated
}

// NewFusedIterator wraps inner.
func NewFusedIterator(inner StorageIterator) *FusedIterator {
	return &FusedIterator{inner: inner}
}

// IsValid implements StorageIterator.
func (fi *FusedIterator) IsValid() bool {
	return !fi.fused && fi.inner.IsValid()
}

// Key implements StorageIterator.
func (fi *FusedIterator) Key() []byte {
	if !fi.IsValid() {
		return nil
	}
	return fi.inner.Key()
}

// Value implements StorageIterator.
func (fi *FusedIterator) Value() []byte {
	if !fi.IsValid() {
		return nil
	}
	return fi.inner.Value()
}

// Next implements StorageIterator: an error from the inner iterator is
// returned once and fuses the iterator; once fused (invalid or errored),
// every further call is a no-op returning nil.
func (fi *FusedIterator) Next() error {
	if fi.fused {
		return nil
	}
	if !fi.inner.IsValid() {
		fi.fused = true
		return nil
	}
	if err := fi.inner.Next(); err != nil {
		fi.fused = true
		return err
	}
	if !fi.inner.IsValid() {
		fi.fused = true
	}
	return nil
}
