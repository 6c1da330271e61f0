package iterator

import "bytes"

// TwoMergeIterator fuses two independently-sorted StorageIterators, A and
// B, into one sorted stream. On equal keys A wins and B's duplicate is
// skipped. Grounded on the two-iterator merge shape in
// original_source/mini-lsm-starter's two_merge_iterator.rs, reimplemented
// against this package's StorageIterator contract.
type TwoMergeIterator struct {
	a, b StorageIterator
}

// NewTwoMergeIterator builds a TwoMergeIterator over a (preferred on ties)
// and b, both already positioned by the caller.
func NewTwoMergeIterator(a, b StorageIterator) (*TwoMergeIterator, error) {
	tm := &TwoMergeIterator{a: a, b: b}
	if err := tm.skipB(); err != nil {
		return nil, err
	}
	return tm, nil
}

// skipB advances b past any entry whose key ties with a's current key.
func (tm *TwoMergeIterator) skipB() error {
	for tm.a.IsValid() && tm.b.IsValid() && bytes.Equal(tm.a.Key(), tm.b.Key()) {
		if err := tm.b.Next(); err != nil {
			return err
		}
	}
	return nil
}

// aIsFront reports whether a's entry is the one that should currently be
// surfaced: a valid, and either b is invalid or a's key doesn't sort after
// b's.
func (tm *TwoMergeIterator) aIsFront() bool {
	if !tm.a.IsValid() {
		return false
	}
	if !tm.b.IsValid() {
		return true
	}
	return bytes.Compare(tm.a.Key(), tm.b.Key()) <= 0
}

// IsValid implements StorageIterator.
func (tm *TwoMergeIterator) IsValid() bool {
	return tm.a.IsValid() || tm.b.IsValid()
}

// Key implements StorageIterator.
func (tm *TwoMergeIterator) Key() []byte {
	if tm.aIsFront() {
		return tm.a.Key()
	}
	if tm.b.IsValid() {
		return tm.b.Key()
	}
	return nil
}

// Value implements StorageIterator.
func (tm *TwoMergeIterator) Value() []byte {
	if tm.aIsFront() {
		return tm.a.Value()
	}
	if tm.b.IsValid() {
		return tm.b.Value()
	}
	return nil
}

// Next implements StorageIterator.
func (tm *TwoMergeIterator) Next() error {
	if tm.aIsFront() {
		if err := tm.a.Next(); err != nil {
			return err
		}
	} else if tm.b.IsValid() {
		if err := tm.b.Next(); err != nil {
			return err
		}
	} else {
		return nil
	}
	return tm.skipB()
}
