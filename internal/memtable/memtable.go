package memtable

import (
	"bytes"
	"sync"

	"github.com/lsmtree/lsmkv/internal/bound"
	"github.com/lsmtree/lsmkv/internal/iterator"
)

// MemTable is the engine's mutable, in-memory sorted store. Writes and
// reads are both protected by an internal mutex: unlike RocksDB's memtable,
// which only requires external synchronization on writes because its skip
// list never mutates an existing node, this one allows Put to overwrite a
// key's value in place, so reads must also be serialized against it.
//
// Grounded on aalhour-rockyardkv/internal/memtable/memtable.go's MemTable
// wrapper shape around its skip list.
type MemTable struct {
	mu   sync.Mutex
	list *skipList
}

// New creates an empty MemTable.
func New() *MemTable {
	return &MemTable{list: newSkipList()}
}

// Put inserts or overwrites key with value. value may be empty, which
// records a tombstone.
func (m *MemTable) Put(key, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list.Insert(key, value)
}

// Get returns the raw stored value for key (which may be empty, meaning a
// tombstone) and whether key is present at all.
func (m *MemTable) Get(key []byte) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Get(key)
}

// ApproximateSize returns the approximate memory footprint of stored keys
// and values, in bytes.
func (m *MemTable) ApproximateSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.size
}

// Len returns the number of distinct keys in the MemTable.
func (m *MemTable) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.count
}

// Scan returns a StorageIterator over the keys between lower and upper (each
// bound inclusive, exclusive, or unbounded), already positioned.
// The returned iterator takes a point-in-time snapshot of matching entries
// so it can be used without holding the MemTable's mutex.
func (m *MemTable) Scan(lower, upper bound.Bound) iterator.StorageIterator {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sit *skipListIterator
	switch lower.Kind {
	case bound.Unbounded:
		sit = m.list.seekToFirst()
	case bound.Included:
		sit = m.list.seek(lower.Key)
	case bound.Excluded:
		sit = m.list.seek(lower.Key)
		if sit.valid() && bytes.Equal(sit.key(), lower.Key) {
			sit.next()
		}
	}

	var keys, values [][]byte
	for sit.valid() {
		k := sit.key()
		if upper.Kind == bound.Included && bytes.Compare(k, upper.Key) > 0 {
			break
		}
		if upper.Kind == bound.Excluded && bytes.Compare(k, upper.Key) >= 0 {
			break
		}
		keys = append(keys, append([]byte(nil), k...))
		values = append(values, append([]byte(nil), sit.value()...))
		sit.next()
	}

	return &snapshotIterator{keys: keys, values: values}
}

// snapshotIterator is a StorageIterator over a materialized slice of
// (key, value) pairs copied out of the memtable at Scan time.
type snapshotIterator struct {
	keys, values [][]byte
	idx          int
}

func (s *snapshotIterator) IsValid() bool { return s.idx < len(s.keys) }

func (s *snapshotIterator) Key() []byte {
	if !s.IsValid() {
		return nil
	}
	return s.keys[s.idx]
}

func (s *snapshotIterator) Value() []byte {
	if !s.IsValid() {
		return nil
	}
	return s.values[s.idx]
}

func (s *snapshotIterator) Next() error {
	if s.IsValid() {
		s.idx++
	}
	return nil
}
