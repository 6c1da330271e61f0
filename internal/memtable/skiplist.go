// Package memtable implements the engine's in-memory sorted store: a
// mutex-protected skip list holding (key, value) pairs, plus a MemTable
// wrapper exposing Put/Get (a delete is a Put of an empty value) and a
// bound-aware range iterator.
//
// Grounded on aalhour-rockyardkv/internal/memtable/skiplist.go's node and
// level-search shape, adapted from that teacher's lock-free, keys-only,
// no-duplicate skip list into one that stores values directly and
// supports in-place value replacement under its own mutex, since this
// engine's memtable (unlike RocksDB's, which relies on sequence numbers to
// order duplicate user keys) needs "put a key twice" to simply overwrite.
package memtable

import (
	"bytes"
	"math/rand"
)

const (
	maxHeight       = 12
	branchingFactor = 4
)

// skipNode is one node of the skip list: a key-value pair plus its forward
// pointers at each level it participates in.
type skipNode struct {
	key, value []byte
	next       []*skipNode
}

// skipList is a sorted (key, value) store. All access, including reads,
// must hold the owning MemTable's mutex: unlike the teacher's structure,
// this one supports in-place value mutation on Insert, which is not safe
// to read concurrently without synchronization.
type skipList struct {
	head      *skipNode
	maxHeight int
	rng       *rand.Rand
	count     int
	size      int // approximate bytes of stored keys and values
}

func newSkipList() *skipList {
	return &skipList{
		head:      &skipNode{next: make([]*skipNode, maxHeight)},
		maxHeight: 1,
		rng:       rand.New(rand.NewSource(0xDEADBEEF)),
	}
}

// Insert adds key with value, or replaces the value if key is already
// present. Returns the signed change in approximate byte size.
func (sl *skipList) Insert(key, value []byte) int {
	prev := make([]*skipNode, maxHeight)
	x := sl.findGreaterOrEqual(key, prev)

	if x != nil && bytes.Equal(x.key, key) {
		delta := len(value) - len(x.value)
		x.value = append([]byte(nil), value...)
		sl.size += delta
		return delta
	}

	height := sl.randomHeight()
	if height > sl.maxHeight {
		for i := sl.maxHeight; i < height; i++ {
			prev[i] = sl.head
		}
		sl.maxHeight = height
	}

	node := &skipNode{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
		next:  make([]*skipNode, height),
	}
	for i := 0; i < height; i++ {
		node.next[i] = prev[i].next[i]
		prev[i].next[i] = node
	}

	sl.count++
	delta := len(key) + len(value)
	sl.size += delta
	return delta
}

// Get returns the value for key and whether it was found.
func (sl *skipList) Get(key []byte) ([]byte, bool) {
	x := sl.findGreaterOrEqual(key, nil)
	if x != nil && bytes.Equal(x.key, key) {
		return x.value, true
	}
	return nil, false
}

func (sl *skipList) findGreaterOrEqual(key []byte, prev []*skipNode) *skipNode {
	x := sl.head
	level := sl.maxHeight - 1

	for {
		next := x.next[level]
		if next != nil && bytes.Compare(next.key, key) < 0 {
			x = next
		} else {
			if prev != nil {
				prev[level] = x
			}
			if level == 0 {
				return next
			}
			level--
		}
	}
}

func (sl *skipList) randomHeight() int {
	height := 1
	for height < maxHeight && sl.rng.Uint32()%branchingFactor == 0 {
		height++
	}
	return height
}

// skipListIterator is a forward cursor over a skipList. Like the list
// itself, it must only be used while holding the owning MemTable's mutex.
type skipListIterator struct {
	node *skipNode
}

func (it *skipListIterator) valid() bool     { return it.node != nil }
func (it *skipListIterator) key() []byte     { return it.node.key }
func (it *skipListIterator) value() []byte   { return it.node.value }
func (it *skipListIterator) next()           { it.node = it.node.next[0] }
func (sl *skipList) seekToFirst() *skipListIterator {
	return &skipListIterator{node: sl.head.next[0]}
}
func (sl *skipList) seek(key []byte) *skipListIterator {
	return &skipListIterator{node: sl.findGreaterOrEqual(key, nil)}
}
