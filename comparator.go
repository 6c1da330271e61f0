package lsmkv

// comparator.go defines the total ordering over keys.
//
// Grounded on aalhour-rockyardkv/comparator.go, trimmed to the single
// responsibility this engine's block index actually needs: a three-way
// compare function. The teacher's FindShortestSeparator/FindShortSuccessor
// exist there to shrink RocksDB index-block keys; this engine's index
// entries always store the full first key (see internal/sstable), so that
// machinery has no caller here.

import "bytes"

// Comparator orders keys. It must return a negative number if a < b, zero
// if a == b, and a positive number if a > b, and must define a total order
// consistent with itself across repeated calls.
type Comparator func(a, b []byte) int

// BytewiseComparator orders keys by raw byte value, the only comparator
// shipped by this module and the default used by Options.
func BytewiseComparator(a, b []byte) int {
	return bytes.Compare(a, b)
}
