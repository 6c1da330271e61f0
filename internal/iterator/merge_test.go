package iterator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMergeIteratorTieBreak is testable property 5 from SPEC_FULL.md §8: on
// a multiset of inputs sharing a key, the output sees exactly one
// occurrence, taken from the lowest-indexed (newest) source.
func TestMergeIteratorTieBreak(t *testing.T) {
	newest := newSliceIterator([][2]string{{"a", "newest"}, {"c", "3"}})
	middle := newSliceIterator([][2]string{{"a", "middle"}, {"b", "2"}})
	oldest := newSliceIterator([][2]string{{"a", "oldest"}})

	mi, err := NewMergeIterator([]StorageIterator{newest, middle, oldest})
	require.NoError(t, err)

	got, err := collect(mi)
	require.NoError(t, err)
	require.Equal(t, [][2]string{
		{"a", "newest"},
		{"b", "2"},
		{"c", "3"},
	}, got)
}

func TestMergeIteratorEmptyChildren(t *testing.T) {
	mi, err := NewMergeIterator(nil)
	require.NoError(t, err)
	require.False(t, mi.IsValid())
	require.NoError(t, mi.Next())
}

func TestMergeIteratorSkipsExhaustedChild(t *testing.T) {
	a := newSliceIterator([][2]string{{"a", "1"}})
	b := newSliceIterator([][2]string{{"a", "0"}, {"z", "9"}})

	mi, err := NewMergeIterator([]StorageIterator{a, b})
	require.NoError(t, err)

	got, err := collect(mi)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"a", "1"}, {"z", "9"}}, got)
}
