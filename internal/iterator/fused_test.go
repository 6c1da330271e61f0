package iterator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsmtree/lsmkv/internal/bound"
)

func TestLsmIteratorSkipsTombstones(t *testing.T) {
	inner := newSliceIterator([][2]string{{"a", ""}, {"b", "1"}, {"c", ""}, {"d", "2"}})
	it, err := NewLsmIterator(inner, bound.UnboundedBound())
	require.NoError(t, err)

	got, err := collect(it)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"b", "1"}, {"d", "2"}}, got)
}

func TestLsmIteratorEnforcesUpperBoundInclusive(t *testing.T) {
	inner := newSliceIterator([][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})
	it, err := NewLsmIterator(inner, bound.IncludedBound([]byte("b")))
	require.NoError(t, err)

	got, err := collect(it)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"a", "1"}, {"b", "2"}}, got)
}

func TestLsmIteratorEnforcesUpperBoundExclusive(t *testing.T) {
	inner := newSliceIterator([][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})
	it, err := NewLsmIterator(inner, bound.ExcludedBound([]byte("b")))
	require.NoError(t, err)

	got, err := collect(it)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"a", "1"}}, got)
}

type errAfterNIterator struct {
	*sliceIterator
	failAt int
	calls  int
}

func (e *errAfterNIterator) Next() error {
	e.calls++
	if e.calls == e.failAt {
		return errBoom
	}
	return e.sliceIterator.Next()
}

var errBoom = errors.New("boom")

func TestFusedIteratorStaysInvalidAfterError(t *testing.T) {
	base := &errAfterNIterator{sliceIterator: newSliceIterator([][2]string{{"a", "1"}, {"b", "2"}}), failAt: 1}
	fi := NewFusedIterator(base)

	require.True(t, fi.IsValid())
	err := fi.Next()
	require.Error(t, err)
	require.False(t, fi.IsValid())

	// Subsequent Next calls must not panic or attempt to advance further.
	require.NoError(t, fi.Next())
}

func TestFusedIteratorInvalidAfterExhaustion(t *testing.T) {
	fi := NewFusedIterator(newSliceIterator([][2]string{{"a", "1"}}))
	require.NoError(t, fi.Next())
	require.False(t, fi.IsValid())
	require.NoError(t, fi.Next())
}
