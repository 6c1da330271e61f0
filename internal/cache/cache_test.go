package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsmtree/lsmkv/internal/block"
)

func buildBlock(t *testing.T, key, value string) *block.Block {
	t.Helper()
	b := block.NewBuilder(4096)
	require.True(t, b.Add([]byte(key), []byte(value)))
	return b.Build()
}

func TestGetOrLoadCachesResult(t *testing.T) {
	c := New(1 << 20)
	var calls int32

	key := Key{TableID: 1, BlockIndex: 0}
	loader := func() (*block.Block, error) {
		atomic.AddInt32(&calls, 1)
		return buildBlock(t, "a", "1"), nil
	}

	_, err := c.GetOrLoad(key, loader)
	require.NoError(t, err)
	_, err = c.GetOrLoad(key, loader)
	require.NoError(t, err)

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// Property 12 from SPEC_FULL.md §8: concurrent misses for the same key
// coalesce into a single loader call.
func TestGetOrLoadCoalescesConcurrentMisses(t *testing.T) {
	c := New(1 << 20)
	var calls int32

	key := Key{TableID: 7, BlockIndex: 3}
	release := make(chan struct{})
	loader := func() (*block.Block, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return buildBlock(t, "k", "v"), nil
	}

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := c.GetOrLoad(key, loader)
			require.NoError(t, err)
		}()
	}

	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoadPropagatesLoaderError(t *testing.T) {
	c := New(1 << 20)
	wantErr := require.Error
	_, err := c.GetOrLoad(Key{TableID: 1}, func() (*block.Block, error) {
		return nil, errTest
	})
	wantErr(t, err)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	blkA := buildBlock(t, "a", "1")
	blkB := buildBlock(t, "b", "1")

	c := New(uint64(blkA.Size())) // room for exactly one block
	c.insert(Key{BlockIndex: 0}, blkA)
	c.insert(Key{BlockIndex: 1}, blkB)

	_, ok := c.lookup(Key{BlockIndex: 0})
	require.False(t, ok, "oldest entry should have been evicted")

	_, ok = c.lookup(Key{BlockIndex: 1})
	require.True(t, ok)
}

var errTest = fmtErrorf("boom")

func fmtErrorf(msg string) error {
	return &simpleErr{msg}
}

type simpleErr struct{ msg string }

func (e *simpleErr) Error() string { return e.msg }
