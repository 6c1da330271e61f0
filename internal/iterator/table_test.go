package iterator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsmtree/lsmkv/internal/sstable"
)

func buildTestTable(t *testing.T, blockSize int, kvs [][2]string) *sstable.SortedTable {
	t.Helper()
	b := sstable.New(blockSize)
	for _, kv := range kvs {
		require.NoError(t, b.Add([]byte(kv[0]), []byte(kv[1])))
	}
	tbl, err := b.Build(1, nil, filepath.Join(t.TempDir(), "000001.sst"))
	require.NoError(t, err)
	return tbl
}

func TestTableIteratorSeekToFirstSpansBlocks(t *testing.T) {
	tbl := buildTestTable(t, 1, [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})
	defer tbl.Close()

	it := NewTableIterator(tbl)
	require.NoError(t, it.SeekToFirst())

	got, err := collect(it)
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}}, got)
}

// TestTableIteratorSeekToKeyScenarioS6 mirrors spec scenario S6, spread
// across table blocks: seeking to a key between two present keys lands on
// the next greater one, and seeking past the last key invalidates.
func TestTableIteratorSeekToKeyScenarioS6(t *testing.T) {
	tbl := buildTestTable(t, 1, [][2]string{{"1", "11"}, {"2", "22"}, {"3", "33"}})
	defer tbl.Close()

	it := NewTableIterator(tbl)
	require.NoError(t, it.SeekToKey([]byte("2")))
	require.True(t, it.IsValid())
	require.Equal(t, []byte("2"), it.Key())

	it2 := NewTableIterator(tbl)
	require.NoError(t, it2.SeekToKey([]byte("15")))
	require.True(t, it2.IsValid())
	require.Equal(t, []byte("2"), it2.Key())

	it3 := NewTableIterator(tbl)
	require.NoError(t, it3.SeekToKey([]byte("9")))
	require.False(t, it3.IsValid())
}

func TestTableIteratorSeekToKeyPastEndInvalidates(t *testing.T) {
	tbl := buildTestTable(t, 1, [][2]string{{"a", "1"}, {"b", "2"}})
	defer tbl.Close()

	it := NewTableIterator(tbl)
	require.NoError(t, it.SeekToKey([]byte("z")))
	require.False(t, it.IsValid())
}
