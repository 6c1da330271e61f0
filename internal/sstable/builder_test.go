package sstable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func truncateFile(t *testing.T, path string, size int64) error {
	t.Helper()
	return os.Truncate(path, size)
}

func buildTable(t *testing.T, blockSize int, kvs [][2]string) *SortedTable {
	t.Helper()
	b := New(blockSize)
	for _, kv := range kvs {
		require.NoError(t, b.Add([]byte(kv[0]), []byte(kv[1])))
	}
	path := filepath.Join(t.TempDir(), "000001.sst")
	tbl, err := b.Build(1, nil, path)
	require.NoError(t, err)
	return tbl
}

func TestBuilderRoundTripSingleBlock(t *testing.T) {
	kvs := [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	tbl := buildTable(t, 4096, kvs)
	defer tbl.Close()

	require.Equal(t, 1, tbl.NumBlocks())
	require.Equal(t, []byte("a"), tbl.FirstKey())

	blk, err := tbl.ReadBlock(0)
	require.NoError(t, err)
	require.Equal(t, 3, blk.NumEntries())
}

// With a tiny block size, every key must land in its own block. The offset
// of each finalized block must equal the running total of *prior* blocks'
// encoded bytes, not include its own length.
func TestBuilderSplitsAcrossBlocksWithCorrectOffsets(t *testing.T) {
	kvs := [][2]string{{"a", "11111"}, {"b", "22222"}, {"c", "33333"}}
	tbl := buildTable(t, 1, kvs)
	defer tbl.Close()

	require.Equal(t, 3, tbl.NumBlocks())

	for i := 0; i < tbl.NumBlocks(); i++ {
		blk, err := tbl.ReadBlock(i)
		require.NoError(t, err, "block %d should decode cleanly", i)
		require.Equal(t, 1, blk.NumEntries())
	}
}

func TestBuilderFindBlockIdxMonotonic(t *testing.T) {
	kvs := [][2]string{{"a", "1"}, {"m", "2"}, {"z", "3"}}
	tbl := buildTable(t, 1, kvs)
	defer tbl.Close()

	require.Equal(t, 0, tbl.FindBlockIdx([]byte("0")))
	require.Equal(t, 0, tbl.FindBlockIdx([]byte("a")))
	require.Equal(t, 1, tbl.FindBlockIdx([]byte("m")))
	require.Equal(t, 1, tbl.FindBlockIdx([]byte("n")))
	require.Equal(t, 2, tbl.FindBlockIdx([]byte("z")))
	require.Equal(t, 2, tbl.FindBlockIdx([]byte("zz")))
}

func TestBuilderRejectsEmptyTable(t *testing.T) {
	b := New(4096)
	_, err := b.Build(1, nil, filepath.Join(t.TempDir(), "x.sst"))
	require.Error(t, err)
}

func TestBuilderRejectsEmptyKey(t *testing.T) {
	b := New(4096)
	err := b.Add(nil, []byte("v"))
	require.Error(t, err)
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	tbl := buildTable(t, 4096, [][2]string{{"a", "1"}})
	path := tbl.file.Name()
	tbl.Close()

	require.NoError(t, truncateFile(t, path, 1))
	_, err := Open(2, nil, path)
	require.Error(t, err)
}
