package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockRoundTrip(t *testing.T) {
	b := NewBuilder(4096)
	require.True(t, b.Add([]byte("1"), []byte("11")))
	require.True(t, b.Add([]byte("2"), []byte("22")))
	require.True(t, b.Add([]byte("3"), []byte("33")))

	blk := b.Build()

	it := NewIterator(blk)
	it.SeekToFirst()

	var gotKeys, gotValues []string
	for it.IsValid() {
		gotKeys = append(gotKeys, string(it.Key()))
		gotValues = append(gotValues, string(it.Value()))
		it.Next()
	}

	require.Equal(t, []string{"1", "2", "3"}, gotKeys)
	require.Equal(t, []string{"11", "22", "33"}, gotValues)
}

// S6 from SPEC_FULL.md §8.
func TestBlockScenarioS6(t *testing.T) {
	b := NewBuilder(4096)
	b.Add([]byte("1"), []byte("11"))
	b.Add([]byte("2"), []byte("22"))
	b.Add([]byte("3"), []byte("33"))
	blk := b.Build()

	it := NewIterator(blk)
	it.SeekToKey([]byte("2"))
	require.True(t, it.IsValid())
	require.Equal(t, "2", string(it.Key()))

	it.SeekToKey([]byte("15"))
	require.True(t, it.IsValid())
	require.Equal(t, "2", string(it.Key()))

	it.SeekToKey([]byte("9"))
	require.False(t, it.IsValid())
}

func TestBlockDecodeRejectsTruncated(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	_, err = Decode([]byte{0, 0})
	require.Error(t, err)
}

func TestBlockSizeMatchesEncodedLength(t *testing.T) {
	b := NewBuilder(4096)
	b.Add([]byte("abc"), []byte("xyz"))
	b.Add([]byte("abcd"), []byte("1234567"))
	blk := b.Build()

	raw := encode([]entry{{key: []byte("abc"), value: []byte("xyz")}, {key: []byte("abcd"), value: []byte("1234567")}})
	require.Equal(t, len(raw), blk.Size())
}
