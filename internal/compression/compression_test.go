package compression

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRoundTrip is testable property 11 from SPEC_FULL.md §8: for every
// supported codec, Decompress(Compress(v)) == v.
func TestRoundTrip(t *testing.T) {
	values := [][]byte{
		[]byte("hello world"),
		[]byte(""),
		make([]byte, 4096),
		[]byte("a single byte: x"),
	}

	for _, typ := range []Type{NoCompression, SnappyCompression, ZstdCompression} {
		for _, v := range values {
			compressed, err := Compress(typ, v)
			require.NoError(t, err)

			got, err := Decompress(typ, compressed)
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	}
}

func TestIsSupported(t *testing.T) {
	require.True(t, NoCompression.IsSupported())
	require.True(t, SnappyCompression.IsSupported())
	require.True(t, ZstdCompression.IsSupported())
	require.False(t, Type(0xFF).IsSupported())
}

func TestUnsupportedTypeErrors(t *testing.T) {
	_, err := Compress(Type(0xFF), []byte("x"))
	require.Error(t, err)

	_, err = Decompress(Type(0xFF), []byte("x"))
	require.Error(t, err)
}
