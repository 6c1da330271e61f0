// Package compression implements optional value compression at the
// engine's Put/Get boundary. Unlike a block-level compressor, it never
// touches the block or sorted-table wire format: the compressed bytes are
// simply the "value" the memtable, block, and table layers already treat
// as an opaque non-empty byte string.
//
// Grounded on aalhour-rockyardkv/internal/compression/compression.go's
// Type/Compress/Decompress shape, trimmed to the two real codecs this
// engine exercises (Snappy, Zstd); see DESIGN.md for why Zlib/LZ4/LZ4HC/
// Xpress/BZip2 were dropped rather than carried as unused surface.
package compression

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Type identifies a value compression codec.
type Type uint8

const (
	// NoCompression stores values as-is.
	NoCompression Type = 0x0

	// SnappyCompression uses Google Snappy.
	SnappyCompression Type = 0x1

	// ZstdCompression uses Zstandard.
	ZstdCompression Type = 0x2
)

// String returns the human-readable name of the compression type.
func (t Type) String() string {
	switch t {
	case NoCompression:
		return "NoCompression"
	case SnappyCompression:
		return "Snappy"
	case ZstdCompression:
		return "ZSTD"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsSupported reports whether t is a codec this package implements.
func (t Type) IsSupported() bool {
	switch t {
	case NoCompression, SnappyCompression, ZstdCompression:
		return true
	default:
		return false
	}
}

// Compress compresses data using t. The empty-value tombstone encoding is
// the caller's concern: Compress never needs to special-case an empty
// input since every codec here round-trips it.
func Compress(t Type, data []byte) ([]byte, error) {
	switch t {
	case NoCompression:
		return data, nil
	case SnappyCompression:
		return snappy.Encode(nil, data), nil
	case ZstdCompression:
		return compressZstd(data)
	default:
		return nil, fmt.Errorf("compression: unsupported type %s", t)
	}
}

// Decompress reverses Compress. An empty input decodes to an empty, non-nil
// slice.
func Decompress(t Type, data []byte) ([]byte, error) {
	switch t {
	case NoCompression:
		return data, nil
	case SnappyCompression:
		return snappy.Decode([]byte{}, data)
	case ZstdCompression:
		return decompressZstd(data)
	default:
		return nil, fmt.Errorf("compression: unsupported type %s", t)
	}
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("compression: zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("compression: zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, []byte{})
}
