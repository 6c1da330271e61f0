package lsmkv

import (
	"github.com/lsmtree/lsmkv/internal/compression"
	"github.com/lsmtree/lsmkv/internal/logging"
)

// CompressionType is an alias for the value compression codec.
type CompressionType = compression.Type

// Compression type constants.
const (
	NoCompression     = compression.NoCompression
	SnappyCompression = compression.SnappyCompression
	ZstdCompression   = compression.ZstdCompression
)

// Options contains all configuration for opening an Engine.
type Options struct {
	// DataDir is the directory sorted tables are written to and opened
	// from. Open creates it if it does not exist.
	DataDir string

	// BlockSize is the target size, in bytes, of a single data block within
	// a sorted table. Default: 4096.
	BlockSize int

	// CacheCapacity is the byte budget for the block cache shared by every
	// opened sorted table. 0 disables caching.
	// Default: 8MB.
	CacheCapacity uint64

	// Compression selects the codec applied to values at the Put/Get
	// boundary. Default: NoCompression.
	Compression CompressionType

	// Comparator is stored in the options (BytewiseComparator if nil) but
	// is not consulted by the engine: memtables, blocks, and tables always
	// order keys bytewise.
	Comparator Comparator

	// Logger receives structured log lines for flush activity and table
	// read failures. If nil, logging.Discard is used.
	Logger Logger

	// MemtableSizeThreshold is the approximate byte size at which the
	// engine should be flushed via Sync. The engine itself never triggers
	// a flush automatically; this value exists for callers that want to
	// poll ApproximateMemtableSize against it.
	// Default: 4MB.
	MemtableSizeThreshold int
}

// Logger is an alias for the logging.Logger interface, letting callers
// supply their own implementation without importing an internal package.
type Logger = logging.Logger

// DefaultOptions returns the default configuration for a database rooted at
// dataDir.
func DefaultOptions(dataDir string) Options {
	return Options{
		DataDir:               dataDir,
		BlockSize:             4096,
		CacheCapacity:         8 << 20,
		Compression:           NoCompression,
		Comparator:            BytewiseComparator,
		Logger:                logging.Discard,
		MemtableSizeThreshold: 4 << 20,
	}
}

func (o Options) withDefaults() Options {
	if o.BlockSize <= 0 {
		o.BlockSize = 4096
	}
	if o.Comparator == nil {
		o.Comparator = BytewiseComparator
	}
	if o.Logger == nil {
		o.Logger = logging.Discard
	}
	if o.MemtableSizeThreshold <= 0 {
		o.MemtableSizeThreshold = 4 << 20
	}
	return o
}
