// Package errkind holds the engine's shared error sentinels. It exists as
// its own leaf package (no internal dependencies) so that every layer —
// block, sstable, cache, memtable, and the root engine package — can return
// and match the same sentinel values via errors.Is without creating an
// import cycle back to the root package.
package errkind

import "github.com/cockroachdb/errors"

var (
	// InvalidArgument marks programmer errors: an empty key in Get/Put/
	// Delete, or an empty value in Put.
	InvalidArgument = errors.New("lsmkv: invalid argument")

	// Corruption marks a sorted table or block that fails to decode: a
	// missing footer, an inconsistent block index, or a truncated block.
	Corruption = errors.New("lsmkv: corruption")

	// IO marks a file read or write failure.
	IO = errors.New("lsmkv: I/O error")

	// OutOfRange marks ReadBlock(i) called with i outside [0, numBlocks).
	OutOfRange = errors.New("lsmkv: index out of range")

	// Closed marks any operation attempted after Engine.Close.
	Closed = errors.New("lsmkv: engine is closed")

	// KeyNotFound is not returned by any layer: Engine.Get reports a
	// missing key as (nil, false, nil).
	KeyNotFound = errors.New("lsmkv: key not found")
)
