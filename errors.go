package lsmkv

// errors.go re-exports the engine's error sentinels for public use.
//
// Reference (teacher idiom): aalhour-rockyardkv/db/db.go's top-level
// sentinel var block, upgraded to github.com/cockroachdb/errors so callers
// can both match with errors.Is and get wrapped context (file paths, key
// lengths) via errors.Wrapf. The sentinels themselves live in
// internal/errkind so every internal layer can return and match the exact
// same values without importing the root package.

import "github.com/lsmtree/lsmkv/internal/errkind"

var (
	// ErrInvalidArgument is returned for programmer errors: an empty key in
	// Get/Put/Delete, or an empty value in Put.
	ErrInvalidArgument = errkind.InvalidArgument

	// ErrCorruption is returned when a sorted table or block fails to decode:
	// a missing footer, an inconsistent block index, or a truncated block.
	ErrCorruption = errkind.Corruption

	// ErrIO is returned when a file read or write fails.
	ErrIO = errkind.IO

	// ErrOutOfRange is returned by ReadBlock when the requested block index
	// is not within [0, numBlocks).
	ErrOutOfRange = errkind.OutOfRange

	// ErrClosed is returned by any Engine operation invoked after Close.
	ErrClosed = errkind.Closed

	// ErrKeyNotFound is not returned by any Engine operation: Engine.Get
	// reports a missing key as (nil, false, nil).
	ErrKeyNotFound = errkind.KeyNotFound
)
