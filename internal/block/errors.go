package block

import "github.com/lsmtree/lsmkv/internal/errkind"

// ErrBadBlock is returned when a block's trailing structure (footer, offset
// section) is inconsistent with the buffer's length. It is the same
// sentinel value as the root package's ErrCorruption.
var ErrBadBlock = errkind.Corruption
