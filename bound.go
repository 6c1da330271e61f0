package lsmkv

// bound.go re-exports scan range bounds for public use. The type itself
// lives in internal/bound so that internal/iterator can enforce upper
// bounds without importing this root package (see internal/errkind for the
// same cycle-avoidance shape applied to error sentinels).

import "github.com/lsmtree/lsmkv/internal/bound"

// BoundKind identifies which kind of Bound a value represents.
type BoundKind = bound.Kind

const (
	// Unbounded means the scan has no limit on this side.
	Unbounded = bound.Unbounded
	// IncludedBound means the bound key itself is part of the scan.
	IncludedBound = bound.Included
	// ExcludedBound means the scan stops strictly before/after the bound key.
	ExcludedBound = bound.Excluded
)

// Bound is one endpoint of a Scan range.
type Bound = bound.Bound

// Included returns a Bound that includes key.
func Included(key []byte) Bound {
	return bound.IncludedBound(key)
}

// Excluded returns a Bound that excludes key.
func Excluded(key []byte) Bound {
	return bound.ExcludedBound(key)
}

// UnboundedBound returns a Bound with no limit.
func UnboundedBound() Bound {
	return bound.UnboundedBound()
}
