package keydex

import "cmp"

// Comparer is a total order over keys. It must be consistent with equality:
// zero exactly when the two keys are equal.
type Comparer[K any] func(a, b K) int

// NaturalOrder returns the comparer for naturally ordered key types.
func NaturalOrder[K cmp.Ordered]() Comparer[K] {
	return func(a, b K) int { return cmp.Compare(a, b) }
}

// Reverse inverts a comparer.
func Reverse[K any](c Comparer[K]) Comparer[K] {
	return func(a, b K) int { return -c(a, b) }
}

// Lookup selects the neighbor-search policy applied when the exact key is
// absent or its value is unavailable.
type Lookup int

const (
	// LookupExact requires the key itself, at a valid address.
	LookupExact Lookup = iota

	// LookupNearestGreater resolves to the smallest key >= the query with a
	// valid address.
	LookupNearestGreater

	// LookupNearestSmaller resolves to the largest key <= the query with a
	// valid address.
	LookupNearestSmaller
)

// String returns a string representation of the Lookup mode.
func (l Lookup) String() string {
	switch l {
	case LookupExact:
		return "Exact"
	case LookupNearestGreater:
		return "NearestGreater"
	case LookupNearestSmaller:
		return "NearestSmaller"
	default:
		return "Unknown"
	}
}

// Boundary states whether a supplied range or window boundary participates.
type Boundary int

const (
	// BoundaryInclusive keeps the boundary element (ranges) or keeps
	// undersized edge segments truncated (aggregation).
	BoundaryInclusive Boundary = iota

	// BoundaryExclusive drops the boundary element (ranges) or drops
	// undersized edge segments (aggregation).
	BoundaryExclusive
)

// String returns a string representation of the Boundary.
func (b Boundary) String() string {
	switch b {
	case BoundaryInclusive:
		return "Inclusive"
	case BoundaryExclusive:
		return "Exclusive"
	default:
		return "Unknown"
	}
}

// Bound is one optional end of a range query.
type Bound[K any] struct {
	Key      K
	Boundary Boundary
}

// OrderHint tells Create whether the key sequence is already ordered.
type OrderHint int

const (
	// OrderInfer checks monotonicity under the comparer.
	OrderInfer OrderHint = iota

	// OrderAssumeOrdered trusts the caller that keys arrive sorted.
	OrderAssumeOrdered

	// OrderAssumeUnordered skips the check and marks the index unordered.
	OrderAssumeUnordered
)

// Direction anchors resampling chunks.
type Direction int

const (
	// DirectionForward anchors a chunk to its first included key.
	DirectionForward Direction = iota

	// DirectionBackward anchors a chunk to its last included key.
	DirectionBackward
)

// SegmentKind tags a window or chunk produced by Aggregate.
type SegmentKind int

const (
	// SegmentComplete is a segment of the requested size.
	SegmentComplete SegmentKind = iota

	// SegmentPartial is an undersized edge segment kept by an inclusive
	// boundary.
	SegmentPartial
)
