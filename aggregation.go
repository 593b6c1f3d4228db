package keydex

// AggregationKind discriminates the Aggregation union.
type AggregationKind int

const (
	// AggregationWindowSize produces fixed-size sliding windows.
	AggregationWindowSize AggregationKind = iota

	// AggregationChunkSize produces fixed-size disjoint chunks.
	AggregationChunkSize

	// AggregationWindowWhile produces one window per start key, extended
	// while the predicate holds.
	AggregationWindowWhile

	// AggregationChunkWhile produces disjoint chunks, each extended while
	// the predicate holds.
	AggregationChunkWhile
)

// Aggregation describes how Aggregate partitions an ordered index into
// segments. Values are built with the WindowSize, ChunkSize, WindowWhile and
// ChunkWhile constructors.
type Aggregation[K any] struct {
	kind     AggregationKind
	size     int
	boundary Boundary
	while    func(first, candidate K) bool
}

// WindowSize slides windows of the given size over the keys. boundary decides
// the fate of undersized trailing windows: BoundaryExclusive drops them,
// BoundaryInclusive keeps them truncated.
func WindowSize[K any](size int, boundary Boundary) Aggregation[K] {
	return Aggregation[K]{kind: AggregationWindowSize, size: size, boundary: boundary}
}

// ChunkSize cuts the keys into disjoint chunks of the given size. boundary
// decides the fate of an undersized trailing chunk as in WindowSize.
func ChunkSize[K any](size int, boundary Boundary) Aggregation[K] {
	return Aggregation[K]{kind: AggregationChunkSize, size: size, boundary: boundary}
}

// WindowWhile starts a window at every key and extends it while
// pred(firstKey, candidateKey) holds, closing the instant it fails.
// Windows may overlap.
func WindowWhile[K any](pred func(first, candidate K) bool) Aggregation[K] {
	return Aggregation[K]{kind: AggregationWindowWhile, while: pred}
}

// ChunkWhile cuts disjoint chunks: each starts at the first unconsumed key
// and extends while pred(firstKey, candidateKey) holds.
func ChunkWhile[K any](pred func(first, candidate K) bool) Aggregation[K] {
	return Aggregation[K]{kind: AggregationChunkWhile, while: pred}
}

// Kind returns the discriminator.
func (a Aggregation[K]) Kind() AggregationKind { return a.kind }
