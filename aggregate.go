package keydex

import (
	"slices"

	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

type span struct {
	start int
	end   int // exclusive
	kind  SegmentKind
}

// Aggregate partitions an ordered index into an ordered sequence of segments
// and derives one output row per segment.
//
// For WindowSize and ChunkSize a BoundaryExclusive boundary drops undersized
// edge segments while BoundaryInclusive keeps them truncated (SegmentPartial).
// For the While variants a segment starts at a key and extends while
// pred(firstKey, candidateKey) holds, closing the instant it fails; Window
// segments may overlap (one per start key), Chunk segments are disjoint.
//
// selector receives each segment's kind and (index, plan) pair and returns
// the segment's new key and optional value. Outputs preserve segment order.
func Aggregate[K, K2 comparable, V any](
	b Builder[K2],
	ix Index[K],
	agg Aggregation[K],
	plan *vector.Construction,
	selector func(kind SegmentKind, segment SeriesConstruction[K]) (K2, model.Optional[V]),
) (Index[K2], []model.Optional[V], error) {
	if !ix.IsOrdered() {
		return nil, nil, ErrUnorderedIndex
	}

	keys, addrs := collect(ix)

	spans, err := segment(agg, keys)
	if err != nil {
		return nil, nil, err
	}

	outKeys := make([]K2, 0, len(spans))
	outValues := make([]model.Optional[V], 0, len(spans))
	for _, s := range spans {
		sc := spanConstruction(ix, keys, addrs, s.start, s.end, plan)
		k2, v := selector(s.kind, sc)
		outKeys = append(outKeys, k2)
		outValues = append(outValues, v)
	}

	return b.Create(slices.Values(outKeys), OrderInfer), outValues, nil
}

func segment[K any](agg Aggregation[K], keys []K) ([]span, error) {
	n := len(keys)

	switch agg.kind {
	case AggregationWindowSize:
		if agg.size <= 0 {
			return nil, ErrInvalidSegmentSize
		}
		var spans []span
		for start := 0; start < n; start++ {
			end := min(start+agg.size, n)
			if end-start < agg.size {
				if agg.boundary == BoundaryExclusive {
					break
				}
				spans = append(spans, span{start, end, SegmentPartial})
				continue
			}
			spans = append(spans, span{start, end, SegmentComplete})
		}
		return spans, nil

	case AggregationChunkSize:
		if agg.size <= 0 {
			return nil, ErrInvalidSegmentSize
		}
		var spans []span
		for start := 0; start < n; start += agg.size {
			end := min(start+agg.size, n)
			if end-start < agg.size {
				if agg.boundary == BoundaryExclusive {
					break
				}
				spans = append(spans, span{start, end, SegmentPartial})
				continue
			}
			spans = append(spans, span{start, end, SegmentComplete})
		}
		return spans, nil

	case AggregationWindowWhile:
		var spans []span
		for start := 0; start < n; start++ {
			end := start + 1
			for end < n && agg.while(keys[start], keys[end]) {
				end++
			}
			spans = append(spans, span{start, end, SegmentComplete})
		}
		return spans, nil

	case AggregationChunkWhile:
		var spans []span
		start := 0
		for start < n {
			end := start + 1
			for end < n && agg.while(keys[start], keys[end]) {
				end++
			}
			spans = append(spans, span{start, end, SegmentComplete})
			start = end
		}
		return spans, nil

	default:
		return nil, nil
	}
}
