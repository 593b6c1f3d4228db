package keydex

import (
	"slices"
	"sort"

	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

// Resample partitions an ordered index into chunks anchored to the ascending
// anchor keys. DirectionForward labels a chunk by its first included anchor
// and attaches keys before the first anchor to the first chunk;
// DirectionBackward labels by the last included anchor and attaches keys after
// the last anchor to the last chunk. Every anchor yields a chunk, possibly
// empty.
//
// keySelector maps (anchor, chunk) to the output key; valueSelector produces
// the optional value per chunk. Anchors must be ascending under the comparer;
// that is a caller contract.
func Resample[K, K2 comparable, V any](
	b Builder[K2],
	ix Index[K],
	anchors []K,
	dir Direction,
	plan *vector.Construction,
	valueSelector func(key K2, chunk SeriesConstruction[K]) model.Optional[V],
	keySelector func(anchor K, chunk SeriesConstruction[K]) K2,
) (Index[K2], []model.Optional[V], error) {
	if !ix.IsOrdered() {
		return nil, nil, ErrUnorderedIndex
	}
	if len(anchors) == 0 {
		empty := b.Create(slices.Values([]K2(nil)), OrderAssumeUnordered)
		return empty, nil, nil
	}

	keys, addrs := collect(ix)
	c := ix.Comparer()
	n := len(keys)

	// Cut points between consecutive chunks, one per anchor boundary.
	ends := make([]int, len(anchors))
	switch dir {
	case DirectionForward:
		// Chunk j ends right before the first key >= anchors[j+1].
		for j := 0; j < len(anchors)-1; j++ {
			next := anchors[j+1]
			ends[j] = sort.Search(n, func(i int) bool { return c(keys[i], next) >= 0 })
		}
		ends[len(anchors)-1] = n
	default: // DirectionBackward
		// Chunk j ends right after the last key <= anchors[j].
		for j := 0; j < len(anchors)-1; j++ {
			a := anchors[j]
			ends[j] = sort.Search(n, func(i int) bool { return c(keys[i], a) > 0 })
		}
		ends[len(anchors)-1] = n
	}

	outKeys := make([]K2, 0, len(anchors))
	outValues := make([]model.Optional[V], 0, len(anchors))
	start := 0
	for j, a := range anchors {
		end := ends[j]
		if end < start {
			end = start
		}
		chunk := spanConstruction(ix, keys, addrs, start, end, plan)
		k2 := keySelector(a, chunk)
		outKeys = append(outKeys, k2)
		outValues = append(outValues, valueSelector(k2, chunk))
		start = end
	}

	return b.Create(slices.Values(outKeys), OrderInfer), outValues, nil
}
