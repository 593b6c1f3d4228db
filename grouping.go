package keydex

import (
	"iter"
	"slices"

	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

// Group is one label's slice of a grouped series.
type Group[L comparable, K comparable] struct {
	Label  L
	Series SeriesConstruction[K]
}

// GroupWith groups the index's keys by a label assigned per address in
// Mappings order. The result enumerates (label, series) pairs ordered by the
// first appearance of each label; the sequence is lazy and restartable, each
// restart re-deriving the per-group constructions.
//
// A labels slice not covering every address is a contract violation reported
// as ErrLabelCount.
func GroupWith[L comparable, K comparable](
	ix Index[K],
	labels []L,
	plan *vector.Construction,
) (iter.Seq[Group[L, K]], error) {
	if len(labels) != ix.KeyCount() {
		return nil, ErrLabelCount
	}

	keys, addrs := collect(ix)

	order := make([]L, 0)
	byLabel := make(map[L][]int)
	for p, l := range labels {
		if _, seen := byLabel[l]; !seen {
			order = append(order, l)
		}
		byLabel[l] = append(byLabel[l], p)
	}

	seq := func(yield func(Group[L, K]) bool) {
		for _, l := range order {
			g := Group[L, K]{
				Label:  l,
				Series: positionsConstruction(ix, keys, addrs, byLabel[l], plan),
			}
			if !yield(g) {
				return
			}
		}
	}
	return seq, nil
}

// GroupBy groups keys by an optional grouping key computed per key; keys whose
// grouping key is missing are dropped. The new index holds the distinct
// grouping keys in first-appearance order; valueSelector produces one optional
// value per group, returned in the same order.
func GroupBy[K, K2 comparable, V any](
	b Builder[K2],
	ix Index[K],
	keySelector func(K) (K2, bool),
	plan *vector.Construction,
	valueSelector func(key K2, group SeriesConstruction[K]) model.Optional[V],
) (Index[K2], []model.Optional[V]) {
	keys, addrs := collect(ix)

	order := make([]K2, 0)
	byKey := make(map[K2][]int)
	for p, k := range keys {
		k2, ok := keySelector(k)
		if !ok {
			continue
		}
		if _, seen := byKey[k2]; !seen {
			order = append(order, k2)
		}
		byKey[k2] = append(byKey[k2], p)
	}

	values := make([]model.Optional[V], 0, len(order))
	for _, k2 := range order {
		group := positionsConstruction(ix, keys, addrs, byKey[k2], plan)
		values = append(values, valueSelector(k2, group))
	}

	return b.Create(slices.Values(order), OrderInfer), values
}
