package keydex

import (
	"slices"

	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

// collect snapshots an index's mappings in enumeration order.
func collect[K comparable](ix Index[K]) ([]K, []model.Address) {
	keys := make([]K, 0, ix.KeyCount())
	addrs := make([]model.Address, 0, ix.KeyCount())
	for k, a := range ix.Mappings() {
		keys = append(keys, k)
		addrs = append(addrs, a)
	}
	return keys, addrs
}

// orderHintFor preserves the operand's order property on derived sub-indices.
func orderHintFor[K comparable](ix Index[K]) OrderHint {
	if ix.IsOrdered() {
		return OrderAssumeOrdered
	}
	return OrderAssumeUnordered
}

// positionsConstruction derives the (index, plan) pair for a subset of an
// index, given as positions into the enumeration-order snapshot. The cheapest
// faithful plan shape is chosen: a contiguous address run becomes a GetRange,
// an ascending run becomes a Select, anything else a Relocate gather.
func positionsConstruction[K comparable](
	ix Index[K],
	keys []K,
	addrs []model.Address,
	positions []int,
	plan *vector.Construction,
) SeriesConstruction[K] {
	if len(positions) == 0 {
		empty := ix.Builder().Create(slices.Values([]K(nil)), orderHintFor(ix))
		return SeriesConstruction[K]{Index: empty, Plan: vector.Empty(0)}
	}

	subKeys := make([]K, len(positions))
	subAddrs := make([]model.Address, len(positions))
	for i, p := range positions {
		subKeys[i] = keys[p]
		subAddrs[i] = addrs[p]
	}

	sub := ix.Builder().Create(slices.Values(subKeys), orderHintFor(ix))

	contiguous := true
	ascending := true
	for i := 1; i < len(subAddrs); i++ {
		if subAddrs[i] != subAddrs[i-1]+1 {
			contiguous = false
		}
		if subAddrs[i] <= subAddrs[i-1] {
			ascending = false
		}
	}

	switch {
	case contiguous:
		rng := model.AddressRange{Lo: subAddrs[0], Hi: subAddrs[len(subAddrs)-1]}
		return SeriesConstruction[K]{Index: sub, Plan: vector.GetRange(plan, rng)}
	case ascending:
		set := vector.NewAddressSet()
		for _, a := range subAddrs {
			set.Add(a)
		}
		return SeriesConstruction[K]{Index: sub, Plan: vector.Select(plan, set)}
	default:
		moves := make([]vector.Move, len(subAddrs))
		for i, a := range subAddrs {
			moves[i] = vector.Move{New: model.Address(i), Old: a}
		}
		return SeriesConstruction[K]{Index: sub, Plan: vector.Relocate(plan, len(moves), moves, nil)}
	}
}

// spanConstruction is positionsConstruction for the half-open run [start, end).
func spanConstruction[K comparable](
	ix Index[K],
	keys []K,
	addrs []model.Address,
	start, end int,
	plan *vector.Construction,
) SeriesConstruction[K] {
	positions := make([]int, end-start)
	for i := range positions {
		positions[i] = start + i
	}
	return positionsConstruction(ix, keys, addrs, positions, plan)
}
