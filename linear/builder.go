package linear

import (
	"iter"
	"sort"

	"github.com/rallenh/keydex"
	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

// Builder implements keydex.Builder for the linear representation.
// It is stateless apart from the comparer and freely reentrant.
type Builder[K comparable] struct {
	cmp keydex.Comparer[K]
}

// NewBuilder creates a builder deriving linear indices under cmp.
// A nil comparer yields permanently unordered indices.
func NewBuilder[K comparable](cmp keydex.Comparer[K]) *Builder[K] {
	return &Builder[K]{cmp: cmp}
}

// Create builds an index from a key sequence.
func (b *Builder[K]) Create(keys iter.Seq[K], hint keydex.OrderHint) keydex.Index[K] {
	return New(keys, b.cmp, hint)
}

// Project forces ix into the linear representation, preserving keys and order.
func (b *Builder[K]) Project(ix keydex.Index[K]) keydex.Index[K] {
	return b.force(ix)
}

func (b *Builder[K]) force(ix keydex.Index[K]) *Index[K] {
	if lin, ok := ix.(*Index[K]); ok {
		return lin
	}
	cmp := ix.Comparer()
	if cmp == nil {
		cmp = b.cmp
	}
	hint := keydex.OrderAssumeUnordered
	if ix.IsOrdered() {
		hint = keydex.OrderAssumeOrdered
	}
	return New(ix.Keys(), cmp, hint)
}

// GetRange restricts an ordered series to the sub-range between two optional
// bounds.
func (b *Builder[K]) GetRange(sc keydex.SeriesConstruction[K], lower, upper *keydex.Bound[K]) (keydex.SeriesConstruction[K], error) {
	ix := b.force(sc.Index)
	if !ix.ordered {
		return keydex.SeriesConstruction[K]{}, keydex.ErrUnorderedIndex
	}
	n := len(ix.keys)
	if n == 0 {
		return keydex.SeriesConstruction[K]{}, keydex.ErrEmptyRange
	}

	lo := 0
	if lower != nil {
		if lower.Boundary == keydex.BoundaryInclusive {
			lo = sort.Search(n, func(i int) bool { return ix.cmp(ix.keys[i], lower.Key) >= 0 })
		} else {
			lo = sort.Search(n, func(i int) bool { return ix.cmp(ix.keys[i], lower.Key) > 0 })
		}
	}
	hi := n - 1
	if upper != nil {
		if upper.Boundary == keydex.BoundaryInclusive {
			hi = sort.Search(n, func(i int) bool { return ix.cmp(ix.keys[i], upper.Key) > 0 }) - 1
		} else {
			hi = sort.Search(n, func(i int) bool { return ix.cmp(ix.keys[i], upper.Key) >= 0 }) - 1
		}
	}

	if lo > hi {
		return keydex.SeriesConstruction[K]{
			Index: fromKeys[K](nil, ix.cmp, true),
			Plan:  vector.Empty(0),
		}, nil
	}

	sub := make([]K, hi-lo+1)
	copy(sub, ix.keys[lo:hi+1])
	return keydex.SeriesConstruction[K]{
		Index: fromKeys(sub, ix.cmp, true),
		Plan:  vector.GetRange(sc.Plan, model.AddressRange{Lo: model.Address(lo), Hi: model.Address(hi)}),
	}, nil
}

// Union derives the key-set union with one relocation plan per side.
func (b *Builder[K]) Union(left, right keydex.SeriesConstruction[K]) (keydex.Index[K], *vector.Construction, *vector.Construction) {
	l := b.force(left.Index)
	r := b.force(right.Index)

	merged := l.ordered && r.ordered && b.cmp != nil

	var (
		keys   []K
		movesL []vector.Move
		movesR []vector.Move
	)
	missL := vector.NewAddressSet()
	missR := vector.NewAddressSet()

	place := func(k K, la, ra model.Address) {
		pos := model.Address(len(keys))
		keys = append(keys, k)
		if la >= 0 {
			movesL = append(movesL, vector.Move{New: pos, Old: la})
		} else {
			missL.Add(pos)
		}
		if ra >= 0 {
			movesR = append(movesR, vector.Move{New: pos, Old: ra})
		} else {
			missR.Add(pos)
		}
	}

	if merged {
		i, j := 0, 0
		for i < len(l.keys) && j < len(r.keys) {
			switch d := b.cmp(l.keys[i], r.keys[j]); {
			case d < 0:
				place(l.keys[i], model.Address(i), model.NoAddress)
				i++
			case d > 0:
				place(r.keys[j], model.NoAddress, model.Address(j))
				j++
			default:
				place(l.keys[i], model.Address(i), model.Address(j))
				i++
				j++
			}
		}
		for ; i < len(l.keys); i++ {
			place(l.keys[i], model.Address(i), model.NoAddress)
		}
		for ; j < len(r.keys); j++ {
			place(r.keys[j], model.NoAddress, model.Address(j))
		}
	} else {
		for i, k := range l.keys {
			ra := model.NoAddress
			if a, ok := r.byKey[k]; ok {
				ra = a
			}
			place(k, model.Address(i), ra)
		}
		for j, k := range r.keys {
			if _, shared := l.byKey[k]; shared {
				continue
			}
			place(k, model.NoAddress, model.Address(j))
		}
	}

	n := len(keys)
	return fromKeys(keys, b.cmp, merged),
		vector.Relocate(left.Plan, n, movesL, missL),
		vector.Relocate(right.Plan, n, movesR, missR)
}

// Intersect derives the key set present in both operands.
func (b *Builder[K]) Intersect(left, right keydex.SeriesConstruction[K]) (keydex.Index[K], *vector.Construction, *vector.Construction) {
	l := b.force(left.Index)
	r := b.force(right.Index)

	// Order comes from an ordered operand; left breaks the tie.
	lead, other := l, r
	swapped := false
	if !l.ordered && r.ordered {
		lead, other = r, l
		swapped = true
	}

	var (
		keys   []K
		movesA []vector.Move
		movesB []vector.Move
	)
	for i, k := range lead.keys {
		oa, ok := other.byKey[k]
		if !ok {
			continue
		}
		pos := model.Address(len(keys))
		keys = append(keys, k)
		movesA = append(movesA, vector.Move{New: pos, Old: model.Address(i)})
		movesB = append(movesB, vector.Move{New: pos, Old: oa})
	}

	n := len(keys)
	movesLeft, movesRight := movesA, movesB
	if swapped {
		movesLeft, movesRight = movesB, movesA
	}
	return fromKeys(keys, b.cmp, lead.ordered),
		vector.Relocate(left.Plan, n, movesLeft, nil),
		vector.Relocate(right.Plan, n, movesRight, nil)
}

// Append concatenates two series, merging to preserve global order when both
// operands are ordered. Key conflicts are recorded in a Combine plan and
// resolved by transform at materialization time.
func (b *Builder[K]) Append(left, right keydex.SeriesConstruction[K], transform vector.ValueTransform) (keydex.Index[K], *vector.Construction) {
	l := b.force(left.Index)
	r := b.force(right.Index)

	merged := l.ordered && r.ordered && b.cmp != nil

	shared := false
	for _, k := range r.keys {
		if _, ok := l.byKey[k]; ok {
			shared = true
			break
		}
	}

	// Pure concatenation: no conflicts and no interleaving needed.
	if !shared {
		concat := !merged
		if merged {
			concat = len(l.keys) == 0 || len(r.keys) == 0 ||
				b.cmp(l.keys[len(l.keys)-1], r.keys[0]) < 0
		}
		if concat {
			keys := make([]K, 0, len(l.keys)+len(r.keys))
			keys = append(keys, l.keys...)
			keys = append(keys, r.keys...)
			return fromKeys(keys, b.cmp, merged), vector.Append(left.Plan, right.Plan)
		}
	}

	// General path: interleaved or conflicting keys become a Combine of two
	// full-length relocations.
	ux, lplan, rplan := b.Union(left, right)
	n := ux.KeyCount()
	return ux, vector.Combine(n, lplan, rplan, transform)
}

// Reindex derives the gather plan aligning oldIndex-based data to newIndex.
func (b *Builder[K]) Reindex(oldIndex, newIndex keydex.Index[K], mode keydex.Lookup, plan *vector.Construction, isValid func(model.Address) bool) *vector.Construction {
	n := newIndex.KeyCount()
	moves := make([]vector.Move, 0, n)
	missing := vector.NewAddressSet()

	pos := model.Address(0)
	for k := range newIndex.Keys() {
		if _, old, ok := oldIndex.Lookup(k, mode, isValid); ok {
			moves = append(moves, vector.Move{New: pos, Old: old})
		} else {
			missing.Add(pos)
		}
		pos++
	}
	return vector.Relocate(plan, n, moves, missing)
}

// DropItem removes one key; it is a no-op when the key is absent.
func (b *Builder[K]) DropItem(sc keydex.SeriesConstruction[K], key K) keydex.SeriesConstruction[K] {
	ix := b.force(sc.Index)
	a, ok := ix.byKey[key]
	if !ok {
		return sc
	}

	keys := make([]K, 0, len(ix.keys)-1)
	keys = append(keys, ix.keys[:a]...)
	keys = append(keys, ix.keys[a+1:]...)
	return keydex.SeriesConstruction[K]{
		Index: fromKeys(keys, ix.cmp, ix.ordered),
		Plan:  vector.DropRange(sc.Plan, model.AddressRange{Lo: a, Hi: a}),
	}
}

// LookupLevel keeps the keys matching a partial-key predicate, preserving
// relative order.
func (b *Builder[K]) LookupLevel(sc keydex.SeriesConstruction[K], matches func(K) bool) keydex.SeriesConstruction[K] {
	ix := b.force(sc.Index)

	var keys []K
	set := vector.NewAddressSet()
	for i, k := range ix.keys {
		if !matches(k) {
			continue
		}
		keys = append(keys, k)
		set.Add(model.Address(i))
	}

	return keydex.SeriesConstruction[K]{
		Index: fromKeys(keys, ix.cmp, ix.ordered),
		Plan:  vector.Select(sc.Plan, set),
	}
}

// OrderIndex sorts the keys together with the permutation plan. An already
// ordered series comes back unchanged.
func (b *Builder[K]) OrderIndex(sc keydex.SeriesConstruction[K]) keydex.SeriesConstruction[K] {
	ix := b.force(sc.Index)
	if ix.ordered || ix.cmp == nil {
		return keydex.SeriesConstruction[K]{Index: ix, Plan: sc.Plan}
	}

	perm := make([]int, len(ix.keys))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return ix.cmp(ix.keys[perm[a]], ix.keys[perm[b]]) < 0
	})

	keys := make([]K, len(perm))
	moves := make([]vector.Move, len(perm))
	for newPos, oldPos := range perm {
		keys[newPos] = ix.keys[oldPos]
		moves[newPos] = vector.Move{New: model.Address(newPos), Old: model.Address(oldPos)}
	}

	return keydex.SeriesConstruction[K]{
		Index: fromKeys(keys, ix.cmp, true),
		Plan:  vector.Relocate(sc.Plan, len(moves), moves, nil),
	}
}

// AsyncMaterialize resolves immediately: the linear representation is eager.
func (b *Builder[K]) AsyncMaterialize(sc keydex.SeriesConstruction[K]) *keydex.Deferred[keydex.SeriesConstruction[K]] {
	return keydex.Resolved(keydex.SeriesConstruction[K]{
		Index: b.Project(sc.Index),
		Plan:  sc.Plan,
	})
}
