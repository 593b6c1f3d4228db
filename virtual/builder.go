package virtual

import (
	"context"
	"iter"

	"github.com/rallenh/keydex"
	"github.com/rallenh/keydex/linear"
	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

// Builder derives virtual indices. The address-space algebra is the linear
// one; this builder's job is representation bookkeeping: operands force
// themselves through their own accessors when an operation touches keys, and
// every derived index comes back pre-resolved in the virtual family, so
// chained derivations never re-fetch a source.
type Builder[K comparable] struct {
	cmp   keydex.Comparer[K]
	inner *linear.Builder[K]
}

// NewBuilder creates a builder using cmp as the key order.
func NewBuilder[K comparable](cmp keydex.Comparer[K]) *Builder[K] {
	return &Builder[K]{cmp: cmp, inner: linear.NewBuilder(cmp)}
}

// rewrap lifts a derived index into the virtual family.
func (b *Builder[K]) rewrap(ix keydex.Index[K]) keydex.Index[K] {
	switch v := ix.(type) {
	case *Index[K]:
		return v
	case *linear.Index[K]:
		return wrap(v)
	default:
		return wrap(b.forceLinear(ix))
	}
}

func (b *Builder[K]) forceLinear(ix keydex.Index[K]) *linear.Index[K] {
	if v, ok := ix.(*Index[K]); ok {
		return v.force()
	}
	if li, ok := ix.(*linear.Index[K]); ok {
		return li
	}
	li, _ := b.inner.Project(ix).(*linear.Index[K])
	return li
}

func (b *Builder[K]) rewrapSC(sc keydex.SeriesConstruction[K]) keydex.SeriesConstruction[K] {
	return keydex.SeriesConstruction[K]{Index: b.rewrap(sc.Index), Plan: sc.Plan}
}

// Create builds a pre-resolved virtual index from a key sequence.
func (b *Builder[K]) Create(keys iter.Seq[K], hint keydex.OrderHint) keydex.Index[K] {
	return b.rewrap(b.inner.Create(keys, hint))
}

// Project forces ix into an evaluated virtual index.
func (b *Builder[K]) Project(ix keydex.Index[K]) keydex.Index[K] {
	if v, ok := ix.(*Index[K]); ok && !v.IsResolved() {
		v.force()
		return v
	}
	return b.rewrap(ix)
}

// GetRange restricts an ordered series to a sub-range.
func (b *Builder[K]) GetRange(sc keydex.SeriesConstruction[K], lower, upper *keydex.Bound[K]) (keydex.SeriesConstruction[K], error) {
	out, err := b.inner.GetRange(sc, lower, upper)
	if err != nil {
		return keydex.SeriesConstruction[K]{}, err
	}
	return b.rewrapSC(out), nil
}

// Union derives the key-set union.
func (b *Builder[K]) Union(left, right keydex.SeriesConstruction[K]) (keydex.Index[K], *vector.Construction, *vector.Construction) {
	ix, lp, rp := b.inner.Union(left, right)
	return b.rewrap(ix), lp, rp
}

// Intersect derives the shared key set.
func (b *Builder[K]) Intersect(left, right keydex.SeriesConstruction[K]) (keydex.Index[K], *vector.Construction, *vector.Construction) {
	ix, lp, rp := b.inner.Intersect(left, right)
	return b.rewrap(ix), lp, rp
}

// Append concatenates two series.
func (b *Builder[K]) Append(left, right keydex.SeriesConstruction[K], transform vector.ValueTransform) (keydex.Index[K], *vector.Construction) {
	ix, plan := b.inner.Append(left, right, transform)
	return b.rewrap(ix), plan
}

// Reindex aligns oldIndex's addresses to newIndex's keys.
func (b *Builder[K]) Reindex(oldIndex, newIndex keydex.Index[K], mode keydex.Lookup, plan *vector.Construction, isValid func(model.Address) bool) *vector.Construction {
	return b.inner.Reindex(oldIndex, newIndex, mode, plan, isValid)
}

// DropItem removes one key and its address.
func (b *Builder[K]) DropItem(sc keydex.SeriesConstruction[K], key K) keydex.SeriesConstruction[K] {
	return b.rewrapSC(b.inner.DropItem(sc, key))
}

// LookupLevel keeps the keys matching a partial-key predicate.
func (b *Builder[K]) LookupLevel(sc keydex.SeriesConstruction[K], matches func(K) bool) keydex.SeriesConstruction[K] {
	return b.rewrapSC(b.inner.LookupLevel(sc, matches))
}

// OrderIndex sorts the series by the comparer.
func (b *Builder[K]) OrderIndex(sc keydex.SeriesConstruction[K]) keydex.SeriesConstruction[K] {
	return b.rewrapSC(b.inner.OrderIndex(sc))
}

// AsyncMaterialize resolves the index with the awaiter's context, which is
// where a remote source's load errors and cancellation surface.
func (b *Builder[K]) AsyncMaterialize(sc keydex.SeriesConstruction[K]) *keydex.Deferred[keydex.SeriesConstruction[K]] {
	v, ok := sc.Index.(*Index[K])
	if !ok || v.IsResolved() {
		return keydex.Resolved(b.rewrapSC(sc))
	}
	return keydex.NewDeferred(func(ctx context.Context) (keydex.SeriesConstruction[K], error) {
		if _, err := v.Materialize(ctx); err != nil {
			return keydex.SeriesConstruction[K]{}, err
		}
		return keydex.SeriesConstruction[K]{Index: v, Plan: sc.Plan}, nil
	})
}
