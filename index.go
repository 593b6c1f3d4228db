package keydex

import (
	"iter"

	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

// Index is an immutable key-to-address mapping, optionally ordered.
//
// Keys are unique. Unordered indices preserve insertion order for
// enumeration; ordered indices enumerate keys sorted by the comparer.
// Implementations must be safe for concurrent readers.
type Index[K comparable] interface {
	// Keys enumerates the keys in canonical order. The sequence is lazy,
	// finite and restartable.
	Keys() iter.Seq[K]

	// Mappings enumerates (key, address) pairs in the same order as Keys.
	Mappings() iter.Seq2[K, model.Address]

	// KeyAt is the exact inverse of the mapping. It fails with
	// ErrKeyNotFound when addr is not a valid address of this index.
	KeyAt(addr model.Address) (K, error)

	// KeyCount returns the mapping cardinality in O(1).
	KeyCount() int

	// IsEmpty reports KeyCount == 0 without forcing a lazily backed index.
	IsEmpty() bool

	// IsOrdered reports whether keys are sorted by the comparer.
	// The property is fixed at construction.
	IsOrdered() bool

	// Lookup resolves a search key to a present key and its address.
	//
	// isValid filters addresses: the index tracks key presence, not value
	// presence, so callers supply the predicate to skip addresses holding
	// no real value while reusing the index ordering. A nil isValid accepts
	// every address. Absence is an expected outcome and is reported as
	// ok == false, never as an error.
	Lookup(key K, mode Lookup, isValid func(model.Address) bool) (K, model.Address, bool)

	// KeyRange returns the smallest and largest key. It fails with
	// ErrUnorderedIndex on an unordered index and ErrEmptyRange on an
	// empty one.
	KeyRange() (min K, max K, err error)

	// Comparer returns the total order over keys. It is consistent with
	// equality: zero exactly on equal keys.
	Comparer() Comparer[K]

	// Builder returns a builder that derives indices of this index's
	// representation family.
	Builder() Builder[K]
}

// SeriesConstruction pairs an index with the plan that aligns a column to it.
// It is the unit of composition in the builder algebra: index and plan must
// describe matching positions.
type SeriesConstruction[K comparable] struct {
	Index Index[K]
	Plan  *vector.Construction
}

// Builder is the stateless index algebra. Every operation is a pure function
// over immutable inputs; it manipulates address-space bookkeeping and plan
// representations only, never real column data.
//
// Operations whose result key type differs from the operand key type
// (Aggregate, GroupWith, GroupBy, Resample, WithIndex) are package-level
// generic functions, since Go interface methods cannot introduce type
// parameters.
type Builder[K comparable] interface {
	// Create builds an index from a key sequence, keeping the first
	// occurrence of a duplicated key. OrderInfer checks monotonicity under
	// the comparer; the assume hints trust the caller.
	Create(keys iter.Seq[K], hint OrderHint) Index[K]

	// Project forces ix into this builder's evaluated representation,
	// preserving key identity and order.
	Project(ix Index[K]) Index[K]

	// GetRange restricts an ordered series to the sub-range between two
	// optional bounds. A nil bound means "use the existing extreme". The
	// derived plan is a contiguous address-range restriction.
	GetRange(sc SeriesConstruction[K], lower, upper *Bound[K]) (SeriesConstruction[K], error)

	// Union derives the key-set union: merged in order when both operands
	// are ordered, otherwise concatenated with de-duplication. The two
	// plans place each side's values into the union address space;
	// unmatched positions are marked missing for the vector layer.
	Union(left, right SeriesConstruction[K]) (Index[K], *vector.Construction, *vector.Construction)

	// Intersect derives the key set present in both operands, ordered by
	// an ordered operand (else by left). Each plan selects the shared
	// addresses of its side.
	Intersect(left, right SeriesConstruction[K]) (Index[K], *vector.Construction, *vector.Construction)

	// Append concatenates two series, merging keys to preserve global
	// order when both operands are ordered. A key present on both sides is
	// a conflict recorded in the plan and resolved by transform at
	// materialization time. The single returned plan is valid against both
	// inputs.
	Append(left, right SeriesConstruction[K], transform vector.ValueTransform) (Index[K], *vector.Construction)

	// Reindex locates every key of newIndex in oldIndex under the Lookup
	// semantics, recording missing where the lookup fails, and returns the
	// gather plan. This is the general alignment primitive underlying
	// joins, multi-key selection and reordering.
	Reindex(oldIndex, newIndex Index[K], mode Lookup, plan *vector.Construction, isValid func(model.Address) bool) *vector.Construction

	// DropItem removes one key and its address. It is a no-op when the key
	// is absent.
	DropItem(sc SeriesConstruction[K], key K) SeriesConstruction[K]

	// LookupLevel keeps the subset of keys matching a partial-key
	// predicate, preserving relative order.
	LookupLevel(sc SeriesConstruction[K], matches func(K) bool) SeriesConstruction[K]

	// OrderIndex sorts the keys by the comparer together with the
	// permutation plan. An already ordered series comes back with an
	// identity-equivalent plan.
	OrderIndex(sc SeriesConstruction[K]) SeriesConstruction[K]

	// AsyncMaterialize returns a deferred computation that yields a fully
	// evaluated index and an eagerly resolvable plan. It does not block at
	// call time; lazily or remotely backed indices resolve when the
	// deferred is awaited.
	AsyncMaterialize(sc SeriesConstruction[K]) *Deferred[SeriesConstruction[K]]
}
