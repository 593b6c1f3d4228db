// Package linear provides the eager in-memory index representation.
//
// A linear index stores its keys in a slice with dense addresses 0..n-1 and a
// reverse map for exact lookups; ordered indices additionally answer nearest
// lookups and range queries by binary search.
package linear

import (
	"iter"
	"sort"

	"github.com/rallenh/keydex"
	"github.com/rallenh/keydex/model"
)

// Index is the eager implementation of keydex.Index.
type Index[K comparable] struct {
	keys    []K
	byKey   map[K]model.Address
	cmp     keydex.Comparer[K]
	ordered bool
}

// New builds an index from a key sequence, keeping the first occurrence of a
// duplicated key. See keydex.Builder.Create for hint semantics.
func New[K comparable](keys iter.Seq[K], cmp keydex.Comparer[K], hint keydex.OrderHint) *Index[K] {
	ix := &Index[K]{
		byKey: make(map[K]model.Address),
		cmp:   cmp,
	}
	for k := range keys {
		if _, dup := ix.byKey[k]; dup {
			continue
		}
		ix.byKey[k] = model.Address(len(ix.keys))
		ix.keys = append(ix.keys, k)
	}

	switch hint {
	case keydex.OrderAssumeOrdered:
		ix.ordered = cmp != nil
	case keydex.OrderAssumeUnordered:
		ix.ordered = false
	default:
		ix.ordered = ix.inferOrdered()
	}
	return ix
}

// fromKeys wraps an already deduplicated key slice. The slice is owned by the
// new index.
func fromKeys[K comparable](keys []K, cmp keydex.Comparer[K], ordered bool) *Index[K] {
	byKey := make(map[K]model.Address, len(keys))
	for i, k := range keys {
		byKey[k] = model.Address(i)
	}
	return &Index[K]{keys: keys, byKey: byKey, cmp: cmp, ordered: ordered && cmp != nil}
}

func (ix *Index[K]) inferOrdered() bool {
	if ix.cmp == nil {
		return false
	}
	for i := 1; i < len(ix.keys); i++ {
		if ix.cmp(ix.keys[i-1], ix.keys[i]) >= 0 {
			return false
		}
	}
	return true
}

// Keys enumerates the keys in canonical order.
func (ix *Index[K]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, k := range ix.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Mappings enumerates (key, address) pairs in the same order as Keys.
func (ix *Index[K]) Mappings() iter.Seq2[K, model.Address] {
	return func(yield func(K, model.Address) bool) {
		for i, k := range ix.keys {
			if !yield(k, model.Address(i)) {
				return
			}
		}
	}
}

// KeyAt returns the key stored at addr.
func (ix *Index[K]) KeyAt(addr model.Address) (K, error) {
	if addr < 0 || int64(addr) >= int64(len(ix.keys)) {
		var zero K
		return zero, keydex.NewErrKeyNotFound(addr, nil)
	}
	return ix.keys[addr], nil
}

// KeyCount returns the number of keys.
func (ix *Index[K]) KeyCount() int { return len(ix.keys) }

// IsEmpty reports whether the index has no keys.
func (ix *Index[K]) IsEmpty() bool { return len(ix.keys) == 0 }

// IsOrdered reports whether keys are sorted by the comparer.
func (ix *Index[K]) IsOrdered() bool { return ix.ordered }

// Comparer returns the total order over keys (nil for unorderable keys).
func (ix *Index[K]) Comparer() keydex.Comparer[K] { return ix.cmp }

// Builder returns a builder deriving linear indices with the same comparer.
func (ix *Index[K]) Builder() keydex.Builder[K] { return NewBuilder(ix.cmp) }

// KeyRange returns the smallest and largest key of an ordered index.
func (ix *Index[K]) KeyRange() (K, K, error) {
	var zero K
	if !ix.ordered {
		return zero, zero, keydex.ErrUnorderedIndex
	}
	if len(ix.keys) == 0 {
		return zero, zero, keydex.ErrEmptyRange
	}
	return ix.keys[0], ix.keys[len(ix.keys)-1], nil
}

// Lookup resolves a search key per the mode and validity predicate. Nearest
// modes use binary search on ordered indices and fall back to a full scan
// under the comparer on unordered ones.
func (ix *Index[K]) Lookup(key K, mode keydex.Lookup, isValid func(model.Address) bool) (K, model.Address, bool) {
	var zero K
	if isValid == nil {
		isValid = func(model.Address) bool { return true }
	}

	if mode == keydex.LookupExact {
		if a, ok := ix.byKey[key]; ok && isValid(a) {
			return key, a, true
		}
		return zero, model.NoAddress, false
	}

	if ix.cmp == nil {
		return zero, model.NoAddress, false
	}

	if ix.ordered {
		n := len(ix.keys)
		switch mode {
		case keydex.LookupNearestGreater:
			// Smallest key >= query with a valid address.
			i := sort.Search(n, func(i int) bool { return ix.cmp(ix.keys[i], key) >= 0 })
			for ; i < n; i++ {
				if isValid(model.Address(i)) {
					return ix.keys[i], model.Address(i), true
				}
			}
		case keydex.LookupNearestSmaller:
			// Largest key <= query with a valid address.
			i := sort.Search(n, func(i int) bool { return ix.cmp(ix.keys[i], key) > 0 }) - 1
			for ; i >= 0; i-- {
				if isValid(model.Address(i)) {
					return ix.keys[i], model.Address(i), true
				}
			}
		}
		return zero, model.NoAddress, false
	}

	// Unordered: scan for the best qualifying key under the comparer.
	best := -1
	for i, k := range ix.keys {
		d := ix.cmp(k, key)
		if mode == keydex.LookupNearestGreater && d < 0 {
			continue
		}
		if mode == keydex.LookupNearestSmaller && d > 0 {
			continue
		}
		if !isValid(model.Address(i)) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		if mode == keydex.LookupNearestGreater && ix.cmp(k, ix.keys[best]) < 0 {
			best = i
		}
		if mode == keydex.LookupNearestSmaller && ix.cmp(k, ix.keys[best]) > 0 {
			best = i
		}
	}
	if best < 0 {
		return zero, model.NoAddress, false
	}
	return ix.keys[best], model.Address(best), true
}
