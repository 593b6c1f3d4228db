// Package virtual provides an index representation whose keys live behind a
// Source, typically a snapshot blob, and are fetched only when an operation
// actually needs them.
//
// Size metadata (KeyCount, IsEmpty, IsOrdered) comes from Source.Stat and
// never forces the key payload, so a caller can inspect or skip an index
// cheaply. Any key-touching accessor forces a one-time materialization into
// an in-memory linear index and memoizes it.
//
// Forcing happens implicitly inside context-free accessors, so a failing
// Source surfaces there as a panic. Callers holding a remote source should
// resolve errors up front with Index.Materialize or
// Builder.AsyncMaterialize before handing the index to accessor-only code.
package virtual

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/rallenh/keydex"
	"github.com/rallenh/keydex/linear"
	"github.com/rallenh/keydex/model"
)

// Source supplies the keys of a virtual index. Stat must be cheap relative to
// Load. Both may be called concurrently.
type Source[K comparable] interface {
	// Stat reports the key count and order flag without loading keys.
	Stat(ctx context.Context) (count int, ordered bool, err error)

	// Load fetches the full key set in canonical order.
	Load(ctx context.Context) (keys []K, ordered bool, err error)
}

// Index is a lazily resolved keydex.Index backed by a Source.
type Index[K comparable] struct {
	source Source[K]
	cmp    keydex.Comparer[K]

	count   int
	ordered bool

	mu       sync.Mutex
	resolved *linear.Index[K]
	loadErr  error
}

// Open stats the source and returns an unresolved index over it. No keys are
// fetched.
func Open[K comparable](ctx context.Context, source Source[K], cmp keydex.Comparer[K]) (*Index[K], error) {
	count, ordered, err := source.Stat(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual: stat source: %w", err)
	}
	return &Index[K]{source: source, cmp: cmp, count: count, ordered: ordered}, nil
}

// wrap lifts an already evaluated linear index into this representation, so
// builder results stay virtual without re-fetching anything.
func wrap[K comparable](ix *linear.Index[K]) *Index[K] {
	return &Index[K]{
		cmp:      ix.Comparer(),
		count:    ix.KeyCount(),
		ordered:  ix.IsOrdered(),
		resolved: ix,
	}
}

// Materialize forces the key payload once and returns the evaluated index.
// The result and any load error are memoized.
func (ix *Index[K]) Materialize(ctx context.Context) (*linear.Index[K], error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.resolved != nil || ix.loadErr != nil {
		return ix.resolved, ix.loadErr
	}

	keys, ordered, err := ix.source.Load(ctx)
	if err != nil {
		ix.loadErr = fmt.Errorf("virtual: load source: %w", err)
		return nil, ix.loadErr
	}

	hint := keydex.OrderAssumeUnordered
	if ordered {
		hint = keydex.OrderAssumeOrdered
	}
	ix.resolved = linear.New(slices.Values(keys), ix.cmp, hint)

	if ix.resolved.KeyCount() != ix.count {
		ix.loadErr = fmt.Errorf("virtual: source loaded %d keys, stat reported %d", ix.resolved.KeyCount(), ix.count)
		ix.resolved = nil
		return nil, ix.loadErr
	}
	return ix.resolved, nil
}

// IsResolved reports whether the payload has been loaded.
func (ix *Index[K]) IsResolved() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.resolved != nil
}

func (ix *Index[K]) force() *linear.Index[K] {
	resolved, err := ix.Materialize(context.Background())
	if err != nil {
		panic(err)
	}
	return resolved
}

// KeyCount returns the stat key count without forcing.
func (ix *Index[K]) KeyCount() int { return ix.count }

// IsEmpty reports emptiness without forcing.
func (ix *Index[K]) IsEmpty() bool { return ix.count == 0 }

// IsOrdered reports the stat order flag without forcing.
func (ix *Index[K]) IsOrdered() bool { return ix.ordered }

// Comparer returns the key order.
func (ix *Index[K]) Comparer() keydex.Comparer[K] { return ix.cmp }

// Keys forces the index and enumerates its keys.
func (ix *Index[K]) Keys() iter.Seq[K] { return ix.force().Keys() }

// Mappings forces the index and enumerates its mappings.
func (ix *Index[K]) Mappings() iter.Seq2[K, model.Address] { return ix.force().Mappings() }

// KeyAt forces the index and resolves an address to its key.
func (ix *Index[K]) KeyAt(addr model.Address) (K, error) { return ix.force().KeyAt(addr) }

// Lookup forces the index and resolves a search key.
func (ix *Index[K]) Lookup(key K, mode keydex.Lookup, isValid func(model.Address) bool) (K, model.Address, bool) {
	return ix.force().Lookup(key, mode, isValid)
}

// KeyRange forces the index and returns its extreme keys.
func (ix *Index[K]) KeyRange() (K, K, error) { return ix.force().KeyRange() }

// Builder returns a builder deriving virtual indices.
func (ix *Index[K]) Builder() keydex.Builder[K] { return NewBuilder(ix.cmp) }
