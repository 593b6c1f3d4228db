// Package keydex provides the index layer of a columnar table-data engine.
//
// An Index is an immutable, optionally ordered mapping from unique keys to
// opaque row addresses. A Builder is a stateless algebra over indices: every
// operation derives a new Index together with a vector construction plan
// describing how column data aligned to the old index must be rearranged to
// align with the new one. Key algebra and data algebra are decoupled on
// purpose: one index computation can be replayed, via its plan, across
// arbitrarily many columns of a table without re-deriving the alignment.
//
// # Quick Start
//
//	b := linear.NewBuilder(keydex.NaturalOrder[int]())
//	ix := b.Create(slices.Values([]int{1, 2, 3, 4, 5}), keydex.OrderInfer)
//
//	sc := keydex.SeriesConstruction[int]{Index: ix, Plan: vector.Return(0)}
//	sub, err := b.GetRange(sc,
//		&keydex.Bound[int]{Key: 2, Boundary: keydex.BoundaryInclusive},
//		&keydex.Bound[int]{Key: 4, Boundary: keydex.BoundaryExclusive})
//
// The derived plan (sub.Plan) is handed to the vector engine, which realizes
// the new column data; the index layer never touches real column storage.
//
// # Representations
//
// Two implementations ship with the module:
//
//   - linear: the eager in-memory representation (package linear).
//   - virtual: a lazily resolved representation whose keys live in a snapshot
//     blob, possibly remote (package virtual, backed by snapshot/blobstore).
//
// Every Index returns, via Builder, a builder that derives indices of its own
// representation family, so lazy stays lazy until explicitly materialized with
// Project or AsyncMaterialize.
//
// Indices and builders are immutable and safe for concurrent use without
// locking. The only suspension point in the whole layer is the Deferred
// returned by AsyncMaterialize.
package keydex
