// Package vector defines the construction plans the index layer emits.
//
// A Construction is a self-sufficient description of how column data aligned
// to an old index must be rearranged to align with a newly derived one. The
// index layer only produces plans; interpreting a plan against real column
// storage is the job of an external vector engine, which never has to consult
// the index again. One plan can therefore be replayed across arbitrarily many
// columns of a table.
package vector
