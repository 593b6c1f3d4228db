package keydex

import (
	"slices"

	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
)

// WithIndex replaces each address's key with keyFn(address), dropping
// addresses where keyFn reports missing. This promotes a data column into the
// index: keyFn typically reads the column that should become the new key.
// When keyFn yields a duplicate key, the first address wins and later ones
// are dropped, preserving the unique-keys invariant.
func WithIndex[K, K2 comparable](
	b Builder[K2],
	ix Index[K],
	keyFn func(addr model.Address) (K2, bool),
	plan *vector.Construction,
) SeriesConstruction[K2] {
	newKeys := make([]K2, 0, ix.KeyCount())
	moves := make([]vector.Move, 0, ix.KeyCount())
	seen := make(map[K2]struct{}, ix.KeyCount())

	for _, addr := range ix.Mappings() {
		k2, ok := keyFn(addr)
		if !ok {
			continue
		}
		if _, dup := seen[k2]; dup {
			continue
		}
		seen[k2] = struct{}{}
		moves = append(moves, vector.Move{New: model.Address(len(newKeys)), Old: addr})
		newKeys = append(newKeys, k2)
	}

	return SeriesConstruction[K2]{
		Index: b.Create(slices.Values(newKeys), OrderInfer),
		Plan:  vector.Relocate(plan, len(moves), moves, nil),
	}
}
