package keydex_test

import (
	"slices"
	"testing"

	"github.com/rallenh/keydex"
	"github.com/rallenh/keydex/linear"
	"github.com/rallenh/keydex/model"
	"github.com/rallenh/keydex/vector"
	"github.com/stretchr/testify/require"
)

func TestWithIndex(t *testing.T) {
	ix := orderedInts(t, 10, 20, 30, 40)
	b := linear.NewBuilder(keydex.NaturalOrder[string]())

	// Promote a pretend column into the index: address 2 holds no value.
	names := map[model.Address]string{0: "a", 1: "b", 3: "d"}
	keyFn := func(addr model.Address) (string, bool) {
		n, ok := names[addr]
		return n, ok
	}

	sc := keydex.WithIndex(b, ix, keyFn, vector.Return(0))

	// 1. Missing addresses are dropped
	require.Equal(t, []string{"a", "b", "d"}, slices.Collect(sc.Index.Keys()))

	// 2. The plan gathers the surviving addresses into the new space
	require.Equal(t, vector.KindRelocate, sc.Plan.Kind())
	require.Equal(t, 3, sc.Plan.Count())
	require.Equal(t, []vector.Move{{New: 0, Old: 0}, {New: 1, Old: 1}, {New: 2, Old: 3}}, sc.Plan.Moves())
}

func TestWithIndex_DuplicateNewKeys(t *testing.T) {
	ix := orderedInts(t, 10, 20, 30)
	b := linear.NewBuilder(keydex.NaturalOrder[string]())

	// Every address maps to the same new key: the first one wins.
	sc := keydex.WithIndex(b, ix,
		func(model.Address) (string, bool) { return "x", true },
		vector.Return(0))

	require.Equal(t, []string{"x"}, slices.Collect(sc.Index.Keys()))
	require.Equal(t, 1, sc.Plan.Count())
	require.Equal(t, []vector.Move{{New: 0, Old: 0}}, sc.Plan.Moves())
}
