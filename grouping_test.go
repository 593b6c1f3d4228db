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

func TestGroupWith(t *testing.T) {
	ix := orderedInts(t, 10, 11, 12, 13, 14)
	labels := []string{"even", "odd", "even", "odd", "even"}

	groups, err := keydex.GroupWith(ix, labels, vector.Return(0))
	require.NoError(t, err)

	collect := func() []keydex.Group[string, int] {
		var out []keydex.Group[string, int]
		for g := range groups {
			out = append(out, g)
		}
		return out
	}

	// 1. Labels appear in first-appearance order
	got := collect()
	require.Len(t, got, 2)
	require.Equal(t, "even", got[0].Label)
	require.Equal(t, "odd", got[1].Label)

	require.Equal(t, []int{10, 12, 14}, slices.Collect(got[0].Series.Index.Keys()))
	require.Equal(t, []int{11, 13}, slices.Collect(got[1].Series.Index.Keys()))

	// 2. Non-contiguous ascending groups select addresses
	require.Equal(t, vector.KindSelect, got[0].Series.Plan.Kind())
	require.True(t, got[0].Series.Plan.Selected().Contains(0))
	require.True(t, got[0].Series.Plan.Selected().Contains(2))
	require.True(t, got[0].Series.Plan.Selected().Contains(4))

	// 3. The sequence is restartable and re-derives the same groups
	again := collect()
	require.Len(t, again, 2)
	require.Equal(t, got[0].Label, again[0].Label)
	require.Equal(t,
		slices.Collect(got[1].Series.Index.Keys()),
		slices.Collect(again[1].Series.Index.Keys()))
}

func TestGroupWith_LabelCountMismatch(t *testing.T) {
	ix := orderedInts(t, 1, 2, 3)

	_, err := keydex.GroupWith(ix, []string{"a", "b"}, vector.Return(0))
	require.ErrorIs(t, err, keydex.ErrLabelCount)
}

func TestGroupBy(t *testing.T) {
	ix := orderedInts(t, 1, 2, 3, 4, 5, 6)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	// Group by parity, skipping multiples of five.
	parity := func(k int) (int, bool) {
		if k%5 == 0 {
			return 0, false
		}
		return k % 2, true
	}
	size := func(_ int, group keydex.SeriesConstruction[int]) model.Optional[int] {
		return model.Some(group.Index.KeyCount())
	}

	out, values := keydex.GroupBy(b, ix, parity, vector.Return(0), size)

	// Grouping keys in first-appearance order: 1 is odd, 2 is even.
	require.Equal(t, []int{1, 0}, slices.Collect(out.Keys()))

	// Key 5 was dropped, so odd counts 1, 3 and even counts 2, 4, 6.
	require.Equal(t, []model.Optional[int]{model.Some(2), model.Some(3)}, values)
}

func TestGroupBy_AllMissing(t *testing.T) {
	ix := orderedInts(t, 1, 2, 3)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	out, values := keydex.GroupBy(b, ix,
		func(int) (int, bool) { return 0, false },
		vector.Return(0),
		func(int, keydex.SeriesConstruction[int]) model.Optional[int] { return model.None[int]() })

	require.True(t, out.IsEmpty())
	require.Empty(t, values)
}
