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

func orderedInts(t *testing.T, keys ...int) keydex.Index[int] {
	t.Helper()
	return linear.New(slices.Values(keys), keydex.NaturalOrder[int](), keydex.OrderInfer)
}

// firstKeySelector labels each segment by its first key and counts its keys.
func firstKeySelector(kinds *[]keydex.SegmentKind) func(keydex.SegmentKind, keydex.SeriesConstruction[int]) (int, model.Optional[int]) {
	return func(kind keydex.SegmentKind, seg keydex.SeriesConstruction[int]) (int, model.Optional[int]) {
		if kinds != nil {
			*kinds = append(*kinds, kind)
		}
		keys := slices.Collect(seg.Index.Keys())
		return keys[0], model.Some(len(keys))
	}
}

func TestAggregate_ChunkSize(t *testing.T) {
	ix := orderedInts(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	// 1. Inclusive boundary keeps the short tail chunk
	var kinds []keydex.SegmentKind
	out, values, err := keydex.Aggregate(b, ix,
		keydex.ChunkSize[int](3, keydex.BoundaryInclusive),
		vector.Return(0), firstKeySelector(&kinds))
	require.NoError(t, err)

	require.Equal(t, []int{1, 4, 7, 10}, slices.Collect(out.Keys()))
	require.Equal(t, []model.Optional[int]{
		model.Some(3), model.Some(3), model.Some(3), model.Some(1),
	}, values)
	require.Equal(t, []keydex.SegmentKind{
		keydex.SegmentComplete, keydex.SegmentComplete, keydex.SegmentComplete, keydex.SegmentPartial,
	}, kinds)

	// 2. Exclusive boundary drops it
	out, values, err = keydex.Aggregate(b, ix,
		keydex.ChunkSize[int](3, keydex.BoundaryExclusive),
		vector.Return(0), firstKeySelector(nil))
	require.NoError(t, err)
	require.Equal(t, []int{1, 4, 7}, slices.Collect(out.Keys()))
	require.Len(t, values, 3)
}

func TestAggregate_WindowSize(t *testing.T) {
	ix := orderedInts(t, 1, 2, 3, 4, 5)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	// 1. Exclusive: only full windows, one per viable start
	out, _, err := keydex.Aggregate(b, ix,
		keydex.WindowSize[int](3, keydex.BoundaryExclusive),
		vector.Return(0), firstKeySelector(nil))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, slices.Collect(out.Keys()))

	// 2. Inclusive: trailing windows shrink
	var kinds []keydex.SegmentKind
	out, values, err := keydex.Aggregate(b, ix,
		keydex.WindowSize[int](3, keydex.BoundaryInclusive),
		vector.Return(0), firstKeySelector(&kinds))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, slices.Collect(out.Keys()))
	require.Equal(t, model.Some(2), values[3])
	require.Equal(t, model.Some(1), values[4])
	require.Equal(t, keydex.SegmentPartial, kinds[4])
}

func TestAggregate_While(t *testing.T) {
	ix := orderedInts(t, 1, 2, 5, 6, 7, 12)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	// Chunks extend while the candidate stays within 2 of the chunk's first key.
	within := func(first, candidate int) bool { return candidate-first <= 2 }

	out, values, err := keydex.Aggregate(b, ix,
		keydex.ChunkWhile(within), vector.Return(0), firstKeySelector(nil))
	require.NoError(t, err)
	require.Equal(t, []int{1, 5, 12}, slices.Collect(out.Keys()))
	require.Equal(t, []model.Optional[int]{model.Some(2), model.Some(3), model.Some(1)}, values)

	// Windows overlap: one segment per start key.
	out, _, err = keydex.Aggregate(b, ix,
		keydex.WindowWhile(within), vector.Return(0), firstKeySelector(nil))
	require.NoError(t, err)
	require.Equal(t, 6, out.KeyCount())
}

func TestAggregate_SegmentPlans(t *testing.T) {
	ix := orderedInts(t, 1, 2, 3, 4)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	var plans []*vector.Construction
	_, _, err := keydex.Aggregate(b, ix,
		keydex.ChunkSize[int](2, keydex.BoundaryInclusive),
		vector.Return(0),
		func(_ keydex.SegmentKind, seg keydex.SeriesConstruction[int]) (int, model.Optional[int]) {
			plans = append(plans, seg.Plan)
			k, _ := seg.Index.KeyAt(0)
			return k, model.None[int]()
		})
	require.NoError(t, err)

	// Contiguous segments become address-range restrictions of the input plan.
	require.Len(t, plans, 2)
	require.Equal(t, vector.KindGetRange, plans[0].Kind())
	require.Equal(t, model.AddressRange{Lo: 0, Hi: 1}, plans[0].Range())
	require.Equal(t, model.AddressRange{Lo: 2, Hi: 3}, plans[1].Range())
}

func TestAggregate_Errors(t *testing.T) {
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	unordered := linear.New(slices.Values([]int{3, 1, 2}), keydex.NaturalOrder[int](), keydex.OrderInfer)
	_, _, err := keydex.Aggregate(b, unordered,
		keydex.ChunkSize[int](2, keydex.BoundaryInclusive),
		vector.Return(0), firstKeySelector(nil))
	require.ErrorIs(t, err, keydex.ErrUnorderedIndex)

	_, _, err = keydex.Aggregate(b, orderedInts(t, 1, 2, 3),
		keydex.ChunkSize[int](0, keydex.BoundaryInclusive),
		vector.Return(0), firstKeySelector(nil))
	require.ErrorIs(t, err, keydex.ErrInvalidSegmentSize)
}
