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

func resampleCounts(t *testing.T, ix keydex.Index[int], anchors []int, dir keydex.Direction) ([]int, []model.Optional[int]) {
	t.Helper()
	b := linear.NewBuilder(keydex.NaturalOrder[int]())
	out, values, err := keydex.Resample(b, ix, anchors, dir, vector.Return(0),
		func(_ int, chunk keydex.SeriesConstruction[int]) model.Optional[int] {
			return model.Some(chunk.Index.KeyCount())
		},
		func(anchor int, _ keydex.SeriesConstruction[int]) int { return anchor })
	require.NoError(t, err)
	return slices.Collect(out.Keys()), values
}

func TestResample_Forward(t *testing.T) {
	ix := orderedInts(t, 1, 2, 4, 5, 7, 9)

	// Forward chunks run from each anchor up to the next one; keys before the
	// first anchor join the first chunk.
	keys, values := resampleCounts(t, ix, []int{2, 5, 8}, keydex.DirectionForward)

	require.Equal(t, []int{2, 5, 8}, keys)
	// [1 2 4] before anchor 5, [5 7] before anchor 8, [9] after.
	require.Equal(t, []model.Optional[int]{model.Some(3), model.Some(2), model.Some(1)}, values)
}

func TestResample_Backward(t *testing.T) {
	ix := orderedInts(t, 1, 2, 4, 5, 7, 9)

	// Backward chunks end at their anchor; trailing keys join the last chunk.
	keys, values := resampleCounts(t, ix, []int{2, 5, 8}, keydex.DirectionBackward)

	require.Equal(t, []int{2, 5, 8}, keys)
	// [1 2] up to anchor 2, [4 5] up to anchor 5, [7 9] for the last.
	require.Equal(t, []model.Optional[int]{model.Some(2), model.Some(2), model.Some(2)}, values)
}

func TestResample_EmptyChunks(t *testing.T) {
	ix := orderedInts(t, 10, 11)

	// Anchors with no keys between them still yield (empty) chunks.
	keys, values := resampleCounts(t, ix, []int{1, 2, 3}, keydex.DirectionForward)

	require.Equal(t, []int{1, 2, 3}, keys)
	require.Equal(t, model.Some(0), values[0])
	require.Equal(t, model.Some(0), values[1])
	require.Equal(t, model.Some(2), values[2])
}

func TestResample_NoAnchors(t *testing.T) {
	ix := orderedInts(t, 1, 2, 3)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	out, values, err := keydex.Resample(b, ix, nil, keydex.DirectionForward, vector.Return(0),
		func(int, keydex.SeriesConstruction[int]) model.Optional[int] { return model.None[int]() },
		func(anchor int, _ keydex.SeriesConstruction[int]) int { return anchor })
	require.NoError(t, err)
	require.True(t, out.IsEmpty())
	require.Empty(t, values)
}

func TestResample_Unordered(t *testing.T) {
	unordered := linear.New(slices.Values([]int{3, 1, 2}), keydex.NaturalOrder[int](), keydex.OrderInfer)
	b := linear.NewBuilder(keydex.NaturalOrder[int]())

	_, _, err := keydex.Resample(b, unordered, []int{1}, keydex.DirectionForward, vector.Return(0),
		func(int, keydex.SeriesConstruction[int]) model.Optional[int] { return model.None[int]() },
		func(anchor int, _ keydex.SeriesConstruction[int]) int { return anchor })
	require.ErrorIs(t, err, keydex.ErrUnorderedIndex)
}
