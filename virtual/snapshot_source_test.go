package virtual

import (
	"context"
	"slices"
	"testing"

	"github.com/rallenh/keydex"
	"github.com/rallenh/keydex/blobstore"
	"github.com/rallenh/keydex/snapshot"
	"github.com/stretchr/testify/require"
)

func TestIndex_OverSnapshotBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	keys := []int{100, 200, 300, 400}
	_, err := snapshot.Write(ctx, store, "orders-2026-08", keys, true, nil)
	require.NoError(t, err)

	src := snapshot.NewBlobSource[int](store, "orders-2026-08")
	ix, err := Open(ctx, src, keydex.NaturalOrder[int]())
	require.NoError(t, err)

	// Metadata comes from the manifest alone.
	require.Equal(t, 4, ix.KeyCount())
	require.True(t, ix.IsOrdered())
	require.False(t, ix.IsResolved())

	// Key access pulls the payload.
	require.Equal(t, keys, slices.Collect(ix.Keys()))
	require.True(t, ix.IsResolved())

	k, _, ok := ix.Lookup(250, keydex.LookupNearestGreater, nil)
	require.True(t, ok)
	require.Equal(t, 300, k)
}
