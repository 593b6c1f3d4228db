package snapshot

import (
	"context"
	"testing"

	"github.com/rallenh/keydex/blobstore"
	"github.com/stretchr/testify/require"
)

func TestPublisher_PublishAndCurrent(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	p := NewPublisher(store, NewMemoryCatalog())

	// 1. First publish becomes version 1
	entry, err := Publish(ctx, p, "orders", []int{1, 2, 3}, true)
	require.NoError(t, err)
	require.EqualValues(t, 1, entry.Version)
	require.Equal(t, "orders-v000001", entry.Name)

	// 2. The next publish advances the version
	entry, err = Publish(ctx, p, "orders", []int{1, 2, 3, 4}, true)
	require.NoError(t, err)
	require.EqualValues(t, 2, entry.Version)

	// 3. Current resolves the newest snapshot
	src, err := Current[int](ctx, p, "orders")
	require.NoError(t, err)
	require.Equal(t, "orders-v000002", src.Name())

	keys, ordered, err := src.Load(ctx)
	require.NoError(t, err)
	require.True(t, ordered)
	require.Equal(t, []int{1, 2, 3, 4}, keys)

	// 4. Keys are independent of each other
	_, err = Current[int](ctx, p, "invoices")
	require.ErrorIs(t, err, ErrNoSnapshot)
}

// racingCatalog rejects the first commit attempt as if another writer won.
type racingCatalog struct {
	*MemoryCatalog
	rejected bool
}

func (c *racingCatalog) Commit(ctx context.Context, key string, entry Entry) error {
	if !c.rejected {
		c.rejected = true
		_ = c.MemoryCatalog.Commit(ctx, key, Entry{Version: entry.Version, Name: "winner"})
		return ErrConcurrentCommit
	}
	return c.MemoryCatalog.Commit(ctx, key, entry)
}

func TestPublisher_RetriesLostRace(t *testing.T) {
	ctx := context.Background()
	cat := &racingCatalog{MemoryCatalog: NewMemoryCatalog()}
	p := NewPublisher(blobstore.NewMemoryStore(), cat)

	entry, err := Publish(ctx, p, "orders", []int{1}, true)
	require.NoError(t, err)

	// The winner took version 1, so the retry landed on version 2.
	require.EqualValues(t, 2, entry.Version)
	require.Equal(t, "orders-v000002", entry.Name)
}

// stuckCatalog loses every race.
type stuckCatalog struct {
	MemoryCatalog
}

func (c *stuckCatalog) Commit(context.Context, string, Entry) error {
	return ErrConcurrentCommit
}

func TestPublisher_GivesUpAfterRetries(t *testing.T) {
	ctx := context.Background()
	p := NewPublisher(blobstore.NewMemoryStore(), &stuckCatalog{})

	_, err := Publish(ctx, p, "orders", []int{1}, true)
	require.ErrorIs(t, err, ErrConcurrentCommit)
}
