package blobstore

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rallenh/keydex/internal/cache"
	"github.com/stretchr/testify/require"
)

// countingStore counts block fetches reaching the inner store.
type countingStore struct {
	Store
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.Store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, store: s}, nil
}

type countingBlob struct {
	Blob
	store *countingStore
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.store.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func TestCachingStore_ReadThrough(t *testing.T) {
	ctx := context.Background()

	inner := &countingStore{Store: NewMemoryStore()}
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, inner.Put(ctx, "blob", data))

	lru := cache.NewLRU(1 << 20)
	store := NewCachingStore(inner, lru, 64)

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	// 1. First read spans blocks 1 and 2 and fetches both
	buf := make([]byte, 100)
	n, err := blob.ReadAt(ctx, buf, 70)
	require.NoError(t, err)
	require.Equal(t, 100, n)
	require.Equal(t, data[70:170], buf)
	fetched := inner.reads.Load()
	require.EqualValues(t, 2, fetched)

	// 2. A repeat read is served from cache
	_, err = blob.ReadAt(ctx, buf, 70)
	require.NoError(t, err)
	require.Equal(t, fetched, inner.reads.Load())

	hits, misses := lru.Stats()
	require.Positive(t, hits)
	require.Positive(t, misses)

	// 3. ReadRange goes through the same blocks
	r, err := blob.ReadRange(ctx, 64, 64)
	require.NoError(t, err)
	got := make([]byte, 64)
	_, err = r.Read(got)
	require.NoError(t, err)
	r.Close()
	require.Equal(t, data[64:128], got)
	require.Equal(t, fetched, inner.reads.Load())
}

func TestCachingStore_InvalidateOnPut(t *testing.T) {
	ctx := context.Background()

	inner := &countingStore{Store: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "blob", []byte("before-before")))

	lru := cache.NewLRU(1 << 20)
	store := NewCachingStore(inner, lru, 64)

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	buf := make([]byte, 6)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "before", string(buf))
	blob.Close()

	// Overwriting through the caching store drops the stale blocks.
	require.NoError(t, store.Put(ctx, "blob", []byte("after-after-!")))

	blob, err = store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "after-", string(buf))
}

func TestLRU_Eviction(t *testing.T) {
	lru := cache.NewLRU(128)

	lru.Set(cache.Key{Path: "a", Block: 0}, make([]byte, 64))
	lru.Set(cache.Key{Path: "a", Block: 1}, make([]byte, 64))
	lru.Set(cache.Key{Path: "a", Block: 2}, make([]byte, 64))

	// Capacity holds two 64-byte blocks; the oldest is gone.
	_, ok := lru.Get(cache.Key{Path: "a", Block: 0})
	require.False(t, ok)
	_, ok = lru.Get(cache.Key{Path: "a", Block: 2})
	require.True(t, ok)
}
