package blobstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// gateStore tracks how many reads are in flight at once.
type gateStore struct {
	Store
	inFlight atomic.Int64
	peak     atomic.Int64
	release  chan struct{}
}

func (s *gateStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.Store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &gateBlob{Blob: b, store: s}, nil
}

type gateBlob struct {
	Blob
	store *gateStore
}

func (b *gateBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	cur := b.store.inFlight.Add(1)
	for {
		peak := b.store.peak.Load()
		if cur <= peak || b.store.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	<-b.store.release
	defer b.store.inFlight.Add(-1)
	return b.Blob.ReadAt(ctx, p, off)
}

func TestThrottledStore_BoundsConcurrency(t *testing.T) {
	ctx := context.Background()

	inner := &gateStore{Store: NewMemoryStore(), release: make(chan struct{})}
	require.NoError(t, inner.Put(ctx, "blob", make([]byte, 1024)))

	store := NewThrottledStore(inner, ThrottleConfig{MaxConcurrentReads: 2})

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 16)
			_, err := blob.ReadAt(ctx, buf, 0)
			require.NoError(t, err)
		}()
	}

	close(inner.release)
	wg.Wait()

	require.LessOrEqual(t, inner.peak.Load(), int64(2))
}

func TestThrottledStore_PassThrough(t *testing.T) {
	ctx := context.Background()

	inner := NewMemoryStore()
	store := NewThrottledStore(inner, ThrottleConfig{})

	require.NoError(t, store.Put(ctx, "blob", []byte("payload")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"blob"}, names)

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	content, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, "payload", string(content))

	require.NoError(t, store.Delete(ctx, "blob"))
	_, err = store.Open(ctx, "blob")
	require.ErrorIs(t, err, ErrNotFound)
}
