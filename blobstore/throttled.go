package blobstore

import (
	"context"
	"io"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig holds the limits applied by a ThrottledStore.
type ThrottleConfig struct {
	// MaxConcurrentReads bounds in-flight blob reads. If 0, defaults to 4.
	MaxConcurrentReads int64

	// ReadBytesPerSec bounds read throughput. If 0, unlimited.
	ReadBytesPerSec int64
}

// ThrottledStore wraps a Store and bounds read concurrency and throughput.
// Remote snapshot backends share network and provider quotas with the rest of
// the process; the wrapper keeps bulk materializations from starving it.
type ThrottledStore struct {
	inner   Store
	readSem *semaphore.Weighted
	limiter *rate.Limiter
}

// NewThrottledStore creates a new ThrottledStore.
func NewThrottledStore(inner Store, cfg ThrottleConfig) *ThrottledStore {
	if cfg.MaxConcurrentReads <= 0 {
		cfg.MaxConcurrentReads = 4
	}
	s := &ThrottledStore{
		inner:   inner,
		readSem: semaphore.NewWeighted(cfg.MaxConcurrentReads),
	}
	if cfg.ReadBytesPerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.ReadBytesPerSec), int(cfg.ReadBytesPerSec))
	}
	return s
}

// Open opens a blob whose reads honor the configured limits.
func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{inner: b, store: s}, nil
}

// Create passes through; only reads are throttled.
func (s *ThrottledStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put passes through.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	return s.inner.Put(ctx, name, data)
}

// Delete passes through.
func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List passes through.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// waitBytes reserves n bytes of read budget, splitting oversized requests
// into limiter-burst-sized waits.
func (s *ThrottledStore) waitBytes(ctx context.Context, n int64) error {
	if s.limiter == nil {
		return nil
	}
	burst := int64(s.limiter.Burst())
	for n > 0 {
		chunk := min(n, burst)
		if err := s.limiter.WaitN(ctx, int(chunk)); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

type throttledBlob struct {
	inner Blob
	store *ThrottledStore
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := b.store.readSem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer b.store.readSem.Release(1)

	if err := b.store.waitBytes(ctx, int64(len(p))); err != nil {
		return 0, err
	}
	return b.inner.ReadAt(ctx, p, off)
}

func (b *throttledBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := b.store.readSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.store.readSem.Release(1)

	if err := b.store.waitBytes(ctx, length); err != nil {
		return nil, err
	}
	return b.inner.ReadRange(ctx, off, length)
}

func (b *throttledBlob) Size() int64 {
	return b.inner.Size()
}

func (b *throttledBlob) Close() error {
	return b.inner.Close()
}
