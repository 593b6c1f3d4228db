package blobstore

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/rallenh/keydex/internal/cache"
)

// CachingStore wraps a Store and adds block-level read caching.
// Snapshot blobs are immutable, so cached blocks only need invalidation when
// a blob is overwritten or deleted.
type CachingStore struct {
	inner     Store
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to 64KB if <= 0.
func NewCachingStore(inner Store, blockCache cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 64 * 1024
	}
	return &CachingStore{
		inner:     inner,
		cache:     blockCache,
		blockSize: blockSize,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// Create passes through; writes are not cached.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put invalidates cached blocks for the blob and passes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Invalidate(func(key cache.Key) bool { return key.Path == name })
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates cached blocks for the blob and passes through.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Invalidate(func(key cache.Key) bool { return key.Path == name })
	return s.inner.Delete(ctx, name)
}

// List passes through.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// cachingBlob serves reads block-aligned out of the cache, fetching missing
// blocks from the inner blob concurrently.
type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.inner.Size() {
		return 0, io.EOF
	}

	end := off + int64(len(p))
	if end > b.inner.Size() {
		end = b.inner.Size()
	}

	startBlock := off / b.blockSize
	endBlock := (end - 1) / b.blockSize

	if err := b.fillBlocks(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		data, ok := b.cache.Get(cache.Key{Path: b.name, Block: blk})
		if !ok {
			// Evicted between fill and read; fetch directly.
			var err error
			data, err = b.fetchBlock(ctx, blk)
			if err != nil {
				return total, err
			}
		}

		blkStart := blk * b.blockSize
		lo := max(off, blkStart)
		hi := min(end, blkStart+int64(len(data)))
		if hi <= lo {
			break
		}
		total += copy(p[lo-off:hi-off], data[lo-blkStart:hi-blkStart])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

func (b *cachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.inner.Size() {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	if end := off + length; end > b.inner.Size() {
		length = b.inner.Size() - off
	}

	p := make([]byte, length)
	n, err := b.ReadAt(ctx, p, off)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(p[:n])), nil
}

// fillBlocks fetches missing blocks of [startBlock, endBlock] concurrently.
func (b *cachingBlob) fillBlocks(ctx context.Context, startBlock, endBlock int64) error {
	g, ctx := errgroup.WithContext(ctx)
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(cache.Key{Path: b.name, Block: blk}); ok {
			continue
		}
		g.Go(func() error {
			_, err := b.fetchBlock(ctx, blk)
			return err
		})
	}
	return g.Wait()
}

func (b *cachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	blkStart := blk * b.blockSize
	size := min(b.blockSize, b.inner.Size()-blkStart)
	data := make([]byte, size)
	if _, err := b.inner.ReadAt(ctx, data, blkStart); err != nil && err != io.EOF {
		return nil, err
	}
	b.cache.Set(cache.Key{Path: b.name, Block: blk}, data)
	return data, nil
}
