package snapshot

import (
	"context"
	"sync"

	"github.com/rallenh/keydex/blobstore"
)

// BlobSource serves one snapshot's keys to a virtual index. Stat fetches only
// the manifest, Load fetches the payload as well; both cache the manifest so
// repeated calls hit the store at most once for it.
type BlobSource[K comparable] struct {
	store blobstore.Store
	name  string

	mu       sync.Mutex
	manifest *Manifest
}

// NewBlobSource returns a source for the snapshot called name in store.
func NewBlobSource[K comparable](store blobstore.Store, name string) *BlobSource[K] {
	return &BlobSource[K]{store: store, name: name}
}

// Name reports the snapshot name this source reads.
func (s *BlobSource[K]) Name() string { return s.name }

func (s *BlobSource[K]) loadManifest(ctx context.Context) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manifest != nil {
		return s.manifest, nil
	}
	m, err := ReadManifest(ctx, s.store, s.name)
	if err != nil {
		return nil, err
	}
	s.manifest = m
	return m, nil
}

// Stat reports the key count and order flag without loading the payload.
func (s *BlobSource[K]) Stat(ctx context.Context) (int, bool, error) {
	m, err := s.loadManifest(ctx)
	if err != nil {
		return 0, false, err
	}
	return m.KeyCount, m.Ordered, nil
}

// Load fetches the full key set.
func (s *BlobSource[K]) Load(ctx context.Context) ([]K, bool, error) {
	m, err := s.loadManifest(ctx)
	if err != nil {
		return nil, false, err
	}
	keys, err := ReadKeys[K](ctx, s.store, m)
	if err != nil {
		return nil, false, err
	}
	return keys, m.Ordered, nil
}
