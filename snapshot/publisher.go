package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rallenh/keydex"
	"github.com/rallenh/keydex/blobstore"
	"github.com/rallenh/keydex/codec"
)

// publishRetries bounds the commit race loop. Each retry re-reads the latest
// version, so a loser only retries against fresh state.
const publishRetries = 3

// Publisher writes snapshots and advances the catalog pointer for a key.
// It is the write-side counterpart of BlobSource.
type Publisher struct {
	store   blobstore.Store
	catalog Catalog
	codec   codec.Codec
	logger  *keydex.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithCodec sets the payload codec for new snapshots.
func WithCodec(c codec.Codec) PublisherOption {
	return func(p *Publisher) { p.codec = c }
}

// WithLogger sets the logger.
func WithLogger(l *keydex.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// NewPublisher creates a publisher over store and catalog.
func NewPublisher(store blobstore.Store, catalog Catalog, optFns ...PublisherOption) *Publisher {
	p := &Publisher{
		store:   store,
		catalog: catalog,
		codec:   codec.Default,
		logger:  keydex.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(p)
	}
	return p
}

// Publish writes keys as the next snapshot version under key and commits the
// catalog pointer. Concurrent publishers race on the commit; the loser retries
// with a fresh version a bounded number of times before giving up with
// ErrConcurrentCommit.
//
// The snapshot blobs of a lost race are left behind as garbage; they are
// unreferenced and harmless, and a later Publish under the same key reuses
// neither name nor version.
func Publish[K comparable](ctx context.Context, p *Publisher, key string, keys []K, ordered bool) (Entry, error) {
	log := p.logger.WithKeyCount(len(keys))

	var lastErr error
	for attempt := 0; attempt < publishRetries; attempt++ {
		version := uint64(1)
		if latest, err := p.catalog.Latest(ctx, key); err == nil {
			version = latest.Version + 1
		} else if !errors.Is(err, ErrNoSnapshot) {
			return Entry{}, fmt.Errorf("read latest snapshot for %q: %w", key, err)
		}

		name := fmt.Sprintf("%s-v%06d", key, version)
		if _, err := Write(ctx, p.store, name, keys, ordered, p.codec); err != nil {
			return Entry{}, err
		}

		entry := Entry{Version: version, Name: name}
		err := p.catalog.Commit(ctx, key, entry)
		if err == nil {
			log.WithSnapshot(name).Info("published snapshot", "key", key, "version", version)
			return entry, nil
		}
		if !errors.Is(err, ErrConcurrentCommit) {
			return Entry{}, err
		}
		log.WithSnapshot(name).Warn("snapshot commit lost race, retrying", "key", key, "version", version)
		lastErr = err
	}
	return Entry{}, fmt.Errorf("publish %q: %w", key, lastErr)
}

// Current resolves the latest committed snapshot under key to a source usable
// by a virtual index.
func Current[K comparable](ctx context.Context, p *Publisher, key string) (*BlobSource[K], error) {
	latest, err := p.catalog.Latest(ctx, key)
	if err != nil {
		return nil, err
	}
	return NewBlobSource[K](p.store, latest.Name), nil
}
