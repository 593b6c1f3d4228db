package snapshot

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by Latest when a catalog holds no entry yet.
var ErrNoSnapshot = errors.New("snapshot: no committed snapshot")

// ErrConcurrentCommit is returned when another writer committed the same
// version first. Callers retry by re-reading Latest and committing again.
var ErrConcurrentCommit = errors.New("snapshot: concurrent commit detected")

// Entry is one committed snapshot pointer.
type Entry struct {
	Version uint64 `json:"version"`
	Name    string `json:"name"`
}

// Catalog tracks which snapshot is current under a given key. Commit is a
// compare-and-swap: it succeeds only when entry.Version is exactly one past
// the latest committed version.
type Catalog interface {
	Latest(ctx context.Context, key string) (Entry, error)
	Commit(ctx context.Context, key string, entry Entry) error
}

// MemoryCatalog is an in-process Catalog for tests and single-writer setups.
type MemoryCatalog struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{entries: make(map[string][]Entry)}
}

// Latest returns the highest-version entry for key.
func (c *MemoryCatalog) Latest(_ context.Context, key string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	history := c.entries[key]
	if len(history) == 0 {
		return Entry{}, ErrNoSnapshot
	}
	return history[len(history)-1], nil
}

// Commit appends entry if its version is the next in sequence.
func (c *MemoryCatalog) Commit(_ context.Context, key string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	history := c.entries[key]
	var current uint64
	if len(history) > 0 {
		current = history[len(history)-1].Version
	}
	if entry.Version != current+1 {
		return ErrConcurrentCommit
	}
	c.entries[key] = append(history, entry)
	return nil
}
