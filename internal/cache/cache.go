// Package cache provides a byte-oriented LRU cache for immutable blob blocks.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Key identifies one cached block of one blob.
type Key struct {
	Path  string
	Block int64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(key Key) (b []byte, ok bool)
	// Set caches a block. The caller must treat b as immutable afterwards.
	Set(key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}

// LRU implements BlockCache with byte-capacity LRU eviction.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   Key
	value []byte
}

// NewLRU creates an LRU cache with the given capacity in bytes.
func NewLRU(capacity int64) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
	}
}

// Get returns a cached block.
func (c *LRU) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a block.
func (c *LRU) Set(key Key, b []byte) {
	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.size += itemSize - int64(len(ent.Value.(*entry).value))
		ent.Value.(*entry).value = b
		c.evictList.MoveToFront(ent)
		c.evict()
		return
	}

	c.items[key] = c.evictList.PushFront(&entry{key: key, value: b})
	c.size += itemSize
	c.evict()
}

// evict drops least-recently-used entries until the cache fits its capacity.
// Caller must hold mu.
func (c *LRU) evict() {
	for c.size > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			return
		}
		ent := back.Value.(*entry)
		c.size -= int64(len(ent.value))
		delete(c.items, ent.key)
		c.evictList.Remove(back)
	}
}

// Invalidate removes entries matching the predicate.
func (c *LRU) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, ent := range c.items {
		if !predicate(key) {
			continue
		}
		c.size -= int64(len(ent.Value.(*entry).value))
		delete(c.items, key)
		c.evictList.Remove(ent)
	}
}

// Stats returns hit/miss counters.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
