// Package cache implements the process-wide block cache consumed by
// internal/sstable: a byte-capacity-bounded LRU keyed by (table id, block
// index), with at-most-one-concurrent-fill-per-key semantics.
//
// The LRU structure is grounded on aalhour-rockyardkv/internal/cache/lru_cache.go
// (container/list eviction, CacheKey/Handle shape). The teacher's own LRU
// does not coalesce concurrent misses; GetOrLoad adds that guarantee with
// golang.org/x/sync/singleflight, as SPEC_FULL.md §6 requires.
package cache

import (
	"container/list"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lsmtree/lsmkv/internal/block"
)

// Key identifies one cached block.
type Key struct {
	TableID    uint64
	BlockIndex int
}

func (k Key) flightKey() string {
	return fmt.Sprintf("%d/%d", k.TableID, k.BlockIndex)
}

// Cache is the interface internal/sstable depends on, so a caller may plug
// in a different cache implementation (or none, via a nil value) without
// internal/sstable depending on LRUCache concretely.
type Cache interface {
	// GetOrLoad returns the cached block for key, calling loader on a miss.
	// Concurrent misses for the same key coalesce into a single loader call;
	// a loader error is returned to every caller waiting on that key and is
	// not cached.
	GetOrLoad(key Key, loader func() (*block.Block, error)) (*block.Block, error)
}

type entry struct {
	key    Key
	value  *block.Block
	charge uint64
}

// LRUCache is a thread-safe, byte-capacity-bounded LRU cache of Blocks.
type LRUCache struct {
	mu       sync.Mutex
	capacity uint64
	usage    uint64
	items    map[Key]*list.Element
	order    *list.List // front = most recently used

	group singleflight.Group
}

// New creates an LRUCache with the given capacity in bytes.
func New(capacityBytes uint64) *LRUCache {
	return &LRUCache{
		capacity: capacityBytes,
		items:    make(map[Key]*list.Element),
		order:    list.New(),
	}
}

// lookup returns the cached block for key, promoting it to most-recently-used.
func (c *LRUCache) lookup(key Key) (*block.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// insert adds blk to the cache under key, evicting least-recently-used
// entries as needed to respect the capacity.
func (c *LRUCache) insert(key Key, blk *block.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.usage -= elem.Value.(*entry).charge
		c.order.Remove(elem)
		delete(c.items, key)
	}

	charge := uint64(blk.Size())
	elem := c.order.PushFront(&entry{key: key, value: blk, charge: charge})
	c.items[key] = elem
	c.usage += charge

	for c.usage > c.capacity && c.order.Len() > 0 {
		c.evictOldest()
	}
}

func (c *LRUCache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	c.order.Remove(back)
	delete(c.items, e.key)
	c.usage -= e.charge
}

// Erase removes key from the cache, if present.
func (c *LRUCache) Erase(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return
	}
	c.order.Remove(elem)
	delete(c.items, key)
	c.usage -= elem.Value.(*entry).charge
}

// Usage returns the current total charge of cached entries, in bytes.
func (c *LRUCache) Usage() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// Len returns the number of cached entries.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// GetOrLoad implements Cache.
func (c *LRUCache) GetOrLoad(key Key, loader func() (*block.Block, error)) (*block.Block, error) {
	if blk, ok := c.lookup(key); ok {
		return blk, nil
	}

	v, err, _ := c.group.Do(key.flightKey(), func() (any, error) {
		// Re-check: another fill may have completed while we were
		// scheduled but before we joined the singleflight group.
		if blk, ok := c.lookup(key); ok {
			return blk, nil
		}
		blk, err := loader()
		if err != nil {
			return nil, err
		}
		c.insert(key, blk)
		return blk, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*block.Block), nil
}
