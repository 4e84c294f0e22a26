package facematch

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache is a bounded, concurrency-safe LRU for localization results.
// It is shared by all workers within a run and reused across runs, so
// the same photo is only localized once. Keys are content hashes:
// duplicate bytes under different names hit the same entry and a
// renamed file cannot alias a stale one.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	key     string
	regions []Region
}

// NewCache creates an LRU holding at most capacity entries. A capacity
// below one is treated as one.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// CacheKey derives the cache key for a photo's encoded bytes.
func CacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached regions for a key and marks the entry as
// recently used.
func (c *Cache) Get(key string) ([]Region, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).regions, true
}

// Put stores regions under a key, evicting the least recently used
// entry when full.
func (c *Cache) Put(key string, regions []Region) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).regions = regions
		return
	}
	el := c.order.PushFront(&cacheEntry{key: key, regions: regions})
	c.items[key] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
