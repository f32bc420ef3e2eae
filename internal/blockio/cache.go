package blockio

import (
	"container/list"
	"sync"

	"github.com/go-forensics/apfs/internal/types"
)

// blockCache is a size-capped LRU cache of raw block data, keyed by block
// address. Unlike a single map-with-clear-on-overflow cache, this evicts
// one least-recently-used entry at a time, matching the container/list-
// backed design this module's B-tree node cache also uses.
type blockCache struct {
	mu sync.RWMutex

	entries  map[types.Paddr]*list.Element
	order    *list.List
	maxBytes int64
	curBytes int64

	hits, misses, evictions int64
}

type cacheEntry struct {
	address types.Paddr
	data    []byte
}

func newBlockCache(maxBytes int64) *blockCache {
	if maxBytes <= 0 {
		maxBytes = 64 * 1024 * 1024
	}
	return &blockCache{
		entries:  make(map[types.Paddr]*list.Element),
		order:    list.New(),
		maxBytes: maxBytes,
	}
}

func (c *blockCache) get(address types.Paddr) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[address]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return elem.Value.(*cacheEntry).data, true
}

func (c *blockCache) put(address types.Paddr, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[address]; ok {
		c.order.MoveToFront(existing)
		return
	}

	elem := c.order.PushFront(&cacheEntry{address: address, data: data})
	c.entries[address] = elem
	c.curBytes += int64(len(data))

	for c.curBytes > c.maxBytes && c.order.Len() > 1 {
		c.evictOldest()
	}
}

func (c *blockCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.order.Remove(elem)
	delete(c.entries, entry.address)
	c.curBytes -= int64(len(entry.data))
	c.evictions++
}

func (c *blockCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[types.Paddr]*list.Element)
	c.order = list.New()
	c.curBytes = 0
}

// stats reports cache hit/miss/eviction counters for diagnostics.
func (c *blockCache) stats() (hits, misses, evictions int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, c.evictions
}
