package btree

import (
	"container/list"
	"sync"

	"github.com/go-forensics/apfs/internal/types"
)

// NodeCache is an LRU cache of decoded B-tree nodes keyed by the physical
// address they were read from, adapted from the object-map node cache's
// container/list-backed single-mutex design, generalized to any tree
// instead of being object-map-specific.
type NodeCache struct {
	mu sync.RWMutex

	entries map[types.Paddr]*list.Element
	order   *list.List
	maxSize int

	hits, misses, evictions int64
}

type nodeCacheEntry struct {
	addr types.Paddr
	node *Node
}

// NewNodeCache creates a node cache holding at most maxNodes decoded nodes.
func NewNodeCache(maxNodes int) *NodeCache {
	if maxNodes <= 0 {
		maxNodes = 1000
	}
	return &NodeCache{
		entries: make(map[types.Paddr]*list.Element),
		order:   list.New(),
		maxSize: maxNodes,
	}
}

func (c *NodeCache) get(addr types.Paddr) (*Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[addr]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return elem.Value.(*nodeCacheEntry).node, true
}

func (c *NodeCache) put(addr types.Paddr, node *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[addr]; ok {
		c.order.MoveToFront(existing)
		return
	}

	elem := c.order.PushFront(&nodeCacheEntry{addr: addr, node: node})
	c.entries[addr] = elem

	for c.order.Len() > c.maxSize {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.order.Remove(back)
		delete(c.entries, back.Value.(*nodeCacheEntry).addr)
		c.evictions++
	}
}

// Clear drops every cached node.
func (c *NodeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[types.Paddr]*list.Element)
	c.order = list.New()
}

// Stats reports hit/miss/eviction counters for diagnostics.
func (c *NodeCache) Stats() (hits, misses, evictions int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, c.evictions
}
