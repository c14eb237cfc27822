package vectorstore

import (
	"container/list"
	"sync"
)

// handleCache is a bounded LRU cache of table handles. It is safe for
// concurrent use; a single mutex guards both the map and the recency list
// since every operation is O(1).
type handleCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key    string
	handle Handle
}

func newHandleCache(maxSize int) *handleCache {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &handleCache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *handleCache) get(key string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return Handle{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).handle, true
}

func (c *handleCache) set(key string, handle Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).handle = handle
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, handle: handle})
	c.entries[key] = el

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

func (c *handleCache) drop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

func (c *handleCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
