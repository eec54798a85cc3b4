// Package memory holds in-process caches.
package memory

import (
	"container/list"
	"sync"
	"time"
)

type item[K comparable, V any] struct {
	key     K
	value   V
	size    int
	expires time.Time
}

// TTLCache is a mutex-guarded LRU whose entries also expire after a fixed TTL.
// It is bounded by entry count and, when maxBytes > 0, by the summed sizes
// passed to Set.
type TTLCache[K comparable, V any] struct {
	mu       sync.Mutex
	order    *list.List
	items    map[K]*list.Element
	limit    int
	maxBytes int
	bytes    int
	ttl      time.Duration
	now      func() time.Time

	hits, misses uint64
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries int    `json:"entries"`
	Bytes   int    `json:"bytes"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func NewTTLCache[K comparable, V any](limit, maxBytes int, ttl time.Duration) *TTLCache[K, V] {
	if limit <= 0 {
		limit = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TTLCache[K, V]{
		order:    list.New(),
		items:    make(map[K]*list.Element),
		limit:    limit,
		maxBytes: maxBytes,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a live entry and marks it most recently used. Expired entries
// are dropped on access.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	it := el.Value.(*item[K, V])
	if !c.now().Before(it.expires) {
		c.remove(el)
		c.misses++
		return zero, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return it.value, true
}

func (c *TTLCache[K, V]) Set(key K, value V, size int) {
	if c == nil {
		return
	}
	if size < 0 {
		size = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		it := el.Value.(*item[K, V])
		c.bytes += size - it.size
		it.value, it.size, it.expires = value, size, expires
		c.order.MoveToFront(el)
	} else {
		c.items[key] = c.order.PushFront(&item[K, V]{key: key, value: value, size: size, expires: expires})
		c.bytes += size
	}
	for c.order.Len() > 0 && (c.order.Len() > c.limit || (c.maxBytes > 0 && c.bytes > c.maxBytes)) {
		c.remove(c.order.Back())
	}
}

func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Purge drops every entry.
func (c *TTLCache[K, V]) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[K]*list.Element)
	c.bytes = 0
}

func (c *TTLCache[K, V]) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: c.order.Len(), Bytes: c.bytes, Hits: c.hits, Misses: c.misses}
}

func (c *TTLCache[K, V]) remove(el *list.Element) {
	c.order.Remove(el)
	it := el.Value.(*item[K, V])
	delete(c.items, it.key)
	c.bytes -= it.size
	if c.bytes < 0 {
		c.bytes = 0
	}
}
