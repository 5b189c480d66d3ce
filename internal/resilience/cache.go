package resilience

import (
	"container/list"
	"sync"
	"time"
)

// CacheStats reports usage counters for a Cache.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
	HitRate   *float64 // nil when no requests have been made yet
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	hasTTL    bool
}

// Cache is a generic LRU cache with optional per-entry TTL.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	maxSize    int
	ttl        time.Duration
	onEviction func(K, V)

	ll    *list.List // front = most recently used
	items map[K]*list.Element

	hits, misses, evictions int64

	// singleflight-style in-flight markers for GetOrCompute
	inflight map[K]chan struct{}
}

// NewCache constructs a Cache. ttl <= 0 disables expiry.
func NewCache[K comparable, V any](maxSize int, ttl time.Duration, onEviction func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		maxSize:    maxSize,
		ttl:        ttl,
		onEviction: onEviction,
		ll:         list.New(),
		items:      make(map[K]*list.Element),
		inflight:   make(map[K]chan struct{}),
	}
}

func (c *Cache[K, V]) expired(e *entry[K, V]) bool {
	return e.hasTTL && time.Now().After(e.expiresAt)
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expired(e) {
		c.removeElement(el)
		c.misses++
		var zero V
		return zero, false
	}
	c.ll.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Set inserts or updates key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *Cache[K, V]) setLocked(key K, value V) {
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		if c.ttl > 0 {
			e.expiresAt = time.Now().Add(c.ttl)
			e.hasTTL = true
		}
		c.ll.MoveToFront(el)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	if c.ttl > 0 {
		e.expiresAt = time.Now().Add(c.ttl)
		e.hasTTL = true
	}
	el := c.ll.PushFront(e)
	c.items[key] = el

	if c.maxSize > 0 && c.ll.Len() > c.maxSize {
		oldest := c.ll.Back()
		if oldest != nil {
			c.removeElement(oldest)
			c.evictions++
		}
	}
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	e := el.Value.(*entry[K, V])
	c.ll.Remove(el)
	delete(c.items, e.key)
	if c.onEviction != nil {
		c.onEviction(e.key, e.value)
	}
}

// Has reports whether key is present and unexpired, without affecting LRU
// order or hit/miss stats.
func (c *Cache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return false
	}
	return !c.expired(el.Value.(*entry[K, V]))
}

// Delete removes key if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Clear empties the cache without affecting cumulative stats.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll = list.New()
	c.items = make(map[K]*list.Element)
}

// CleanupExpired purges expired entries and returns the count removed.
func (c *Cache[K, V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return 0
	}
	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*entry[K, V])) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// GetStats returns a snapshot of cache statistics.
func (c *Cache[K, V]) GetStats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := CacheStats{
		Hits: c.hits, Misses: c.misses, Evictions: c.evictions,
		Size: c.ll.Len(), MaxSize: c.maxSize,
	}
	total := c.hits + c.misses
	if total > 0 {
		rate := float64(c.hits) / float64(total) * 100
		stats.HitRate = &rate
	}
	return stats
}

// ResetStats zeroes the cumulative hit/miss/eviction counters.
func (c *Cache[K, V]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// GetOrCompute returns the cached value for key, computing and storing it
// via factory on a miss. Concurrent calls for the same key are coalesced:
// only one factory invocation runs per key at a time.
func (c *Cache[K, V]) GetOrCompute(key K, factory func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	if ch, inFlight := c.inflight[key]; inFlight {
		c.mu.Unlock()
		<-ch
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		var zero V
		return zero, nil
	}
	ch := make(chan struct{})
	c.inflight[key] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		close(ch)
	}()

	v, err := factory()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}
