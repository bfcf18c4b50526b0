// Package cache provides a bounded, time-expiring in-process store for
// parsed extraction results. It is a pure optimization: values are derived
// solely from input text, so last-write-wins on concurrent puts is fine
// and losing the whole cache on restart costs only repeat provider calls.
package cache

import (
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds the number of live entries.
	DefaultCapacity = 500
	// DefaultTTL is the maximum age before an entry is treated as a miss.
	DefaultTTL = 24 * time.Hour
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache maps text fingerprints to previously computed results. Eviction is
// by TTL on read and by insertion order (oldest first) once the store
// exceeds its capacity. Not LRU: reads do not refresh an entry's position.
type Cache[V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]entry[V]
	order    []string
	now      func() time.Time
}

// New creates a cache with the given capacity and TTL. Non-positive values
// fall back to the defaults.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache[V]{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]entry[V]),
		now:      time.Now,
	}
}

// WithClock replaces the cache's time source. Intended for tests that need
// to control TTL expiry without sleeping.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the cached value for key. A stale entry is evicted and
// reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if c.now().Sub(e.insertedAt) > c.ttl {
		c.removeLocked(key)
		return zero, false
	}

	return e.value, true
}

// Put stores value under key. Overwriting an existing key keeps its
// position in the insertion order. When the store grows past capacity the
// single oldest-inserted entry is evicted.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}

	for len(c.entries) > c.capacity && len(c.order) > 0 {
		c.removeLocked(c.order[0])
	}
}

func (c *Cache[V]) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of live entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
