package plugin

import (
	"sync"
	"time"
)

// TimedCache is a shared cache that empties itself when it is accessed after
// being idle for longer than its ttl. Entries never expire individually.
type TimedCache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	items      map[K]V
	lastAccess time.Time
	now        func() time.Time
}

// NewTimedCache creates a cache. A ttl <= 0 never clears.
func NewTimedCache[K comparable, V any](ttl time.Duration) *TimedCache[K, V] {
	return &TimedCache[K, V]{ttl: ttl, items: make(map[K]V), now: time.Now}
}

// touch clears stale contents and records the access; callers hold mu
func (c *TimedCache[K, V]) touch() {
	now := c.now()
	if c.ttl > 0 && !c.lastAccess.IsZero() && now.Sub(c.lastAccess) > c.ttl {
		c.items = make(map[K]V)
	}
	c.lastAccess = now
}

// Get returns a cached value
func (c *TimedCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touch()
	v, ok := c.items[key]
	return v, ok
}

// Add stores a value
func (c *TimedCache[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touch()
	c.items[key] = value
}

// Clear empties the cache
func (c *TimedCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]V)
}

// Len returns the number of cached entries
func (c *TimedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// SetClock replaces the time source
func (c *TimedCache[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
