// Package cache provides a small thread-safe TTL cache.
package cache

import (
	"sync"
	"time"
)

// Entry represents a cached item with expiration
type Entry[V any] struct {
	Value      V
	Expiration time.Time
	lastUsed   time.Time
}

// IsExpired checks if the entry has expired
func (e *Entry[V]) IsExpired(now time.Time) bool {
	if e.Expiration.IsZero() {
		return false // Never expires
	}
	return now.After(e.Expiration)
}

// Cache is a thread-safe in-memory cache with TTL support. When full, the
// least recently used entry is evicted.
type Cache[V any] struct {
	mu       sync.Mutex
	items    map[string]*Entry[V]
	maxItems int
	ttl      time.Duration
	now      func() time.Time

	// Metrics
	hits   int64
	misses int64

	stop     chan struct{}
	stopOnce sync.Once
}

// Config holds cache configuration
type Config struct {
	MaxItems int
	TTL      time.Duration

	// CleanupInterval enables a background sweep of expired entries
	CleanupInterval time.Duration
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems:        256,
		TTL:             10 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// New creates a new cache instance
func New[V any](cfg Config) *Cache[V] {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultConfig().MaxItems
	}

	c := &Cache[V]{
		items:    make(map[string]*Entry[V]),
		maxItems: cfg.MaxItems,
		ttl:      cfg.TTL,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go c.cleanupLoop(cfg.CleanupInterval)
	}
	return c
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, exists := c.items[key]
	if !exists || entry.IsExpired(now) {
		if exists {
			delete(c.items, key)
		}
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	entry.lastUsed = now
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL; zero never expires
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.evictLeastRecent()
	}

	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.items[key] = &Entry[V]{Value: value, Expiration: exp, lastUsed: now}
}

// GetOrSet returns the cached value or computes and stores it. Errors are
// not cached.
func (c *Cache[V]) GetOrSet(key string, fn func() (V, error)) (V, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, val)
	return val, nil
}

// Delete removes a value from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Entry[V])
}

// Size returns the number of items in the cache
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() (hits, misses int64, hitRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits = c.hits
	misses = c.misses
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return
}

// Close stops the background cleanup
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// evictLeastRecent removes the least recently used entry (must be called with lock held)
func (c *Cache[V]) evictLeastRecent() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.items {
		if oldestKey == "" || entry.lastUsed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastUsed
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// cleanupLoop periodically removes expired entries
func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries
func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.items {
		if entry.IsExpired(now) {
			delete(c.items, key)
		}
	}
}
