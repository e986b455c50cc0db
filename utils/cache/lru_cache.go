package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache wraps hashicorp's lru.Cache with per-entry expiry.
// lru.Cache is itself synchronized; mu only serializes the check-then-remove of expired entries.
type LRUCache[K comparable, V any] struct {
	cache           *lru.Cache[K, item[V]]
	mu              sync.Mutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewLRUCache creates a new LRU cache with the specified maximum size.
func NewLRUCache[K comparable, V any](maxSize int) Cache[K, V] {
	return NewLRUCacheWithCleanupInterval[K, V](maxSize, DefaultCleanupInterval)
}

// NewLRUCacheWithCleanupInterval creates a new LRU cache with the specified capacity and cleanup interval
func NewLRUCacheWithCleanupInterval[K comparable, V any](maxSize int, cleanupInterval time.Duration) Cache[K, V] {
	if maxSize <= 0 {
		maxSize = 1000
	}

	cache, err := lru.New[K, item[V]](maxSize)
	if err != nil {
		// only possible for a non-positive size
		panic("failed to create LRU cache: " + err.Error())
	}

	lruCache := &LRUCache[K, V]{
		cache:           cache,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go lruCache.startCleanup()

	return lruCache
}

// Set adds or updates an item in the cache without expiry
func (c *LRUCache[K, V]) Set(key K, value V) {
	c.SetWithExpiry(key, value, 0)
}

// SetWithExpiry adds or updates an item in the cache with an expiry time
func (c *LRUCache[K, V]) SetWithExpiry(key K, value V, expiry time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, newItem(value, expiry))
}

// Get retrieves an item from the cache, marking it recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, found := c.cache.Get(key)
	if !found {
		var zero V
		return zero, false
	}
	if it.expired(time.Now()) {
		c.cache.Remove(key)
		var zero V
		return zero, false
	}
	return it.value, true
}

// Delete removes an item from the cache
func (c *LRUCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(key)
}

// Clear removes all items from the cache
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// Len returns the number of items in the cache
func (c *LRUCache[K, V]) Len() int {
	return c.cache.Len()
}

func (c *LRUCache[K, V]) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *LRUCache[K, V]) cleanupExpired() {
	now := time.Now()
	for _, key := range c.cache.Keys() {
		c.mu.Lock()
		// Peek leaves recency untouched
		if it, ok := c.cache.Peek(key); ok && it.expired(now) {
			c.cache.Remove(key)
		}
		c.mu.Unlock()
	}
}

// StopCleanup stops the background cleanup goroutine
func (c *LRUCache[K, V]) StopCleanup() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}
