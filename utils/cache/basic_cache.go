package cache

import (
	"sync"
	"time"
)

// BasicCache implements the Cache interface using a simple in-memory map.
type BasicCache[K comparable, V any] struct {
	store           map[K]item[V]
	mu              sync.Mutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewBasicCache creates a new instance of BasicCache.
func NewBasicCache[K comparable, V any]() Cache[K, V] {
	return NewBasicCacheWithCleanupInterval[K, V](DefaultCleanupInterval)
}

// NewBasicCacheWithCleanupInterval creates a new instance of BasicCache with a custom cleanup interval.
func NewBasicCacheWithCleanupInterval[K comparable, V any](cleanupInterval time.Duration) Cache[K, V] {
	cache := &BasicCache[K, V]{
		store:           make(map[K]item[V]),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.startCleanup()

	return cache
}

// Set sets the value associated with the given key with no expiry.
func (c *BasicCache[K, V]) Set(key K, value V) {
	c.SetWithExpiry(key, value, 0)
}

// SetWithExpiry sets the value associated with the given key; expiry <= 0 means none.
func (c *BasicCache[K, V]) SetWithExpiry(key K, value V, expiry time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = newItem(value, expiry)
}

// Get retrieves the value associated with the given key.
func (c *BasicCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, exists := c.store[key]
	if !exists {
		var zero V
		return zero, false
	}
	if it.expired(time.Now()) {
		delete(c.store, key)
		var zero V
		return zero, false
	}
	return it.value, true
}

// Delete removes the entry associated with the given key from the cache.
func (c *BasicCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

// Clear removes all entries from the cache.
func (c *BasicCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[K]item[V])
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *BasicCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

func (c *BasicCache[K, V]) startCleanup() {
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

func (c *BasicCache[K, V]) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, it := range c.store {
		if it.expired(now) {
			delete(c.store, key)
		}
	}
}

// StopCleanup stops the background cleanup goroutine.
func (c *BasicCache[K, V]) StopCleanup() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}
