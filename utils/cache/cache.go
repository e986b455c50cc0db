package cache

import "time"

// CacheType represents the type of cache implementation to use
type CacheType int

const (
	// Basic is a simple in-memory cache with optional expiry
	Basic CacheType = iota
	// LRU is a Least Recently Used cache implementation
	LRU
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

// Cache defines an interface for generic caching operations.
type Cache[K comparable, V any] interface {
	Set(key K, value V)                                 // Set the value associated with the given key.
	SetWithExpiry(key K, value V, expiry time.Duration) // Set the value with an expiration time.
	Get(key K) (V, bool)                                // Get the value and whether it exists and has not expired.
	Delete(key K)                                       // Delete the entry associated with the given key.
	Clear()                                             // Clear all entries from the cache.
	Len() int                                           // Return the number of entries currently in the cache.
	StopCleanup()                                       // Stop the background cleanup goroutine; safe to call twice.
}

// CacheConfig holds configuration options for creating caches
type CacheConfig struct {
	// Type determines which cache implementation to use
	Type CacheType
	// CleanupInterval specifies how often to run the cleanup routine
	CleanupInterval time.Duration
	// MaxSize sets the maximum number of items for LRU cache (ignored for Basic cache)
	MaxSize int
}

// New creates a typed cache from config.
func New[K comparable, V any](config CacheConfig) Cache[K, V] {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}
	switch config.Type {
	case LRU:
		return NewLRUCacheWithCleanupInterval[K, V](config.MaxSize, config.CleanupInterval)
	default:
		return NewBasicCacheWithCleanupInterval[K, V](config.CleanupInterval)
	}
}

// item wraps values with an optional expiry time.
type item[V any] struct {
	value  V
	expiry time.Time // zero means no expiry
}

func (i item[V]) expired(now time.Time) bool {
	return !i.expiry.IsZero() && now.After(i.expiry)
}

func newItem[V any](value V, ttl time.Duration) item[V] {
	it := item[V]{value: value}
	if ttl > 0 {
		it.expiry = time.Now().Add(ttl)
	}
	return it
}
