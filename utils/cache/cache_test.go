package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func implementations(t *testing.T) map[string]Cache[string, string] {
	t.Helper()
	caches := map[string]Cache[string, string]{
		"basic": New[string, string](CacheConfig{Type: Basic}),
		"lru":   New[string, string](CacheConfig{Type: LRU, MaxSize: 16}),
	}
	t.Cleanup(func() {
		for _, c := range caches {
			c.StopCleanup()
			c.StopCleanup()
		}
	})
	return caches
}

func TestSetGetDelete(t *testing.T) {
	for name, c := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			c.Set("a", "1")
			v, ok := c.Get("a")
			assert.True(t, ok)
			assert.Equal(t, "1", v)

			c.Delete("a")
			_, ok = c.Get("a")
			assert.False(t, ok)
		})
	}
}

func TestExpiry(t *testing.T) {
	for name, c := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			c.SetWithExpiry("short", "x", 10*time.Millisecond)
			c.SetWithExpiry("forever", "y", 0)

			assert.Eventually(t, func() bool {
				_, ok := c.Get("short")
				return !ok
			}, time.Second, 5*time.Millisecond)

			_, ok := c.Get("forever")
			assert.True(t, ok)
		})
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string, int](2)
	defer c.StopCleanup()

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	for name, c := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					key := strconv.Itoa(i % 8)
					c.SetWithExpiry(key, key, time.Minute)
					_, _ = c.Get(key)
					c.Delete(key)
				}()
			}
			wg.Wait()
		})
	}
}
