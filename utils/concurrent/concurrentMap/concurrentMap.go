package concurrentMap

import (
	"sync"
)

// ConcurrentMap is a map guarded by a read/write mutex.
type ConcurrentMap[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewConcurrentMap creates an empty ConcurrentMap.
func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{
		items: make(map[K]V),
	}
}

// Get returns the value stored under key.
func (m *ConcurrentMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	return value, ok
}

// Set stores value under key.
func (m *ConcurrentMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
}

// Swap stores value under key and returns the value it replaced, if any.
func (m *ConcurrentMap[K, V]) Swap(key K, value V) (previous V, loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, loaded = m.items[key]
	m.items[key] = value
	return previous, loaded
}

// Delete removes key.
func (m *ConcurrentMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
}

// DeleteIf removes key when match accepts its current value, and reports
// whether it did. match runs under the write lock.
func (m *ConcurrentMap[K, V]) DeleteIf(key K, match func(V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.items[key]
	if !ok || !match(value) {
		return false
	}
	delete(m.items, key)
	return true
}

// Len returns the number of items.
func (m *ConcurrentMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Values returns a snapshot of the stored values in no particular order.
func (m *ConcurrentMap[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]V, 0, len(m.items))
	for _, v := range m.items {
		values = append(values, v)
	}
	return values
}
