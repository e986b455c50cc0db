package idempotency

import (
	"sync"
	"time"
)

const (
	DefaultCleanupInterval = 10 * time.Minute
)

// IdempotencyManager tracks processed event ids so redelivered events can be dropped.
// Entries older than the cleanup interval are forgotten by a background sweep.
type IdempotencyManager[K comparable] struct {
	trackedEvents   map[K]time.Time
	mu              sync.Mutex
	cleanupInterval time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

// NewIdempotencyManager creates a new instance of IdempotencyManager with the specified cleanup interval.
func NewIdempotencyManager[K comparable](cleanupInterval time.Duration) *IdempotencyManager[K] {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	manager := &IdempotencyManager[K]{
		trackedEvents:   make(map[K]time.Time),
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
	}
	go manager.startCleanup()
	return manager
}

func (m *IdempotencyManager[K]) startCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.cleanupProcessedMessages()
		}
	}
}

func (m *IdempotencyManager[K]) cleanupProcessedMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for trackingID, timestamp := range m.trackedEvents {
		if now.Sub(timestamp) > m.cleanupInterval {
			delete(m.trackedEvents, trackingID)
		}
	}
}

// MarkAsProcessed marks an event with the given trackingID as processed.
func (m *IdempotencyManager[K]) MarkAsProcessed(trackingID K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackedEvents[trackingID] = time.Now()
}

// IsProcessed checks if an event with the given trackingID has already been processed.
func (m *IdempotencyManager[K]) IsProcessed(trackingID K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.trackedEvents[trackingID]
	return exists
}

// FirstSeen marks trackingID and reports whether this was its first sighting.
func (m *IdempotencyManager[K]) FirstSeen(trackingID K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.trackedEvents[trackingID]; exists {
		return false
	}
	m.trackedEvents[trackingID] = time.Now()
	return true
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (m *IdempotencyManager[K]) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}
