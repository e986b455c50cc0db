// Package cache selects and builds the process-wide ports.Cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/abhissng/chargehub/adapters/redis"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/ports"
	utilcache "github.com/abhissng/chargehub/utils/cache"
	"github.com/abhissng/chargehub/utils/helpers"
)

// MemoryKind is the marker returned by Memory.Kind.
const MemoryKind = "memory"

// New builds a Redis cache when cfg.Redis is set, an in-process cache otherwise.
func New(cfg config.CacheConfig) (ports.Cache, error) {
	if cfg.Redis != nil {
		if helpers.IsEmpty(cfg.Redis.Host) || cfg.Redis.Port <= 0 {
			return nil, errors.New("util.cache.redis requires host and port")
		}
		return redis.NewRedisManager(redis.Config{
			Addr:      helpers.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Username:  cfg.Redis.Username,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}), nil
	}
	maxEntries := 0
	if cfg.Memory != nil {
		maxEntries = cfg.Memory.MaxEntries
	}
	return NewMemory(maxEntries), nil
}

// Memory is the in-process ports.Cache.
type Memory struct {
	store utilcache.Cache[string, string]
}

var _ ports.Cache = (*Memory)(nil)

// NewMemory returns an unbounded cache, or an LRU-bounded one when maxEntries > 0.
func NewMemory(maxEntries int) *Memory {
	cfg := utilcache.CacheConfig{Type: utilcache.Basic}
	if maxEntries > 0 {
		cfg = utilcache.CacheConfig{Type: utilcache.LRU, MaxSize: maxEntries}
	}
	return &Memory{store: utilcache.New[string, string](cfg)}
}

// Get returns the value and whether it was present.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.store.Get(key)
	return v, ok, nil
}

// Set stores value; ttl <= 0 means no expiry.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.store.SetWithExpiry(key, value, ttl)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// Kind identifies the implementation.
func (m *Memory) Kind() string {
	return MemoryKind
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	return m.store.Len()
}

// Close stops the expiry sweeper.
func (m *Memory) Close() error {
	m.store.StopCleanup()
	return nil
}

// GetJSON decodes the value at key into dst. It reports false when the key is absent.
func GetJSON(ctx context.Context, c ports.Cache, key string, dst any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value at key as JSON.
func SetJSON(ctx context.Context, c ports.Cache, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(raw), ttl)
}

// Key joins key parts with ':'.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
