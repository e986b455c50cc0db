package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind is the marker returned by RedisManager.Kind.
const Kind = "redis"

// Config holds the configuration for the Redis wrapper.
type Config struct {
	Addr     string // e.g., "localhost:6379"
	Username string
	Password string // Leave empty if no password
	DB       int    // Default is 0
	// KeyPrefix is prepended to every key, separated by ':'.
	KeyPrefix string
	// DialTimeout bounds connection attempts; zero keeps the go-redis default.
	DialTimeout time.Duration
}

// RedisManager is a string cache over the go-redis client.
// The client connects on first use, so construction never touches the network.
type RedisManager struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisManager builds the client without dialing.
func NewRedisManager(cfg Config) *RedisManager {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	return &RedisManager{client: rdb, keyPrefix: cfg.KeyPrefix}
}

// Client returns the underlying go-redis client instance for advanced use cases.
func (rw *RedisManager) Client() *redis.Client {
	return rw.client
}

// Kind identifies the implementation.
func (rw *RedisManager) Kind() string {
	return Kind
}

// Ping checks connectivity.
func (rw *RedisManager) Ping(ctx context.Context) error {
	if err := rw.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis at %s: %w", rw.client.Options().Addr, err)
	}
	return nil
}

// Close closes the underlying Redis client connection.
func (rw *RedisManager) Close() error {
	if rw.client != nil {
		return rw.client.Close()
	}
	return nil
}

func (rw *RedisManager) key(key string) string {
	if rw.keyPrefix == "" {
		return key
	}
	return rw.keyPrefix + ":" + key
}

// Set stores a string value for a key. A ttl of 0 means the key persists indefinitely.
func (rw *RedisManager) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := rw.client.Set(ctx, rw.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Get retrieves a string value for a key; a missing key is reported through the bool.
func (rw *RedisManager) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := rw.client.Get(ctx, rw.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, true, nil
}

// Delete removes a key.
func (rw *RedisManager) Delete(ctx context.Context, key string) error {
	if err := rw.client.Del(ctx, rw.key(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
