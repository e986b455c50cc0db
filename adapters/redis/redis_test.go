package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisManagerDoesNotDial(t *testing.T) {
	rm := NewRedisManager(Config{Addr: "127.0.0.1:1", KeyPrefix: "chargehub", DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rm.Close() })

	require.NotNil(t, rm.Client())
	assert.Equal(t, Kind, rm.Kind())
	assert.Equal(t, "chargehub:station", rm.key("station"))
}

func TestUnreachableServerSurfacesErrors(t *testing.T) {
	rm := NewRedisManager(Config{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rm.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, found, err := rm.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, rm.Set(ctx, "k", "v", time.Second))
	assert.Error(t, rm.Ping(ctx))
}
