package viper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
env: production
server:
  logLevel: debug
  port: 9000
  shutdownTimeout: 3s
modules:
  evdriver:
    endpointPrefix: drivers
    host: 127.0.0.1
    port: 9101
util:
  cache:
    redis:
      host: localhost
      port: 6379
  messageBroker:
    nats:
      url: nats://nats:4222
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chargehub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	cfg, err := NewViper(writeConfig(t)).Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	require.NotNil(t, cfg.Modules.EVDriver)
	assert.Equal(t, "drivers", cfg.Modules.EVDriver.EndpointPrefix)
	assert.Equal(t, 9101, cfg.Modules.EVDriver.Port)
	require.NotNil(t, cfg.Util.Cache.Redis)
	assert.Equal(t, 6379, cfg.Util.Cache.Redis.Port)
	assert.Equal(t, "nats://nats:4222", cfg.Util.MessageBroker.NATS.URL)
	// untouched defaults survive
	assert.Equal(t, "array", cfg.Util.Validator.CoerceTypes)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CHARGEHUB_SERVER_PORT", "9500")

	cfg, err := NewViper(writeConfig(t)).Load()
	require.NoError(t, err)
	assert.Equal(t, 9500, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=warn"}))

	v := NewViper(writeConfig(t))
	require.NoError(t, v.BindFlags(flags, map[string]string{"server.logLevel": "log-level"}))
	cfg, err := v.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Server.LogLevel)

	assert.Error(t, v.BindFlags(flags, map[string]string{"x": "missing"}))
}
