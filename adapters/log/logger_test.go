package log

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/abhissng/chargehub/blame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(NewLoggerConfig(false, WithLevel("loud")))
	assert.Error(t, err)
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chargehub.log")
	l, err := NewLogger(NewLoggerConfig(true, WithFile(&FileConfig{Path: path})))
	require.NoError(t, err)

	l.Info("hello")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestSetLevelPropagatesToChildren(t *testing.T) {
	l, err := NewLogger(NewLoggerConfig(false, WithLevel("info")))
	require.NoError(t, err)
	child := l.With(Component("test"))

	assert.False(t, child.Core().Enabled(zapcore.DebugLevel))
	require.NoError(t, l.SetLevel("debug"))
	assert.True(t, child.Core().Enabled(zapcore.DebugLevel))
}

func TestBlameField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))

	l.Error("failed", Blame(blame.PersistenceSyncError(errors.New("timeout"))))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "timeout", ctx[string(blame.ErrorPersistenceSyncFailed)])
}
