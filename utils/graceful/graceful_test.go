package graceful

import (
	"errors"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitRecorder struct{ code atomic.Int32 }

func (e *exitRecorder) exit(code int) { e.code.Store(int32(code) + 100) }

func (e *exitRecorder) called() (int, bool) {
	v := e.code.Load()
	return int(v) - 100, v != 0
}

func TestShutdownRunsOnce(t *testing.T) {
	l := New(time.Second)
	var runs atomic.Int32
	fn := func() error {
		runs.Add(1)
		return errors.New("listener close failed")
	}

	err := l.Shutdown(fn)
	require.EqualError(t, err, "listener close failed")
	assert.Equal(t, err, l.Shutdown(fn))
	assert.EqualValues(t, 1, runs.Load())

	select {
	case <-l.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestShutdownForcesExitWhenTeardownHangs(t *testing.T) {
	recorder := &exitRecorder{}
	l := New(50*time.Millisecond, WithExit(recorder.exit))
	hang := make(chan struct{})
	defer close(hang)

	start := time.Now()
	err := l.Shutdown(func() error {
		<-hang
		return nil
	})
	assert.ErrorIs(t, err, ErrForcedExit)
	assert.Less(t, time.Since(start), time.Second)

	code, called := recorder.called()
	require.True(t, called)
	assert.Equal(t, 1, code)
}

func TestSignalTriggersShutdown(t *testing.T) {
	l := New(time.Second)
	var runs atomic.Int32
	l.HandleSignals(func() error {
		runs.Add(1)
		return nil
	})

	l.signals <- syscall.SIGTERM
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("shutdown not triggered")
	}
	assert.EqualValues(t, 1, runs.Load())
}

func TestExitUsesExitFunction(t *testing.T) {
	recorder := &exitRecorder{}
	New(0, WithExit(recorder.exit)).Exit(1)
	code, called := recorder.called()
	require.True(t, called)
	assert.Equal(t, 1, code)
}
