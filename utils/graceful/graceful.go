// Package graceful runs a process teardown once, on demand or on a
// termination signal, and forces the process out if the teardown hangs.
package graceful

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/utils/constant"
)

// ErrForcedExit is returned by Shutdown when the teardown outlived the timeout.
var ErrForcedExit = errors.New("shutdown timed out, forcing exit")

// ShutdownFunc tears the process down.
type ShutdownFunc func() error

// Lifecycle owns the one-time teardown of a process.
type Lifecycle struct {
	timeout time.Duration
	exit    func(code int)
	logger  *log.Log

	signals chan os.Signal
	once    sync.Once
	err     error
	done    chan struct{}
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithExit replaces os.Exit, mainly for tests.
func WithExit(exit func(code int)) Option {
	return func(l *Lifecycle) {
		l.exit = exit
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Log) Option {
	return func(l *Lifecycle) {
		l.logger = logger
	}
}

// New returns a lifecycle whose teardown may take at most timeout.
func New(timeout time.Duration, opts ...Option) *Lifecycle {
	if timeout <= 0 {
		timeout = constant.ForcedExitDelay
	}
	l := &Lifecycle{
		timeout: timeout,
		exit:    os.Exit,
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.NewNop()
	}
	return l
}

// HandleSignals runs Shutdown(fn) on the first SIGINT, SIGTERM or SIGQUIT.
func (l *Lifecycle) HandleSignals(fn ShutdownFunc) {
	signal.Notify(l.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		select {
		case sig := <-l.signals:
			l.logger.Info("termination signal received", log.String("signal", sig.String()))
			_ = l.Shutdown(fn)
		case <-l.done:
		}
		signal.Stop(l.signals)
	}()
}

// Shutdown runs fn once. When fn outlives the timeout the exit function is
// called with status 1 and ErrForcedExit is returned. Later calls return the
// first result.
func (l *Lifecycle) Shutdown(fn ShutdownFunc) error {
	l.once.Do(func() {
		defer close(l.done)

		finished := make(chan error, 1)
		go func() {
			finished <- fn()
		}()

		timer := time.NewTimer(l.timeout)
		defer timer.Stop()
		select {
		case l.err = <-finished:
			l.logger.Info(constant.SystemStopped)
		case <-timer.C:
			l.err = ErrForcedExit
			l.logger.Error(ErrForcedExit.Error(), log.Duration("timeout", l.timeout))
			l.exit(1)
		}
	})
	return l.err
}

// Exit terminates the process with code through the exit function.
func (l *Lifecycle) Exit(code int) {
	l.exit(code)
}

// Done is closed once the teardown finished or was abandoned.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}
