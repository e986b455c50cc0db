package nats

import (
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/utils/circuitBreaker"
	"github.com/abhissng/chargehub/utils/idempotency"
	"github.com/abhissng/chargehub/utils/types"
)

// Option defines a functional option for configuring NATSManager.
type Option func(*NATSManager)

// WithLogger sets the logger  for the manager.
func WithLogger(log *log.Log) Option {
	return func(w *NATSManager) {
		if log != nil {
			w.logger = log
		}
	}
}

// WithCircuitBreaker guards every publish with a circuit breaker.
func WithCircuitBreaker(options ...circuitBreaker.CircuitBreakerOption) Option {
	options = append([]circuitBreaker.CircuitBreakerOption{circuitBreaker.WithName(BreakerName)}, options...)

	return func(w *NATSManager) {
		w.breaker = circuitBreaker.NewCircuitBreaker(options...)
	}
}

// WithIdempotencyManager drops redelivered messages seen within cleanUpInterval.
func WithIdempotencyManager(cleanUpInterval time.Duration) Option {
	return func(w *NATSManager) {
		if w.idempotencyManager != nil {
			w.idempotencyManager.Close()
		}
		w.idempotencyManager = idempotency.NewIdempotencyManager[string](cleanUpInterval)
	}
}

// WithCodec selects the payload encoding used by Publish.
func WithCodec(codecType types.CodecType) Option {
	return func(w *NATSManager) {
		w.codec = codecType
	}
}

// WithName sets the connection name reported to the server.
func WithName(name string) Option {
	return func(w *NATSManager) {
		w.name = name
	}
}

// WithReconnect configures the reconnection policy. Zero values keep the defaults.
func WithReconnect(maxReconnects int, wait time.Duration) Option {
	return func(w *NATSManager) {
		if maxReconnects != 0 {
			w.maxReconnects = maxReconnects
		}
		if wait > 0 {
			w.reconnectWait = wait
		}
	}
}

// WithConnectTimeout bounds the initial dial.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(w *NATSManager) {
		if timeout > 0 {
			w.timeout = timeout
		}
	}
}
