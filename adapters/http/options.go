package http

import (
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/utils/circuitBreaker"
)

// Option defines a functional option for configuring the CallbackClient
type Option func(*CallbackClient)

// WithLogger sets the log
func WithLogger(logger *log.Log) Option {
	return func(c *CallbackClient) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithTimeout sets a timeout
func WithTimeout(duration time.Duration) Option {
	return func(c *CallbackClient) {
		if duration > 0 {
			c.timeout = duration
		}
	}
}

// WithHeader sets a custom header sent with every delivery
func WithHeader(key, value string) Option {
	return func(c *CallbackClient) {
		c.headers[key] = value
	}
}

// WithFastHTTP sets the flag to use fastHTTP
func WithFastHTTP() Option {
	return func(c *CallbackClient) {
		c.useFastHTTP = true
	}
}

// WithCircuitBreaker configures the breaker guarding deliveries.
func WithCircuitBreaker(opts ...circuitBreaker.CircuitBreakerOption) Option {
	return func(c *CallbackClient) {
		c.breakerOptions = append(c.breakerOptions, opts...)
	}
}

// WithConfig applies util.callback.
func WithConfig(cfg config.CallbackConfig) Option {
	return func(c *CallbackClient) {
		if cfg.Client == ClientFastHTTP {
			c.useFastHTTP = true
		}
		if cfg.Timeout > 0 {
			c.timeout = cfg.Timeout
		}
		if b := cfg.Breaker; b != nil {
			c.breakerOptions = append(c.breakerOptions,
				circuitBreaker.WithMaxRequests(b.MaxRequests),
				circuitBreaker.WithInterval(b.Interval),
				circuitBreaker.WithTimeout(b.Timeout),
				circuitBreaker.WithConsecutiveFailures(b.ConsecutiveFailures),
			)
		}
	}
}
