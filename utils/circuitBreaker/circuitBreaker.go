package circuitBreaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerOption is a functional option for configuring the circuit breaker.
type CircuitBreakerOption func(*gobreaker.Settings)

// WithName sets the name of the circuit breaker.
func WithName(name string) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.Name = name
	}
}

// WithTimeout sets how long the breaker stays open before probing again.
func WithTimeout(timeout time.Duration) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		if timeout > 0 {
			s.Timeout = timeout
		}
	}
}

// WithMaxRequests sets the number of probes allowed while half-open.
func WithMaxRequests(maxRequests uint32) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		if maxRequests > 0 {
			s.MaxRequests = maxRequests
		}
	}
}

// WithInterval sets the cyclic period after which closed-state counts are cleared.
func WithInterval(interval time.Duration) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		if interval > 0 {
			s.Interval = interval
		}
	}
}

// WithConsecutiveFailures trips the breaker after n consecutive failures.
func WithConsecutiveFailures(n uint32) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		if n > 0 {
			s.ReadyToTrip = func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= n
			}
		}
	}
}

// WithReadyToTrip sets the ReadyToTrip function for the circuit breaker.
func WithReadyToTrip(readyToTrip func(gobreaker.Counts) bool) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.ReadyToTrip = readyToTrip
	}
}

// WithOnStateChange registers a callback for state transitions.
func WithOnStateChange(fn func(name string, from, to gobreaker.State)) CircuitBreakerOption {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = fn
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given options.
func NewCircuitBreaker(options ...CircuitBreakerOption) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        DefaultCircuitBreakerName,
		Timeout:     DefaultBreakerTimeout,
		MaxRequests: DefaultBreakerMaxRequests,
		Interval:    DefaultBreakerInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > ((DefaultBreakerMaxRequests / 2) + 1)
		},
	}

	for _, option := range options {
		option(&settings)
	}

	return gobreaker.NewCircuitBreaker(settings)
}
