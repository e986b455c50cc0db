package server

import (
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/prometheus"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ServerOption defines a functional option for configuring the server
type ServerOption func(*ServerOptions)

// WithGlobalMiddleware adds global middleware
func WithGlobalMiddleware(middleware gin.HandlerFunc) ServerOption {
	return func(o *ServerOptions) {
		o.GlobalMiddlewares = append(o.GlobalMiddlewares, middleware)
	}
}

// WithRoutes adds routes directly on the engine.
func WithRoutes(routes ...RouteConfig) ServerOption {
	return func(o *ServerOptions) {
		o.Routes = append(o.Routes, routes...)
	}
}

// WithGracefulTimeOut bounds how long Close waits for in-flight requests.
func WithGracefulTimeOut(timeOut time.Duration) ServerOption {
	return func(o *ServerOptions) {
		if timeOut > 0 {
			o.gracefulTimeOut = timeOut
		}
	}
}

// WithGzip enables response compression.
func WithGzip(enabled bool) ServerOption {
	return func(o *ServerOptions) {
		o.gzip = enabled
	}
}

// WithMetrics instruments every request and serves the metrics endpoint.
func WithMetrics(mc *prometheus.MetricsCollector) ServerOption {
	return func(o *ServerOptions) {
		o.metrics = mc
	}
}

// WithRateLimit enables per-IP rate limiting. A non-positive rate disables it.
func WithRateLimit(requestsPerSecond float64, burst int) ServerOption {
	return func(o *ServerOptions) {
		o.rateLimit = rate.Limit(requestsPerSecond)
		o.rateBurst = burst
	}
}

// WithTrustedProxies sets the proxies whose forwarding headers are trusted for the client IP.
func WithTrustedProxies(proxies ...string) ServerOption {
	return func(o *ServerOptions) {
		o.trustedProxies = proxies
	}
}

// WithLogger sets the logger for the server
func WithLogger(log *log.Log) ServerOption {
	return func(o *ServerOptions) {
		o.log = log
	}
}
