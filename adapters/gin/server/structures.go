package server

import (
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/prometheus"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ServerOptions encapsulates the configuration for the Gin server
type ServerOptions struct {
	gracefulTimeOut   time.Duration
	gzip              bool
	metrics           *prometheus.MetricsCollector
	rateLimit         rate.Limit
	rateBurst         int
	trustedProxies    []string
	GlobalMiddlewares []gin.HandlerFunc
	Routes            []RouteConfig
	log               *log.Log
}

// DefaultServerOptions returns the default server options
func DefaultServerOptions() *ServerOptions {
	return &ServerOptions{
		gracefulTimeOut:   time.Duration(10) * time.Second, // Default TimeOut
		GlobalMiddlewares: []gin.HandlerFunc{},
		Routes:            []RouteConfig{},
	}
}

// RouteConfig defines an individual route
type RouteConfig struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// NewRouteConfig creates a new RouteConfig instance
func NewRouteConfig(method, path string, handler gin.HandlerFunc) RouteConfig {
	return RouteConfig{
		Method:  method,
		Path:    path,
		Handler: handler,
	}
}

// RouteSpec describes a route for registration and, on the documented router, for the API docs.
type RouteSpec struct {
	Method      string
	Path        string
	Tag         string
	Summary     string
	OperationID string
	// Query, Body and Response are zero-valued schema instances; nil means absent.
	Query    any
	Body     any
	Response any
}
