package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/abhissng/chargehub/adapters/gin/middleware"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/validator"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/gin-gonic/gin"
)

// ErrAlreadyListening is returned by a second Listen.
var ErrAlreadyListening = errors.New("server is already listening")

// Server is the HTTP listener shared by every module API.
// Routes go either on the root router or on the documented router; the latter
// also records them for the API documentation.
type Server struct {
	engine  *gin.Engine
	options *ServerOptions
	logger  *log.Log
	limiter *middleware.IPRateLimiter

	root       *Router
	documented *Router

	mu         sync.RWMutex
	validator  *validator.Validator
	httpServer *http.Server
	listener   net.Listener
	specs      []RouteSpec
}

// NewServer builds the engine and applies global middlewares. It does not bind.
func NewServer(opts ...ServerOption) *Server {
	options := DefaultServerOptions()
	for _, opt := range opts {
		opt(options)
	}

	if helpers.IsProdEnvironment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := options.log
	if logger == nil {
		logger = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
	logger = logger.With(log.Component("listener"))

	router := gin.New()
	if err := router.SetTrustedProxies(options.trustedProxies); err != nil {
		logger.Warn("invalid trusted proxies", log.Err(err))
	}
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.GinRequestLogger(logger, constant.HealthPath, constant.MetricsPath))

	s := &Server{engine: router, options: options, logger: logger}

	if options.rateLimit > 0 {
		burst := options.rateBurst
		if burst <= 0 {
			burst = int(options.rateLimit) + 1
		}
		s.limiter = middleware.NewIPRateLimiter(options.rateLimit, burst, 5*time.Minute)
		router.Use(s.limiter.Middleware())
	}
	if options.metrics != nil {
		router.Use(middleware.GinMiddleware(options.metrics))
		middleware.RegisterMetricsEndpoint(router, options.metrics)
	}
	if options.gzip {
		router.Use(middleware.CompressionMiddleware())
	}
	for _, mw := range options.GlobalMiddlewares {
		router.Use(mw)
	}

	s.root = &Router{server: s}
	s.documented = &Router{server: s, documented: true}

	for _, route := range options.Routes {
		if err := s.root.Handle(RouteSpec{Method: route.Method, Path: route.Path}, route.Handler); err != nil {
			logger.Error("route registration failed", log.String("path", route.Path), log.Err(err))
		}
	}
	return s
}

// Engine exposes the gin engine, mainly for tests and docs mounting.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ServeHTTP lets the server be driven without a socket.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Root returns the router for undocumented routes.
func (s *Server) Root() *Router {
	return s.root
}

// Documented returns the router whose routes appear in the API documentation.
func (s *Server) Documented() *Router {
	return s.documented
}

// SetValidator registers the schema validator used by route handlers.
func (s *Server) SetValidator(v *validator.Validator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validator = v
}

// Validator returns the registered validator, or a default one when none was set.
func (s *Server) Validator() *validator.Validator {
	s.mu.RLock()
	v := s.validator
	s.mu.RUnlock()
	if v != nil {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validator == nil {
		s.validator = validator.NewValidator()
	}
	return s.validator
}

// DocumentedRoutes returns the routes registered on the documented router, in registration order.
func (s *Server) DocumentedRoutes() []RouteSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RouteSpec(nil), s.specs...)
}

// Listen binds host:port and serves in the background. The bind error, if any, is returned.
func (s *Server) Listen(host string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrAlreadyListening
	}

	address := helpers.JoinHostPort(host, port)
	listener, err := net.Listen(string(constant.TCP), address)
	if err != nil {
		return err
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func(srv *http.Server, l net.Listener) {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listener stopped", log.String("address", l.Addr().String()), log.Err(err))
		}
	}(s.httpServer, listener)

	s.logger.Info(constant.SystemReady, log.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting connections and waits for in-flight requests up to the graceful timeout.
func (s *Server) Close(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.StopCleanup()
	}

	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.options.gracefulTimeOut)
	defer cancel()
	s.logger.Info("Gracefully shutting down listener")
	return srv.Shutdown(ctx)
}

// Router registers routes on the server's engine.
type Router struct {
	server     *Server
	documented bool
}

// Handle registers handlers for spec.Method and spec.Path. Conflicting registrations return an error.
func (r *Router) Handle(spec RouteSpec, handlers ...gin.HandlerFunc) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("register %s %s: %v", spec.Method, spec.Path, rec)
		}
	}()

	r.server.engine.Handle(spec.Method, spec.Path, handlers...)

	if r.documented {
		r.server.mu.Lock()
		r.server.specs = append(r.server.specs, spec)
		r.server.mu.Unlock()
	}
	r.server.logger.Debug(constant.RouteRegistered,
		log.String("method", spec.Method), log.String("path", spec.Path), log.Bool("documented", r.documented))
	return nil
}

// IsDocumented reports whether routes on r appear in the API documentation.
func (r *Router) IsDocumented() bool {
	return r.documented
}
