// Package server is the process orchestrator. It builds the shared
// infrastructure in a fixed order, constructs the central system and the
// modules selected by the deployment mode, binds the listener and tears
// everything down again on a signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	listener "github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/prometheus"
	"github.com/abhissng/chargehub/adapters/validator"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/docs"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/graceful"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/gin-gonic/gin"
)

// Server owns every component of one chargehub process.
type Server struct {
	cfg       *config.SystemConfig
	topology  Topology
	factories Factories
	table     []module.Descriptor
	timeout   time.Duration
	exit      func(code int)
	signals   bool
	port      int

	logger    *log.Log
	metrics   *prometheus.MetricsCollector
	observer  observer
	validator *validator.Validator
	listener  *listener.Server
	cache     ports.Cache
	central   ports.CentralSystem
	modules   []module.Module
	apis      []module.Api
	lifecycle *graceful.Lifecycle
}

type phase struct {
	name string
	run  func(ctx context.Context) error
}

// New builds the process for mode. Startup runs in strictly ordered phases
// and the first failing phase aborts it, releasing whatever was built.
func New(ctx context.Context, cfg *config.SystemConfig, mode string, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Util.MessageBroker.NATS == nil {
		return nil, blame.BrokerConfigMissingError()
	}
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		factories: DefaultFactories(),
		table:     Descriptors,
		timeout:   cfg.Server.ShutdownTimeout,
		exit:      os.Exit,
		signals:   true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.topology, err = Resolve(cfg, m, s.table)
	if err != nil {
		return nil, err
	}

	s.logger = log.NewBasicLogger(cfg.IsProd())
	phases := []phase{
		{"health", s.registerHealth},
		{"validator", s.buildValidator},
		{"logger", s.buildLogger},
		{"persistence", s.syncPersistence},
		{"cache", s.buildCache},
		{"docs", s.exposeDocs},
		{"validation", s.registerValidator},
		{"construction", s.construct},
		{"address", s.resolveAddress},
		{"lifecycle", s.installLifecycle},
	}
	for _, p := range phases {
		if err := p.run(ctx); err != nil {
			s.logger.Error("startup phase failed", log.String("phase", p.name), log.Err(err))
			if stopErr := s.teardown(); stopErr != nil {
				s.logger.Warn("partial teardown failed", log.Err(stopErr))
			}
			return nil, err
		}
		s.logger.Debug("startup phase done", log.String("phase", p.name))
	}
	return s, nil
}

func (s *Server) registerHealth(context.Context) error {
	if s.cfg.Server.Metrics {
		s.metrics = prometheus.NewMetricsCollector(prometheus.WithServiceName(constant.ServiceName))
		s.observer = observer{mc: s.metrics}
	}

	opts := []listener.ServerOption{
		listener.WithLogger(s.logger),
		listener.WithGzip(s.cfg.Server.Gzip),
		listener.WithMetrics(s.metrics),
	}
	if rl := s.cfg.Server.RateLimit; rl != nil {
		opts = append(opts, listener.WithRateLimit(rl.RequestsPerSecond, rl.Burst))
	}
	s.listener = listener.NewServer(opts...)

	spec := listener.RouteSpec{Method: http.MethodGet, Path: constant.HealthPath}
	return s.listener.Root().Handle(spec, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": constant.HealthyStatusMessage})
	})
}

func (s *Server) buildValidator(context.Context) error {
	s.validator = validator.NewValidator(validator.WithConfig(s.cfg.Util.Validator))
	return nil
}

func (s *Server) buildLogger(context.Context) error {
	logger, err := s.factories.Logger(s.cfg)
	if err != nil {
		return err
	}
	s.logger = logger.With(log.String("mode", s.topology.Mode.String()))
	return nil
}

func (s *Server) syncPersistence(ctx context.Context) error {
	syncer := s.factories.Syncer(s.cfg.Util.Database, s.logger)
	if err := syncer.Sync(ctx, true); err != nil {
		return blame.PersistenceSyncError(err)
	}
	return nil
}

func (s *Server) buildCache(context.Context) error {
	c, err := s.factories.Cache(s.cfg.Util.Cache)
	if err != nil {
		return blame.CacheConfigInvalidError(err)
	}
	s.cache = c
	s.logger.Info("cache ready", log.String("kind", c.Kind()))
	return nil
}

func (s *Server) exposeDocs(context.Context) error {
	return docs.Expose(s.listener, s.cfg.Util.Swagger, s.logger)
}

func (s *Server) registerValidator(context.Context) error {
	s.listener.SetValidator(s.validator)
	return nil
}

func (s *Server) construct(context.Context) error {
	if s.topology.CentralSystem {
		sender, receiver, err := s.connect(ocpp.General)
		if err != nil {
			return err
		}
		s.central = s.factories.CentralSystem(s.cfg, s.cache, sender, receiver, s.logger, s.observer)
	}

	if s.topology.Mode.IsAll() {
		for _, d := range s.table {
			if d.Section(s.cfg) == nil {
				s.logger.Warn("module has no configuration section, skipping", log.String("group", d.Group.String()))
			}
		}
	}

	for _, d := range s.topology.Modules {
		sender, receiver, err := s.connect(d.Group)
		if err != nil {
			return err
		}
		m, a, err := d.Build(module.Environment{
			Config:   s.cfg,
			Cache:    s.cache,
			Sender:   sender,
			Receiver: receiver,
			Listener: s.listener,
			Logger:   s.logger,
			Observer: s.observer,
		})
		if err != nil {
			_ = receiver.Shutdown()
			_ = sender.Shutdown()
			var b blame.Blame
			if errors.As(err, &b) {
				return err
			}
			return blame.ModuleConstructError(d.Group.String(), err)
		}
		s.modules = append(s.modules, m)
		s.apis = append(s.apis, a)
		s.observer.moduleRunning(d.Group.String(), true)
		s.logger.Info(constant.ModuleStarted, log.String("group", d.Group.String()), log.Int("routes", len(a.Routes())))
	}
	return nil
}

// connect opens the broker connections for group.
func (s *Server) connect(group ocpp.EventGroup) (ports.Sender, ports.Receiver, error) {
	logger := s.logger.With(log.Component(group.String()))
	sender, err := s.factories.Sender(s.cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	receiver, err := s.factories.Receiver(s.cfg, logger)
	if err != nil {
		_ = sender.Shutdown()
		return nil, nil, err
	}
	return sender, receiver, nil
}

func (s *Server) resolveAddress(context.Context) error {
	s.topology.address(s.cfg)
	if s.port > 0 {
		s.topology.Port = s.port
	}
	return nil
}

func (s *Server) installLifecycle(context.Context) error {
	s.lifecycle = graceful.New(s.timeout, graceful.WithExit(s.exit), graceful.WithLogger(s.logger))
	if s.signals {
		s.lifecycle.HandleSignals(s.teardown)
	}
	return nil
}

// Topology returns what the deployment mode resolved to.
func (s *Server) Topology() Topology {
	return s.topology
}

// Modules returns the constructed modules in construction order.
func (s *Server) Modules() []module.Module {
	return append([]module.Module(nil), s.modules...)
}

// Cache returns the shared cache.
func (s *Server) Cache() ports.Cache {
	return s.cache
}

// Handler serves the module listener, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.listener
}

// Run starts the central system, binds the listener and blocks until ctx
// is cancelled or the process is shut down. A failed bind exits with status 1.
func (s *Server) Run(ctx context.Context) error {
	if s.central != nil {
		if err := s.central.Start(ctx); err != nil {
			s.logger.Error("central system failed to start", log.Err(err))
			s.lifecycle.Exit(1)
			return err
		}
	}

	address := helpers.JoinHostPort(s.topology.Host, s.topology.Port)
	if err := s.listener.Listen(s.topology.Host, s.topology.Port); err != nil {
		b := blame.ListenerBindError(address, err)
		s.logger.Error("listener bind failed", log.Blame(b))
		s.lifecycle.Exit(1)
		return b
	}
	s.logger.Info(constant.SystemStarted, log.String("address", s.Addr()), log.Int("modules", len(s.modules)))

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case <-s.lifecycle.Done():
		return nil
	}
}

// Addr returns the bound listener address, empty before Run.
func (s *Server) Addr() string {
	if a := s.listener.Addr(); a != nil {
		return a.String()
	}
	return ""
}

// Shutdown stops every module, then the central system, then the listener.
// Teardown that outlives the shutdown timeout exits the process with status 1.
// Later calls return the first result.
func (s *Server) Shutdown() error {
	return s.lifecycle.Shutdown(s.teardown)
}

func (s *Server) teardown() error {
	var errs []error
	for _, m := range s.modules {
		if err := s.stopModule(m); err != nil {
			s.logger.Error("module shutdown failed", log.String("group", m.Group().String()), log.Err(err))
			errs = append(errs, err)
		}
	}
	if s.central != nil {
		if err := s.central.Shutdown(); err != nil {
			s.logger.Error("central system shutdown failed", log.Err(err))
			errs = append(errs, err)
		}
	}
	if s.listener != nil {
		if err := s.listener.Close(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := s.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = s.logger.Sync()
	return errors.Join(errs...)
}

// stopModule shuts m down, turning a panic into an error.
func (s *Server) stopModule(m module.Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %s panicked during shutdown: %v", m.Group(), r)
		}
		s.observer.moduleRunning(m.Group().String(), false)
	}()
	return m.Shutdown()
}
