package server

import (
	"time"

	"github.com/abhissng/chargehub/adapters/events/nats"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/postgres"
	"github.com/abhissng/chargehub/adapters/prometheus"
	"github.com/abhissng/chargehub/cache"
	"github.com/abhissng/chargehub/centralsystem"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ports"
)

// Factories builds the infrastructure the orchestrator wires together.
// Each field can be replaced, which is how tests avoid a broker and a database.
type Factories struct {
	Logger        func(cfg *config.SystemConfig) (*log.Log, error)
	Syncer        func(cfg *config.DatabaseConfig, logger *log.Log) ports.Syncer
	Cache         func(cfg config.CacheConfig) (ports.Cache, error)
	Sender        func(cfg *config.SystemConfig, logger *log.Log) (ports.Sender, error)
	Receiver      func(cfg *config.SystemConfig, logger *log.Log) (ports.Receiver, error)
	CentralSystem func(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log, observer centralsystem.Observer) ports.CentralSystem
}

// DefaultFactories returns the production wiring: zap, pgx, the configured
// cache, NATS and the websocket central system.
func DefaultFactories() Factories {
	return Factories{
		Logger: newLogger,
		Syncer: func(cfg *config.DatabaseConfig, logger *log.Log) ports.Syncer {
			return postgres.NewSyncer(cfg, logger)
		},
		Cache: cache.New,
		Sender: func(cfg *config.SystemConfig, logger *log.Log) (ports.Sender, error) {
			return nats.NewSender(cfg, logger)
		},
		Receiver: func(cfg *config.SystemConfig, logger *log.Log) (ports.Receiver, error) {
			return nats.NewReceiver(cfg, logger)
		},
		CentralSystem: func(cfg *config.SystemConfig, c ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log, observer centralsystem.Observer) ports.CentralSystem {
			return centralsystem.New(cfg, c, sender, receiver, logger, centralsystem.WithObserver(observer))
		},
	}
}

func newLogger(cfg *config.SystemConfig) (*log.Log, error) {
	opts := []log.LoggerOption{log.WithLevel(cfg.Server.LogLevel), log.WithEnvironment(cfg.Env)}
	if f := cfg.Server.LogFile; f != nil {
		opts = append(opts, log.WithFile(&log.FileConfig{
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		}))
	}
	return log.NewLogger(log.NewLoggerConfig(cfg.IsProd(), opts...))
}

// Option configures a Server.
type Option func(*Server)

// WithFactories replaces the infrastructure factories.
func WithFactories(f Factories) Option {
	return func(s *Server) {
		s.factories = f
	}
}

// WithDescriptors replaces the module table.
func WithDescriptors(descriptors ...module.Descriptor) Option {
	return func(s *Server) {
		s.table = descriptors
	}
}

// WithExit replaces os.Exit, used on a forced shutdown and a failed bind.
func WithExit(exit func(code int)) Option {
	return func(s *Server) {
		s.exit = exit
	}
}

// WithShutdownTimeout overrides server.shutdownTimeout.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.timeout = timeout
	}
}

// WithPort overrides the resolved listen port in every deployment mode.
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithoutSignals skips installing the signal handler.
func WithoutSignals() Option {
	return func(s *Server) {
		s.signals = false
	}
}

// observer feeds module and central-system events into the metrics
// collector, which is nil when metrics are disabled.
type observer struct {
	mc *prometheus.MetricsCollector
}

func (o observer) CallbackDelivered(ok bool) {
	if o.mc != nil {
		o.mc.CallbackDelivered(ok)
	}
}

func (o observer) StationConnected(delta int) {
	if o.mc != nil {
		o.mc.StationConnected(delta)
	}
}

func (o observer) moduleRunning(group string, running bool) {
	if o.mc != nil {
		o.mc.SetModuleRunning(group, running)
	}
}
