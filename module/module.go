// Package module defines the contract every business module fulfils, the
// descriptor table entry the orchestrator builds modules from, and the Base
// that wires a module to the broker, the cache and the callback client.
package module

import (
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

// Module is a business module.
type Module interface {
	Group() ocpp.EventGroup
	Config() *config.SystemConfig
	SetConfig(cfg *config.SystemConfig)
	Shutdown() error
}

// Api is the HTTP face of a module; all routes are registered at construction.
type Api interface {
	Group() ocpp.EventGroup
	Routes() []string
}

// Constructor builds a module from the shared infrastructure.
type Constructor[M Module] func(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (M, error)

// ApiConstructor builds the API of a module, registering its routes on listener.
type ApiConstructor[M Module] func(module M, listener api.Listener, logger *log.Log) (Api, error)

// Observer receives module-level events the orchestrator turns into metrics.
type Observer interface {
	CallbackDelivered(ok bool)
}

// Environment is what the orchestrator hands a descriptor to build a module.
type Environment struct {
	Config   *config.SystemConfig
	Cache    ports.Cache
	Sender   ports.Sender
	Receiver ports.Receiver
	Listener api.Listener
	Logger   *log.Log
	Observer Observer
}

// BuildFunc builds a module and then its API.
type BuildFunc func(env Environment) (Module, Api, error)

// Descriptor is one entry of the module table, keyed by event group.
type Descriptor struct {
	Group   ocpp.EventGroup
	Section func(cfg *config.SystemConfig) *config.ModuleConfig
	Build   BuildFunc
}

// Builder adapts a typed module and API constructor pair into a BuildFunc.
// When the API cannot be built the module is shut down again.
func Builder[M Module](newModule Constructor[M], newAPI ApiConstructor[M]) BuildFunc {
	return func(env Environment) (Module, Api, error) {
		logger := env.Logger
		if logger == nil {
			logger = log.NewNop()
		}

		m, err := newModule(env.Config, env.Cache, env.Sender, env.Receiver, logger)
		if err != nil {
			return nil, nil, err
		}
		if o, ok := any(m).(interface{ Callbacks() *Callbacks }); ok && env.Observer != nil {
			o.Callbacks().Observe(env.Observer)
		}

		a, err := newAPI(m, env.Listener, logger)
		if err != nil {
			if stopErr := m.Shutdown(); stopErr != nil {
				logger.Error("module shutdown after api failure", log.Err(stopErr))
			}
			return nil, nil, blame.ModuleConstructError(m.Group().String(), err)
		}
		return m, a, nil
	}
}
