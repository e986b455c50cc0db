package monitoring

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
)

// API exposes the variable commands and the collected events.
type API struct {
	*api.Base[*Module]
}

// Capabilities lists every route of the monitoring API.
var Capabilities = registry.New[*API](ocpp.Monitoring.String()).
	MustExpose(
		registry.Action(ocpp.SetVariables, (*API).SetVariables),
		registry.Action(ocpp.GetVariables, (*API).GetVariables),
	).
	MustExposeData(
		registry.Data(ocpp.EventDataNamespace, ocpp.Get, (*API).GetEventData),
		registry.Data(ocpp.VariableMonitoringNamespace, ocpp.Get, (*API).GetMonitors),
		registry.Data(ocpp.VariableMonitoringNamespace, ocpp.Put, (*API).PutMonitors),
	)

// Descriptor builds the monitoring module for the orchestrator.
var Descriptor = module.Descriptor{
	Group:   ocpp.Monitoring,
	Section: func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Monitoring },
	Build:   module.Builder[*Module](New, NewAPI),
}

// NewAPI registers the monitoring routes on listener.
func NewAPI(m *Module, listener api.Listener, logger *log.Log) (module.Api, error) {
	a := &API{}
	base, err := api.Register(a, m, listener, logger, Capabilities)
	if err != nil {
		return nil, err
	}
	a.Base = base
	return a, nil
}

func (a *API) SetVariables(ctx context.Context, call registry.Call, req *ocpp.SetVariablesRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.SetVariables, req)
}

func (a *API) GetVariables(ctx context.Context, call registry.Call, req *ocpp.GetVariablesRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.GetVariables, req)
}

func (a *API) GetEventData(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().events.Get(ctx, q.TenantID, q.Identifier)
}

func (a *API) GetMonitors(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().monitors.Get(ctx, q.TenantID, q.Identifier)
}

func (a *API) PutMonitors(ctx context.Context, q *module.StationQuery, body *Monitors) (any, error) {
	if err := a.Module().monitors.Put(ctx, q.TenantID, q.Identifier, *body); err != nil {
		return nil, err
	}
	return body, nil
}
