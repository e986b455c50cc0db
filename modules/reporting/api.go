package reporting

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
)

// API exposes the report commands and the reported data.
type API struct {
	*api.Base[*Module]
}

// Capabilities lists every route of the reporting API.
var Capabilities = registry.New[*API](ocpp.Reporting.String()).
	MustExpose(
		registry.Action(ocpp.GetBaseReport, (*API).GetBaseReport),
		registry.Action(ocpp.GetLog, (*API).GetLog),
	).
	MustExposeData(
		registry.Data(ocpp.VariableAttributeNamespace, ocpp.Get, (*API).GetReport),
		registry.Data(ocpp.SecurityEventNamespace, ocpp.Get, (*API).GetSecurityEvents),
	)

// Descriptor builds the reporting module for the orchestrator.
var Descriptor = module.Descriptor{
	Group:   ocpp.Reporting,
	Section: func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Reporting },
	Build:   module.Builder[*Module](New, NewAPI),
}

// NewAPI registers the reporting routes on listener.
func NewAPI(m *Module, listener api.Listener, logger *log.Log) (module.Api, error) {
	a := &API{}
	base, err := api.Register(a, m, listener, logger, Capabilities)
	if err != nil {
		return nil, err
	}
	a.Base = base
	return a, nil
}

func (a *API) GetBaseReport(ctx context.Context, call registry.Call, req *ocpp.GetBaseReportRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.GetBaseReport, req)
}

func (a *API) GetLog(ctx context.Context, call registry.Call, req *ocpp.GetLogRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.GetLog, req)
}

func (a *API) GetReport(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().reports.Get(ctx, q.TenantID, q.Identifier)
}

func (a *API) GetSecurityEvents(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().securityEvents.Get(ctx, q.TenantID, q.Identifier)
}
