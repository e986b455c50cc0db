package configuration

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
)

// API exposes the configuration commands and the station data.
type API struct {
	*api.Base[*Module]
}

// Capabilities lists every route of the configuration API.
var Capabilities = registry.New[*API](ocpp.Configuration.String()).
	MustExpose(
		registry.Action(ocpp.Reset, (*API).Reset),
		registry.Action(ocpp.ChangeAvailability, (*API).ChangeAvailability),
		registry.Action(ocpp.TriggerMessage, (*API).TriggerMessage),
	).
	MustExposeData(
		registry.Data(ocpp.BootConfigNamespace, ocpp.Get, (*API).GetBootConfig),
		registry.Data(ocpp.BootConfigNamespace, ocpp.Put, (*API).PutBootConfig),
		registry.Data(ocpp.ChargingStationNamespace, ocpp.Get, (*API).GetChargingStation),
	)

// Descriptor builds the configuration module for the orchestrator.
var Descriptor = module.Descriptor{
	Group:   ocpp.Configuration,
	Section: func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Configuration },
	Build:   module.Builder[*Module](New, NewAPI),
}

// NewAPI registers the configuration routes on listener.
func NewAPI(m *Module, listener api.Listener, logger *log.Log) (module.Api, error) {
	a := &API{}
	base, err := api.Register(a, m, listener, logger, Capabilities)
	if err != nil {
		return nil, err
	}
	a.Base = base
	return a, nil
}

func (a *API) Reset(ctx context.Context, call registry.Call, req *ocpp.ResetRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.Reset, req)
}

func (a *API) ChangeAvailability(ctx context.Context, call registry.Call, req *ocpp.ChangeAvailabilityRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.ChangeAvailability, req)
}

func (a *API) TriggerMessage(ctx context.Context, call registry.Call, req *ocpp.TriggerMessageRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.TriggerMessage, req)
}

func (a *API) GetBootConfig(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().boots.Get(ctx, q.TenantID, q.Identifier)
}

// PutBootConfig replaces the boot answer of a station.
func (a *API) PutBootConfig(ctx context.Context, q *module.StationQuery, body *BootConfig) (any, error) {
	if err := a.Module().boots.Put(ctx, q.TenantID, q.Identifier, *body); err != nil {
		return nil, err
	}
	return body, nil
}

func (a *API) GetChargingStation(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().stations.Get(ctx, q.TenantID, q.Identifier)
}
