package smartcharging

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
)

// API exposes the charging profile commands.
type API struct {
	*api.Base[*Module]
}

// NeedsQuery selects the charging needs of one EVSE.
type NeedsQuery struct {
	Identifier string `json:"identifier" validate:"required,max=36"`
	TenantID   string `json:"tenantId" validate:"required"`
	EvseID     int    `json:"evseId" validate:"gte=1"`
}

// Capabilities lists every route of the smartcharging API.
var Capabilities = registry.New[*API](ocpp.SmartCharging.String()).
	MustExpose(
		registry.Action(ocpp.SetChargingProfile, (*API).SetChargingProfile),
		registry.Action(ocpp.ClearChargingProfile, (*API).ClearChargingProfile),
		registry.Action(ocpp.GetChargingProfiles, (*API).GetChargingProfiles),
	).
	MustExposeData(
		registry.Data(ocpp.ChargingProfileNamespace, ocpp.Get, (*API).GetProfiles),
		registry.Data(chargingNeedsNamespace, ocpp.Get, (*API).GetNeeds),
	)

// Descriptor builds the smartcharging module for the orchestrator.
var Descriptor = module.Descriptor{
	Group:   ocpp.SmartCharging,
	Section: func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.SmartCharging },
	Build:   module.Builder[*Module](New, NewAPI),
}

// NewAPI registers the smartcharging routes on listener.
func NewAPI(m *Module, listener api.Listener, logger *log.Log) (module.Api, error) {
	a := &API{}
	base, err := api.Register(a, m, listener, logger, Capabilities)
	if err != nil {
		return nil, err
	}
	a.Base = base
	return a, nil
}

// SetChargingProfile sends the profile and records it once the broker accepted the call.
func (a *API) SetChargingProfile(ctx context.Context, call registry.Call, req *ocpp.SetChargingProfileRequest) (*ocpp.MessageConfirmation, error) {
	confirmation, err := a.Module().SendCall(ctx, call, ocpp.SetChargingProfile, req)
	if err != nil || !confirmation.Success {
		return confirmation, err
	}
	if _, err := a.Module().profiles.Update(ctx, call.TenantID, call.Identifier, func(p *Profiles) {
		p.install(req.EvseId, req.ChargingProfile)
	}); err != nil {
		return nil, err
	}
	return confirmation, nil
}

func (a *API) ClearChargingProfile(ctx context.Context, call registry.Call, req *ocpp.ClearChargingProfileRequest) (*ocpp.MessageConfirmation, error) {
	confirmation, err := a.Module().SendCall(ctx, call, ocpp.ClearChargingProfile, req)
	if err != nil || !confirmation.Success {
		return confirmation, err
	}
	if _, err := a.Module().profiles.Update(ctx, call.TenantID, call.Identifier, func(p *Profiles) {
		p.clear(req)
	}); err != nil {
		return nil, err
	}
	return confirmation, nil
}

func (a *API) GetChargingProfiles(ctx context.Context, call registry.Call, req *ocpp.GetChargingProfilesRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.GetChargingProfiles, req)
}

func (a *API) GetProfiles(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().profiles.Get(ctx, q.TenantID, q.Identifier)
}

func (a *API) GetNeeds(ctx context.Context, q *NeedsQuery, _ *registry.None) (any, error) {
	return a.Module().needs.Get(ctx, q.TenantID, needsKey(q.Identifier, q.EvseID))
}
