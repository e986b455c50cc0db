package evdriver

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
)

// API exposes the remote session commands and the authorization list.
type API struct {
	*api.Base[*Module]
}

// AuthorizationQuery selects one entry of the authorization list.
type AuthorizationQuery struct {
	IdToken  string `json:"idToken" validate:"required,max=36"`
	TenantID string `json:"tenantId" validate:"required"`
}

// Capabilities lists every route of the evdriver API.
var Capabilities = registry.New[*API](ocpp.EVDriver.String()).
	MustExpose(
		registry.Action(ocpp.RequestStartTransaction, (*API).RequestStartTransaction),
		registry.Action(ocpp.RequestStopTransaction, (*API).RequestStopTransaction),
		registry.Action(ocpp.UnlockConnector, (*API).UnlockConnector),
	).
	MustExposeData(
		registry.Data(ocpp.AuthorizationNamespace, ocpp.Get, (*API).GetAuthorization),
		registry.Data(ocpp.AuthorizationNamespace, ocpp.Put, (*API).PutAuthorization),
		registry.Data(ocpp.AuthorizationNamespace, ocpp.Delete, (*API).DeleteAuthorization),
	)

// Descriptor builds the evdriver module for the orchestrator.
var Descriptor = module.Descriptor{
	Group:   ocpp.EVDriver,
	Section: func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.EVDriver },
	Build:   module.Builder[*Module](New, NewAPI),
}

// NewAPI registers the evdriver routes on listener.
func NewAPI(m *Module, listener api.Listener, logger *log.Log) (module.Api, error) {
	a := &API{}
	base, err := api.Register(a, m, listener, logger, Capabilities)
	if err != nil {
		return nil, err
	}
	a.Base = base
	return a, nil
}

func (a *API) RequestStartTransaction(ctx context.Context, call registry.Call, req *ocpp.RequestStartTransactionRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.RequestStartTransaction, req)
}

func (a *API) RequestStopTransaction(ctx context.Context, call registry.Call, req *ocpp.RequestStopTransactionRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.RequestStopTransaction, req)
}

func (a *API) UnlockConnector(ctx context.Context, call registry.Call, req *ocpp.UnlockConnectorRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.UnlockConnector, req)
}

func (a *API) GetAuthorization(ctx context.Context, q *AuthorizationQuery, _ *registry.None) (any, error) {
	return a.Module().authorizations.Get(ctx, q.TenantID, q.IdToken)
}

func (a *API) PutAuthorization(ctx context.Context, q *AuthorizationQuery, body *ocpp.IdTokenInfo) (any, error) {
	if err := a.Module().authorizations.Put(ctx, q.TenantID, q.IdToken, *body); err != nil {
		return nil, err
	}
	return body, nil
}

func (a *API) DeleteAuthorization(ctx context.Context, q *AuthorizationQuery, _ *registry.None) (any, error) {
	if err := a.Module().authorizations.Delete(ctx, q.TenantID, q.IdToken); err != nil {
		return nil, err
	}
	return ocpp.Confirmed(q.IdToken), nil
}
