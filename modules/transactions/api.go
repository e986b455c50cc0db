package transactions

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
)

// API exposes the transaction commands and the session data.
type API struct {
	*api.Base[*Module]
}

// TransactionQuery selects one transaction.
type TransactionQuery struct {
	TransactionID string `json:"transactionId" validate:"required,max=36"`
	TenantID      string `json:"tenantId" validate:"required"`
}

// ConnectorQuery selects one connector of a station.
type ConnectorQuery struct {
	Identifier  string `json:"identifier" validate:"required,max=36"`
	TenantID    string `json:"tenantId" validate:"required"`
	EvseID      int    `json:"evseId" validate:"gte=0"`
	ConnectorID int    `json:"connectorId" validate:"gte=0"`
}

// Capabilities lists every route of the transactions API.
var Capabilities = registry.New[*API](ocpp.Transactions.String()).
	MustExpose(
		registry.Action(ocpp.GetTransactionStatus, (*API).GetTransactionStatus),
		registry.Action(ocpp.CostUpdate, (*API).CostUpdate),
	).
	MustExposeData(
		registry.Data(ocpp.TransactionNamespace, ocpp.Get, (*API).GetTransaction),
		registry.Data(connectorNamespace, ocpp.Get, (*API).GetConnector),
	)

// Descriptor builds the transactions module for the orchestrator.
var Descriptor = module.Descriptor{
	Group:   ocpp.Transactions,
	Section: func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Transactions },
	Build:   module.Builder[*Module](New, NewAPI),
}

// NewAPI registers the transactions routes on listener.
func NewAPI(m *Module, listener api.Listener, logger *log.Log) (module.Api, error) {
	a := &API{}
	base, err := api.Register(a, m, listener, logger, Capabilities)
	if err != nil {
		return nil, err
	}
	a.Base = base
	return a, nil
}

func (a *API) GetTransactionStatus(ctx context.Context, call registry.Call, req *ocpp.GetTransactionStatusRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.GetTransactionStatus, req)
}

// CostUpdate records the cost on the stored transaction before sending it to the station.
func (a *API) CostUpdate(ctx context.Context, call registry.Call, req *ocpp.CostUpdateRequest) (*ocpp.MessageConfirmation, error) {
	cost := req.TotalCost
	if _, err := a.Module().transactions.Update(ctx, call.TenantID, req.TransactionId, func(tx *Transaction) {
		tx.TransactionID = req.TransactionId
		tx.TenantID = call.TenantID
		tx.TotalCost = &cost
	}); err != nil {
		return nil, err
	}
	return a.Module().SendCall(ctx, call, ocpp.CostUpdate, req)
}

func (a *API) GetTransaction(ctx context.Context, q *TransactionQuery, _ *registry.None) (any, error) {
	return a.Module().transactions.Get(ctx, q.TenantID, q.TransactionID)
}

func (a *API) GetConnector(ctx context.Context, q *ConnectorQuery, _ *registry.None) (any, error) {
	return a.Module().connectors.Get(ctx, q.TenantID, connectorKey(q.Identifier, q.EvseID, q.ConnectorID))
}
