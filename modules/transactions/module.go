// Package transactions follows charging sessions and connector state.
package transactions

import (
	"context"
	"strconv"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const (
	connectorNamespace  ocpp.Namespace = "Connector"
	meterValueNamespace ocpp.Namespace = "MeterValue"

	// maxMeterValues bounds the samples kept per transaction and per EVSE.
	maxMeterValues = 100
)

// Transaction is the CSMS view of a charging session.
type Transaction struct {
	TransactionID string            `json:"transactionId"`
	StationID     string            `json:"stationId"`
	TenantID      string            `json:"tenantId"`
	EVSE          *ocpp.EVSE        `json:"evse,omitempty"`
	IdToken       *ocpp.IdToken     `json:"idToken,omitempty"`
	Active        bool              `json:"active"`
	ChargingState string            `json:"chargingState,omitempty"`
	StoppedReason string            `json:"stoppedReason,omitempty"`
	SeqNo         int               `json:"seqNo"`
	StartedAt     time.Time         `json:"startedAt,omitempty"`
	UpdatedAt     time.Time         `json:"updatedAt,omitempty"`
	EndedAt       *time.Time        `json:"endedAt,omitempty"`
	MeterValues   []ocpp.MeterValue `json:"meterValues,omitempty"`
	TotalCost     *float64          `json:"totalCost,omitempty"`
}

// Connector is the last reported status of one connector.
type Connector struct {
	EvseID      int       `json:"evseId"`
	ConnectorID int       `json:"connectorId"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// Module is the transactions module.
type Module struct {
	*module.Base
	transactions   *module.Store[Transaction]
	connectors     *module.Store[Connector]
	meterValues    *module.Store[[]ocpp.MeterValue]
	authorizations *module.Store[ocpp.IdTokenInfo]
}

// New builds the transactions module and subscribes it to its messages.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (*Module, error) {
	m := &Module{
		Base:           module.NewBase(ocpp.Transactions, cfg, cache, sender, receiver, logger),
		transactions:   module.NewStore[Transaction](cache, ocpp.TransactionNamespace),
		connectors:     module.NewStore[Connector](cache, connectorNamespace),
		meterValues:    module.NewStore[[]ocpp.MeterValue](cache, meterValueNamespace),
		authorizations: module.NewStore[ocpp.IdTokenInfo](cache, ocpp.AuthorizationNamespace),
	}
	m.Handle(ocpp.TransactionEvent, module.On(m.transactionEvent))
	m.Handle(ocpp.StatusNotification, module.On(m.statusNotification))
	m.Handle(ocpp.MeterValues, module.On(m.meterValuesReceived))

	if err := m.Start(context.Background(), Capabilities.ActionNames()); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) transactionEvent(ctx context.Context, msg ocpp.Message, req *ocpp.TransactionEventRequest) (*ocpp.TransactionEventResponse, error) {
	tenant := msg.Context.TenantID
	tx, err := m.transactions.Update(ctx, tenant, req.TransactionInfo.TransactionId, func(tx *Transaction) {
		tx.TransactionID = req.TransactionInfo.TransactionId
		tx.StationID = msg.Context.StationID
		tx.TenantID = tenant
		if req.EVSE != nil {
			tx.EVSE = req.EVSE
		}
		if req.IdToken != nil {
			tx.IdToken = req.IdToken
		}
		if req.TransactionInfo.ChargingState != "" {
			tx.ChargingState = req.TransactionInfo.ChargingState
		}
		if req.SeqNo >= tx.SeqNo {
			tx.SeqNo = req.SeqNo
		}
		tx.UpdatedAt = req.Timestamp
		tx.MeterValues = appendBounded(tx.MeterValues, req.MeterValue)

		switch req.EventType {
		case "Started":
			tx.Active = true
			tx.StartedAt = req.Timestamp
		case "Updated":
			if tx.EndedAt == nil {
				tx.Active = true
			}
		case "Ended":
			ended := req.Timestamp
			tx.Active = false
			tx.EndedAt = &ended
			tx.StoppedReason = req.TransactionInfo.StoppedReason
		}
	})
	if err != nil {
		return nil, err
	}

	resp := &ocpp.TransactionEventResponse{TotalCost: tx.TotalCost}
	if req.IdToken != nil {
		info, err := m.authorize(ctx, tenant, req.IdToken.IdToken)
		if err != nil {
			return nil, err
		}
		resp.IdTokenInfo = info
	}
	m.Log().Debug("transaction event",
		log.String("transaction", tx.TransactionID),
		log.String("eventType", req.EventType),
		log.Int("seqNo", req.SeqNo))
	return resp, nil
}

// authorize answers an IdToken from the authorization list kept by the
// evdriver module, falling back to the acceptUnknownIdTokens policy.
func (m *Module) authorize(ctx context.Context, tenant, idToken string) (*ocpp.IdTokenInfo, error) {
	info, err := m.authorizations.Get(ctx, tenant, idToken)
	if err == nil {
		return info, nil
	}
	if !module.IsNotFound(err) {
		return nil, err
	}
	status := "Unknown"
	if section := m.Section(); section != nil && section.AcceptUnknownIdTokens {
		status = "Accepted"
	}
	return &ocpp.IdTokenInfo{Status: status}, nil
}

func (m *Module) statusNotification(ctx context.Context, msg ocpp.Message, req *ocpp.StatusNotificationRequest) (*ocpp.StatusNotificationResponse, error) {
	connector := Connector{
		EvseID:      req.EvseId,
		ConnectorID: req.ConnectorId,
		Status:      req.ConnectorStatus,
		Timestamp:   req.Timestamp,
	}
	if err := m.connectors.Put(ctx, msg.Context.TenantID, connectorKey(msg.Context.StationID, req.EvseId, req.ConnectorId), connector); err != nil {
		return nil, err
	}
	return &ocpp.StatusNotificationResponse{}, nil
}

func (m *Module) meterValuesReceived(ctx context.Context, msg ocpp.Message, req *ocpp.MeterValuesRequest) (*ocpp.MeterValuesResponse, error) {
	id := msg.Context.StationID + ":" + strconv.Itoa(req.EvseId)
	if _, err := m.meterValues.Update(ctx, msg.Context.TenantID, id, func(values *[]ocpp.MeterValue) {
		*values = appendBounded(*values, req.MeterValue)
	}); err != nil {
		return nil, err
	}
	return &ocpp.MeterValuesResponse{}, nil
}

func connectorKey(stationID string, evseID, connectorID int) string {
	return stationID + ":" + strconv.Itoa(evseID) + ":" + strconv.Itoa(connectorID)
}

func appendBounded(values, more []ocpp.MeterValue) []ocpp.MeterValue {
	values = append(values, more...)
	if n := len(values); n > maxMeterValues {
		values = values[n-maxMeterValues:]
	}
	return values
}
