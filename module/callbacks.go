package module

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/cache"
	appctx "github.com/abhissng/chargehub/context"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const (
	callbackNamespace  = "callback"
	DefaultCallbackTTL = time.Hour
)

// Pending is stored per correlation id while a command awaits the station's answer.
type Pending struct {
	URL       string          `json:"url"`
	StationID string          `json:"stationId"`
	TenantID  string          `json:"tenantId"`
	Action    ocpp.CallAction `json:"action"`
}

// Result is the body POSTed to a callback URL.
type Result struct {
	CorrelationID string          `json:"correlationId"`
	StationID     string          `json:"stationId"`
	TenantID      string          `json:"tenantId"`
	Action        ocpp.CallAction `json:"action"`
	Success       bool            `json:"success"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Error         *ocpp.CallError `json:"error,omitempty"`
}

// Callbacks remembers where command results go and delivers them.
type Callbacks struct {
	cache    ports.Cache
	client   ports.CallbackClient
	ttl      time.Duration
	logger   *log.Log
	observer Observer
}

// NewCallbacks stores pending entries in c for ttl and delivers through client.
func NewCallbacks(c ports.Cache, client ports.CallbackClient, ttl time.Duration, logger *log.Log) *Callbacks {
	if ttl <= 0 {
		ttl = DefaultCallbackTTL
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Callbacks{cache: c, client: client, ttl: ttl, logger: logger}
}

// SetClient replaces the delivery client.
func (cb *Callbacks) SetClient(client ports.CallbackClient) {
	cb.client = client
}

// Observe reports every delivery outcome to o.
func (cb *Callbacks) Observe(o Observer) {
	cb.observer = o
}

// Register remembers p until the answer for correlationID arrives or the TTL expires.
func (cb *Callbacks) Register(ctx context.Context, correlationID string, p Pending) error {
	return cache.SetJSON(ctx, cb.cache, cache.Key(callbackNamespace, correlationID), p, cb.ttl)
}

// Lookup returns the pending entry for correlationID.
func (cb *Callbacks) Lookup(ctx context.Context, correlationID string) (Pending, bool, error) {
	var p Pending
	found, err := cache.GetJSON(ctx, cb.cache, cache.Key(callbackNamespace, correlationID), &p)
	return p, found, err
}

// Forget drops the pending entry for correlationID.
func (cb *Callbacks) Forget(ctx context.Context, correlationID string) error {
	return cb.cache.Delete(ctx, cache.Key(callbackNamespace, correlationID))
}

// Resolve delivers the station's answer in msg to the registered URL, if any.
// The entry is removed before delivery so an answer is delivered at most once.
func (cb *Callbacks) Resolve(ctx context.Context, msg ocpp.Message) error {
	logger := appctx.Logger(ctx, cb.logger)
	p, found, err := cb.Lookup(ctx, msg.Context.CorrelationID)
	if err != nil {
		return err
	}
	if !found {
		logger.Debug("no callback registered", log.String("action", msg.Action.String()))
		return nil
	}
	if err := cb.Forget(ctx, msg.Context.CorrelationID); err != nil {
		return err
	}

	result := Result{
		CorrelationID: msg.Context.CorrelationID,
		StationID:     p.StationID,
		TenantID:      p.TenantID,
		Action:        p.Action,
		Success:       msg.State == ocpp.StateResponse,
		Payload:       msg.Payload,
		Error:         msg.Error,
	}
	err = cb.client.Deliver(ctx, p.URL, result)
	if cb.observer != nil {
		cb.observer.CallbackDelivered(err == nil)
	}
	return err
}
