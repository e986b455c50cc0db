// Package moduletest runs a business module against in-memory ports so its
// station handlers and HTTP routes can be exercised without a broker.
package moduletest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/cache"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports/portstest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Tenant is the tenant every harness request is sent for.
const Tenant = "t-1"

// Harness holds the fakes a module under test is built on.
type Harness struct {
	Config    *config.SystemConfig
	Cache     *cache.Memory
	Sender    *portstest.Sender
	Receiver  *portstest.Receiver
	Callbacks *portstest.CallbackClient
	Server    *server.Server

	seq int
}

// New returns a harness with the default configuration.
func New(t testing.TB) *Harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return &Harness{
		Config:    config.Default(),
		Cache:     cache.NewMemory(0),
		Sender:    &portstest.Sender{},
		Receiver:  &portstest.Receiver{},
		Callbacks: &portstest.CallbackClient{},
		Server:    server.NewServer(server.WithLogger(log.NewNop())),
	}
}

// Build constructs the module and its API from d.
func (h *Harness) Build(t testing.TB, d module.Descriptor) (module.Module, module.Api) {
	t.Helper()
	m, a, err := d.Build(module.Environment{
		Config:   h.Config,
		Cache:    h.Cache,
		Sender:   h.Sender,
		Receiver: h.Receiver,
		Listener: h.Server,
		Logger:   log.NewNop(),
	})
	require.NoError(t, err)
	if o, ok := m.(interface{ Callbacks() *module.Callbacks }); ok {
		o.Callbacks().SetClient(h.Callbacks)
	}
	t.Cleanup(func() { _ = m.Shutdown() })
	return m, a
}

// Request delivers a station call of action and returns the module's reply.
func (h *Harness) Request(t testing.TB, stationID string, action ocpp.CallAction, payload any) ocpp.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	h.seq++
	before := len(h.Sender.Sent())
	require.NoError(t, h.Receiver.Deliver(context.Background(), ocpp.Message{
		Origin: ocpp.OriginChargingStation,
		Action: action,
		State:  ocpp.StateRequest,
		Context: ocpp.Context{
			CorrelationID: fmt.Sprintf("req-%d", h.seq),
			StationID:     stationID,
			TenantID:      Tenant,
		},
		Payload: raw,
	}))

	sent := h.Sender.Sent()
	require.Len(t, sent, before+1)
	return sent[before]
}

// Answer delivers the station's answer to a call the module sent earlier.
func (h *Harness) Answer(t testing.TB, call ocpp.Message, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	answer := ocpp.Message{
		Origin:  ocpp.OriginChargingStation,
		Action:  call.Action,
		State:   ocpp.StateResponse,
		Context: call.Context,
		Payload: raw,
	}
	require.NoError(t, h.Receiver.Deliver(context.Background(), answer))
}

// LastSent returns the most recent message the module published.
func (h *Harness) LastSent(t testing.TB) ocpp.Message {
	t.Helper()
	sent := h.Sender.Sent()
	require.NotEmpty(t, sent)
	return sent[len(sent)-1]
}

// Do serves an HTTP request against the listener.
func (h *Harness) Do(method, target string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Server.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals raw into a new T.
func Decode[T any](t testing.TB, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// StationQuery returns the query string selecting stationID of Tenant.
func StationQuery(stationID string) string {
	return "?identifier=" + stationID + "&tenantId=" + Tenant
}
