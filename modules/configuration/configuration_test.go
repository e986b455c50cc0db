package configuration

import (
	"net/http"
	"testing"

	"github.com/abhissng/chargehub/module/moduletest"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boot = ocpp.BootNotificationRequest{
	ChargingStation: ocpp.ChargingStation{Model: "AC-22", VendorName: "Acme"},
	Reason:          "PowerUp",
}

func TestBootNotificationUsesSectionDefaults(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	reply := h.Request(t, "cs-1", ocpp.BootNotification, boot)
	require.Equal(t, ocpp.StateResponse, reply.State)
	resp := moduletest.Decode[ocpp.BootNotificationResponse](t, reply.Payload)
	assert.Equal(t, "Accepted", resp.Status)
	assert.Equal(t, 60, resp.Interval)

	rec := h.Do(http.MethodGet, "/data/configuration/chargingstation"+moduletest.StationQuery("cs-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	station := moduletest.Decode[Station](t, rec.Body.Bytes())
	assert.Equal(t, "Acme", station.ChargingStation.VendorName)
	assert.Equal(t, "PowerUp", station.BootReason)
	assert.Equal(t, moduletest.Tenant, station.TenantID)
}

func TestBootConfigOverridesAnswer(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	rec := h.Do(http.MethodPut, "/data/configuration/boot"+moduletest.StationQuery("cs-2"), map[string]any{"status": "Pending"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := moduletest.Decode[ocpp.BootNotificationResponse](t, h.Request(t, "cs-2", ocpp.BootNotification, boot).Payload)
	assert.Equal(t, "Pending", resp.Status)
	assert.Equal(t, 15, resp.Interval)

	rec = h.Do(http.MethodPut, "/data/configuration/boot"+moduletest.StationQuery("cs-2"), map[string]any{"status": "Maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeartbeatAndMissingStation(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	rec := h.Do(http.MethodGet, "/data/configuration/chargingstation"+moduletest.StationQuery("cs-3"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	reply := h.Request(t, "cs-3", ocpp.Heartbeat, struct{}{})
	resp := moduletest.Decode[ocpp.HeartbeatResponse](t, reply.Payload)
	assert.False(t, resp.CurrentTime.IsZero())

	rec = h.Do(http.MethodGet, "/data/configuration/chargingstation"+moduletest.StationQuery("cs-3"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, moduletest.Decode[Station](t, rec.Body.Bytes()).LastHeartbeat.IsZero())
}

func TestResetCommandIsPublished(t *testing.T) {
	h := moduletest.New(t)
	_, a := h.Build(t, Descriptor)
	assert.Contains(t, a.Routes(), "POST /ocpp/configuration/reset")

	rec := h.Do(http.MethodPost, "/ocpp/configuration/reset"+moduletest.StationQuery("cs-1"), map[string]any{"type": "Immediate"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sent := h.LastSent(t)
	assert.Equal(t, ocpp.OriginCSMS, sent.Origin)
	assert.Equal(t, ocpp.StateRequest, sent.State)
	assert.Equal(t, ocpp.Reset, sent.Action)
	assert.Equal(t, "cs-1", sent.Context.StationID)
	assert.JSONEq(t, `{"type":"Immediate"}`, string(sent.Payload))
}
