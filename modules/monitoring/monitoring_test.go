package monitoring

import (
	"net/http"
	"testing"
	"time"

	"github.com/abhissng/chargehub/module/moduletest"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notify(n int) ocpp.NotifyEventRequest {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	events := make([]ocpp.EventData, n)
	for i := range events {
		events[i] = ocpp.EventData{
			EventId:               i,
			Timestamp:             at,
			Trigger:               "Alerting",
			ActualValue:           "93",
			EventNotificationType: "HardWiredMonitor",
			Component:             ocpp.Component{Name: "EVSE"},
			Variable:              ocpp.Variable{Name: "Temperature"},
		}
	}
	return ocpp.NotifyEventRequest{GeneratedAt: at, EventData: events}
}

func TestNotifyEventIsCollected(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	assert.Equal(t, ocpp.StateResponse, h.Request(t, "cs-1", ocpp.NotifyEvent, notify(2)).State)
	h.Request(t, "cs-1", ocpp.NotifyEvent, notify(1))

	rec := h.Do(http.MethodGet, "/data/monitoring/eventdata"+moduletest.StationQuery("cs-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, moduletest.Decode[[]ocpp.EventData](t, rec.Body.Bytes()), 3)
}

func TestEventsAreBounded(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	h.Request(t, "cs-1", ocpp.NotifyEvent, notify(maxEvents))
	h.Request(t, "cs-1", ocpp.NotifyEvent, notify(3))

	rec := h.Do(http.MethodGet, "/data/monitoring/eventdata"+moduletest.StationQuery("cs-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, moduletest.Decode[[]ocpp.EventData](t, rec.Body.Bytes()), maxEvents)
}

func TestVariableMonitoringRoutes(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	target := "/data/monitoring/variablemonitoring" + moduletest.StationQuery("cs-1")
	body := map[string]any{"monitors": []map[string]any{{
		"component": map[string]any{"name": "EVSE"},
		"variable":  map[string]any{"name": "Temperature"},
		"type":      "UpperThreshold",
		"value":     80,
		"severity":  2,
	}}}
	require.Equal(t, http.StatusOK, h.Do(http.MethodPut, target, body).Code)

	rec := h.Do(http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	monitors := moduletest.Decode[Monitors](t, rec.Body.Bytes())
	require.Len(t, monitors.Monitors, 1)
	assert.Equal(t, "UpperThreshold", monitors.Monitors[0].Type)
}

func TestGetVariablesCommand(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	rec := h.Do(http.MethodPost, "/ocpp/monitoring/getvariables"+moduletest.StationQuery("cs-1"), map[string]any{
		"getVariableData": []map[string]any{{
			"component": map[string]any{"name": "OCPPCommCtrlr"},
			"variable":  map[string]any{"name": "HeartbeatInterval"},
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := h.LastSent(t)
	assert.Equal(t, ocpp.GetVariables, sent.Action)
	assert.Contains(t, string(sent.Payload), `"attributeType":"Actual"`)
}
