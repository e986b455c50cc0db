package centralsystem

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/cache"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports/portstest"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wait = 2 * time.Second
	tick = 10 * time.Millisecond
)

type connections struct{ n atomic.Int64 }

func (c *connections) StationConnected(delta int) { c.n.Add(int64(delta)) }

type fixture struct {
	cs       *CentralSystem
	sender   *portstest.Sender
	receiver *portstest.Receiver
	conns    *connections
	base     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.CentralSystem.Host = "127.0.0.1"
	cfg.CentralSystem.Port = 0
	cfg.CentralSystem.PingInterval = 0

	f := &fixture{sender: &portstest.Sender{}, receiver: &portstest.Receiver{}, conns: &connections{}}
	f.cs = New(cfg, cache.NewMemory(0), f.sender, f.receiver, log.NewNop(), WithObserver(f.conns))
	require.NoError(t, f.cs.Start(context.Background()))
	t.Cleanup(func() { _ = f.cs.Shutdown() })
	f.base = "ws://" + f.cs.listener.Addr().String()
	return f
}

func (f *fixture) dial(t *testing.T, identifier string, subprotocols ...string) *websocket.Conn {
	t.Helper()
	if subprotocols == nil {
		subprotocols = []string{"ocpp2.0.1"}
	}
	dialer := websocket.Dialer{Subprotocols: subprotocols, HandshakeTimeout: wait}
	ws, _, err := dialer.Dial(f.base+"/"+identifier+"?tenantId=t-1", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func (f *fixture) connect(t *testing.T, identifier string) *websocket.Conn {
	t.Helper()
	ws := f.dial(t, identifier)
	require.Eventually(t, func() bool { return f.cs.Connected("t-1", identifier) }, wait, tick)
	return ws
}

func send(t *testing.T, ws *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func receive(t *testing.T, ws *websocket.Conn) ocpp.Frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(wait)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var frame ocpp.Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func (f *fixture) sentCount(n int) func() bool {
	return func() bool { return len(f.sender.Sent()) == n }
}

func TestStartSubscribesGeneralGroup(t *testing.T) {
	f := newFixture(t)
	require.Len(t, f.receiver.Subscriptions, 1)
	assert.Equal(t, ocpp.General, f.receiver.Subscriptions[0].Group)
	assert.Empty(t, f.receiver.Subscriptions[0].Actions)
}

func TestStationCallRoundTrip(t *testing.T) {
	f := newFixture(t)
	ws := f.connect(t, "cs-1")

	send(t, ws, `[2,"m-1","Heartbeat",{}]`)
	require.Eventually(t, f.sentCount(1), wait, tick)

	published := f.sender.Sent()[0]
	assert.Equal(t, ocpp.OriginChargingStation, published.Origin)
	assert.Equal(t, ocpp.Configuration, published.EventGroup)
	assert.Equal(t, ocpp.StateRequest, published.State)
	assert.Equal(t, "m-1", published.Context.CorrelationID)
	assert.Equal(t, "cs-1", published.Context.StationID)
	assert.Equal(t, "t-1", published.Context.TenantID)

	answer := ocpp.Message{
		Origin:  ocpp.OriginCSMS,
		Action:  ocpp.Heartbeat,
		State:   ocpp.StateResponse,
		Context: published.Context,
		Payload: json.RawMessage(`{"currentTime":"2024-05-01T10:00:00Z"}`),
	}
	require.NoError(t, f.receiver.Deliver(context.Background(), answer))

	frame := receive(t, ws)
	assert.Equal(t, ocpp.CallResultType, frame.Type)
	assert.Equal(t, "m-1", frame.ID)
	assert.JSONEq(t, `{"currentTime":"2024-05-01T10:00:00Z"}`, string(frame.Payload))
}

func TestModuleErrorIsRelayedAsCallError(t *testing.T) {
	f := newFixture(t)
	ws := f.connect(t, "cs-1")

	require.NoError(t, f.receiver.Deliver(context.Background(), ocpp.Message{
		Origin:  ocpp.OriginCSMS,
		Action:  ocpp.Authorize,
		State:   ocpp.StateError,
		Context: ocpp.Context{CorrelationID: "m-7", StationID: "cs-1", TenantID: "t-1"},
		Error:   &ocpp.CallError{Code: ocpp.InternalError, Description: "storage down"},
	}))

	frame := receive(t, ws)
	assert.Equal(t, ocpp.CallErrorType, frame.Type)
	require.NotNil(t, frame.Error)
	assert.Equal(t, ocpp.InternalError, frame.Error.Code)
}

func TestUnsupportedAndMalformedFrames(t *testing.T) {
	f := newFixture(t)
	ws := f.connect(t, "cs-1")

	send(t, ws, `[2,"m-1","DataTransfer",{}]`)
	frame := receive(t, ws)
	assert.Equal(t, ocpp.CallErrorType, frame.Type)
	assert.Equal(t, ocpp.NotImplemented, frame.Error.Code)

	send(t, ws, `[2,"m-2","Heartbeat"]`)
	frame = receive(t, ws)
	assert.Equal(t, "m-2", frame.ID)
	assert.Equal(t, ocpp.FormatViolation, frame.Error.Code)

	send(t, ws, `not json`)
	send(t, ws, `[2,"m-3","Heartbeat",{}]`)
	require.Eventually(t, f.sentCount(1), wait, tick)
	assert.Equal(t, "m-3", f.sender.Sent()[0].Context.CorrelationID)
}

func TestCSMSCallAndStationAnswer(t *testing.T) {
	f := newFixture(t)
	ws := f.connect(t, "cs-1")

	call := ocpp.Message{
		Origin:     ocpp.OriginCSMS,
		EventGroup: ocpp.Configuration,
		Action:     ocpp.Reset,
		State:      ocpp.StateRequest,
		Context:    ocpp.Context{CorrelationID: "c-1", StationID: "cs-1", TenantID: "t-1"},
		Payload:    json.RawMessage(`{"type":"Immediate"}`),
	}
	require.NoError(t, f.receiver.Deliver(context.Background(), call))

	frame := receive(t, ws)
	assert.Equal(t, ocpp.CallType, frame.Type)
	assert.Equal(t, "c-1", frame.ID)
	assert.Equal(t, ocpp.Reset, frame.Action)

	send(t, ws, `[3,"c-1",{"status":"Accepted"}]`)
	require.Eventually(t, f.sentCount(1), wait, tick)
	answer := f.sender.Sent()[0]
	assert.Equal(t, ocpp.OriginChargingStation, answer.Origin)
	assert.Equal(t, ocpp.StateResponse, answer.State)
	assert.Equal(t, ocpp.Configuration, answer.EventGroup)
	assert.Equal(t, ocpp.Reset, answer.Action)
	assert.Equal(t, "c-1", answer.Context.CorrelationID)

	send(t, ws, `[3,"c-1",{"status":"Accepted"}]`)
	send(t, ws, `[2,"m-9","Heartbeat",{}]`)
	require.Eventually(t, f.sentCount(2), wait, tick)
	assert.Equal(t, ocpp.Heartbeat, f.sender.Sent()[1].Action)
}

func TestStationCallErrorIsPublished(t *testing.T) {
	f := newFixture(t)
	ws := f.connect(t, "cs-1")

	require.NoError(t, f.receiver.Deliver(context.Background(), ocpp.Message{
		Origin:     ocpp.OriginCSMS,
		EventGroup: ocpp.EVDriver,
		Action:     ocpp.UnlockConnector,
		State:      ocpp.StateRequest,
		Context:    ocpp.Context{CorrelationID: "c-2", StationID: "cs-1", TenantID: "t-1"},
		Payload:    json.RawMessage(`{"evseId":1,"connectorId":1}`),
	}))
	receive(t, ws)

	send(t, ws, `[4,"c-2","NotSupported","no lock",{}]`)
	require.Eventually(t, f.sentCount(1), wait, tick)
	answer := f.sender.Sent()[0]
	assert.Equal(t, ocpp.StateError, answer.State)
	require.NotNil(t, answer.Error)
	assert.Equal(t, ocpp.NotSupported, answer.Error.Code)
}

func TestRelayIgnoresStationsConnectedElsewhere(t *testing.T) {
	f := newFixture(t)
	err := f.receiver.Deliver(context.Background(), ocpp.Message{
		Origin:  ocpp.OriginCSMS,
		Action:  ocpp.Reset,
		State:   ocpp.StateRequest,
		Context: ocpp.Context{CorrelationID: "c-3", StationID: "elsewhere", TenantID: "t-1"},
	})
	assert.NoError(t, err)
}

func TestSubprotocolIsRequired(t *testing.T) {
	f := newFixture(t)
	ws := f.dial(t, "cs-1", "json")

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(wait)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseProtocolError), "%v", err)
	assert.False(t, f.cs.Connected("t-1", "cs-1"))
}

func TestConnectionTrackingAndShutdown(t *testing.T) {
	f := newFixture(t)
	f.connect(t, "cs-1")
	assert.EqualValues(t, 1, f.conns.n.Load())

	replacement := f.connect(t, "cs-1")
	assert.EqualValues(t, 1, f.conns.n.Load())

	require.NoError(t, replacement.Close())
	require.Eventually(t, func() bool { return f.conns.n.Load() == 0 }, wait, tick)

	require.NoError(t, f.cs.Shutdown())
	require.NoError(t, f.cs.Shutdown())
	assert.Equal(t, 1, f.sender.ShutdownHits)
	assert.Equal(t, 1, f.receiver.ShutdownHits)
}
