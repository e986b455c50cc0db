// Package centralsystem accepts charging station websockets and bridges
// their OCPP-J frames to the message broker.
//
// Station CALLs are published as station-origin requests for the owning
// module; module answers come back as CSMS-origin responses and are written
// to the socket. CSMS-origin requests are written as CALLs and the station's
// answer is published back with the group of the sending module.
package centralsystem

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/config"
	appctx "github.com/abhissng/chargehub/context"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
	"github.com/abhissng/chargehub/utils/concurrent/concurrentMap"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	identifierParam  = "identifier"
	tenantQuery      = "tenantId"
	maxIdentifierLen = 36

	defaultCallTimeout = 30 * time.Second
)

var _ ports.CentralSystem = (*CentralSystem)(nil)

// CentralSystem is the station-facing edge of the CSMS.
type CentralSystem struct {
	cfg      config.CentralSystemConfig
	sender   ports.Sender
	receiver ports.Receiver
	logger   *log.Log
	observer Observer
	listener *server.Server
	upgrader websocket.Upgrader
	pending  *pendingCalls

	conns *concurrentMap.ConcurrentMap[string, *stationConn]

	stopOnce sync.Once
	stopErr  error
}

// New builds a central system listening on centralSystem.host/port once started.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log, opts ...Option) *CentralSystem {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.Component(ocpp.General.String()))

	ttl := cfg.CentralSystem.CallTimeout
	if ttl <= 0 {
		ttl = defaultCallTimeout
	}
	cs := &CentralSystem{
		cfg:      cfg.CentralSystem,
		sender:   sender,
		receiver: receiver,
		logger:   logger,
		listener: server.NewServer(server.WithLogger(logger)),
		upgrader: websocket.Upgrader{
			Subprotocols: cfg.CentralSystem.Subprotocols,
			CheckOrigin:  func(*http.Request) bool { return true },
		},
		pending: &pendingCalls{cache: cache, ttl: ttl},
		conns:   concurrentMap.NewConcurrentMap[string, *stationConn](),
	}
	for _, opt := range opts {
		opt(cs)
	}

	spec := server.RouteSpec{Method: http.MethodGet, Path: "/:" + identifierParam}
	if err := cs.listener.Root().Handle(spec, cs.accept); err != nil {
		logger.Error("station route registration failed", log.Err(err))
	}
	return cs
}

// Handler serves the station endpoint, mainly for tests.
func (cs *CentralSystem) Handler() http.Handler {
	return cs.listener
}

// Start subscribes to CSMS-origin messages and binds the station listener.
func (cs *CentralSystem) Start(ctx context.Context) error {
	cs.receiver.SetHandler(cs.relay)
	if err := cs.receiver.Subscribe(ctx, ocpp.General, nil); err != nil {
		return err
	}
	if err := cs.listener.Listen(cs.cfg.Host, cs.cfg.Port); err != nil {
		return blame.ListenerBindError(helpers.JoinHostPort(cs.cfg.Host, cs.cfg.Port), err)
	}
	cs.logger.Info(constant.SystemStarted, log.String("address", cs.listener.Addr().String()))
	return nil
}

// Shutdown closes every station socket, the listener and the broker connections once.
func (cs *CentralSystem) Shutdown() error {
	cs.stopOnce.Do(func() {
		for _, c := range cs.conns.Values() {
			_ = c.Close(websocket.CloseGoingAway, "server shutdown")
		}

		cs.stopErr = errors.Join(
			cs.listener.Close(context.Background()),
			cs.receiver.Shutdown(),
			cs.sender.Shutdown(),
		)
		cs.logger.Info(constant.SystemStopped)
	})
	return cs.stopErr
}

// Connected reports whether the station holds a socket on this instance.
func (cs *CentralSystem) Connected(tenantID, identifier string) bool {
	return cs.lookup(tenantID, identifier) != nil
}

// accept upgrades GET /<identifier>?tenantId=<tenant> into a station socket and serves it.
func (cs *CentralSystem) accept(c *gin.Context) {
	identifier := c.Param(identifierParam)
	if identifier == "" || len(identifier) > maxIdentifierLen {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	tenantID := c.DefaultQuery(tenantQuery, constant.DefaultTenantID)

	ws, err := cs.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cs.logger.Warn("websocket upgrade failed", log.String("station", identifier), log.Err(err))
		return
	}
	conn := newStationConn(ws, identifier, tenantID)
	if len(cs.cfg.Subprotocols) > 0 && ws.Subprotocol() == "" {
		_ = conn.Close(websocket.CloseProtocolError, "unsupported subprotocol")
		return
	}

	cs.register(conn)
	defer cs.unregister(conn)
	cs.serve(conn)
}

func (cs *CentralSystem) register(conn *stationConn) {
	if previous, replaced := cs.conns.Swap(conn.key(), conn); replaced {
		_ = previous.Close(websocket.ClosePolicyViolation, "replaced by a new connection")
	} else if cs.observer != nil {
		cs.observer.StationConnected(1)
	}
	cs.logger.Info(constant.StationConnected, log.String("station", conn.identifier), log.String("tenant", conn.tenantID))
}

func (cs *CentralSystem) unregister(conn *stationConn) {
	_ = conn.Close(websocket.CloseNormalClosure, "")

	current := cs.conns.DeleteIf(conn.key(), func(c *stationConn) bool { return c == conn })
	if current && cs.observer != nil {
		cs.observer.StationConnected(-1)
	}
	cs.logger.Info(constant.StationDisconnected, log.String("station", conn.identifier), log.String("tenant", conn.tenantID))
}

func (cs *CentralSystem) lookup(tenantID, identifier string) *stationConn {
	conn, _ := cs.conns.Get(stationKey(tenantID, identifier))
	return conn
}

// serve reads frames until the socket closes.
func (cs *CentralSystem) serve(conn *stationConn) {
	if cs.cfg.PingInterval > 0 {
		conn.expectTraffic(cs.cfg.PingInterval)
		go conn.keepAlive(cs.cfg.PingInterval)
	}

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, ocpp.ErrMalformedFrame) || errors.Is(err, ocpp.ErrUnknownFrameType) {
				cs.logger.Warn("malformed frame", log.String("station", conn.identifier), log.Err(err))
				if frame.ID != "" {
					_ = conn.WriteFrame(ocpp.NewCallError(frame.ID, ocpp.FormatViolation, err.Error()))
				}
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				cs.logger.Debug(constant.ConnectionClosed, log.String("station", conn.identifier), log.Err(err))
			}
			return
		}

		ctx, _ := appctx.WithGeneratedCorrelationID(context.Background())
		switch frame.Type {
		case ocpp.CallType:
			cs.forwardCall(ctx, conn, frame)
		case ocpp.CallResultType, ocpp.CallErrorType:
			cs.forwardAnswer(ctx, conn, frame)
		}
	}
}

// forwardCall publishes a station CALL for the module owning its action.
func (cs *CentralSystem) forwardCall(ctx context.Context, conn *stationConn, frame ocpp.Frame) {
	group, ok := ocpp.GroupOf(frame.Action)
	if !ok {
		_ = conn.WriteFrame(ocpp.NewCallError(frame.ID, ocpp.NotImplemented, "unsupported action "+frame.Action.String()))
		return
	}

	msg := ocpp.Message{
		Origin:     ocpp.OriginChargingStation,
		EventGroup: group,
		Action:     frame.Action,
		State:      ocpp.StateRequest,
		Context:    cs.messageContext(conn, frame.ID),
		Payload:    frame.Payload,
	}
	if _, err := cs.sender.Send(ctx, msg); err != nil {
		cs.logger.Error(constant.EventPublishedFailed, log.String("action", frame.Action.String()), log.Err(err))
		_ = conn.WriteFrame(ocpp.NewCallError(frame.ID, ocpp.InternalError, "message broker unavailable"))
	}
}

// forwardAnswer publishes the station's answer to a pending CSMS call.
func (cs *CentralSystem) forwardAnswer(ctx context.Context, conn *stationConn, frame ocpp.Frame) {
	call, found, err := cs.pending.take(ctx, conn.tenantID, conn.identifier, frame.ID)
	if err != nil || !found {
		cs.logger.Warn(constant.EventDropped,
			log.String("station", conn.identifier),
			log.String("messageId", frame.ID),
			log.String("reason", "no pending call"))
		return
	}

	msg := ocpp.Message{
		Origin:     ocpp.OriginChargingStation,
		EventGroup: call.Group,
		Action:     call.Action,
		State:      ocpp.StateResponse,
		Context:    cs.messageContext(conn, frame.ID),
		Payload:    frame.Payload,
	}
	if frame.Type == ocpp.CallErrorType {
		msg.State = ocpp.StateError
		msg.Payload = nil
		msg.Error = frame.Error
	}
	if _, err := cs.sender.Send(ctx, msg); err != nil {
		cs.logger.Error(constant.EventPublishedFailed, log.String("action", call.Action.String()), log.Err(err))
	}
}

// relay writes a CSMS-origin message to the station socket held by this instance.
// Every instance receives these messages; those without the socket ignore them.
func (cs *CentralSystem) relay(ctx context.Context, msg ocpp.Message) error {
	conn := cs.lookup(msg.Context.TenantID, msg.Context.StationID)
	if conn == nil {
		appctx.Logger(ctx, cs.logger).Debug(constant.EventDropped,
			log.Blame(blame.StationNotConnectedError(msg.Context.StationID)))
		return nil
	}

	id := msg.Context.CorrelationID
	switch msg.State {
	case ocpp.StateRequest:
		call := pendingCall{Group: msg.EventGroup, Action: msg.Action, SentAt: time.Now().UTC()}
		if err := cs.pending.put(ctx, conn.tenantID, conn.identifier, id, call); err != nil {
			return err
		}
		return conn.WriteFrame(ocpp.NewCall(id, msg.Action, msg.Payload))
	case ocpp.StateResponse:
		return conn.WriteFrame(ocpp.NewCallResult(id, msg.Payload))
	case ocpp.StateError:
		callErr := msg.Error
		if callErr == nil {
			callErr = &ocpp.CallError{Code: ocpp.GenericError}
		}
		return conn.WriteFrame(ocpp.Frame{Type: ocpp.CallErrorType, ID: id, Error: callErr})
	}
	return nil
}

func (cs *CentralSystem) messageContext(conn *stationConn, messageID string) ocpp.Context {
	return ocpp.Context{
		CorrelationID: messageID,
		StationID:     conn.identifier,
		TenantID:      conn.tenantID,
		Timestamp:     time.Now().UTC(),
	}
}
