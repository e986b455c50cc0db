package nats

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/utils/codec"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/abhissng/chargehub/utils/idempotency"
	"github.com/abhissng/chargehub/utils/types"
	"github.com/sony/gobreaker"

	"github.com/nats-io/nats.go"
)

//----------------------------------------------------------
// NATS Manager WITH CIRCUIT BREAKER
//----------------------------------------------------------

// NATSManager encapsulates the NATS connection, a circuit breaker and duplicate suppression.
type NATSManager struct {
	nc                 *nats.Conn
	mu                 sync.Mutex
	logger             *log.Log
	idempotencyManager *idempotency.IdempotencyManager[string]
	breaker            *gobreaker.CircuitBreaker
	codec              types.CodecType
	subjects           map[string]*nats.Subscription
	subParams          map[string]*subscriptionParams
	done               chan struct{}
	closeOnce          sync.Once
	reconnect          bool

	name          string
	maxReconnects int
	reconnectWait time.Duration
	timeout       time.Duration
}

// subscriptionParams stores what is needed to recreate a subscription.
type subscriptionParams struct {
	queue   string
	handler nats.MsgHandler
}

/*
ocpp.*.request.*: every request, whatever its origin or action.
ocpp.cs.>: every station-originated message.
*/

// NewNATSManager creates and initializes a new NATS manager.
// It establishes a connection to the NATS server and configures reliability options.
func NewNATSManager(url string, options ...Option) (*NATSManager, error) {
	manager := newManager(options...)

	opts := []nats.Option{
		nats.Name(manager.name),
		nats.Timeout(manager.timeout),
		nats.MaxReconnects(manager.maxReconnects),
		nats.ReconnectWait(manager.reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			manager.logger.Error("NATS disconnected", log.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			manager.logger.Info("NATS reconnected", log.Any("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		manager.Close()
		return nil, blame.BrokerConnectError(url, err)
	}
	manager.nc = nc

	return manager, nil
}

// newManager builds a manager without a connection.
func newManager(options ...Option) *NATSManager {
	manager := &NATSManager{
		logger:        log.NewBasicLogger(helpers.IsProdEnvironment()),
		codec:         codec.JSON,
		subjects:      make(map[string]*nats.Subscription),
		subParams:     make(map[string]*subscriptionParams),
		done:          make(chan struct{}),
		reconnect:     true,
		name:          constant.ServiceName,
		maxReconnects: DefaultMaxReconnects,
		reconnectWait: DefaultReconnectWait,
		timeout:       DefaultConnectTimeout,
	}

	for _, opt := range options {
		opt(manager)
	}

	if manager.idempotencyManager == nil {
		manager.idempotencyManager = idempotency.NewIdempotencyManager[string](idempotency.DefaultCleanupInterval)
	}
	manager.logger = manager.logger.With(log.Component("nats"))
	return manager
}

// Ping checks the health of the NATS connection.
// It returns an error if the connection is not established or has been lost.
func (w *NATSManager) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.nc != nil {
		if w.nc.IsConnected() {
			return nil
		}
	}
	return errors.New(ConnectionFailedMessage)
}

// IsClosed reports whether the underlying NATS connection has been closed.
// It is safe for concurrent use.
func (w *NATSManager) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.nc == nil {
		return true
	}
	return w.nc.IsClosed()
}

// Codec returns the encoding used for published payloads.
func (w *NATSManager) Codec() types.CodecType {
	return w.codec
}

// Close gracefully shuts down the NATS manager.
// It unsubscribes from all subjects, drains the connection and cleans up resources.
// Calling Close more than once is a no-op.
func (w *NATSManager) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		close(w.done)

		for subject, sub := range w.subjects {
			if err := sub.Unsubscribe(); err != nil {
				w.logger.Warn("unsubscribe failed", log.String("subject", subject), log.Err(err))
			}
		}
		w.subjects = make(map[string]*nats.Subscription)
		w.subParams = make(map[string]*subscriptionParams)

		if w.nc != nil && !w.nc.IsClosed() {
			w.logger.Info(constant.ConnectionClosing)
			if err := w.nc.Drain(); err != nil {
				w.nc.Close()
			}
		}

		if w.idempotencyManager != nil {
			w.idempotencyManager.Close()
		}
		w.logger.Info(constant.ConnectionClosed)
	})
}

// firstDelivery reports whether msg carries a Message-ID not seen before.
// Messages without the header are always processed.
func (w *NATSManager) firstDelivery(msg *nats.Msg) (string, bool) {
	messageID := msg.Header.Get(constant.MessageIdHeader)
	if messageID == "" {
		return "", true
	}
	if !w.idempotencyManager.FirstSeen(messageID) {
		w.logger.Debug(constant.EventDropped, log.String(constant.MessageIdHeader, messageID))
		return messageID, false
	}
	return messageID, true
}

// handleMessage runs handler for msg once per Message-ID and recovers panics.
func (w *NATSManager) handleMessage(msg *nats.Msg, handler nats.MsgHandler) {
	messageID, first := w.firstDelivery(msg)
	if !first {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Panic in message handler",
				log.String("subject", msg.Subject),
				log.String(constant.MessageIdHeader, messageID),
				log.Any("error", fmt.Sprintf("%v\n%s", r, debug.Stack())))
		}
	}()
	handler(msg)
	w.logger.Debug(constant.MessageProcessed, log.String(constant.MessageIdHeader, messageID))
}

// monitorSubscription periodically checks a subscription and resubscribes if it became invalid.
func (w *NATSManager) monitorSubscription(subject string) {
	ticker := time.NewTicker(DefaultMonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.Lock()
			currentSub := w.subjects[subject]
			w.mu.Unlock()
			if currentSub == nil {
				return
			}
			if !currentSub.IsValid() && w.reconnect {
				w.logger.Warn("Subscription invalid, attempting to resubscribe", log.String("subject", subject))
				w.resubscribe(subject)
			}
		}
	}
}

// resubscribe reestablishes an invalid subscription using stored parameters.
func (w *NATSManager) resubscribe(subject string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if sub, exists := w.subjects[subject]; exists {
		_ = sub.Unsubscribe()
		delete(w.subjects, subject)
	}

	params, ok := w.subParams[subject]
	if !ok || w.nc == nil {
		return
	}

	sub, err := w.subscribe(subject, params)
	if err != nil {
		w.logger.Error("Failed to resubscribe", log.String("subject", subject), log.Err(err))
		return
	}
	w.subjects[subject] = sub
}
