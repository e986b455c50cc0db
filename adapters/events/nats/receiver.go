package nats

import (
	"context"
	"sync"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
	"github.com/abhissng/chargehub/utils/codec"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/workerpool"
	"github.com/nats-io/nats.go"
)

var _ ports.Receiver = (*Receiver)(nil)

// Receiver decodes broker messages into ocpp.Message and hands them to its handler.
type Receiver struct {
	manager *NATSManager
	prefix  string

	// pool, when set, runs the handler off the subscription goroutine.
	pool *workerpool.WorkerPool[ocpp.Message]

	mu      sync.RWMutex
	handler ports.MessageHandler
	ctx     context.Context
}

func newReceiver(manager *NATSManager, prefix string) *Receiver {
	return &Receiver{manager: manager, prefix: prefix, ctx: context.Background()}
}

// withWorkers hands decoded messages to n workers. Messages of one station
// stay on one worker and keep their order.
func (r *Receiver) withWorkers(n int) *Receiver {
	if n <= 1 {
		return r
	}
	r.pool = workerpool.NewWorkerPool(context.Background(),
		func(_ context.Context, msg ocpp.Message) { r.handle(msg) },
		workerpool.WithNumWorkers[ocpp.Message](n),
		workerpool.WithKey(stationKey),
		workerpool.WithLogger[ocpp.Message](r.manager.logger),
	)
	return r
}

func stationKey(msg ocpp.Message) string {
	return msg.Context.TenantID + "/" + msg.Context.StationID
}

// SetHandler installs the function invoked for every delivered message.
func (r *Receiver) SetHandler(handler ports.MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

// Subscribe listens on every (state, action) pair for group.
// The general group receives CSMS-originated messages on every instance;
// module groups receive station-originated messages through a queue named after the group.
func (r *Receiver) Subscribe(ctx context.Context, group ocpp.EventGroup, actions []ocpp.CallAction, states ...ocpp.MessageState) error {
	r.mu.Lock()
	r.ctx = context.WithoutCancel(ctx)
	r.mu.Unlock()

	queue := QueueFor(group)
	for _, subject := range SubjectsFor(r.prefix, group, actions, states) {
		if err := r.manager.Subscribe(subject, queue, r.deliver); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown unsubscribes, drains the connection and waits for queued messages.
func (r *Receiver) Shutdown() error {
	r.manager.Close()
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func (r *Receiver) deliver(msg *nats.Msg) {
	logger := r.manager.logger
	codecType := codec.JSON
	if msg.Header.Get(ContentTypeHeader) == codec.ContentType(codec.MessagePack) {
		codecType = codec.MessagePack
	}
	message, err := codec.Decode[ocpp.Message](msg.Data, codecType)
	if err != nil {
		logger.Error(constant.EventDropped, log.String("subject", msg.Subject), log.Blame(blame.UnmarshalError(codecType, err)))
		return
	}

	logger.Debug(constant.EventReceived, log.String("subject", msg.Subject), log.String(constant.CorrelationID, message.Context.CorrelationID))
	if r.pool == nil {
		r.handle(message)
		return
	}
	if !r.pool.Submit(message) {
		logger.Warn(constant.EventDropped, log.String("subject", msg.Subject), log.String("reason", "receiver closed"))
	}
}

func (r *Receiver) handle(message ocpp.Message) {
	r.mu.RLock()
	handler, ctx := r.handler, r.ctx
	r.mu.RUnlock()

	logger := r.manager.logger
	if handler == nil {
		logger.Warn(constant.EventDropped, log.String("action", message.Action.String()), log.String("reason", "no handler"))
		return
	}
	if err := handler(ctx, message); err != nil {
		logger.Error(constant.HandlerFailed, log.String("action", message.Action.String()), log.String(constant.CorrelationID, message.Context.CorrelationID), log.Err(err))
	}
}

// OriginFor returns the origin a group consumes: the general group relays CSMS messages
// to stations, every other group handles station messages.
func OriginFor(group ocpp.EventGroup) ocpp.MessageOrigin {
	if group == ocpp.General {
		return ocpp.OriginCSMS
	}
	return ocpp.OriginChargingStation
}

// QueueFor returns the queue group of group; the general group subscribes without one.
func QueueFor(group ocpp.EventGroup) string {
	if group == ocpp.General {
		return ""
	}
	return string(group)
}

// SubjectsFor expands actions and states into subjects. No actions or no states
// means the wildcard for that token.
func SubjectsFor(prefix string, group ocpp.EventGroup, actions []ocpp.CallAction, states []ocpp.MessageState) []string {
	origin := OriginFor(group)
	if len(states) == 0 {
		states = []ocpp.MessageState{""}
	}
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, string(action))
	}
	if len(names) == 0 {
		names = []string{""}
	}

	subjects := make([]string, 0, len(names)*len(states))
	for _, state := range states {
		for _, name := range names {
			subjects = append(subjects, ocpp.Subject(prefix, origin, state, name))
		}
	}
	return subjects
}
