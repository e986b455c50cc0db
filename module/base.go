package module

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	httpclient "github.com/abhissng/chargehub/adapters/http"
	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	appctx "github.com/abhissng/chargehub/context"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/random"
)

// RequestHandler answers one station-originated call. The returned value is
// sent back as the CALLRESULT payload; a *ocpp.CallError is sent as CALLERROR.
type RequestHandler func(ctx context.Context, msg ocpp.Message) (any, error)

// On adapts a typed handler into a RequestHandler, decoding the payload into P.
func On[P, R any](fn func(ctx context.Context, msg ocpp.Message, req *P) (*R, error)) RequestHandler {
	return func(ctx context.Context, msg ocpp.Message) (any, error) {
		req := new(P)
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, req); err != nil {
				return nil, &ocpp.CallError{Code: ocpp.FormatViolation, Description: err.Error()}
			}
		}
		return fn(ctx, msg, req)
	}
}

// Base carries what every module shares. Modules embed it.
type Base struct {
	group ocpp.EventGroup

	mu     sync.RWMutex
	config *config.SystemConfig

	cache     ports.Cache
	sender    ports.Sender
	receiver  ports.Receiver
	logger    *log.Log
	callbacks *Callbacks
	handlers  map[ocpp.CallAction]RequestHandler

	stopOnce sync.Once
	stopErr  error
}

// NewBase wires a module of group to its infrastructure. The callback client
// is built from util.callback.
func NewBase(group ocpp.EventGroup, cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) *Base {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	logger = logger.With(log.Component(group.String()))

	client := httpclient.NewCallbackClient(httpclient.WithConfig(cfg.Util.Callback), httpclient.WithLogger(logger))
	return &Base{
		group:     group,
		config:    cfg,
		cache:     cache,
		sender:    sender,
		receiver:  receiver,
		logger:    logger,
		callbacks: NewCallbacks(cache, client, cfg.Util.Callback.TTL, logger),
		handlers:  make(map[ocpp.CallAction]RequestHandler),
	}
}

// Group returns the event group of the module.
func (b *Base) Group() ocpp.EventGroup {
	return b.group
}

// Config returns the current configuration.
func (b *Base) Config() *config.SystemConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// SetConfig replaces the configuration.
func (b *Base) SetConfig(cfg *config.SystemConfig) {
	if cfg == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.config = cfg
}

// Section returns the module's own configuration section, nil when absent.
func (b *Base) Section() *config.ModuleConfig {
	return b.Config().Section(b.group.String())
}

// Cache returns the shared cache.
func (b *Base) Cache() ports.Cache {
	return b.cache
}

// Log returns the module logger.
func (b *Base) Log() *log.Log {
	return b.logger
}

// Callbacks returns the callback bookkeeping of the module.
func (b *Base) Callbacks() *Callbacks {
	return b.callbacks
}

// Handle registers the handler answering station calls of action.
// It must be called before Start.
func (b *Base) Handle(action ocpp.CallAction, handler RequestHandler) {
	b.handlers[action] = handler
}

// Start installs the dispatcher and subscribes to the handled station calls
// and to the answers of commands.
func (b *Base) Start(ctx context.Context, commands []ocpp.CallAction) error {
	b.receiver.SetHandler(b.dispatch)

	if requests := b.requestActions(); len(requests) > 0 {
		if err := b.receiver.Subscribe(ctx, b.group, requests, ocpp.StateRequest); err != nil {
			return err
		}
	}
	if len(commands) > 0 {
		if err := b.receiver.Subscribe(ctx, b.group, commands, ocpp.StateResponse, ocpp.StateError); err != nil {
			return err
		}
	}
	b.logger.Info(constant.ModuleStarted, log.Int("requests", len(b.handlers)), log.Int("commands", len(commands)))
	return nil
}

func (b *Base) requestActions() []ocpp.CallAction {
	actions := make([]ocpp.CallAction, 0, len(b.handlers))
	for action := range b.handlers {
		actions = append(actions, action)
	}
	return actions
}

// SendCall publishes a CSMS-originated call for the station of call. When
// call has a callback URL the station's answer is delivered there.
func (b *Base) SendCall(ctx context.Context, call registry.Call, action ocpp.CallAction, payload any) (*ocpp.MessageConfirmation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	correlationID := random.GenerateUUIDString()
	if call.CallbackURL != "" {
		pending := Pending{
			URL:       call.CallbackURL,
			StationID: call.Identifier,
			TenantID:  call.TenantID,
			Action:    action,
		}
		if err := b.callbacks.Register(ctx, correlationID, pending); err != nil {
			return nil, err
		}
	}

	msg := ocpp.Message{
		Origin:     ocpp.OriginCSMS,
		EventGroup: b.group,
		Action:     action,
		State:      ocpp.StateRequest,
		Context: ocpp.Context{
			CorrelationID: correlationID,
			StationID:     call.Identifier,
			TenantID:      call.TenantID,
			Timestamp:     time.Now().UTC(),
		},
		Payload: raw,
	}
	confirmation, err := b.sender.Send(ctx, msg)
	if err != nil {
		logger := appctx.Logger(ctx, b.logger)
		logger.Error(constant.EventPublishedFailed, log.String("action", action.String()), log.Err(err))
		if call.CallbackURL != "" {
			if ferr := b.callbacks.Forget(ctx, correlationID); ferr != nil {
				logger.Warn("callback entry not removed", log.String("correlationId", correlationID), log.Err(ferr))
			}
		}
		return ocpp.Rejected(err.Error()), nil
	}
	return confirmation, nil
}

// dispatch routes a delivered message to its handler or to the callbacks.
func (b *Base) dispatch(ctx context.Context, msg ocpp.Message) error {
	ctx = appctx.WithCorrelationID(ctx, msg.Context.CorrelationID)
	switch msg.State {
	case ocpp.StateRequest:
		return b.answer(ctx, msg)
	case ocpp.StateResponse, ocpp.StateError:
		return b.callbacks.Resolve(ctx, msg)
	}
	return fmt.Errorf("unknown message state %q", msg.State)
}

func (b *Base) answer(ctx context.Context, msg ocpp.Message) error {
	handler, ok := b.handlers[msg.Action]
	if !ok {
		return b.reply(ctx, msg, nil, &ocpp.CallError{Code: ocpp.NotImplemented, Description: "no handler for " + msg.Action.String()})
	}

	result, err := b.invoke(ctx, handler, msg)
	if err != nil {
		var callErr *ocpp.CallError
		if !errors.As(err, &callErr) {
			appctx.Logger(ctx, b.logger).Error(constant.HandlerFailed, log.String("action", msg.Action.String()), log.Err(err))
			callErr = &ocpp.CallError{Code: ocpp.InternalError, Description: err.Error()}
		}
		return b.reply(ctx, msg, nil, callErr)
	}
	return b.reply(ctx, msg, result, nil)
}

func (b *Base) invoke(ctx context.Context, handler RequestHandler, msg ocpp.Message) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("Exception occurred in module handler",
				log.String("action", msg.Action.String()),
				log.Any("error", rec),
				log.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return handler(ctx, msg)
}

// reply sends the CALLRESULT or CALLERROR for request back through the broker.
func (b *Base) reply(ctx context.Context, request ocpp.Message, result any, callErr *ocpp.CallError) error {
	response := ocpp.Message{
		Origin:     ocpp.OriginCSMS,
		EventGroup: b.group,
		Action:     request.Action,
		State:      ocpp.StateResponse,
		Context:    request.Context,
	}
	response.Context.Timestamp = time.Now().UTC()

	if callErr != nil {
		response.State = ocpp.StateError
		response.Error = callErr
	} else {
		raw, err := json.Marshal(result)
		if err != nil {
			return err
		}
		response.Payload = raw
	}

	_, err := b.sender.Send(ctx, response)
	return err
}

// Shutdown closes the broker connections once.
func (b *Base) Shutdown() error {
	b.stopOnce.Do(func() {
		b.stopErr = errors.Join(b.receiver.Shutdown(), b.sender.Shutdown())
		b.logger.Info(constant.ModuleStopped)
	})
	return b.stopErr
}
