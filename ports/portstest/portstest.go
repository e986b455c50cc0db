// Package portstest provides in-memory fakes of the ports for tests.
package portstest

import (
	"context"
	"sync"
	"time"

	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

// Sender records every message it is asked to send.
type Sender struct {
	mu           sync.Mutex
	Messages     []ocpp.Message
	Failed       []ocpp.Message
	Err          error
	ShutdownErr  error
	ShutdownHits int
}

var _ ports.Sender = (*Sender)(nil)

// Send records msg and confirms it unless Err is set. Refused messages are
// kept in Failed.
func (s *Sender) Send(_ context.Context, msg ocpp.Message) (*ocpp.MessageConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		s.Failed = append(s.Failed, msg)
		return nil, s.Err
	}
	s.Messages = append(s.Messages, msg)
	return ocpp.Confirmed(nil), nil
}

// Sent returns a copy of the recorded messages.
func (s *Sender) Sent() []ocpp.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ocpp.Message(nil), s.Messages...)
}

// Refused returns a copy of the messages Send failed on.
func (s *Sender) Refused() []ocpp.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ocpp.Message(nil), s.Failed...)
}

// Shutdown counts calls.
func (s *Sender) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ShutdownHits++
	return s.ShutdownErr
}

// Subscription records one Subscribe call.
type Subscription struct {
	Group   ocpp.EventGroup
	Actions []ocpp.CallAction
	States  []ocpp.MessageState
}

// Receiver records subscriptions and lets tests push messages to the handler.
type Receiver struct {
	mu            sync.Mutex
	Subscriptions []Subscription
	handler       ports.MessageHandler
	SubscribeErr  error
	ShutdownHits  int
}

var _ ports.Receiver = (*Receiver)(nil)

// Subscribe records the subscription.
func (r *Receiver) Subscribe(_ context.Context, group ocpp.EventGroup, actions []ocpp.CallAction, states ...ocpp.MessageState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SubscribeErr != nil {
		return r.SubscribeErr
	}
	r.Subscriptions = append(r.Subscriptions, Subscription{Group: group, Actions: actions, States: states})
	return nil
}

// SetHandler stores the handler.
func (r *Receiver) SetHandler(handler ports.MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

// Deliver invokes the installed handler as the broker would.
func (r *Receiver) Deliver(ctx context.Context, msg ocpp.Message) error {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(ctx, msg)
}

// Shutdown counts calls.
func (r *Receiver) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ShutdownHits++
	return nil
}

// Syncer records sync requests.
type Syncer struct {
	mu    sync.Mutex
	Calls []bool
	Err   error
}

var _ ports.Syncer = (*Syncer)(nil)

// Sync records force and returns Err.
func (s *Syncer) Sync(_ context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, force)
	return s.Err
}

// CentralSystem is a controllable central system.
type CentralSystem struct {
	mu           sync.Mutex
	Started      bool
	StartErr     error
	ShutdownHits int
	// Hang blocks Shutdown until the channel is closed.
	Hang chan struct{}
}

var _ ports.CentralSystem = (*CentralSystem)(nil)

// Start marks the system started.
func (c *CentralSystem) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Started = true
	return c.StartErr
}

// Shutdown counts calls, blocking on Hang when set.
func (c *CentralSystem) Shutdown() error {
	c.mu.Lock()
	c.ShutdownHits++
	hang := c.Hang
	c.mu.Unlock()
	if hang != nil {
		<-hang
	}
	return nil
}

// Delivery records one callback.
type Delivery struct {
	URL     string
	Payload any
	At      time.Time
}

// CallbackClient records deliveries.
type CallbackClient struct {
	mu         sync.Mutex
	Deliveries []Delivery
	Err        error
}

var _ ports.CallbackClient = (*CallbackClient)(nil)

// Deliver records the callback.
func (c *CallbackClient) Deliver(_ context.Context, url string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Deliveries = append(c.Deliveries, Delivery{URL: url, Payload: payload, At: time.Now()})
	return nil
}

// Delivered returns a copy of the recorded deliveries.
func (c *CallbackClient) Delivered() []Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Delivery(nil), c.Deliveries...)
}
