// Package ports defines the contracts between the orchestrator, the modules
// and the infrastructure they run on.
// Implementations live in adapters/ and cache/; fakes live in portstest.
package ports

import (
	"context"
	"time"

	"github.com/abhissng/chargehub/ocpp"
)

// -----------------------------------------------------------------------------
// Broker Ports
// -----------------------------------------------------------------------------

// MessageHandler processes one message delivered by a Receiver.
type MessageHandler func(ctx context.Context, msg ocpp.Message) error

// Sender publishes messages to the broker.
type Sender interface {
	// Send publishes msg on the subject derived from its origin, state and action.
	Send(ctx context.Context, msg ocpp.Message) (*ocpp.MessageConfirmation, error)

	// Shutdown drains and closes the underlying connection.
	Shutdown() error
}

// Receiver consumes messages from the broker.
type Receiver interface {
	// Subscribe listens for the given actions and states on behalf of group.
	// No actions means every action; no states means every state.
	Subscribe(ctx context.Context, group ocpp.EventGroup, actions []ocpp.CallAction, states ...ocpp.MessageState) error

	// SetHandler installs the function invoked for every delivered message.
	SetHandler(handler MessageHandler)

	// Shutdown unsubscribes and closes the underlying connection.
	Shutdown() error
}

// -----------------------------------------------------------------------------
// Storage Ports
// -----------------------------------------------------------------------------

// Cache is a string key/value store with per-key expiry.
type Cache interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value; ttl <= 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Kind names the implementation, "memory" or "redis".
	Kind() string
}

// Syncer brings the persistence schema up to date.
type Syncer interface {
	Sync(ctx context.Context, force bool) error
}

// -----------------------------------------------------------------------------
// Edge Ports
// -----------------------------------------------------------------------------

// CentralSystem accepts station connections and bridges them to the broker.
type CentralSystem interface {
	// Start begins accepting station connections; it does not block.
	Start(ctx context.Context) error

	// Shutdown closes every station connection and stops accepting new ones.
	Shutdown() error
}

// CallbackClient delivers asynchronous results to caller-supplied URLs.
type CallbackClient interface {
	Deliver(ctx context.Context, url string, payload any) error
}
