package ocpp

import (
	"encoding/json"
	"strings"
	"time"
)

// Context carries the routing identity of a message.
type Context struct {
	CorrelationID string    `json:"correlationId" msgpack:"correlationId"`
	StationID     string    `json:"stationId" msgpack:"stationId"`
	TenantID      string    `json:"tenantId" msgpack:"tenantId"`
	Timestamp     time.Time `json:"timestamp" msgpack:"timestamp"`
}

// Message is the envelope exchanged over the broker.
type Message struct {
	Origin     MessageOrigin   `json:"origin" msgpack:"origin"`
	EventGroup EventGroup      `json:"eventGroup" msgpack:"eventGroup"`
	Action     CallAction      `json:"action" msgpack:"action"`
	State      MessageState    `json:"state" msgpack:"state"`
	Context    Context         `json:"context" msgpack:"context"`
	Payload    json.RawMessage `json:"payload,omitempty" msgpack:"payload"`
	// Error is set when State is StateError.
	Error *CallError `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Subject returns "<prefix>.<origin>.<state>.<action>".
func (m Message) Subject(prefix string) string {
	return Subject(prefix, m.Origin, m.State, string(m.Action))
}

// Subject builds a broker subject. Empty parts become the "*" wildcard.
func Subject(prefix string, origin MessageOrigin, state MessageState, action string) string {
	parts := []string{string(origin), string(state), action}
	for i, p := range parts {
		if p == "" {
			parts[i] = "*"
		}
	}
	if prefix == "" {
		return strings.Join(parts, ".")
	}
	return prefix + "." + strings.Join(parts, ".")
}

// MessageConfirmation is returned by every action route and by Sender.Send.
type MessageConfirmation struct {
	Success bool `json:"success"`
	Payload any  `json:"payload,omitempty"`
}

// Confirmed returns a successful confirmation.
func Confirmed(payload any) *MessageConfirmation {
	return &MessageConfirmation{Success: true, Payload: payload}
}

// Rejected returns an unsuccessful confirmation carrying a reason.
func Rejected(reason string) *MessageConfirmation {
	return &MessageConfirmation{Success: false, Payload: reason}
}
