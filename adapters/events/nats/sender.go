package nats

import (
	"context"
	"time"

	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
	"github.com/abhissng/chargehub/utils/random"
)

var _ ports.Sender = (*Sender)(nil)

// Sender publishes ocpp messages on "<prefix>.<origin>.<state>.<action>".
type Sender struct {
	manager *NATSManager
	prefix  string
}

func newSender(manager *NATSManager, prefix string) *Sender {
	return &Sender{manager: manager, prefix: prefix}
}

// Receipt is the confirmation payload of a successful Send.
type Receipt struct {
	CorrelationID string `json:"correlationId"`
	MessageID     string `json:"messageId"`
	Subject       string `json:"subject"`
}

// Send stamps missing correlation id and timestamp, then publishes msg.
func (s *Sender) Send(ctx context.Context, msg ocpp.Message) (*ocpp.MessageConfirmation, error) {
	if msg.Context.CorrelationID == "" {
		msg.Context.CorrelationID = random.GenerateUUIDString()
	}
	if msg.Context.Timestamp.IsZero() {
		msg.Context.Timestamp = time.Now().UTC()
	}

	subject := msg.Subject(s.prefix)
	messageID, err := s.manager.Publish(ctx, subject, msg)
	if err != nil {
		return nil, err
	}
	return ocpp.Confirmed(Receipt{
		CorrelationID: msg.Context.CorrelationID,
		MessageID:     messageID,
		Subject:       subject,
	}), nil
}

// Shutdown drains the connection.
func (s *Sender) Shutdown() error {
	s.manager.Close()
	return nil
}
