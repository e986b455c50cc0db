package nats

import (
	"context"
	"errors"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/utils/codec"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/random"
	"github.com/nats-io/nats.go"
)

// Publish encodes payload with the manager's codec and publishes it to subject.
// It returns the Message-ID attached to the message.
func (w *NATSManager) Publish(ctx context.Context, subject string, payload any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", blame.PublishMessageError(subject, err)
	}

	data, err := codec.Encode(payload, w.codec)
	if err != nil {
		w.logger.Error(constant.EventPublishedFailed, log.String("subject", subject), log.Err(err))
		return "", blame.MarshalError(w.codec, err)
	}

	messageID := random.GenerateUUIDString()
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set(constant.MessageIdHeader, messageID)
	msg.Header.Set(ContentTypeHeader, codec.ContentType(w.codec))

	publish := func() (any, error) {
		w.mu.Lock()
		nc := w.nc
		w.mu.Unlock()
		if nc == nil {
			return nil, errors.New(ConnectionFailedMessage)
		}
		return nil, nc.PublishMsg(msg)
	}

	if w.breaker != nil {
		_, err = w.breaker.Execute(publish)
	} else {
		_, err = publish()
	}
	if err != nil {
		w.logger.Error(constant.EventPublishedFailed,
			log.String("subject", subject), log.String(constant.MessageIdHeader, messageID), log.Err(err))
		return "", blame.PublishMessageError(subject, err)
	}

	w.logger.Debug(constant.EventPublished, log.String("subject", subject), log.String(constant.MessageIdHeader, messageID))
	return messageID, nil
}
