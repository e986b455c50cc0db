package nats

import (
	"errors"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/nats-io/nats.go"
)

// ErrAlreadySubscribed is returned when a subject already has a live subscription.
var ErrAlreadySubscribed = errors.New("already subscribed to subject")

// Subscribe subscribes handler to subject. A non-empty queue makes it a queue subscription,
// so each message is delivered to one member of the group.
func (w *NATSManager) Subscribe(subject, queue string, handler nats.MsgHandler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.subjects[subject]; exists {
		return blame.SubscribeError(subject, ErrAlreadySubscribed)
	}
	if w.nc == nil {
		return blame.SubscribeError(subject, errors.New(ConnectionFailedMessage))
	}

	params := &subscriptionParams{
		queue: queue,
		handler: func(msg *nats.Msg) {
			w.handleMessage(msg, handler)
		},
	}

	sub, err := w.subscribe(subject, params)
	if err != nil {
		w.logger.Error(constant.SubjectSubscribeFailed, log.String("subject", subject), log.Err(err))
		return blame.SubscribeError(subject, err)
	}

	w.subjects[subject] = sub
	w.subParams[subject] = params
	w.logger.Info(constant.SubjectSubscribed, log.String("subject", subject), log.String("queue", queue))

	go w.monitorSubscription(subject)
	return nil
}

// subscribe creates the subscription and flushes so it is active on return. Callers hold w.mu.
func (w *NATSManager) subscribe(subject string, params *subscriptionParams) (*nats.Subscription, error) {
	var sub *nats.Subscription
	var err error

	if params.queue != "" {
		sub, err = w.nc.QueueSubscribe(subject, params.queue, params.handler)
	} else {
		sub, err = w.nc.Subscribe(subject, params.handler)
	}
	if err != nil {
		return nil, err
	}

	if err := w.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	return sub, nil
}

// Subjects returns the subjects with a live subscription.
func (w *NATSManager) Subjects() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	subjects := make([]string, 0, len(w.subjects))
	for subject := range w.subjects {
		subjects = append(subjects, subject)
	}
	return subjects
}
