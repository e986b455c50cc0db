package nats

import (
	"fmt"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/utils/circuitBreaker"
	"github.com/abhissng/chargehub/utils/codec"
)

// natsSection returns the broker section or the missing-config blame.
func natsSection(cfg *config.SystemConfig) (*config.NATSConfig, error) {
	if cfg == nil || cfg.Util.MessageBroker.NATS == nil {
		return nil, blame.BrokerConfigMissingError()
	}
	return cfg.Util.MessageBroker.NATS, nil
}

// managerOptions translates the broker section into manager options.
func managerOptions(section *config.NATSConfig, logger *log.Log, name string) ([]Option, error) {
	codecType, ok := codec.ParseCodec(section.Encoding)
	if !ok {
		return nil, blame.MarshalError(codecType, fmt.Errorf("unknown encoding %q", section.Encoding))
	}

	breakerOptions := []circuitBreaker.CircuitBreakerOption{}
	if b := section.Breaker; b != nil {
		breakerOptions = append(breakerOptions,
			circuitBreaker.WithMaxRequests(b.MaxRequests),
			circuitBreaker.WithInterval(b.Interval),
			circuitBreaker.WithTimeout(b.Timeout),
			circuitBreaker.WithConsecutiveFailures(b.ConsecutiveFailures),
		)
	}

	return []Option{
		WithLogger(logger),
		WithName(name),
		WithCodec(codecType),
		WithReconnect(section.MaxReconnects, section.ReconnectWait),
		WithConnectTimeout(section.Timeout),
		WithCircuitBreaker(breakerOptions...),
	}, nil
}

// NewSender connects a Sender using the broker section of cfg.
func NewSender(cfg *config.SystemConfig, logger *log.Log) (*Sender, error) {
	section, err := natsSection(cfg)
	if err != nil {
		return nil, err
	}
	options, err := managerOptions(section, logger, "chargehub-sender")
	if err != nil {
		return nil, err
	}
	manager, err := NewNATSManager(section.URL, options...)
	if err != nil {
		return nil, err
	}
	return newSender(manager, section.SubjectPrefix), nil
}

// NewReceiver connects a Receiver using the broker section of cfg.
func NewReceiver(cfg *config.SystemConfig, logger *log.Log) (*Receiver, error) {
	section, err := natsSection(cfg)
	if err != nil {
		return nil, err
	}
	options, err := managerOptions(section, logger, "chargehub-receiver")
	if err != nil {
		return nil, err
	}
	manager, err := NewNATSManager(section.URL, options...)
	if err != nil {
		return nil, err
	}
	return newReceiver(manager, section.SubjectPrefix).withWorkers(section.Workers), nil
}
