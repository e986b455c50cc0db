// Package monitoring collects station events and manages device model variables.
package monitoring

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const maxEvents = 500

// Monitor is a variable monitor configured for a station.
type Monitor struct {
	Component ocpp.Component `json:"component"`
	Variable  ocpp.Variable  `json:"variable"`
	Type      string         `json:"type" validate:"required,oneof=UpperThreshold LowerThreshold Delta Periodic PeriodicClockAligned"`
	Value     float64        `json:"value"`
	Severity  int            `json:"severity" validate:"gte=0,lte=9"`
}

// Monitors is the monitoring set of one station.
type Monitors struct {
	Monitors []Monitor `json:"monitors" validate:"required,dive"`
}

// Module is the monitoring module.
type Module struct {
	*module.Base
	events   *module.Store[[]ocpp.EventData]
	monitors *module.Store[Monitors]
}

// New builds the monitoring module and subscribes it to its messages.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (*Module, error) {
	m := &Module{
		Base:     module.NewBase(ocpp.Monitoring, cfg, cache, sender, receiver, logger),
		events:   module.NewStore[[]ocpp.EventData](cache, ocpp.EventDataNamespace),
		monitors: module.NewStore[Monitors](cache, ocpp.VariableMonitoringNamespace),
	}
	m.Handle(ocpp.NotifyEvent, module.On(m.notifyEvent))

	if err := m.Start(context.Background(), Capabilities.ActionNames()); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) notifyEvent(ctx context.Context, msg ocpp.Message, req *ocpp.NotifyEventRequest) (*ocpp.NotifyEventResponse, error) {
	if _, err := m.events.Update(ctx, msg.Context.TenantID, msg.Context.StationID, func(events *[]ocpp.EventData) {
		*events = append(*events, req.EventData...)
		if n := len(*events); n > maxEvents {
			*events = (*events)[n-maxEvents:]
		}
	}); err != nil {
		return nil, err
	}
	for _, e := range req.EventData {
		if e.Trigger == "Alerting" {
			m.Log().Warn("station alert",
				log.String("station", msg.Context.StationID),
				log.String("component", e.Component.Name),
				log.String("variable", e.Variable.Name),
				log.String("value", e.ActualValue))
		}
	}
	return &ocpp.NotifyEventResponse{}, nil
}
