// Package configuration answers station provisioning (boot and heartbeat)
// and drives station-level commands such as Reset.
package configuration

import (
	"context"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const (
	statusAccepted = "Accepted"

	defaultHeartbeatInterval = 60
	defaultBootRetryInterval = 15
)

// BootConfig overrides the BootNotification answer of one station.
type BootConfig struct {
	Status            string           `json:"status" validate:"required,oneof=Accepted Pending Rejected"`
	HeartbeatInterval int              `json:"heartbeatInterval,omitempty" validate:"gte=0"`
	StatusInfo        *ocpp.StatusInfo `json:"statusInfo,omitempty"`
}

// Station is the last known state of a charging station.
type Station struct {
	Identifier      string               `json:"identifier"`
	TenantID        string               `json:"tenantId"`
	ChargingStation ocpp.ChargingStation `json:"chargingStation"`
	BootReason      string               `json:"bootReason,omitempty"`
	BootStatus      string               `json:"bootStatus,omitempty"`
	LastBoot        time.Time            `json:"lastBoot,omitempty"`
	LastHeartbeat   time.Time            `json:"lastHeartbeat,omitempty"`
}

// Module is the configuration module.
type Module struct {
	*module.Base
	boots    *module.Store[BootConfig]
	stations *module.Store[Station]
	now      func() time.Time
}

// New builds the configuration module and subscribes it to its messages.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (*Module, error) {
	m := &Module{
		Base:     module.NewBase(ocpp.Configuration, cfg, cache, sender, receiver, logger),
		boots:    module.NewStore[BootConfig](cache, ocpp.BootConfigNamespace),
		stations: module.NewStore[Station](cache, ocpp.ChargingStationNamespace),
		now:      func() time.Time { return time.Now().UTC() },
	}
	m.Handle(ocpp.BootNotification, module.On(m.bootNotification))
	m.Handle(ocpp.Heartbeat, module.On(m.heartbeat))

	if err := m.Start(context.Background(), Capabilities.ActionNames()); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) bootNotification(ctx context.Context, msg ocpp.Message, req *ocpp.BootNotificationRequest) (*ocpp.BootNotificationResponse, error) {
	status, interval := statusAccepted, defaultHeartbeatInterval
	retry := defaultBootRetryInterval
	if section := m.Section(); section != nil {
		if section.UnknownChargerStatus != "" {
			status = section.UnknownChargerStatus
		}
		if section.HeartbeatInterval > 0 {
			interval = section.HeartbeatInterval
		}
		if section.BootRetryInterval > 0 {
			retry = section.BootRetryInterval
		}
	}

	var info *ocpp.StatusInfo
	boot, err := m.boots.Get(ctx, msg.Context.TenantID, msg.Context.StationID)
	switch {
	case err == nil:
		status, info = boot.Status, boot.StatusInfo
		if boot.HeartbeatInterval > 0 {
			interval = boot.HeartbeatInterval
		}
	case !module.IsNotFound(err):
		return nil, err
	}
	if status != statusAccepted {
		interval = retry
	}

	now := m.now()
	if _, err := m.stations.Update(ctx, msg.Context.TenantID, msg.Context.StationID, func(s *Station) {
		s.Identifier = msg.Context.StationID
		s.TenantID = msg.Context.TenantID
		s.ChargingStation = req.ChargingStation
		s.BootReason = req.Reason
		s.BootStatus = status
		s.LastBoot = now
	}); err != nil {
		return nil, err
	}

	m.Log().Info("boot notification",
		log.String("station", msg.Context.StationID),
		log.String("reason", req.Reason),
		log.String("status", status))
	return &ocpp.BootNotificationResponse{CurrentTime: now, Interval: interval, Status: status, StatusInfo: info}, nil
}

func (m *Module) heartbeat(ctx context.Context, msg ocpp.Message, _ *ocpp.HeartbeatRequest) (*ocpp.HeartbeatResponse, error) {
	now := m.now()
	if _, err := m.stations.Update(ctx, msg.Context.TenantID, msg.Context.StationID, func(s *Station) {
		s.Identifier = msg.Context.StationID
		s.TenantID = msg.Context.TenantID
		s.LastHeartbeat = now
	}); err != nil {
		return nil, err
	}
	return &ocpp.HeartbeatResponse{CurrentTime: now}, nil
}
