// Package reporting assembles device model reports and keeps the security
// event log of each station.
package reporting

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const maxSecurityEvents = 500

// Report is the device model a station reported, assembled across the
// sequence of NotifyReport messages of one request.
type Report struct {
	RequestID  int               `json:"requestId"`
	Complete   bool              `json:"complete"`
	LastSeqNo  int               `json:"lastSeqNo"`
	ReportData []ocpp.ReportData `json:"reportData"`
}

// Module is the reporting module.
type Module struct {
	*module.Base
	reports        *module.Store[Report]
	securityEvents *module.Store[[]ocpp.SecurityEventNotificationRequest]
}

// New builds the reporting module and subscribes it to its messages.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (*Module, error) {
	m := &Module{
		Base:           module.NewBase(ocpp.Reporting, cfg, cache, sender, receiver, logger),
		reports:        module.NewStore[Report](cache, ocpp.VariableAttributeNamespace),
		securityEvents: module.NewStore[[]ocpp.SecurityEventNotificationRequest](cache, ocpp.SecurityEventNamespace),
	}
	m.Handle(ocpp.NotifyReport, module.On(m.notifyReport))
	m.Handle(ocpp.SecurityEventNotification, module.On(m.securityEventNotification))

	if err := m.Start(context.Background(), Capabilities.ActionNames()); err != nil {
		return nil, err
	}
	return m, nil
}

// notifyReport starts a new report on seqNo 0 or a new request id and
// appends to the current one otherwise.
func (m *Module) notifyReport(ctx context.Context, msg ocpp.Message, req *ocpp.NotifyReportRequest) (*ocpp.NotifyReportResponse, error) {
	if _, err := m.reports.Update(ctx, msg.Context.TenantID, msg.Context.StationID, func(r *Report) {
		if req.SeqNo == 0 || r.RequestID != req.RequestId {
			*r = Report{RequestID: req.RequestId}
		}
		r.ReportData = append(r.ReportData, req.ReportData...)
		r.LastSeqNo = req.SeqNo
		r.Complete = !req.Tbc
	}); err != nil {
		return nil, err
	}
	return &ocpp.NotifyReportResponse{}, nil
}

func (m *Module) securityEventNotification(ctx context.Context, msg ocpp.Message, req *ocpp.SecurityEventNotificationRequest) (*ocpp.SecurityEventNotificationResponse, error) {
	if _, err := m.securityEvents.Update(ctx, msg.Context.TenantID, msg.Context.StationID, func(events *[]ocpp.SecurityEventNotificationRequest) {
		*events = append(*events, *req)
		if n := len(*events); n > maxSecurityEvents {
			*events = (*events)[n-maxSecurityEvents:]
		}
	}); err != nil {
		return nil, err
	}
	m.Log().Warn("security event",
		log.String("station", msg.Context.StationID),
		log.String("type", req.Type))
	return &ocpp.SecurityEventNotificationResponse{}, nil
}
