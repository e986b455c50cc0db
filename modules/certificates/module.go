// Package certificates handles station certificate signing requests and the
// installation of root certificates.
package certificates

import (
	"context"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const defaultCertificateType = "ChargingStationCertificate"

// SigningRequest is a CSR received from a station, awaiting signature.
type SigningRequest struct {
	StationID       string    `json:"stationId"`
	CertificateType string    `json:"certificateType"`
	CSR             string    `json:"csr"`
	ReceivedAt      time.Time `json:"receivedAt"`
}

// Certificates is what the CSMS knows about the certificates of one station.
type Certificates struct {
	Pending   []SigningRequest                          `json:"pending,omitempty"`
	Installed map[string]ocpp.InstallCertificateRequest `json:"installed,omitempty"`
}

// Module is the certificates module.
type Module struct {
	*module.Base
	certificates *module.Store[Certificates]
}

// New builds the certificates module and subscribes it to its messages.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (*Module, error) {
	m := &Module{
		Base:         module.NewBase(ocpp.Certificates, cfg, cache, sender, receiver, logger),
		certificates: module.NewStore[Certificates](cache, ocpp.CertificateNamespace),
	}
	m.Handle(ocpp.SignCertificate, module.On(m.signCertificate))

	if err := m.Start(context.Background(), Capabilities.ActionNames()); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) signCertificate(ctx context.Context, msg ocpp.Message, req *ocpp.SignCertificateRequest) (*ocpp.SignCertificateResponse, error) {
	certType := req.CertificateType
	if certType == "" {
		certType = defaultCertificateType
	}
	pending := SigningRequest{
		StationID:       msg.Context.StationID,
		CertificateType: certType,
		CSR:             req.CSR,
		ReceivedAt:      time.Now().UTC(),
	}
	if _, err := m.certificates.Update(ctx, msg.Context.TenantID, msg.Context.StationID, func(c *Certificates) {
		c.Pending = append(c.Pending, pending)
	}); err != nil {
		return nil, err
	}
	m.Log().Info("certificate signing requested",
		log.String("station", msg.Context.StationID),
		log.String("certificateType", certType))
	return &ocpp.SignCertificateResponse{Status: "Accepted"}, nil
}
