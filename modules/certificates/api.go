package certificates

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/module/api"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
)

// API exposes the certificate commands.
type API struct {
	*api.Base[*Module]
}

// Capabilities lists every route of the certificates API.
var Capabilities = registry.New[*API](ocpp.Certificates.String()).
	MustExpose(
		registry.Action(ocpp.InstallCertificate, (*API).InstallCertificate),
		registry.Action(ocpp.DeleteCertificate, (*API).DeleteCertificate),
		registry.Action(ocpp.GetInstalledCertificateIds, (*API).GetInstalledCertificateIds),
	).
	MustExposeData(
		registry.Data(ocpp.CertificateNamespace, ocpp.Get, (*API).GetCertificates),
	)

// Descriptor builds the certificates module for the orchestrator.
var Descriptor = module.Descriptor{
	Group:   ocpp.Certificates,
	Section: func(cfg *config.SystemConfig) *config.ModuleConfig { return cfg.Modules.Certificates },
	Build:   module.Builder[*Module](New, NewAPI),
}

// NewAPI registers the certificates routes on listener.
func NewAPI(m *Module, listener api.Listener, logger *log.Log) (module.Api, error) {
	a := &API{}
	base, err := api.Register(a, m, listener, logger, Capabilities)
	if err != nil {
		return nil, err
	}
	a.Base = base
	return a, nil
}

// InstallCertificate sends the certificate and records it against the station
// once the broker accepted the call.
func (a *API) InstallCertificate(ctx context.Context, call registry.Call, req *ocpp.InstallCertificateRequest) (*ocpp.MessageConfirmation, error) {
	confirmation, err := a.Module().SendCall(ctx, call, ocpp.InstallCertificate, req)
	if err != nil || !confirmation.Success {
		return confirmation, err
	}
	if _, err := a.Module().certificates.Update(ctx, call.TenantID, call.Identifier, func(c *Certificates) {
		if c.Installed == nil {
			c.Installed = make(map[string]ocpp.InstallCertificateRequest)
		}
		c.Installed[req.CertificateType] = *req
	}); err != nil {
		return nil, err
	}
	return confirmation, nil
}

func (a *API) DeleteCertificate(ctx context.Context, call registry.Call, req *ocpp.DeleteCertificateRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.DeleteCertificate, req)
}

func (a *API) GetInstalledCertificateIds(ctx context.Context, call registry.Call, req *ocpp.GetInstalledCertificateIdsRequest) (*ocpp.MessageConfirmation, error) {
	return a.Module().SendCall(ctx, call, ocpp.GetInstalledCertificateIds, req)
}

func (a *API) GetCertificates(ctx context.Context, q *module.StationQuery, _ *registry.None) (any, error) {
	return a.Module().certificates.Get(ctx, q.TenantID, q.Identifier)
}
