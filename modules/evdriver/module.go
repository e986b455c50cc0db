// Package evdriver authorizes drivers and starts or stops sessions remotely.
package evdriver

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

// Module is the evdriver module.
type Module struct {
	*module.Base
	authorizations *module.Store[ocpp.IdTokenInfo]
}

// New builds the evdriver module and subscribes it to its messages.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (*Module, error) {
	m := &Module{
		Base:           module.NewBase(ocpp.EVDriver, cfg, cache, sender, receiver, logger),
		authorizations: module.NewStore[ocpp.IdTokenInfo](cache, ocpp.AuthorizationNamespace),
	}
	m.Handle(ocpp.Authorize, module.On(m.authorize))

	if err := m.Start(context.Background(), Capabilities.ActionNames()); err != nil {
		return nil, err
	}
	return m, nil
}

// authorize answers from the authorization list. Unlisted tokens are
// accepted only when acceptUnknownIdTokens is set.
func (m *Module) authorize(ctx context.Context, msg ocpp.Message, req *ocpp.AuthorizeRequest) (*ocpp.AuthorizeResponse, error) {
	info, err := m.authorizations.Get(ctx, msg.Context.TenantID, req.IdToken.IdToken)
	switch {
	case err == nil:
	case module.IsNotFound(err):
		info = &ocpp.IdTokenInfo{Status: "Unknown"}
		if section := m.Section(); section != nil && section.AcceptUnknownIdTokens {
			info.Status = "Accepted"
		}
	default:
		return nil, err
	}

	m.Log().Debug("authorize",
		log.String("station", msg.Context.StationID),
		log.String("idTokenType", req.IdToken.Type),
		log.String("status", info.Status))
	return &ocpp.AuthorizeResponse{IdTokenInfo: *info}, nil
}
