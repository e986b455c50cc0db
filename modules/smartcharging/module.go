// Package smartcharging tracks EV charging needs and the charging profiles
// installed on stations.
package smartcharging

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/abhissng/chargehub/ports"
)

const chargingNeedsNamespace ocpp.Namespace = "ChargingNeeds"

// InstalledProfile is a charging profile sent to an EVSE.
type InstalledProfile struct {
	EvseID  int                  `json:"evseId"`
	Profile ocpp.ChargingProfile `json:"chargingProfile"`
}

// Profiles are the charging profiles of one station, ordered by EVSE and stack level.
type Profiles struct {
	Profiles []InstalledProfile `json:"profiles"`
}

// Needs are the charging needs an EV reported on one EVSE.
type Needs struct {
	EvseID            int                `json:"evseId"`
	MaxScheduleTuples int                `json:"maxScheduleTuples,omitempty"`
	ChargingNeeds     ocpp.ChargingNeeds `json:"chargingNeeds"`
	ReceivedAt        time.Time          `json:"receivedAt"`
}

// Module is the smartcharging module.
type Module struct {
	*module.Base
	profiles *module.Store[Profiles]
	needs    *module.Store[Needs]
}

// New builds the smartcharging module and subscribes it to its messages.
func New(cfg *config.SystemConfig, cache ports.Cache, sender ports.Sender, receiver ports.Receiver, logger *log.Log) (*Module, error) {
	m := &Module{
		Base:     module.NewBase(ocpp.SmartCharging, cfg, cache, sender, receiver, logger),
		profiles: module.NewStore[Profiles](cache, ocpp.ChargingProfileNamespace),
		needs:    module.NewStore[Needs](cache, chargingNeedsNamespace),
	}
	m.Handle(ocpp.NotifyEVChargingNeeds, module.On(m.notifyEVChargingNeeds))

	if err := m.Start(context.Background(), Capabilities.ActionNames()); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Module) notifyEVChargingNeeds(ctx context.Context, msg ocpp.Message, req *ocpp.NotifyEVChargingNeedsRequest) (*ocpp.NotifyEVChargingNeedsResponse, error) {
	needs := Needs{
		EvseID:            req.EvseId,
		MaxScheduleTuples: req.MaxScheduleTuples,
		ChargingNeeds:     req.ChargingNeeds,
		ReceivedAt:        time.Now().UTC(),
	}
	if err := m.needs.Put(ctx, msg.Context.TenantID, needsKey(msg.Context.StationID, req.EvseId), needs); err != nil {
		return nil, err
	}
	return &ocpp.NotifyEVChargingNeedsResponse{Status: "Accepted"}, nil
}

// install replaces the profile with the same id, keeping the list ordered.
func (p *Profiles) install(evseID int, profile ocpp.ChargingProfile) {
	p.remove(func(installed InstalledProfile) bool { return installed.Profile.Id == profile.Id })
	p.Profiles = append(p.Profiles, InstalledProfile{EvseID: evseID, Profile: profile})
	sort.SliceStable(p.Profiles, func(i, j int) bool {
		a, b := p.Profiles[i], p.Profiles[j]
		if a.EvseID != b.EvseID {
			return a.EvseID < b.EvseID
		}
		return a.Profile.StackLevel < b.Profile.StackLevel
	})
}

// clear removes the profiles matched by id or by criteria, the way the
// station will once it accepts the ClearChargingProfile call.
func (p *Profiles) clear(req *ocpp.ClearChargingProfileRequest) {
	p.remove(func(installed InstalledProfile) bool {
		if req.ChargingProfileId != 0 {
			return installed.Profile.Id == req.ChargingProfileId
		}
		c := req.ChargingProfileCriteria
		if c == nil {
			return true
		}
		if c.ChargingProfilePurpose != "" && c.ChargingProfilePurpose != installed.Profile.ChargingProfilePurpose {
			return false
		}
		if c.StackLevel != 0 && c.StackLevel != installed.Profile.StackLevel {
			return false
		}
		return true
	})
}

func (p *Profiles) remove(match func(InstalledProfile) bool) {
	kept := p.Profiles[:0]
	for _, installed := range p.Profiles {
		if !match(installed) {
			kept = append(kept, installed)
		}
	}
	p.Profiles = kept
}

func needsKey(stationID string, evseID int) string {
	return stationID + ":" + strconv.Itoa(evseID)
}
