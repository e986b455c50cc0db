package server

import (
	"strings"

	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module"
	"github.com/abhissng/chargehub/modules/certificates"
	"github.com/abhissng/chargehub/modules/configuration"
	"github.com/abhissng/chargehub/modules/evdriver"
	"github.com/abhissng/chargehub/modules/monitoring"
	"github.com/abhissng/chargehub/modules/reporting"
	"github.com/abhissng/chargehub/modules/smartcharging"
	"github.com/abhissng/chargehub/modules/transactions"
	"github.com/abhissng/chargehub/ocpp"
)

// Descriptors is the module table in construction order.
var Descriptors = []module.Descriptor{
	certificates.Descriptor,
	configuration.Descriptor,
	evdriver.Descriptor,
	monitoring.Descriptor,
	reporting.Descriptor,
	smartcharging.Descriptor,
	transactions.Descriptor,
}

// DeploymentMode selects what one process runs: every module plus the
// central system, the central system alone, or a single module.
type DeploymentMode struct {
	group ocpp.EventGroup
}

// ParseMode parses a deployment name. An empty name means all.
func ParseMode(s string) (DeploymentMode, error) {
	if strings.TrimSpace(s) == "" {
		return DeploymentMode{group: ocpp.All}, nil
	}
	g, ok := ocpp.EventGroupFromString(s)
	if !ok {
		return DeploymentMode{}, blame.UnknownDeploymentModeError(s)
	}
	return DeploymentMode{group: g}, nil
}

// String returns the deployment name.
func (m DeploymentMode) String() string {
	return m.group.String()
}

// IsAll reports whether the process runs everything.
func (m DeploymentMode) IsAll() bool { return m.group == ocpp.All }

// IsGeneral reports whether the process runs the central system alone.
func (m DeploymentMode) IsGeneral() bool { return m.group == ocpp.General }

// Single returns the module group of a single-module deployment.
func (m DeploymentMode) Single() (ocpp.EventGroup, bool) {
	if m.IsAll() || m.IsGeneral() || m.group == "" {
		return "", false
	}
	return m.group, true
}

// Topology is what a deployment mode resolves to against a configuration.
type Topology struct {
	Mode          DeploymentMode
	CentralSystem bool
	Modules       []module.Descriptor
	Host          string
	Port          int
}

// Resolve selects the central system and descriptors for mode. In all mode
// modules without a configuration section are left out. A single module
// without one is rejected here, before anything is built.
func Resolve(cfg *config.SystemConfig, mode DeploymentMode, table []module.Descriptor) (Topology, error) {
	topology := Topology{Mode: mode}
	switch {
	case mode.IsAll():
		topology.CentralSystem = true
		for _, d := range table {
			if d.Section(cfg) == nil {
				continue
			}
			topology.Modules = append(topology.Modules, d)
		}
	case mode.IsGeneral():
		topology.CentralSystem = true
	default:
		group, _ := mode.Single()
		d, ok := lookup(table, group)
		if !ok {
			return Topology{}, blame.UnknownDeploymentModeError(mode.String())
		}
		if d.Section(cfg) == nil {
			return Topology{}, blame.ModuleConfigMissingError(group.String())
		}
		topology.Modules = []module.Descriptor{d}
	}
	return topology, nil
}

// address fills in the bind address: the server section for all and
// general, the module section for a single module.
func (t *Topology) address(cfg *config.SystemConfig) {
	t.Host, t.Port = cfg.Server.Host, cfg.Server.Port
	if _, ok := t.Mode.Single(); !ok || len(t.Modules) == 0 {
		return
	}
	section := t.Modules[0].Section(cfg)
	if section.Host != "" {
		t.Host = section.Host
	}
	if section.Port != 0 {
		t.Port = section.Port
	}
}

func lookup(table []module.Descriptor, group ocpp.EventGroup) (module.Descriptor, bool) {
	for _, d := range table {
		if d.Group == group {
			return d, true
		}
	}
	return module.Descriptor{}, false
}
