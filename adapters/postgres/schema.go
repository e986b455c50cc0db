package postgres

import (
	"fmt"

	"github.com/abhissng/chargehub/ocpp"
)

// Table is one managed table. Every entity is stored as a JSONB document per tenant.
type Table struct {
	Name      string
	Namespace ocpp.Namespace
}

// Tables lists the managed tables in creation order.
var Tables = []Table{
	{Name: "authorizations", Namespace: ocpp.AuthorizationNamespace},
	{Name: "boot_configs", Namespace: ocpp.BootConfigNamespace},
	{Name: "certificates", Namespace: ocpp.CertificateNamespace},
	{Name: "charging_profiles", Namespace: ocpp.ChargingProfileNamespace},
	{Name: "charging_stations", Namespace: ocpp.ChargingStationNamespace},
	{Name: "event_data", Namespace: ocpp.EventDataNamespace},
	{Name: "security_events", Namespace: ocpp.SecurityEventNamespace},
	{Name: "transactions", Namespace: ocpp.TransactionNamespace},
	{Name: "variable_attributes", Namespace: ocpp.VariableAttributeNamespace},
	{Name: "variable_monitorings", Namespace: ocpp.VariableMonitoringNamespace},
}

const createTable = `CREATE TABLE IF NOT EXISTS %s (
	tenant_id  TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	station_id TEXT,
	data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (tenant_id, id)
)`

const createStationIndex = `CREATE INDEX IF NOT EXISTS %s_station_idx ON %s (tenant_id, station_id)`

// Statements returns the DDL for a sync. Dropping happens only when alter is set.
func Statements(alter bool) []string {
	statements := make([]string, 0, len(Tables)*3)
	if alter {
		for i := len(Tables) - 1; i >= 0; i-- {
			statements = append(statements, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", Tables[i].Name))
		}
	}
	for _, table := range Tables {
		statements = append(statements,
			fmt.Sprintf(createTable, table.Name),
			fmt.Sprintf(createStationIndex, table.Name, table.Name),
		)
	}
	return statements
}
