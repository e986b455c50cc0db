// Package ocpp holds the OCPP 2.0.1 vocabulary shared by the modules, the
// central system and the broker: event groups, call actions, data
// namespaces, the broker envelope and the payload structs.
package ocpp

import (
	"strings"
)

// EventGroup identifies a business module, or the central system for General.
type EventGroup string

const (
	All           EventGroup = "all"
	General       EventGroup = "general"
	Certificates  EventGroup = "certificates"
	Configuration EventGroup = "configuration"
	EVDriver      EventGroup = "evdriver"
	Monitoring    EventGroup = "monitoring"
	Reporting     EventGroup = "reporting"
	SmartCharging EventGroup = "smartcharging"
	Transactions  EventGroup = "transactions"
)

// String returns the string representation of the EventGroup.
func (g EventGroup) String() string {
	return string(g)
}

// EventGroupFromString parses a deployment name. Matching ignores case.
func EventGroupFromString(s string) (EventGroup, bool) {
	g := EventGroup(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case All, General, Certificates, Configuration, EVDriver, Monitoring, Reporting, SmartCharging, Transactions:
		return g, true
	}
	return "", false
}

// CallAction is an OCPP 2.0.1 action name.
type CallAction string

// String returns the string representation of the CallAction.
func (a CallAction) String() string {
	return string(a)
}

// Path returns the lower-cased route segment for the action.
func (a CallAction) Path() string {
	return strings.ToLower(string(a))
}

const (
	Authorize                         CallAction = "Authorize"
	BootNotification                  CallAction = "BootNotification"
	CancelReservation                 CallAction = "CancelReservation"
	CertificateSigned                 CallAction = "CertificateSigned"
	ChangeAvailability                CallAction = "ChangeAvailability"
	ClearCache                        CallAction = "ClearCache"
	ClearChargingProfile              CallAction = "ClearChargingProfile"
	ClearDisplayMessage               CallAction = "ClearDisplayMessage"
	ClearedChargingLimit              CallAction = "ClearedChargingLimit"
	ClearVariableMonitoring           CallAction = "ClearVariableMonitoring"
	CostUpdate                        CallAction = "CostUpdate"
	CustomerInformation               CallAction = "CustomerInformation"
	DataTransfer                      CallAction = "DataTransfer"
	DeleteCertificate                 CallAction = "DeleteCertificate"
	FirmwareStatusNotification        CallAction = "FirmwareStatusNotification"
	Get15118EVCertificate             CallAction = "Get15118EVCertificate"
	GetBaseReport                     CallAction = "GetBaseReport"
	GetCertificateStatus              CallAction = "GetCertificateStatus"
	GetChargingProfiles               CallAction = "GetChargingProfiles"
	GetCompositeSchedule              CallAction = "GetCompositeSchedule"
	GetDisplayMessages                CallAction = "GetDisplayMessages"
	GetInstalledCertificateIds        CallAction = "GetInstalledCertificateIds"
	GetLocalListVersion               CallAction = "GetLocalListVersion"
	GetLog                            CallAction = "GetLog"
	GetMonitoringReport               CallAction = "GetMonitoringReport"
	GetReport                         CallAction = "GetReport"
	GetTransactionStatus              CallAction = "GetTransactionStatus"
	GetVariables                      CallAction = "GetVariables"
	Heartbeat                         CallAction = "Heartbeat"
	InstallCertificate                CallAction = "InstallCertificate"
	LogStatusNotification             CallAction = "LogStatusNotification"
	MeterValues                       CallAction = "MeterValues"
	NotifyChargingLimit               CallAction = "NotifyChargingLimit"
	NotifyCustomerInformation         CallAction = "NotifyCustomerInformation"
	NotifyDisplayMessages             CallAction = "NotifyDisplayMessages"
	NotifyEVChargingNeeds             CallAction = "NotifyEVChargingNeeds"
	NotifyEVChargingSchedule          CallAction = "NotifyEVChargingSchedule"
	NotifyEvent                       CallAction = "NotifyEvent"
	NotifyMonitoringReport            CallAction = "NotifyMonitoringReport"
	NotifyReport                      CallAction = "NotifyReport"
	PublishFirmware                   CallAction = "PublishFirmware"
	PublishFirmwareStatusNotification CallAction = "PublishFirmwareStatusNotification"
	ReportChargingProfiles            CallAction = "ReportChargingProfiles"
	RequestStartTransaction           CallAction = "RequestStartTransaction"
	RequestStopTransaction            CallAction = "RequestStopTransaction"
	ReservationStatusUpdate           CallAction = "ReservationStatusUpdate"
	ReserveNow                        CallAction = "ReserveNow"
	Reset                             CallAction = "Reset"
	SecurityEventNotification         CallAction = "SecurityEventNotification"
	SendLocalList                     CallAction = "SendLocalList"
	SetChargingProfile                CallAction = "SetChargingProfile"
	SetDisplayMessage                 CallAction = "SetDisplayMessage"
	SetMonitoringBase                 CallAction = "SetMonitoringBase"
	SetMonitoringLevel                CallAction = "SetMonitoringLevel"
	SetNetworkProfile                 CallAction = "SetNetworkProfile"
	SetVariableMonitoring             CallAction = "SetVariableMonitoring"
	SetVariables                      CallAction = "SetVariables"
	SignCertificate                   CallAction = "SignCertificate"
	StatusNotification                CallAction = "StatusNotification"
	TransactionEvent                  CallAction = "TransactionEvent"
	TriggerMessage                    CallAction = "TriggerMessage"
	UnlockConnector                   CallAction = "UnlockConnector"
	UnpublishFirmware                 CallAction = "UnpublishFirmware"
	UpdateFirmware                    CallAction = "UpdateFirmware"
)

// stationCallGroups maps each station-initiated action to the group that answers it.
var stationCallGroups = map[CallAction]EventGroup{
	Authorize:                         EVDriver,
	BootNotification:                  Configuration,
	ClearedChargingLimit:              SmartCharging,
	FirmwareStatusNotification:        Configuration,
	Get15118EVCertificate:             Certificates,
	GetCertificateStatus:              Certificates,
	Heartbeat:                         Configuration,
	LogStatusNotification:             Reporting,
	MeterValues:                       Transactions,
	NotifyChargingLimit:               SmartCharging,
	NotifyCustomerInformation:         Reporting,
	NotifyDisplayMessages:             Configuration,
	NotifyEVChargingNeeds:             SmartCharging,
	NotifyEVChargingSchedule:          SmartCharging,
	NotifyEvent:                       Monitoring,
	NotifyMonitoringReport:            Monitoring,
	NotifyReport:                      Reporting,
	PublishFirmwareStatusNotification: Configuration,
	ReportChargingProfiles:            SmartCharging,
	ReservationStatusUpdate:           EVDriver,
	SecurityEventNotification:         Reporting,
	SignCertificate:                   Certificates,
	StatusNotification:                Transactions,
	TransactionEvent:                  Transactions,
}

// GroupOf returns the group answering a station-initiated action.
// The second result is false for actions a station never initiates.
func GroupOf(action CallAction) (EventGroup, bool) {
	g, ok := stationCallGroups[action]
	return g, ok
}

// Namespace names an entity exposed on the data routes.
type Namespace string

// String returns the string representation of the Namespace.
func (n Namespace) String() string {
	return string(n)
}

// Path returns the lower-cased route segment for the namespace.
func (n Namespace) Path() string {
	return strings.ToLower(string(n))
}

const (
	AuthorizationNamespace      Namespace = "Authorization"
	BootConfigNamespace         Namespace = "Boot"
	CertificateNamespace        Namespace = "Certificate"
	ChargingProfileNamespace    Namespace = "ChargingProfile"
	ChargingStationNamespace    Namespace = "ChargingStation"
	EventDataNamespace          Namespace = "EventData"
	SecurityEventNamespace      Namespace = "SecurityEvent"
	SystemConfigNamespace       Namespace = "SystemConfig"
	TransactionNamespace        Namespace = "Transaction"
	VariableAttributeNamespace  Namespace = "VariableAttribute"
	VariableMonitoringNamespace Namespace = "VariableMonitoring"
)

// HTTPMethod is the verb of a data route.
type HTTPMethod string

const (
	Get    HTTPMethod = "GET"
	Post   HTTPMethod = "POST"
	Put    HTTPMethod = "PUT"
	Patch  HTTPMethod = "PATCH"
	Delete HTTPMethod = "DELETE"
)

// String returns the string representation of the HTTPMethod.
func (m HTTPMethod) String() string {
	return string(m)
}

// MessageOrigin tells which side of the protocol produced a broker message.
type MessageOrigin string

const (
	// OriginChargingStation marks messages coming from a station through the central system.
	OriginChargingStation MessageOrigin = "cs"
	// OriginCSMS marks messages produced by the management system modules.
	OriginCSMS MessageOrigin = "csms"
)

// String returns the string representation of the MessageOrigin.
func (o MessageOrigin) String() string {
	return string(o)
}

// MessageState tells whether a broker message is a call or the answer to one.
type MessageState string

const (
	StateRequest  MessageState = "request"
	StateResponse MessageState = "response"
	StateError    MessageState = "error"
)

// String returns the string representation of the MessageState.
func (s MessageState) String() string {
	return string(s)
}
