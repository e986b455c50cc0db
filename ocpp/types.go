package ocpp

import "time"

// IdToken identifies a driver or an authorization source.
type IdToken struct {
	IdToken        string           `json:"idToken" validate:"required,max=36"`
	Type           string           `json:"type" validate:"required,oneof=Central eMAID ISO14443 ISO15693 KeyCode Local MacAddress NoAuthorization"`
	AdditionalInfo []AdditionalInfo `json:"additionalInfo,omitempty" validate:"omitempty,dive"`
}

// AdditionalInfo carries extra identifiers attached to an IdToken.
type AdditionalInfo struct {
	AdditionalIdToken string `json:"additionalIdToken" validate:"required,max=36"`
	Type              string `json:"type" validate:"required,max=50"`
}

// IdTokenInfo is the authorization verdict returned for an IdToken.
type IdTokenInfo struct {
	Status              string     `json:"status" validate:"required,oneof=Accepted Blocked ConcurrentTx Expired Invalid NoCredit NotAllowedTypeEVSE NotAtThisLocation NotAtThisTime Unknown"`
	CacheExpiryDateTime *time.Time `json:"cacheExpiryDateTime,omitempty"`
	ChargingPriority    int        `json:"chargingPriority,omitempty" validate:"gte=-9,lte=9"`
	Language1           string     `json:"language1,omitempty" validate:"max=8"`
	EvseId              []int      `json:"evseId,omitempty"`
	GroupIdToken        *IdToken   `json:"groupIdToken,omitempty"`
}

// StatusInfo explains a status value.
type StatusInfo struct {
	ReasonCode     string `json:"reasonCode" validate:"required,max=20"`
	AdditionalInfo string `json:"additionalInfo,omitempty" validate:"max=512"`
}

// EVSE addresses an EVSE and optionally one of its connectors.
type EVSE struct {
	Id          int `json:"id" validate:"gte=0"`
	ConnectorId int `json:"connectorId,omitempty" validate:"gte=0"`
}

// Component addresses a device model component.
type Component struct {
	Name     string `json:"name" validate:"required,max=50"`
	Instance string `json:"instance,omitempty" validate:"max=50"`
	EVSE     *EVSE  `json:"evse,omitempty"`
}

// Variable addresses a variable of a component.
type Variable struct {
	Name     string `json:"name" validate:"required,max=50"`
	Instance string `json:"instance,omitempty" validate:"max=50"`
}

// ChargingStation describes the station sending a BootNotification.
type ChargingStation struct {
	Model           string `json:"model" validate:"required,max=20"`
	VendorName      string `json:"vendorName" validate:"required,max=50"`
	SerialNumber    string `json:"serialNumber,omitempty" validate:"max=25"`
	FirmwareVersion string `json:"firmwareVersion,omitempty" validate:"max=50"`
}

// SampledValue is one measurement inside a MeterValue.
type SampledValue struct {
	Value     float64 `json:"value"`
	Context   string  `json:"context,omitempty" default:"Sample.Periodic"`
	Measurand string  `json:"measurand,omitempty" default:"Energy.Active.Import.Register"`
	Phase     string  `json:"phase,omitempty"`
	Location  string  `json:"location,omitempty" default:"Outlet"`
}

// MeterValue groups sampled values taken at the same time.
type MeterValue struct {
	Timestamp    time.Time      `json:"timestamp" validate:"required"`
	SampledValue []SampledValue `json:"sampledValue" validate:"required,min=1,dive"`
}

// Transaction describes a transaction inside a TransactionEvent.
type Transaction struct {
	TransactionId     string `json:"transactionId" validate:"required,max=36"`
	ChargingState     string `json:"chargingState,omitempty" validate:"omitempty,oneof=Charging EVConnected SuspendedEV SuspendedEVSE Idle"`
	TimeSpentCharging int    `json:"timeSpentCharging,omitempty"`
	StoppedReason     string `json:"stoppedReason,omitempty"`
	RemoteStartId     int    `json:"remoteStartId,omitempty"`
}

// ChargingSchedulePeriod is one step of a charging schedule.
type ChargingSchedulePeriod struct {
	StartPeriod  int     `json:"startPeriod" validate:"gte=0"`
	Limit        float64 `json:"limit" validate:"gte=0"`
	NumberPhases int     `json:"numberPhases,omitempty" validate:"omitempty,gte=1,lte=3"`
}

// ChargingSchedule limits power or current over time.
type ChargingSchedule struct {
	Id                     int                      `json:"id"`
	StartSchedule          *time.Time               `json:"startSchedule,omitempty"`
	Duration               int                      `json:"duration,omitempty"`
	ChargingRateUnit       string                   `json:"chargingRateUnit" validate:"required,oneof=W A"`
	ChargingSchedulePeriod []ChargingSchedulePeriod `json:"chargingSchedulePeriod" validate:"required,min=1,max=1024,dive"`
}

// ChargingProfile is installed on a station by SetChargingProfile.
type ChargingProfile struct {
	Id                     int                `json:"id"`
	StackLevel             int                `json:"stackLevel" validate:"gte=0"`
	ChargingProfilePurpose string             `json:"chargingProfilePurpose" validate:"required,oneof=ChargingStationExternalConstraints ChargingStationMaxProfile TxDefaultProfile TxProfile"`
	ChargingProfileKind    string             `json:"chargingProfileKind" validate:"required,oneof=Absolute Recurring Relative"`
	RecurrencyKind         string             `json:"recurrencyKind,omitempty" validate:"omitempty,oneof=Daily Weekly"`
	ValidFrom              *time.Time         `json:"validFrom,omitempty"`
	ValidTo                *time.Time         `json:"validTo,omitempty"`
	TransactionId          string             `json:"transactionId,omitempty" validate:"max=36"`
	ChargingSchedule       []ChargingSchedule `json:"chargingSchedule" validate:"required,min=1,max=3,dive"`
}

// EventData is one entry of a NotifyEvent request.
type EventData struct {
	EventId               int       `json:"eventId"`
	Timestamp             time.Time `json:"timestamp" validate:"required"`
	Trigger               string    `json:"trigger" validate:"required,oneof=Alerting Delta Periodic"`
	ActualValue           string    `json:"actualValue" validate:"max=2500"`
	EventNotificationType string    `json:"eventNotificationType" validate:"required"`
	Component             Component `json:"component"`
	Variable              Variable  `json:"variable"`
}

// VariableAttribute is a reported attribute value.
type VariableAttribute struct {
	Type       string `json:"type,omitempty" default:"Actual"`
	Value      string `json:"value,omitempty" validate:"max=2500"`
	Mutability string `json:"mutability,omitempty" default:"ReadWrite"`
}

// ReportData is one entry of a NotifyReport request.
type ReportData struct {
	Component         Component           `json:"component"`
	Variable          Variable            `json:"variable"`
	VariableAttribute []VariableAttribute `json:"variableAttribute" validate:"required,min=1,max=4,dive"`
}

// CertificateHashData identifies an installed certificate.
type CertificateHashData struct {
	HashAlgorithm  string `json:"hashAlgorithm" validate:"required,oneof=SHA256 SHA384 SHA512"`
	IssuerNameHash string `json:"issuerNameHash" validate:"required,max=128"`
	IssuerKeyHash  string `json:"issuerKeyHash" validate:"required,max=128"`
	SerialNumber   string `json:"serialNumber" validate:"required,max=40"`
}

// LogParameters locates where a station uploads its log.
type LogParameters struct {
	RemoteLocation  string     `json:"remoteLocation" validate:"required,url,max=512"`
	OldestTimestamp *time.Time `json:"oldestTimestamp,omitempty"`
	LatestTimestamp *time.Time `json:"latestTimestamp,omitempty"`
}

// SetVariableData is one entry of a SetVariables request.
type SetVariableData struct {
	AttributeType  string    `json:"attributeType,omitempty" default:"Actual"`
	AttributeValue string    `json:"attributeValue" validate:"required,max=1000"`
	Component      Component `json:"component"`
	Variable       Variable  `json:"variable"`
}

// GetVariableData is one entry of a GetVariables request.
type GetVariableData struct {
	AttributeType string    `json:"attributeType,omitempty" default:"Actual"`
	Component     Component `json:"component"`
	Variable      Variable  `json:"variable"`
}

// ChargingNeeds is reported by the EV through NotifyEVChargingNeeds.
type ChargingNeeds struct {
	RequestedEnergyTransfer string     `json:"requestedEnergyTransfer" validate:"required,oneof=DC AC_single_phase AC_two_phase AC_three_phase"`
	DepartureTime           *time.Time `json:"departureTime,omitempty"`
}

// ChargingProfileCriterion filters profiles in Get/ClearChargingProfile.
type ChargingProfileCriterion struct {
	ChargingProfilePurpose string `json:"chargingProfilePurpose,omitempty" validate:"omitempty,oneof=ChargingStationExternalConstraints ChargingStationMaxProfile TxDefaultProfile TxProfile"`
	StackLevel             int    `json:"stackLevel,omitempty" validate:"gte=0"`
	ChargingProfileId      []int  `json:"chargingProfileId,omitempty"`
}
