package ocpp

import "time"

// Requests sent by a charging station.

type BootNotificationRequest struct {
	ChargingStation ChargingStation `json:"chargingStation"`
	Reason          string          `json:"reason" validate:"required,oneof=ApplicationReset FirmwareUpdate LocalReset PowerUp RemoteReset ScheduledReset Triggered Unknown Watchdog"`
}

type BootNotificationResponse struct {
	CurrentTime time.Time   `json:"currentTime"`
	Interval    int         `json:"interval"`
	Status      string      `json:"status"`
	StatusInfo  *StatusInfo `json:"statusInfo,omitempty"`
}

type HeartbeatRequest struct{}

type HeartbeatResponse struct {
	CurrentTime time.Time `json:"currentTime"`
}

type AuthorizeRequest struct {
	IdToken     IdToken `json:"idToken"`
	Certificate string  `json:"certificate,omitempty" validate:"max=5500"`
}

type AuthorizeResponse struct {
	IdTokenInfo IdTokenInfo `json:"idTokenInfo"`
}

type TransactionEventRequest struct {
	EventType          string       `json:"eventType" validate:"required,oneof=Ended Started Updated"`
	Timestamp          time.Time    `json:"timestamp" validate:"required"`
	TriggerReason      string       `json:"triggerReason" validate:"required"`
	SeqNo              int          `json:"seqNo" validate:"gte=0"`
	Offline            bool         `json:"offline,omitempty"`
	TransactionInfo    Transaction  `json:"transactionInfo"`
	IdToken            *IdToken     `json:"idToken,omitempty"`
	EVSE               *EVSE        `json:"evse,omitempty"`
	MeterValue         []MeterValue `json:"meterValue,omitempty" validate:"omitempty,dive"`
	NumberOfPhasesUsed int          `json:"numberOfPhasesUsed,omitempty"`
}

type TransactionEventResponse struct {
	TotalCost   *float64     `json:"totalCost,omitempty"`
	IdTokenInfo *IdTokenInfo `json:"idTokenInfo,omitempty"`
}

type StatusNotificationRequest struct {
	Timestamp       time.Time `json:"timestamp" validate:"required"`
	ConnectorStatus string    `json:"connectorStatus" validate:"required,oneof=Available Occupied Reserved Unavailable Faulted"`
	EvseId          int       `json:"evseId" validate:"gte=0"`
	ConnectorId     int       `json:"connectorId" validate:"gte=0"`
}

type StatusNotificationResponse struct{}

type MeterValuesRequest struct {
	EvseId     int          `json:"evseId" validate:"gte=0"`
	MeterValue []MeterValue `json:"meterValue" validate:"required,min=1,dive"`
}

type MeterValuesResponse struct{}

type NotifyEventRequest struct {
	GeneratedAt time.Time   `json:"generatedAt" validate:"required"`
	Tbc         bool        `json:"tbc,omitempty"`
	SeqNo       int         `json:"seqNo" validate:"gte=0"`
	EventData   []EventData `json:"eventData" validate:"required,min=1,dive"`
}

type NotifyEventResponse struct{}

type NotifyReportRequest struct {
	RequestId   int          `json:"requestId"`
	GeneratedAt time.Time    `json:"generatedAt" validate:"required"`
	Tbc         bool         `json:"tbc,omitempty"`
	SeqNo       int          `json:"seqNo" validate:"gte=0"`
	ReportData  []ReportData `json:"reportData,omitempty" validate:"omitempty,dive"`
}

type NotifyReportResponse struct{}

type SecurityEventNotificationRequest struct {
	Type      string    `json:"type" validate:"required,max=50"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	TechInfo  string    `json:"techInfo,omitempty" validate:"max=255"`
}

type SecurityEventNotificationResponse struct{}

type SignCertificateRequest struct {
	CSR             string `json:"csr" validate:"required,max=5500"`
	CertificateType string `json:"certificateType,omitempty" validate:"omitempty,oneof=ChargingStationCertificate V2GCertificate"`
}

type SignCertificateResponse struct {
	Status     string      `json:"status"`
	StatusInfo *StatusInfo `json:"statusInfo,omitempty"`
}

type NotifyEVChargingNeedsRequest struct {
	EvseId            int           `json:"evseId" validate:"gte=1"`
	MaxScheduleTuples int           `json:"maxScheduleTuples,omitempty"`
	ChargingNeeds     ChargingNeeds `json:"chargingNeeds"`
}

type NotifyEVChargingNeedsResponse struct {
	Status     string      `json:"status"`
	StatusInfo *StatusInfo `json:"statusInfo,omitempty"`
}

// Requests sent by the management system.

type ResetRequest struct {
	Type   string `json:"type" validate:"required,oneof=Immediate OnIdle"`
	EvseId int    `json:"evseId,omitempty" validate:"gte=0"`
}

type ChangeAvailabilityRequest struct {
	OperationalStatus string `json:"operationalStatus" validate:"required,oneof=Inoperative Operative"`
	EVSE              *EVSE  `json:"evse,omitempty"`
}

type TriggerMessageRequest struct {
	RequestedMessage string `json:"requestedMessage" validate:"required,oneof=BootNotification LogStatusNotification FirmwareStatusNotification Heartbeat MeterValues SignChargingStationCertificate SignV2GCertificate StatusNotification TransactionEvent SignCombinedCertificate PublishFirmwareStatusNotification"`
	EVSE             *EVSE  `json:"evse,omitempty"`
}

type RequestStartTransactionRequest struct {
	IdToken         IdToken          `json:"idToken"`
	RemoteStartId   int              `json:"remoteStartId"`
	EvseId          int              `json:"evseId,omitempty" validate:"gte=0"`
	GroupIdToken    *IdToken         `json:"groupIdToken,omitempty"`
	ChargingProfile *ChargingProfile `json:"chargingProfile,omitempty"`
}

type RequestStopTransactionRequest struct {
	TransactionId string `json:"transactionId" validate:"required,max=36"`
}

type UnlockConnectorRequest struct {
	EvseId      int `json:"evseId" validate:"gte=0"`
	ConnectorId int `json:"connectorId" validate:"gte=0"`
}

type SetVariablesRequest struct {
	SetVariableData []SetVariableData `json:"setVariableData" validate:"required,min=1,dive"`
}

type GetVariablesRequest struct {
	GetVariableData []GetVariableData `json:"getVariableData" validate:"required,min=1,dive"`
}

type GetBaseReportRequest struct {
	RequestId  int    `json:"requestId"`
	ReportBase string `json:"reportBase" validate:"required,oneof=ConfigurationInventory FullInventory SummaryInventory"`
}

type GetLogRequest struct {
	LogType       string        `json:"logType" validate:"required,oneof=DiagnosticsLog SecurityLog"`
	RequestId     int           `json:"requestId"`
	Retries       int           `json:"retries,omitempty" validate:"gte=0"`
	RetryInterval int           `json:"retryInterval,omitempty" validate:"gte=0"`
	Log           LogParameters `json:"log"`
}

type SetChargingProfileRequest struct {
	EvseId          int             `json:"evseId" validate:"gte=0"`
	ChargingProfile ChargingProfile `json:"chargingProfile"`
}

type ClearChargingProfileRequest struct {
	ChargingProfileId       int                       `json:"chargingProfileId,omitempty"`
	ChargingProfileCriteria *ChargingProfileCriterion `json:"chargingProfileCriteria,omitempty"`
}

type GetChargingProfilesRequest struct {
	RequestId       int                      `json:"requestId"`
	EvseId          int                      `json:"evseId,omitempty" validate:"gte=0"`
	ChargingProfile ChargingProfileCriterion `json:"chargingProfile"`
}

type GetTransactionStatusRequest struct {
	TransactionId string `json:"transactionId,omitempty" validate:"max=36"`
}

type CostUpdateRequest struct {
	TotalCost     float64 `json:"totalCost" validate:"gte=0"`
	TransactionId string  `json:"transactionId" validate:"required,max=36"`
}

type InstallCertificateRequest struct {
	CertificateType string `json:"certificateType" validate:"required,oneof=V2GRootCertificate MORootCertificate CSMSRootCertificate ManufacturerRootCertificate"`
	Certificate     string `json:"certificate" validate:"required,max=5500"`
}

type GetInstalledCertificateIdsRequest struct {
	CertificateType []string `json:"certificateType,omitempty" validate:"omitempty,dive,oneof=V2GRootCertificate MORootCertificate CSMSRootCertificate V2GCertificateChain ManufacturerRootCertificate"`
}

type DeleteCertificateRequest struct {
	CertificateHashData CertificateHashData `json:"certificateHashData"`
}
