package constant

import (
	"github.com/abhissng/chargehub/utils/types"
)

// These are headers constant for the application
const (
	CorrelationIDHeader = "X-Correlation-ID"
	IPHeader            = "X-IP"
	MessageIdHeader     = "Message-ID"
	TenantIDHeader      = "X-Tenant-ID"
	ActionHeader        = "X-Action"
)

// These are fixed route prefixes of the listener
const (
	HealthPath     = "/health"
	MetricsPath    = "/metrics"
	MessagePrefix  = "/ocpp"
	DataPrefix     = "/data"
	DefaultDocPath = "/docs"
)

// These are protocol constants
const (
	TCP types.Protocol = "tcp"
	UDP types.Protocol = "udp"
)

// These are content types used by the adapters
const (
	ContentTypeJSON types.ContentType = "application/json"
)
