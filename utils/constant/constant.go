package constant

import (
	"time"

	"github.com/abhissng/chargehub/utils/types"
)

// These are generic constant for the application
const (
	RequestID     = "request_id"
	CorrelationID = "correlation_id"
	Component     = "component"

	// These are general constant for the environment
	Environment          = "Environment"
	RunMode              = "RunMode"
	ServiceName          = "chargehub"
	EnvPrefix            = "CHARGEHUB"
	HealthyStatusMessage = "healthy"
	DefaultTenantID      = "default"
)

// These are generic typed constant for the application
const (
	IS_PROD types.StringConstant = "IS_PROD"
)

// GraceFul Shutdown Constants
const (
	ServerDefaultGracefulTime  time.Duration = 10 * time.Second
	ServiceDefaultGracefulTime time.Duration = 5 * time.Second
	// ForcedExitDelay bounds the whole teardown; the process exits once it elapses.
	ForcedExitDelay time.Duration = 2 * time.Second
)
