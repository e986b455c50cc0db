package nats

import "time"

const (
	BreakerName             = "NATSPublish"
	DefaultReconnectWait    = 5 * time.Second
	DefaultMaxReconnects    = -1 // Infinite reconnection attempts
	DefaultConnectTimeout   = 2 * time.Second
	DefaultMonitorInterval  = 30 * time.Second
	ConnectionFailedMessage = "connection to NATS is not yet established or failed"
	ContentTypeHeader       = "Content-Type"
)
