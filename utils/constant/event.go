package constant

// constants for common messages or events
const (
	// System related messages
	SystemStarted = "SystemStarted"
	SystemStopped = "SystemStopped"
	SystemReady   = "SystemReady"
	SystemError   = "System Error"

	// Module related messages
	ModuleStarted       = "ModuleStarted"
	ModuleStopped       = "ModuleStopped"
	ModuleStopFailed    = "ModuleStopFailed"
	RouteRegistered     = "RouteRegistered"
	ConfigUpdated       = "ConfigUpdated"
	CallbackDelivered   = "CallbackDelivered"
	CallbackFailed      = "CallbackFailed"
	StationConnected    = "StationConnected"
	StationDisconnected = "StationDisconnected"

	// Event related messages
	EventPublished         = "EventPublished"
	EventPublishedFailed   = "EventPublishedFailed"
	EventReceived          = "EventReceived"
	EventDropped           = "EventDropped"
	SubjectSubscribed      = "SubjectSubscribed"
	SubjectSubscribeFailed = "SubjectSubscribeFailed"
	MessageProcessed       = "MessageProcessed"
	ConnectionClosed       = "ConnectionClosed"
	ConnectionClosing      = "ConnectionClosing"

	// Handler related messages
	HandlerFailed    = "HandlerFailed"
	MiddlewareFailed = "MiddlewareFailed"
)
