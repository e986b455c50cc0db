package blame

import (
	"github.com/abhissng/chargehub/utils/types"
)

// Error identifiers raised while the process starts or stops.
const (
	ErrorInternalServerError    types.ErrorCode = "error-internal-server-error"
	ErrorBrokerConfigMissing    types.ErrorCode = "error-broker-config-missing"
	ErrorModuleConfigMissing    types.ErrorCode = "error-module-config-missing"
	ErrorUnknownDeploymentMode  types.ErrorCode = "error-unknown-deployment-mode"
	ErrorPersistenceSyncFailed  types.ErrorCode = "error-persistence-sync-failed"
	ErrorListenerBindFailed     types.ErrorCode = "error-listener-bind-failed"
	ErrorCacheConfigInvalid     types.ErrorCode = "error-cache-config-invalid"
	ErrorDuplicateBinding       types.ErrorCode = "error-duplicate-binding"
	ErrorModuleConstructFailed  types.ErrorCode = "error-module-construct-failed"
	ErrorBrokerConnectFailed    types.ErrorCode = "error-broker-connect-failed"
	ErrorPublishMessageFailed   types.ErrorCode = "error-publish-message-failed"
	ErrorSubscribeFailed        types.ErrorCode = "error-subscribe-to-subject-failed"
	ErrorMarshalFailed          types.ErrorCode = "error-marshal-failed"
	ErrorUnmarshalFailed        types.ErrorCode = "error-unmarshal-failed"
	ErrorCallbackDeliveryFailed types.ErrorCode = "error-callback-delivery-failed"
)

// Error identifiers returned to HTTP callers.
const (
	ErrorRequestBodyInvalid  types.ErrorCode = "error-request-body-invalid"
	ErrorRequestQueryInvalid types.ErrorCode = "error-request-query-invalid"
	ErrorHandlerFailed       types.ErrorCode = "error-handler-failed"
	ErrorEntryNotFound       types.ErrorCode = "error-entry-not-found"
	ErrorStationNotConnected types.ErrorCode = "error-station-not-connected"
	ErrorTooManyRequests     types.ErrorCode = "error-too-many-requests"
)
