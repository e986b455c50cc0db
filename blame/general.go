package blame

import (
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/types"
)

// localBlameManager carries the definitions for every error raised inside chargehub.
var localBlameManager = NewBlameManager(
	BlameDefinition{ErrorInternalServerError, "Internal server error", "An unexpected error occurred", constant.ErrService, constant.InternalServer},
	BlameDefinition{ErrorBrokerConfigMissing, "Message broker is not configured", "util.messageBroker.nats must be set", constant.ErrApplication, constant.InternalServer},
	BlameDefinition{ErrorModuleConfigMissing, "Module configuration missing", "No configuration section for module {{.group}}", constant.ErrApplication, constant.InternalServer},
	BlameDefinition{ErrorUnknownDeploymentMode, "Unknown deployment mode", "Deployment mode {{.mode}} is not recognised", constant.ErrApplication, constant.InternalServer},
	BlameDefinition{ErrorPersistenceSyncFailed, "Persistence sync failed", "Schema synchronisation did not complete", constant.ErrAdaptors, constant.InternalServer},
	BlameDefinition{ErrorListenerBindFailed, "Listener bind failed", "Could not listen on {{.address}}", constant.ErrAdaptors, constant.InternalServer},
	BlameDefinition{ErrorCacheConfigInvalid, "Cache configuration invalid", "Cache could not be built from util.cache", constant.ErrAdaptors, constant.InternalServer},
	BlameDefinition{ErrorDuplicateBinding, "Duplicate binding", "{{.key}} is already bound on {{.table}}", constant.ErrLibrary, constant.AlreadyExists},
	BlameDefinition{ErrorModuleConstructFailed, "Module construction failed", "Module {{.group}} could not be constructed", constant.ErrModule, constant.InternalServer},
	BlameDefinition{ErrorBrokerConnectFailed, "Broker connection failed", "Could not connect to {{.url}}", constant.ErrAdaptors, constant.Unavailable},
	BlameDefinition{ErrorPublishMessageFailed, "Publish failed", "Could not publish to {{.subject}}", constant.ErrAdaptors, constant.InternalServer},
	BlameDefinition{ErrorSubscribeFailed, "Subscribe failed", "Could not subscribe to {{.subject}}", constant.ErrAdaptors, constant.InternalServer},
	BlameDefinition{ErrorMarshalFailed, "Marshal failed", "Could not encode value as {{.codec}}", constant.ErrLibrary, constant.InternalServer},
	BlameDefinition{ErrorUnmarshalFailed, "Unmarshal failed", "Could not decode value as {{.codec}}", constant.ErrLibrary, constant.BadRequest},
	BlameDefinition{ErrorCallbackDeliveryFailed, "Callback delivery failed", "Could not deliver result to {{.url}}", constant.ErrModule, constant.InternalServer},
	BlameDefinition{ErrorRequestBodyInvalid, "Request body invalid", "The request body does not match the expected schema", constant.ErrController, constant.BadRequest},
	BlameDefinition{ErrorRequestQueryInvalid, "Request query invalid", "The query string does not match the expected schema", constant.ErrController, constant.BadRequest},
	BlameDefinition{ErrorHandlerFailed, "Handler failed", "The handler for {{.route}} failed", constant.ErrController, constant.InternalServer},
	BlameDefinition{ErrorEntryNotFound, "Entry not found", "No {{.namespace}} entry for {{.id}}", constant.ErrModule, constant.NotFound},
	BlameDefinition{ErrorStationNotConnected, "Station not connected", "Station {{.identifier}} has no open connection", constant.ErrService, constant.NotFound},
	BlameDefinition{ErrorTooManyRequests, "Too many requests", "Rate limit exceeded", constant.ErrMiddlewares, constant.TooMany},
)

// DefaultManager returns the manager holding chargehub's own error definitions.
func DefaultManager() *BlameManager {
	return localBlameManager
}

// InternalServerError is an internal server error.
func InternalServerError(cause error) Blame {
	return localBlameManager.FetchBlameForError(ErrorInternalServerError, WithCauses(cause))
}

// BrokerConfigMissingError is raised when util.messageBroker.nats is absent.
func BrokerConfigMissingError() Blame {
	return localBlameManager.FetchBlameForError(ErrorBrokerConfigMissing)
}

// ModuleConfigMissingError is raised when a requested module has no configuration section.
func ModuleConfigMissingError(group string) Blame {
	return localBlameManager.FetchBlameForError(ErrorModuleConfigMissing, WithField("group", group))
}

// UnknownDeploymentModeError is raised when the mode string matches no deployment mode.
func UnknownDeploymentModeError(mode string) Blame {
	return localBlameManager.FetchBlameForError(ErrorUnknownDeploymentMode, WithField("mode", mode))
}

// PersistenceSyncError wraps a failed schema sync.
func PersistenceSyncError(cause error) Blame {
	return localBlameManager.FetchBlameForError(ErrorPersistenceSyncFailed, WithCauses(cause))
}

// ListenerBindError wraps a failure to bind the listener.
func ListenerBindError(address string, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorListenerBindFailed,
		WithField("address", address),
		WithCauses(cause),
	)
}

// CacheConfigInvalidError wraps a failure to build the cache.
func CacheConfigInvalidError(cause error) Blame {
	return localBlameManager.FetchBlameForError(ErrorCacheConfigInvalid, WithCauses(cause))
}

// DuplicateBindingError is raised when a key is bound twice on the same table.
func DuplicateBindingError(table, key string) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorDuplicateBinding,
		WithFields(map[string]any{"table": table, "key": key}),
	)
}

// ModuleConstructError wraps a failure while building a module or its API.
func ModuleConstructError(group string, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorModuleConstructFailed,
		WithField("group", group),
		WithCauses(cause),
	)
}

// BrokerConnectError wraps a failure to connect to the broker.
func BrokerConnectError(url string, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorBrokerConnectFailed,
		WithField("url", url),
		WithCauses(cause),
	)
}

// PublishMessageError wraps a failed publish.
func PublishMessageError(subject string, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorPublishMessageFailed,
		WithField("subject", subject),
		WithCauses(cause),
	)
}

// SubscribeError wraps a failed subscription.
func SubscribeError(subject string, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorSubscribeFailed,
		WithField("subject", subject),
		WithCauses(cause),
	)
}

// MarshalError is an error when marshaling fails.
func MarshalError(codec types.CodecType, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorMarshalFailed,
		WithField("codec", codec.ToUpperCase()),
		WithCauses(cause),
	)
}

// UnmarshalError is an error when unmarshaling fails.
func UnmarshalError(codec types.CodecType, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorUnmarshalFailed,
		WithField("codec", codec.ToUpperCase()),
		WithCauses(cause),
	)
}

// CallbackDeliveryError wraps a failed callback POST.
func CallbackDeliveryError(url string, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorCallbackDeliveryFailed,
		WithField("url", url),
		WithCauses(cause),
	)
}

// RequestBodyInvalidError carries the field to message map produced by the validator.
func RequestBodyInvalidError(fields map[string]string) Blame {
	return localBlameManager.FetchBlameForError(ErrorRequestBodyInvalid, WithFields(toAny(fields)))
}

// RequestQueryInvalidError carries the field to message map for a rejected query string.
func RequestQueryInvalidError(fields map[string]string) Blame {
	return localBlameManager.FetchBlameForError(ErrorRequestQueryInvalid, WithFields(toAny(fields)))
}

// HandlerFailedError wraps an error or recovered panic from a route handler.
func HandlerFailedError(route string, cause error) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorHandlerFailed,
		WithField("route", route),
		WithCauses(cause),
	)
}

// EntryNotFoundError is returned by data handlers for a missing entity.
func EntryNotFoundError(namespace, id string) Blame {
	return localBlameManager.FetchBlameForError(
		ErrorEntryNotFound,
		WithFields(map[string]any{"namespace": namespace, "id": id}),
	)
}

// StationNotConnectedError is returned when a call targets a station without a socket.
func StationNotConnectedError(identifier string) Blame {
	return localBlameManager.FetchBlameForError(ErrorStationNotConnected, WithField("identifier", identifier))
}

// TooManyRequestsError is returned by the rate limiter.
func TooManyRequestsError() Blame {
	return localBlameManager.FetchBlameForError(ErrorTooManyRequests)
}

func toAny(fields map[string]string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
