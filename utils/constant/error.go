package constant

import "github.com/abhissng/chargehub/utils/types"

// These are ComponentErrorType constant
const (
	ErrService     types.ComponentErrorType = "service"
	ErrAdaptors    types.ComponentErrorType = "adaptors"
	ErrMiddlewares types.ComponentErrorType = "middlewares"
	ErrController  types.ComponentErrorType = "controller"
	ErrApplication types.ComponentErrorType = "application"
	ErrLibrary     types.ComponentErrorType = "library"
	ErrModule      types.ComponentErrorType = "module"
)

// These are generic HTTP request error constant
const (
	BadRequest     types.ResponseErrorType = "BadRequest"
	Forbidden      types.ResponseErrorType = "Forbidden"
	NotFound       types.ResponseErrorType = "NotFound"
	AlreadyExists  types.ResponseErrorType = "AlreadyExists"
	InternalServer types.ResponseErrorType = "InternalServerError"
	Unauthorized   types.ResponseErrorType = "Unauthorized"
	TooMany        types.ResponseErrorType = "TooManyRequests"
	Unavailable    types.ResponseErrorType = "ServiceUnavailable"
)
