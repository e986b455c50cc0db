// Package blame provides a custom error type that adds additional information and functionality to standard errors.
package blame

import (
	"github.com/abhissng/chargehub/utils/types"
)

// Blame represents a custom error type that provides additional information and functionality.
type Blame interface {
	// error is embedded to ensure Blame implements the error interface.
	error

	// FetchReasonCode returns the reason code associated with the error.
	FetchReasonCode() string

	// FetchErrCode returns the error code associated with the error.
	FetchErrCode() types.ErrorCode

	// FetchMessage returns the error message.
	FetchMessage() string

	// FetchDescription returns the error description.
	FetchDescription() string

	// FetchFields returns a map of additional error fields.
	FetchFields() map[string]any

	// FetchSource returns the source of the error.
	FetchSource() string

	// FetchComponent returns the component associated with the error.
	FetchComponent() types.ComponentErrorType

	// FetchResponseType returns the response type associated with the error.
	FetchResponseType() types.ResponseErrorType

	// FetchCauses returns a slice of underlying errors that caused this error.
	FetchCauses() []error

	// WithField adds a new field to the error and returns the updated Blame instance.
	WithField(key string, value any) *Error

	// WithFields adds multiple fields to the error and returns the updated Blame instance.
	WithFields(fields map[string]any) *Error

	// WithCause adds a new underlying error to the error and returns the updated Blame instance.
	WithCause(err error) *Error

	// WithComponent sets the component associated with the error and returns the updated Blame instance.
	WithComponent(component types.ComponentErrorType) *Error

	// WithResponseType sets the response type associated with the error and returns the updated Blame instance.
	WithResponseType(responseType types.ResponseErrorType) *Error

	// Render substitutes {{.field}} placeholders in the message and description.
	Render() (string, string)

	// FetchErrorResponse returns the body sent to HTTP clients.
	FetchErrorResponse(options ...SendErrorResponseOption) ErrorResponse

	// Wrap applies options to the error and returns it as a Blame.
	Wrap(opts ...BlameOption) Blame

	// Unwrap exposes the causes to errors.Is / errors.As.
	Unwrap() []error
}

// NewBlame creates a new instance of Blame with the provided reason code, error code, and message. It captures the source of the error at the point of instantiation.
func NewBlame(
	reasonCode string,
	errCode types.ErrorCode,
	message, description string,
) Blame {
	return NewError(reasonCode, errCode, message, description)
}

// NewBasicBlame creates a new instance of Blame with the provided error code.
func NewBasicBlame(
	errCode types.ErrorCode,
) Blame {
	return NewBasicError(errCode)
}
