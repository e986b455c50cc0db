package blame

import (
	"fmt"
	"maps"
	"runtime"
	"strings"

	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/abhissng/chargehub/utils/types"
)

// Error struct holds the error information
type Error struct {
	reasonCode   string
	errCode      types.ErrorCode
	component    types.ComponentErrorType
	responseType types.ResponseErrorType
	message      string
	description  string
	fields       map[string]any
	causes       []error
	source       string
}

// NewError creates a new Error instance
func NewError(
	reasonCode string,
	errorCode types.ErrorCode,
	message, description string,
) *Error {
	if helpers.IsEmpty(reasonCode) {
		reasonCode = string(errorCode)
	}
	return &Error{
		reasonCode:  reasonCode,
		errCode:     errorCode,
		message:     message,
		description: description,
		fields:      map[string]any{},
		causes:      make([]error, 0),
		source:      findSource(),
	}
}

// NewBasicError creates a new Error instance with the given error code
func NewBasicError(
	errorCode types.ErrorCode,
) *Error {
	return &Error{
		reasonCode: errorCode.String(),
		errCode:    errorCode,
		fields:     map[string]any{},
		causes:     make([]error, 0),
		source:     findSource(),
	}
}

// FetchReasonCode returns the reason code of the error as a string
func (e *Error) FetchReasonCode() string {
	return e.reasonCode
}

// FetchErrCode returns the error code of the error as a ErrorCode
func (e *Error) FetchErrCode() types.ErrorCode {
	return e.errCode
}

// FetchMessage returns the message of the error as a string
func (e *Error) FetchMessage() string {
	return e.message
}

// FetchDescription returns the description of the error as a string
func (e *Error) FetchDescription() string {
	return e.description
}

// FetchFields returns the fields of the error as a map[string]any
func (e *Error) FetchFields() map[string]any {
	return e.fields
}

// FetchSource returns the source of the error as a string
func (e *Error) FetchSource() string {
	return e.source
}

// FetchComponent returns the component of the error as a ComponentErrorType
func (e *Error) FetchComponent() types.ComponentErrorType {
	return e.component
}

// FetchResponseType returns the response type of the error as a ResponseErrorType
func (e *Error) FetchResponseType() types.ResponseErrorType {
	return e.responseType
}

// FetchCauses returns the causes of the error as a slice of errors
func (e *Error) FetchCauses() []error {
	return e.causes
}

// WithField adds a field to the error and returns the updated Error instance.
func (e *Error) WithField(key string, value any) *Error {
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the error and returns the updated Error instance.
func (e *Error) WithFields(fields map[string]any) *Error {
	maps.Copy(e.fields, fields)
	return e
}

// WithCause adds a cause to the error and returns the updated Error instance.
func (e *Error) WithCause(err error) *Error {
	if err == nil {
		return e
	}
	e.causes = append(e.causes, err)
	return e
}

// WithComponent sets the component of the error and returns the updated Error instance.
func (e *Error) WithComponent(component types.ComponentErrorType) *Error {
	e.component = component
	return e
}

// WithResponseType sets the response type of the error and returns the updated Error instance.
func (e *Error) WithResponseType(responseType types.ResponseErrorType) *Error {
	e.responseType = responseType
	return e
}

// Error returns the error message with the causes as a string
func (e *Error) Error() string {
	if len(e.causes) == 0 {
		return e.errCode.String()
	}
	return fmt.Sprintf("%s (causes: %v)", e.errCode.String(), e.causes)
}

// Unwrap returns the causes so errors.Is and errors.As can see through the Error.
func (e *Error) Unwrap() []error {
	return e.causes
}

// Wrap wraps the error with the provided options and returns the updated Blame instance.
func (e *Error) Wrap(opts ...BlameOption) Blame {
	options := NewBlameOptions()
	for _, opt := range opts {
		opt(options)
	}
	maps.Copy(e.fields, options.Fields)
	for _, cause := range options.Causes {
		_ = e.WithCause(cause)
	}
	return e
}

// Render replaces {{.key}} placeholders in the message and description with field values.
func (e *Error) Render() (string, string) {
	message := e.message
	description := e.description
	for key, value := range e.fields {
		formatted := "[" + fmt.Sprintf("%v", value) + "]"
		message = strings.ReplaceAll(message, "{{."+key+"}}", formatted)
		description = strings.ReplaceAll(description, "{{."+key+"}}", formatted)
	}
	return message, description
}

// findSource captures the source of the error at the point of instantiation.
func findSource() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// ErrorResponse struct holds the error information for sending as a response
type ErrorResponse struct {
	ReasonCode   string                   `json:"reason_code,omitempty"`
	ErrorCode    types.ErrorCode          `json:"error_code,omitempty"`
	Message      string                   `json:"message,omitempty"`
	Description  string                   `json:"description,omitempty"`
	Fields       map[string]any           `json:"fields,omitempty"`
	Component    types.ComponentErrorType `json:"component,omitempty"`
	ResponseType types.ResponseErrorType  `json:"response_type,omitempty"`
	Causes       []string                 `json:"causes,omitempty"`
}

// FetchErrorResponse returns the error as an ErrorResponse with rendered message and description.
func (e *Error) FetchErrorResponse(options ...SendErrorResponseOption) ErrorResponse {
	message, description := e.Render()
	response := ErrorResponse{
		ReasonCode:   e.FetchReasonCode(),
		ErrorCode:    e.FetchErrCode(),
		Message:      message,
		Description:  description,
		Fields:       maps.Clone(e.FetchFields()),
		Component:    e.FetchComponent(),
		ResponseType: e.FetchResponseType(),
		Causes:       helpers.FetchErrorStrings(e.FetchCauses()),
	}

	for _, opt := range options {
		opt(&response, e)
	}

	return response
}

// SendErrorResponseOption is a function that can be used to modify the error response
type SendErrorResponseOption func(*ErrorResponse, Blame)

// WithoutCauses strips the causes from the response, used in production.
func WithoutCauses() SendErrorResponseOption {
	return func(response *ErrorResponse, _ Blame) {
		response.Causes = nil
	}
}

// WithCustomField adds a custom field to the error response and returns the updated SendErrorResponseOption.
func WithCustomField(key string, value any) SendErrorResponseOption {
	return func(response *ErrorResponse, _ Blame) {
		if response.Fields == nil {
			response.Fields = map[string]any{}
		}
		response.Fields[key] = value
	}
}
