package types

import (
	"strings"

	"go.uber.org/zap"
)

// StringConstant represents a constant string value.
type StringConstant string

// String returns the string representation of the StringConstant.
func (s StringConstant) String() string {
	return string(s)
}

// CorrelationID represents a correlation ID.
type CorrelationID string

// String returns the string representation of the CorrelationID.
func (c CorrelationID) String() string {
	return string(c)
}

// ErrorCode represents an error code.
type ErrorCode string

// String returns the string representation of the ErrorCode.
func (e ErrorCode) String() string {
	return string(e)
}

// ResponseErrorType represents the type of response error.
type ResponseErrorType string

// String returns the string representation of the ResponseErrorType.
func (e ResponseErrorType) String() string {
	return string(e)
}

// ComponentErrorType represents the type of component error.
type ComponentErrorType string

// String returns the string representation of the ComponentErrorType.
func (e ComponentErrorType) String() string {
	return string(e)
}

// CodecType defines the type of encoder (e.g., JSON, MsgPack).
type CodecType string

// String returns the string representation of the CodecType.
func (s CodecType) String() string {
	return string(s)
}

// ToUpperCase converts the codec type to uppercase
func (s CodecType) ToUpperCase() string {
	return strings.ToUpper(string(s))
}

// ContentType defines the type for a ContentType.
type ContentType string

// String returns the string representation of the ContentType.
func (c ContentType) String() string {
	return string(c)
}

// Field type to represent structured log fields
//
//nolint:gochecknoglobals
type Field = zap.Field

// Protocol represents a protocol.
type Protocol string

// String returns the string representation of the Protocol.
func (p Protocol) String() string {
	return string(p)
}

// LogMode represents the logging mode
type LogMode string

// String returns the string representation of the LogMode.
func (l LogMode) String() string {
	return string(l)
}
