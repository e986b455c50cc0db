package ocpp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageTypeID is the first element of an OCPP-J frame.
type MessageTypeID int

const (
	CallType       MessageTypeID = 2
	CallResultType MessageTypeID = 3
	CallErrorType  MessageTypeID = 4
)

// ErrorCode values defined for CALLERROR frames.
const (
	FormatViolation               = "FormatViolation"
	GenericError                  = "GenericError"
	InternalError                 = "InternalError"
	MessageTypeNotSupported       = "MessageTypeNotSupported"
	NotImplemented                = "NotImplemented"
	NotSupported                  = "NotSupported"
	PropertyConstraintViolation   = "PropertyConstraintViolation"
	ProtocolError                 = "ProtocolError"
	RPCFrameworkError             = "RpcFrameworkError"
	SecurityError                 = "SecurityError"
	TypeConstraintViolation       = "TypeConstraintViolation"
	OccurrenceConstraintViolation = "OccurrenceConstraintViolation"
)

// CallError describes a CALLERROR frame.
type CallError struct {
	Code        string          `json:"code" msgpack:"code"`
	Description string          `json:"description" msgpack:"description"`
	Details     json.RawMessage `json:"details,omitempty" msgpack:"details"`
}

// Error implements error so handlers can return a CallError directly.
func (e *CallError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// Frame is a decoded OCPP-J message.
type Frame struct {
	Type    MessageTypeID
	ID      string
	Action  CallAction
	Payload json.RawMessage
	Error   *CallError
}

var (
	ErrMalformedFrame   = errors.New("malformed OCPP-J frame")
	ErrUnknownFrameType = errors.New("unknown OCPP-J message type")
)

// NewCall builds a CALL frame.
func NewCall(id string, action CallAction, payload json.RawMessage) Frame {
	return Frame{Type: CallType, ID: id, Action: action, Payload: payload}
}

// NewCallResult builds a CALLRESULT frame.
func NewCallResult(id string, payload json.RawMessage) Frame {
	return Frame{Type: CallResultType, ID: id, Payload: payload}
}

// NewCallError builds a CALLERROR frame.
func NewCallError(id, code, description string) Frame {
	return Frame{Type: CallErrorType, ID: id, Error: &CallError{Code: code, Description: description}}
}

// MarshalJSON encodes the frame as a JSON array.
func (f Frame) MarshalJSON() ([]byte, error) {
	payload := f.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	switch f.Type {
	case CallType:
		return json.Marshal([]any{f.Type, f.ID, f.Action, payload})
	case CallResultType:
		return json.Marshal([]any{f.Type, f.ID, payload})
	case CallErrorType:
		ce := f.Error
		if ce == nil {
			ce = &CallError{Code: GenericError}
		}
		details := ce.Details
		if len(details) == 0 {
			details = json.RawMessage("{}")
		}
		return json.Marshal([]any{f.Type, f.ID, ce.Code, ce.Description, details})
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownFrameType, f.Type)
}

// UnmarshalJSON decodes a JSON array into the frame.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if len(parts) < 3 {
		return ErrMalformedFrame
	}
	var typeID MessageTypeID
	if err := json.Unmarshal(parts[0], &typeID); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	var id string
	if err := json.Unmarshal(parts[1], &id); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	frame := Frame{Type: typeID, ID: id}

	switch typeID {
	case CallType:
		if len(parts) != 4 {
			return ErrMalformedFrame
		}
		if err := json.Unmarshal(parts[2], &frame.Action); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		frame.Payload = parts[3]
	case CallResultType:
		if len(parts) != 3 {
			return ErrMalformedFrame
		}
		frame.Payload = parts[2]
	case CallErrorType:
		if len(parts) != 5 {
			return ErrMalformedFrame
		}
		ce := &CallError{Details: parts[4]}
		if err := json.Unmarshal(parts[2], &ce.Code); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		if err := json.Unmarshal(parts[3], &ce.Description); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		frame.Error = ce
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFrameType, typeID)
	}

	*f = frame
	return nil
}
