package blame

import (
	"maps"

	"github.com/abhissng/chargehub/utils/types"
)

// BlameDefinition describes how an error code is rendered to callers.
type BlameDefinition struct {
	Code         types.ErrorCode
	Message      string
	Description  string
	Component    types.ComponentErrorType
	ResponseType types.ResponseErrorType
}

// BlameManager holds blame definitions keyed by error code.
type BlameManager struct {
	BlameDefinitions map[types.ErrorCode]BlameDefinition
}

// NewBlameManager creates a manager seeded with the given definitions.
func NewBlameManager(definitions ...BlameDefinition) *BlameManager {
	bm := &BlameManager{BlameDefinitions: make(map[types.ErrorCode]BlameDefinition, len(definitions))}
	for _, def := range definitions {
		bm.BlameDefinitions[def.Code] = def
	}
	return bm
}

// Extend returns a new manager holding the receiver's definitions plus the given ones.
func (bm *BlameManager) Extend(definitions ...BlameDefinition) *BlameManager {
	extended := &BlameManager{BlameDefinitions: maps.Clone(bm.BlameDefinitions)}
	for _, def := range definitions {
		extended.BlameDefinitions[def.Code] = def
	}
	return extended
}

// FetchBlameForError builds a fresh Blame for the given error code.
func (bm *BlameManager) FetchBlameForError(errorCode types.ErrorCode, opts ...BlameOption) Blame {
	def, ok := bm.BlameDefinitions[errorCode]
	if !ok {
		return NewBasicError(errorCode).Wrap(opts...)
	}
	return NewError("", def.Code, def.Message, def.Description).
		WithComponent(def.Component).
		WithResponseType(def.ResponseType).
		Wrap(opts...)
}

// BlameOptions collects the fields and causes applied to a Blame.
type BlameOptions struct {
	Fields map[string]any
	Causes []error
}

// BlameOption defines an option for modifying Blame creation.
type BlameOption func(*BlameOptions)

// NewBlameOptions creates a new BlameOptions instance.
func NewBlameOptions() *BlameOptions {
	return &BlameOptions{
		Fields: map[string]any{},
		Causes: make([]error, 0),
	}
}

// WithField adds a field to the blame options.
func WithField(key string, value any) BlameOption {
	return func(opts *BlameOptions) {
		opts.Fields[key] = value
	}
}

// WithFields adds multiple fields to the blame options.
func WithFields(fields map[string]any) BlameOption {
	return func(opts *BlameOptions) {
		maps.Copy(opts.Fields, fields)
	}
}

// WithCauses adds causes to the blame options.
func WithCauses(causes ...error) BlameOption {
	return func(opts *BlameOptions) {
		for _, cause := range causes {
			if cause != nil {
				opts.Causes = append(opts.Causes, cause)
			}
		}
	}
}
