package validator

import "github.com/abhissng/chargehub/config"

// Coercion modes accepted by CoerceTypes.
const (
	CoerceNone   = "false"
	CoerceScalar = "true"
	CoerceArray  = "array"
)

// Options controls how raw input is decoded before validation.
type Options struct {
	// RemoveAdditional silently drops unknown properties; otherwise they are rejected.
	RemoveAdditional bool
	// UseDefaults fills missing properties from `default:"..."` tags.
	UseDefaults bool
	// CoerceTypes is "false", "true" (scalars) or "array" (scalars and single value to array).
	CoerceTypes string
	// Strict rejects unknown properties even when RemoveAdditional is set.
	Strict bool
}

// DefaultOptions returns removeAdditional, useDefaults, array coercion and non-strict mode.
func DefaultOptions() Options {
	return Options{RemoveAdditional: true, UseDefaults: true, CoerceTypes: CoerceArray}
}

// Option mutates Options.
type Option func(*Options)

// WithConfig applies a validator config section.
func WithConfig(cfg config.ValidatorConfig) Option {
	return func(o *Options) {
		o.RemoveAdditional = cfg.RemoveAdditional
		o.UseDefaults = cfg.UseDefaults
		o.Strict = cfg.Strict
		if cfg.CoerceTypes != "" {
			o.CoerceTypes = cfg.CoerceTypes
		}
	}
}

// WithRemoveAdditional sets Options.RemoveAdditional.
func WithRemoveAdditional(remove bool) Option {
	return func(o *Options) { o.RemoveAdditional = remove }
}

// WithUseDefaults sets Options.UseDefaults.
func WithUseDefaults(use bool) Option {
	return func(o *Options) { o.UseDefaults = use }
}

// WithCoerceTypes sets Options.CoerceTypes.
func WithCoerceTypes(mode string) Option {
	return func(o *Options) { o.CoerceTypes = mode }
}

// WithStrict sets Options.Strict.
func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

func (o Options) rejectUnknown() bool {
	return o.Strict || !o.RemoveAdditional
}

func (o Options) weak() bool {
	return o.CoerceTypes != CoerceNone
}
