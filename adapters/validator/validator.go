package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a high-level wrapper for go-playground/validator that also decodes
// raw request bodies and query strings into schema structs.
type Validator struct {
	validator *validator.Validate
	options   Options
}

// NewValidator creates a new Validator instance.
func NewValidator(options ...Option) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	opts := DefaultOptions()
	for _, option := range options {
		option(&opts)
	}
	return &Validator{validator: v, options: opts}
}

// Options returns the options the validator was built with.
func (v *Validator) Options() Options {
	return v.options
}

// jsonFieldName reports fields by their JSON name so error keys match the wire format.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// ValidateStruct validates a struct and returns a map of field paths to error messages.
func (v *Validator) ValidateStruct(s any) map[string]string {
	err := v.validator.Struct(s)
	if err == nil {
		return nil // No errors
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"error": "unexpected validation error"}
	}

	errorMap := make(map[string]string)
	for _, fieldError := range validationErrors {
		errorMap[fieldPath(fieldError)] = v.getErrorMessage(fieldError)
	}

	return errorMap
}

// fieldPath strips the root struct name from the namespace: "Request.idToken.type" -> "idToken.type".
func fieldPath(fieldError validator.FieldError) string {
	namespace := fieldError.Namespace()
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return fieldError.Field()
}

// ValidateField validates a single field of a struct.
func (v *Validator) ValidateField(field any, tag string) string {
	err := v.validator.Var(field, tag)
	if err == nil {
		return "" // No error
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "unexpected validation error"
	}

	if len(validationErrors) > 0 {
		return v.getErrorMessage(validationErrors[0])
	}

	return "validation error" // Generic error if no FieldError found.
}

// RegisterValidation registers a custom validation function for a specific tag.
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validator.RegisterValidation(tag, fn)
}

// RegisterStructValidation registers a custom struct-level validation function.
func (v *Validator) RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	v.validator.RegisterStructValidation(fn, types...)
}

// getErrorMessage generates a user-friendly error message from a FieldError.
func (v *Validator) getErrorMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldError.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fieldError.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fieldError.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fieldError.Field(), fieldError.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fieldError.Field(), fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fieldError.Field(), fieldError.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fieldError.Field(), fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fieldError.Field(), fieldError.Param())
	default:
		return fmt.Sprintf("invalid %s", fieldError.Field())
	}
}
