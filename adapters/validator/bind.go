package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// BodyKey and QueryKey hold decode errors that cannot be pinned to one field.
const (
	BodyKey  = "body"
	QueryKey = "query"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// Bind decodes a JSON body into dst, applies defaults, coercion and the unknown-property
// policy, then validates it. It returns nil on success or a field to message map.
func (v *Validator) Bind(dst any, raw []byte) map[string]string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var input any
	if err := decoder.Decode(&input); err != nil {
		return map[string]string{BodyKey: "malformed JSON: " + err.Error()}
	}
	if _, ok := input.(map[string]any); !ok {
		return map[string]string{BodyKey: "must be a JSON object"}
	}

	return v.bind(dst, input, v.options.weak(), v.options.rejectUnknown(), BodyKey)
}

// BindQuery decodes query parameters into dst. Query values are always strings, so they
// are coerced regardless of CoerceTypes; unknown parameters are only rejected in strict mode.
func (v *Validator) BindQuery(dst any, values url.Values) map[string]string {
	input := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			input[key] = vals[0]
			continue
		}
		items := make([]any, len(vals))
		for i, val := range vals {
			items[i] = val
		}
		input[key] = items
	}

	return v.bind(dst, input, true, v.options.Strict, QueryKey)
}

func (v *Validator) bind(dst any, input any, weak, rejectUnknown bool, errKey string) map[string]string {
	target := reflect.TypeOf(dst)
	if target == nil || target.Kind() != reflect.Pointer {
		return map[string]string{errKey: "schema must be a pointer"}
	}

	if v.options.UseDefaults {
		applyDefaults(target.Elem(), input)
	}

	hooks := []mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		numberOrStringToDuration,
	}
	if v.options.CoerceTypes == CoerceScalar && weak && errKey == BodyKey {
		hooks = append(hooks, rejectScalarToSlice)
	}

	var metadata mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           dst,
		WeaklyTypedInput: weak,
		Metadata:         &metadata,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(hooks...),
	})
	if err != nil {
		return map[string]string{errKey: err.Error()}
	}

	if err := decoder.Decode(input); err != nil {
		return map[string]string{errKey: err.Error()}
	}

	if rejectUnknown && len(metadata.Unused) > 0 {
		errs := make(map[string]string, len(metadata.Unused))
		for _, key := range metadata.Unused {
			errs[strings.TrimPrefix(key, ".")] = "is not allowed"
		}
		return errs
	}

	return v.ValidateStruct(dst)
}

// numberOrStringToDuration accepts "1m30s" as well as a nanosecond count.
func numberOrStringToDuration(_, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return time.ParseDuration(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return time.Duration(n), nil
	}
	return data, nil
}

// rejectScalarToSlice keeps scalar coercion from lifting a single value into an array.
func rejectScalarToSlice(from, to reflect.Type, data any) (any, error) {
	if data == nil || to.Kind() != reflect.Slice || to.Elem().Kind() == reflect.Uint8 {
		return data, nil
	}
	if from.Kind() == reflect.Slice || from.Kind() == reflect.Array {
		return data, nil
	}
	return nil, errors.New("expected an array")
}

// applyDefaults fills missing keys of input from `default` tags of t, recursing into
// present nested objects and arrays.
func applyDefaults(t reflect.Type, input any) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if items, ok := input.([]any); ok {
			for _, item := range items {
				applyDefaults(t.Elem(), item)
			}
		}
	case reflect.Struct:
		if t == timeType {
			return
		}
		object, ok := input.(map[string]any)
		if !ok {
			return
		}
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := jsonFieldName(field)
			if name == "" {
				continue
			}
			value, present := object[name]
			if present {
				applyDefaults(field.Type, value)
				continue
			}
			if tag, ok := field.Tag.Lookup("default"); ok {
				if def, ok := defaultValue(field.Type, tag); ok {
					object[name] = def
				}
			}
		}
	}
}

// defaultValue converts a default tag into a value mapstructure can decode without coercion.
func defaultValue(t reflect.Type, tag string) (any, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return tag, true
	case reflect.Bool:
		b, err := strconv.ParseBool(tag)
		return b, err == nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if _, err := strconv.ParseFloat(tag, 64); err != nil {
			return nil, false
		}
		return json.Number(tag), true
	case reflect.Slice:
		parts := strings.Split(tag, ",")
		items := make([]any, 0, len(parts))
		for _, part := range parts {
			item, ok := defaultValue(t.Elem(), strings.TrimSpace(part))
			if !ok {
				return nil, false
			}
			items = append(items, item)
		}
		return items, true
	}
	return nil, false
}

// Messages flattens an error map into sorted "field: message" lines.
func Messages(errs map[string]string) []string {
	lines := make([]string, 0, len(errs))
	for field, msg := range errs {
		lines = append(lines, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(lines)
	return lines
}
