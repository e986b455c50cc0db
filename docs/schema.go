package docs

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	rawJSONType = reflect.TypeOf(json.RawMessage{})
)

const refPrefix = "#/components/schemas/"

// schemaFor converts a Go type into a JSON Schema. Named structs are stored in
// components and referenced; anonymous structs are inlined.
func schemaFor(t reflect.Type, components map[string]*Schema) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == timeType:
		return &Schema{Type: "string", Format: "date-time"}
	case t == rawJSONType:
		return &Schema{Type: "object"}
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: schemaFor(t.Elem(), components)}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: schemaFor(t.Elem(), components)}
	case reflect.Struct:
		name := t.Name()
		if name == "" {
			return structSchema(t, components)
		}
		if _, seen := components[name]; !seen {
			components[name] = &Schema{Type: "object"}
			components[name] = structSchema(t, components)
		}
		return &Schema{Ref: refPrefix + name}
	}
	return &Schema{}
}

// structSchema builds an object schema from exported fields, honouring the
// json, validate and default tags.
func structSchema(t reflect.Type, components map[string]*Schema) *Schema {
	s := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, skip := jsonName(f)
		if skip {
			continue
		}
		prop := schemaFor(f.Type, components)
		if prop.Ref == "" {
			if required := applyValidate(prop, f.Tag.Get("validate")); required {
				s.Required = append(s.Required, name)
			}
			if def, ok := f.Tag.Lookup("default"); ok {
				prop.Default = def
			}
		} else if strings.Contains(f.Tag.Get("validate"), "required") {
			s.Required = append(s.Required, name)
		}
		s.Properties[name] = prop
	}
	return s
}

func jsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, false
}

// applyValidate maps the validator rules the payloads use onto schema
// keywords and reports whether the field is required.
func applyValidate(s *Schema, tag string) bool {
	required := false
	for _, rule := range strings.Split(tag, ",") {
		if rule == "dive" {
			break
		}
		key, value, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			required = true
		case "oneof":
			s.Enum = strings.Fields(value)
		case "min", "gte":
			bound(s, value, true)
		case "max", "lte":
			bound(s, value, false)
		case "url":
			s.Format = "uri"
		}
	}
	return required
}

func bound(s *Schema, value string, lower bool) {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	switch s.Type {
	case "string":
		i := int(n)
		if lower {
			s.MinLength = &i
		} else {
			s.MaxLength = &i
		}
	case "array":
		i := int(n)
		if lower {
			s.MinItems = &i
		} else {
			s.MaxItems = &i
		}
	default:
		if lower {
			s.Minimum = &n
		} else {
			s.Maximum = &n
		}
	}
}
