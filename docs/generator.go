package docs

import (
	"reflect"
	"sort"
	"strings"

	"github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/blame"
)

const (
	openAPIVersion    = "3.0.3"
	jsonContent       = "application/json"
	defaultAPIVersion = "1.0.0"
)

// Generator builds an OpenAPI document from documented routes.
type Generator struct {
	info Info
}

// NewGenerator creates a generator titled title.
func NewGenerator(title string) *Generator {
	return &Generator{info: Info{Title: title, Version: defaultAPIVersion}}
}

// Generate creates the OpenAPI specification for routes.
func (g *Generator) Generate(routes []server.RouteSpec) *Spec {
	spec := &Spec{
		OpenAPI:    openAPIVersion,
		Info:       g.info,
		Paths:      make(map[string]PathItem),
		Components: Components{Schemas: make(map[string]*Schema)},
	}
	errorRef := schemaFor(reflect.TypeOf(blame.ErrorResponse{}), spec.Components.Schemas)

	sorted := append([]server.RouteSpec(nil), routes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	tags := map[string]struct{}{}
	for _, route := range sorted {
		path := openAPIPath(route.Path)
		item := spec.Paths[path]
		item.set(route.Method, g.operation(route, spec.Components.Schemas, errorRef))
		spec.Paths[path] = item
		if route.Tag != "" {
			tags[route.Tag] = struct{}{}
		}
	}

	for tag := range tags {
		spec.Tags = append(spec.Tags, Tag{Name: tag})
	}
	sort.Slice(spec.Tags, func(i, j int) bool { return spec.Tags[i].Name < spec.Tags[j].Name })
	return spec
}

func (g *Generator) operation(route server.RouteSpec, components map[string]*Schema, errorRef *Schema) *Operation {
	op := &Operation{
		Summary:     route.Summary,
		OperationID: route.OperationID,
		Responses: map[string]Response{
			"200": {Description: "OK"},
			"400": {Description: "Invalid request", Content: map[string]MediaType{jsonContent: {Schema: errorRef}}},
			"500": {Description: "Handler failed", Content: map[string]MediaType{jsonContent: {Schema: errorRef}}},
		},
	}
	if route.Tag != "" {
		op.Tags = []string{route.Tag}
	}
	if route.Query != nil {
		op.Parameters = queryParameters(reflect.TypeOf(route.Query), components)
	}
	if route.Body != nil {
		op.RequestBody = &RequestBody{
			Required: true,
			Content:  map[string]MediaType{jsonContent: {Schema: schemaFor(reflect.TypeOf(route.Body), components)}},
		}
	}
	if route.Response != nil {
		op.Responses["200"] = Response{
			Description: "OK",
			Content:     map[string]MediaType{jsonContent: {Schema: schemaFor(reflect.TypeOf(route.Response), components)}},
		}
	}
	return op
}

// queryParameters flattens a query struct into one parameter per field.
func queryParameters(t reflect.Type, components map[string]*Schema) []Parameter {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	object := structSchema(t, components)
	required := map[string]bool{}
	for _, name := range object.Required {
		required[name] = true
	}

	names := make([]string, 0, len(object.Properties))
	for name := range object.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]Parameter, 0, len(names))
	for _, name := range names {
		params = append(params, Parameter{
			Name:     name,
			In:       "query",
			Required: required[name],
			Schema:   object.Properties[name],
		})
	}
	return params
}

// openAPIPath rewrites gin parameters (":id", "*rest") into OpenAPI templates.
func openAPIPath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}
