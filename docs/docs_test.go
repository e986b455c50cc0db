package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stationQuery struct {
	Identifier  string `json:"identifier" validate:"required"`
	TenantID    string `json:"tenantId" validate:"required"`
	CallbackURL string `json:"callbackUrl,omitempty" validate:"omitempty,url"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestExposeServesGeneratedDocument(t *testing.T) {
	srv := server.NewServer()
	require.NoError(t, Expose(srv, &config.SwaggerConfig{Path: "/docs/", Title: "chargehub"}, nil))

	require.NoError(t, srv.Documented().Handle(server.RouteSpec{
		Method:      http.MethodPost,
		Path:        "/ocpp/statusnotification",
		Tag:         "transactions",
		OperationID: "StatusNotification",
		Query:       stationQuery{},
		Body:        ocpp.StatusNotificationRequest{},
		Response:    ocpp.MessageConfirmation{},
	}, func(c *gin.Context) { c.Status(http.StatusOK) }))
	require.NoError(t, srv.Root().Handle(server.RouteSpec{Method: http.MethodGet, Path: "/hidden"},
		func(c *gin.Context) { c.Status(http.StatusOK) }))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var spec Spec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, "chargehub", spec.Info.Title)
	assert.NotContains(t, spec.Paths, "/hidden")

	item, ok := spec.Paths["/ocpp/statusnotification"]
	require.True(t, ok)
	require.NotNil(t, item.Post)
	assert.Equal(t, []string{"transactions"}, item.Post.Tags)
	require.Len(t, item.Post.Parameters, 3)
	assert.Equal(t, "callbackUrl", item.Post.Parameters[0].Name)
	assert.False(t, item.Post.Parameters[0].Required)
	assert.Equal(t, "identifier", item.Post.Parameters[1].Name)
	assert.True(t, item.Post.Parameters[1].Required)

	body := spec.Components.Schemas["StatusNotificationRequest"]
	require.NotNil(t, body)
	assert.Contains(t, body.Required, "connectorStatus")
	assert.Contains(t, body.Properties["connectorStatus"].Enum, "Available")
	assert.Equal(t, "date-time", body.Properties["timestamp"].Format)
	assert.Contains(t, spec.Components.Schemas, "ErrorResponse")
}

func TestExposeServesUI(t *testing.T) {
	srv := server.NewServer()
	require.NoError(t, Expose(srv, &config.SwaggerConfig{}, nil))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/docs/openapi.json")
}

func TestExposeWithoutConfigIsNoop(t *testing.T) {
	srv := server.NewServer()
	require.NoError(t, Expose(srv, nil, nil))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchemaForNestedTypes(t *testing.T) {
	components := map[string]*Schema{}
	s := schemaFor(reflectType[ocpp.MeterValuesRequest](), components)
	assert.Equal(t, refPrefix+"MeterValuesRequest", s.Ref)

	meter := components["MeterValuesRequest"].Properties["meterValue"]
	require.NotNil(t, meter)
	assert.Equal(t, "array", meter.Type)
	require.NotNil(t, meter.MinItems)
	assert.Equal(t, 1, *meter.MinItems)
	assert.Equal(t, refPrefix+"MeterValue", meter.Items.Ref)

	sampled := components["SampledValue"]
	require.NotNil(t, sampled)
	assert.Equal(t, "Outlet", sampled.Properties["location"].Default)
}

func TestOpenAPIPath(t *testing.T) {
	assert.Equal(t, "/data/{id}/files/{rest}", openAPIPath("/data/:id/files/*rest"))
}
