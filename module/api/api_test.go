package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhissng/chargehub/adapters/gin/server"
	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/module/registry"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeModule struct {
	cfg *config.SystemConfig
}

func (m *fakeModule) Group() ocpp.EventGroup             { return ocpp.Transactions }
func (m *fakeModule) Config() *config.SystemConfig       { return m.cfg }
func (m *fakeModule) SetConfig(cfg *config.SystemConfig) { m.cfg = cfg }

type fakeAPI struct {
	*Base[*fakeModule]
	calls []registry.Call
}

func (a *fakeAPI) StatusNotification(_ context.Context, call registry.Call, req *ocpp.StatusNotificationRequest) (*ocpp.MessageConfirmation, error) {
	a.calls = append(a.calls, call)
	return ocpp.Confirmed(req.ConnectorStatus), nil
}

type txQuery struct {
	ID string `json:"id" validate:"required"`
}

func (a *fakeAPI) GetTransaction(_ context.Context, q *txQuery, _ *registry.None) (any, error) {
	if q.ID == "panic" {
		panic("storage exploded")
	}
	if q.ID == "missing" {
		return nil, blame.EntryNotFoundError(ocpp.TransactionNamespace.String(), q.ID)
	}
	if q.ID == "fail" {
		return nil, errors.New("storage unavailable")
	}
	return map[string]string{"id": q.ID}, nil
}

var fakeTable = registry.New[*fakeAPI]("fake").
	MustExpose(registry.Action(ocpp.StatusNotification, (*fakeAPI).StatusNotification)).
	MustExposeData(registry.Data(ocpp.TransactionNamespace, ocpp.Get, (*fakeAPI).GetTransaction))

func moduleConfig(prefix string) *config.SystemConfig {
	cfg := config.Default()
	cfg.Modules.Transactions.EndpointPrefix = prefix
	cfg.Util.Swagger = &config.SwaggerConfig{ExposeMessage: true}
	return cfg
}

func newFakeAPI(t *testing.T, srv *server.Server, prefix string) *fakeAPI {
	t.Helper()
	a := &fakeAPI{}
	base, err := Register(a, &fakeModule{cfg: moduleConfig(prefix)}, srv, nil, fakeTable)
	require.NoError(t, err)
	a.Base = base
	return a
}

func do(srv *server.Server, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestAddressing(t *testing.T) {
	srv := server.NewServer()
	a := newFakeAPI(t, srv, "")

	assert.Equal(t, []string{
		"POST /ocpp/statusnotification",
		"GET /data/transaction",
		"GET /data/systemconfig",
		"PUT /data/systemconfig",
	}, a.Routes())

	assert.Equal(t, "/ocpp/transactions/statusnotification", MessagePath("/transactions/", ocpp.StatusNotification))
	assert.Equal(t, "/data/transaction", DataPath("", ocpp.TransactionNamespace))
}

func TestRoutingDuality(t *testing.T) {
	srv := server.NewServer()
	newFakeAPI(t, srv, "")

	documented := map[string]bool{}
	for _, spec := range srv.DocumentedRoutes() {
		documented[spec.Method+" "+spec.Path] = true
	}
	assert.True(t, documented["POST /ocpp/statusnotification"])
	assert.False(t, documented["GET /data/transaction"])
}

func TestActionRoute(t *testing.T) {
	srv := server.NewServer()
	a := newFakeAPI(t, srv, "transactions")

	body := map[string]any{
		"timestamp":       "2024-01-02T03:04:05Z",
		"connectorStatus": "Available",
		"evseId":          1,
		"connectorId":     1,
	}
	rec := do(srv, http.MethodPost, "/ocpp/transactions/statusnotification?identifier=cs-1&tenantId=t-1&callbackUrl=http://example.test/cb", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var confirmation ocpp.MessageConfirmation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmation))
	assert.True(t, confirmation.Success)
	assert.Equal(t, "Available", confirmation.Payload)
	require.Len(t, a.calls, 1)
	assert.Equal(t, registry.Call{Identifier: "cs-1", TenantID: "t-1", CallbackURL: "http://example.test/cb"}, a.calls[0])
}

func TestActionRouteValidation(t *testing.T) {
	srv := server.NewServer()
	a := newFakeAPI(t, srv, "")

	rec := do(srv, http.MethodPost, "/ocpp/statusnotification?tenantId=t-1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "identifier")

	rec = do(srv, http.MethodPost, "/ocpp/statusnotification?identifier=cs-1&tenantId=t-1", map[string]any{"connectorStatus": "Sleeping"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "connectorStatus")
	assert.Empty(t, a.calls)
}

func TestImplicitConfigRoutesWithoutBindings(t *testing.T) {
	srv := server.NewServer()
	module := &fakeModule{cfg: moduleConfig("")}
	empty := registry.New[*fakeAPI]("empty")
	base, err := Register(&fakeAPI{}, module, srv, nil, empty)
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /data/systemconfig", "PUT /data/systemconfig"}, base.Routes())

	rec := do(srv, http.MethodGet, "/data/systemconfig", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current config.SystemConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, 8080, current.Server.Port)

	current.Server.Port = 9090
	rec = do(srv, http.MethodPut, "/data/systemconfig", current)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 9090, module.Config().Server.Port)

	rec = do(srv, http.MethodPut, "/data/systemconfig", map[string]any{"server": map[string]any{"port": 70000}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 9090, module.Config().Server.Port)
}

func TestDataRouteErrorContainment(t *testing.T) {
	srv := server.NewServer()
	newFakeAPI(t, srv, "")

	rec := do(srv, http.MethodGet, "/data/transaction?id=panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var failure blame.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failure))
	assert.Equal(t, blame.ErrorHandlerFailed, failure.ErrorCode)

	rec = do(srv, http.MethodGet, "/data/transaction?id=fail", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(srv, http.MethodGet, "/data/transaction?id=missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(srv, http.MethodGet, "/data/transaction?id=tx-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"tx-1"}`, rec.Body.String())
}

func TestConflictingRegistrationFails(t *testing.T) {
	srv := server.NewServer()
	newFakeAPI(t, srv, "")
	_, err := Register(&fakeAPI{}, &fakeModule{cfg: moduleConfig("")}, srv, nil, fakeTable)
	assert.Error(t, err)
}
