package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/adapters/prometheus"
	"github.com/abhissng/chargehub/adapters/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(opts ...ServerOption) *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(append([]ServerOption{WithLogger(log.NewNop())}, opts...)...)
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestRoutersAndDocumentation(t *testing.T) {
	s := newTestServer()

	require.NoError(t, s.Root().Handle(RouteSpec{Method: http.MethodGet, Path: "/hidden"}, ok))
	require.NoError(t, s.Documented().Handle(RouteSpec{Method: http.MethodPost, Path: "/ocpp/heartbeat", Tag: "Configuration"}, ok))

	routes := s.DocumentedRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/ocpp/heartbeat", routes[0].Path)
	assert.True(t, s.Documented().IsDocumented())

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hidden", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConflictingRouteReturnsError(t *testing.T) {
	s := newTestServer()
	require.NoError(t, s.Root().Handle(RouteSpec{Method: http.MethodGet, Path: "/data/transaction"}, ok))

	err := s.Documented().Handle(RouteSpec{Method: http.MethodGet, Path: "/data/transaction"}, ok)
	assert.Error(t, err)
	assert.Empty(t, s.DocumentedRoutes())
}

func TestValidatorRegistration(t *testing.T) {
	s := newTestServer()
	assert.NotNil(t, s.Validator())

	v := validator.NewValidator(validator.WithStrict(true))
	s.SetValidator(v)
	assert.Same(t, v, s.Validator())
}

func TestListenAndClose(t *testing.T) {
	s := newTestServer(WithRoutes(NewRouteConfig(http.MethodGet, "/ping", ok)))
	require.NoError(t, s.Listen("127.0.0.1", 0))
	assert.ErrorIs(t, s.Listen("127.0.0.1", 0), ErrAlreadyListening)

	resp, err := http.Get(fmt.Sprintf("http://%s/ping", s.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Close(context.Background()))
	assert.Nil(t, s.Addr())
	assert.NoError(t, s.Close(context.Background()))
}

func TestListenBindFailure(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	port := occupied.Addr().(*net.TCPAddr).Port
	assert.Error(t, newTestServer().Listen("127.0.0.1", port))
}

func TestRateLimitAndMetrics(t *testing.T) {
	s := newTestServer(WithRateLimit(1, 1), WithMetrics(prometheus.NewMetricsCollector()), WithGzip(true))
	require.NoError(t, s.Root().Handle(RouteSpec{Method: http.MethodGet, Path: "/limited"}, ok))
	defer func() { _ = s.Close(context.Background()) }()

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		s.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
