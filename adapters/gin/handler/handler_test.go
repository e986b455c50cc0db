package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h RequestHandler) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/r", ExecuteControllerHandler(log.NewNop(), "GET /r", h))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r", nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) blame.ErrorResponse {
	t.Helper()
	var body blame.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestValueIsWrittenAsJSON(t *testing.T) {
	w := serve(t, func(*gin.Context) (any, error) { return map[string]int{"n": 1}, nil })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"n":1}`, w.Body.String())

	w = serve(t, func(*gin.Context) (any, error) { return nil, nil })
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlainErrorBecomesHandlerFailed(t *testing.T) {
	w := serve(t, func(*gin.Context) (any, error) { return nil, errors.New("db down") })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, blame.ErrorHandlerFailed, body.ErrorCode)
	assert.Empty(t, body.Causes)
}

func TestBlameKeepsItsStatus(t *testing.T) {
	w := serve(t, func(*gin.Context) (any, error) { return nil, blame.EntryNotFoundError("Transaction", "42") })
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, blame.ErrorEntryNotFound, decode(t, w).ErrorCode)
}

func TestPanicIsContained(t *testing.T) {
	w := serve(t, func(*gin.Context) (any, error) { panic("boom") })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, blame.ErrorHandlerFailed, decode(t, w).ErrorCode)
}
