package evdriver

import (
	"net/http"
	"testing"

	"github.com/abhissng/chargehub/module/moduletest"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorize(t *testing.T, h *moduletest.Harness, token string) string {
	t.Helper()
	reply := h.Request(t, "cs-1", ocpp.Authorize, ocpp.AuthorizeRequest{IdToken: ocpp.IdToken{IdToken: token, Type: "ISO14443"}})
	require.Equal(t, ocpp.StateResponse, reply.State)
	return moduletest.Decode[ocpp.AuthorizeResponse](t, reply.Payload).IdTokenInfo.Status
}

func TestAuthorizeUnknownTokenFollowsPolicy(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)
	assert.Equal(t, "Accepted", authorize(t, h, "RFID-1"))

	strict := moduletest.New(t)
	strict.Config.Modules.EVDriver.AcceptUnknownIdTokens = false
	strict.Build(t, Descriptor)
	assert.Equal(t, "Unknown", authorize(t, strict, "RFID-1"))
}

func TestAuthorizationListRoutes(t *testing.T) {
	h := moduletest.New(t)
	h.Config.Modules.EVDriver.AcceptUnknownIdTokens = false
	h.Build(t, Descriptor)

	target := "/data/evdriver/authorization?idToken=RFID-7&tenantId=" + moduletest.Tenant
	rec := h.Do(http.MethodPut, target, map[string]any{"status": "Blocked"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Blocked", authorize(t, h, "RFID-7"))

	rec = h.Do(http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Blocked", moduletest.Decode[ocpp.IdTokenInfo](t, rec.Body.Bytes()).Status)

	rec = h.Do(http.MethodDelete, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unknown", authorize(t, h, "RFID-7"))
	assert.Equal(t, http.StatusNotFound, h.Do(http.MethodGet, target, nil).Code)

	rec = h.Do(http.MethodPut, target, map[string]any{"status": "Maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoteStartWithCallback(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	target := "/ocpp/evdriver/requeststarttransaction" + moduletest.StationQuery("cs-1") + "&callbackUrl=http://example.test/cb"
	rec := h.Do(http.MethodPost, target, map[string]any{
		"idToken":       map[string]any{"idToken": "RFID-1", "type": "ISO14443"},
		"remoteStartId": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	call := h.LastSent(t)
	assert.Equal(t, ocpp.RequestStartTransaction, call.Action)
	h.Answer(t, call, map[string]any{"status": "Accepted"})

	deliveries := h.Callbacks.Delivered()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "http://example.test/cb", deliveries[0].URL)
}

func TestMissingQueryIsRejected(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	rec := h.Do(http.MethodPost, "/ocpp/evdriver/unlockconnector", map[string]any{"evseId": 1, "connectorId": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.Sender.Sent())
}
