package certificates

import (
	"errors"
	"net/http"
	"testing"

	"github.com/abhissng/chargehub/module/moduletest"
	"github.com/abhissng/chargehub/ocpp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignCertificateIsRecorded(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	reply := h.Request(t, "cs-1", ocpp.SignCertificate, ocpp.SignCertificateRequest{CSR: "-----BEGIN CERTIFICATE REQUEST-----"})
	require.Equal(t, ocpp.StateResponse, reply.State)
	assert.Equal(t, "Accepted", moduletest.Decode[ocpp.SignCertificateResponse](t, reply.Payload).Status)

	rec := h.Do(http.MethodGet, "/data/certificates/certificate"+moduletest.StationQuery("cs-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	certs := moduletest.Decode[Certificates](t, rec.Body.Bytes())
	require.Len(t, certs.Pending, 1)
	assert.Equal(t, defaultCertificateType, certs.Pending[0].CertificateType)
}

func TestInstallCertificate(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)

	body := map[string]any{"certificateType": "CSMSRootCertificate", "certificate": "PEM"}
	rec := h.Do(http.MethodPost, "/ocpp/certificates/installcertificate"+moduletest.StationQuery("cs-1"), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ocpp.InstallCertificate, h.LastSent(t).Action)

	rec = h.Do(http.MethodGet, "/data/certificates/certificate"+moduletest.StationQuery("cs-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, moduletest.Decode[Certificates](t, rec.Body.Bytes()).Installed, "CSMSRootCertificate")
}

func TestInstallCertificateNotRecordedWhenBrokerFails(t *testing.T) {
	h := moduletest.New(t)
	h.Build(t, Descriptor)
	h.Sender.Err = errors.New("broker down")

	body := map[string]any{"certificateType": "CSMSRootCertificate", "certificate": "PEM"}
	rec := h.Do(http.MethodPost, "/ocpp/certificates/installcertificate"+moduletest.StationQuery("cs-2"), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, moduletest.Decode[ocpp.MessageConfirmation](t, rec.Body.Bytes()).Success)

	rec = h.Do(http.MethodGet, "/data/certificates/certificate"+moduletest.StationQuery("cs-2"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
