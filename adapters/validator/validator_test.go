package validator

import (
	"net/url"
	"testing"
	"time"

	"github.com/abhissng/chargehub/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Value    float64 `json:"value"`
	Context  string  `json:"context,omitempty" default:"Sample.Periodic"`
	Multiple int     `json:"multiple,omitempty" default:"3"`
}

type reading struct {
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Samples   []sample  `json:"samples" validate:"required,min=1,dive"`
}

type request struct {
	Station  string    `json:"station" validate:"required"`
	EvseID   int       `json:"evseId" validate:"gte=0"`
	Tags     []string  `json:"tags,omitempty"`
	Readings []reading `json:"readings,omitempty" validate:"omitempty,dive"`
	Enabled  bool      `json:"enabled" default:"true"`
}

type query struct {
	Identifier  string `json:"identifier" validate:"required"`
	TenantID    string `json:"tenantId" validate:"required"`
	CallbackURL string `json:"callbackUrl,omitempty" validate:"omitempty,url"`
}

func TestBindAppliesDefaultsAndCoercion(t *testing.T) {
	v := NewValidator()

	var dst request
	errs := v.Bind(&dst, []byte(`{
		"station": "CS01",
		"evseId": "2",
		"tags": "solo",
		"readings": [{"timestamp": "2024-05-01T10:00:00Z", "samples": [{"value": 1.5}]}]
	}`))
	require.Nil(t, errs)

	assert.Equal(t, 2, dst.EvseID)
	assert.Equal(t, []string{"solo"}, dst.Tags)
	assert.True(t, dst.Enabled)
	require.Len(t, dst.Readings, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), dst.Readings[0].Timestamp.UTC())
	assert.Equal(t, "Sample.Periodic", dst.Readings[0].Samples[0].Context)
	assert.Equal(t, 3, dst.Readings[0].Samples[0].Multiple)
}

func TestBindReportsFieldErrors(t *testing.T) {
	v := NewValidator()

	var dst request
	errs := v.Bind(&dst, []byte(`{"evseId": -1, "readings": [{"samples": []}]}`))
	require.NotNil(t, errs)
	assert.Contains(t, errs, "station")
	assert.Contains(t, errs, "evseId")
	assert.Contains(t, errs, "readings[0].timestamp")
	assert.Contains(t, errs, "readings[0].samples")
}

func TestBindUnknownPropertyPolicy(t *testing.T) {
	body := []byte(`{"station": "CS01", "extra": 1}`)

	var dst request
	assert.Nil(t, NewValidator().Bind(&dst, body))

	errs := NewValidator(WithStrict(true)).Bind(&dst, body)
	assert.Equal(t, map[string]string{"extra": "is not allowed"}, errs)

	errs = NewValidator(WithRemoveAdditional(false)).Bind(&dst, body)
	assert.Equal(t, map[string]string{"extra": "is not allowed"}, errs)
}

func TestBindCoercionModes(t *testing.T) {
	var dst request
	errs := NewValidator(WithCoerceTypes(CoerceNone)).Bind(&dst, []byte(`{"station": "CS01", "evseId": "2"}`))
	assert.Contains(t, errs, BodyKey)

	errs = NewValidator(WithCoerceTypes(CoerceScalar)).Bind(&dst, []byte(`{"station": "CS01", "tags": "solo"}`))
	assert.Contains(t, errs, BodyKey)

	dst = request{}
	errs = NewValidator(WithCoerceTypes(CoerceScalar)).Bind(&dst, []byte(`{"station": "CS01", "evseId": "4"}`))
	assert.Nil(t, errs)
	assert.Equal(t, 4, dst.EvseID)
}

func TestBindWithoutDefaults(t *testing.T) {
	var dst request
	require.Nil(t, NewValidator(WithUseDefaults(false)).Bind(&dst, []byte(`{"station": "CS01"}`)))
	assert.False(t, dst.Enabled)
}

func TestBindRejectsNonObjects(t *testing.T) {
	var dst request
	assert.Contains(t, NewValidator().Bind(&dst, []byte(`[1,2]`)), BodyKey)
	assert.Contains(t, NewValidator().Bind(&dst, []byte(`{`)), BodyKey)
	assert.Contains(t, NewValidator().Bind(&dst, nil), "station")
}

func TestBindQuery(t *testing.T) {
	v := NewValidator(WithConfig(config.ValidatorConfig{RemoveAdditional: true, UseDefaults: true}))
	assert.Equal(t, CoerceArray, v.Options().CoerceTypes)

	var dst query
	errs := v.BindQuery(&dst, url.Values{"identifier": {"CS01"}, "tenantId": {"t1"}, "other": {"x"}})
	require.Nil(t, errs)
	assert.Equal(t, "CS01", dst.Identifier)

	dst = query{}
	errs = v.BindQuery(&dst, url.Values{"identifier": {"CS01"}, "callbackUrl": {"not a url"}})
	assert.Contains(t, errs, "tenantId")
	assert.Contains(t, errs, "callbackUrl")
}

func TestMessages(t *testing.T) {
	assert.Equal(t, []string{"a: x", "b: y"}, Messages(map[string]string{"b": "y", "a": "x"}))
}
