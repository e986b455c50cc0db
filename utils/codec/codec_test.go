package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Action  string    `json:"action" msgpack:"action"`
	At      time.Time `json:"at" msgpack:"at"`
	Payload []byte    `json:"payload" msgpack:"payload"`
}

func TestEncodeDecode(t *testing.T) {
	in := envelope{Action: "Heartbeat", At: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), Payload: []byte(`{}`)}
	for _, c := range []struct {
		name  string
		codec string
	}{{"json", "json"}, {"msgpack", "msgpack"}, {"default", ""}} {
		t.Run(c.name, func(t *testing.T) {
			codecType, ok := ParseCodec(c.codec)
			require.True(t, ok)

			data, err := Encode(in, codecType)
			require.NoError(t, err)
			out, err := Decode[envelope](data, codecType)
			require.NoError(t, err)
			assert.Equal(t, in.Action, out.Action)
			assert.True(t, in.At.Equal(out.At))
			assert.Equal(t, in.Payload, out.Payload)
		})
	}
}

func TestUnsupportedCodec(t *testing.T) {
	_, ok := ParseCodec("yaml")
	assert.False(t, ok)

	_, err := Encode(1, "yaml")
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
	_, err = Decode[int]([]byte("1"), "yaml")
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
	assert.Equal(t, "application/msgpack", ContentType(MessagePack))
}
