package ocpp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventGroupFromString(t *testing.T) {
	g, ok := EventGroupFromString(" EVDriver ")
	require.True(t, ok)
	assert.Equal(t, EVDriver, g)

	_, ok = EventGroupFromString("billing")
	assert.False(t, ok)
}

func TestPathsAreLowerCased(t *testing.T) {
	assert.Equal(t, "statusnotification", StatusNotification.Path())
	assert.Equal(t, "transaction", TransactionNamespace.Path())
}

func TestSubject(t *testing.T) {
	m := Message{Origin: OriginChargingStation, State: StateRequest, Action: Heartbeat}
	assert.Equal(t, "ocpp.cs.request.Heartbeat", m.Subject("ocpp"))
	assert.Equal(t, "csms.*.*", Subject("", OriginCSMS, "", ""))
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Frame
	}{
		{
			name: "call",
			raw:  `[2,"19223201","BootNotification",{"reason":"PowerUp"}]`,
			want: NewCall("19223201", BootNotification, json.RawMessage(`{"reason":"PowerUp"}`)),
		},
		{
			name: "result",
			raw:  `[3,"19223201",{"status":"Accepted"}]`,
			want: NewCallResult("19223201", json.RawMessage(`{"status":"Accepted"}`)),
		},
		{
			name: "error",
			raw:  `[4,"19223201","NotImplemented","unknown action",{}]`,
			want: Frame{Type: CallErrorType, ID: "19223201", Error: &CallError{Code: NotImplemented, Description: "unknown action", Details: json.RawMessage(`{}`)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Frame
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.Equal(t, tt.want, got)

			encoded, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.raw, string(encoded))
		})
	}
}

func TestFrameRejectsMalformed(t *testing.T) {
	var f Frame
	assert.ErrorIs(t, json.Unmarshal([]byte(`[2,"1"]`), &f), ErrMalformedFrame)
	assert.ErrorIs(t, json.Unmarshal([]byte(`[9,"1",{}]`), &f), ErrUnknownFrameType)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"a":1}`), &f), ErrMalformedFrame)
}
