package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid room text message",
			data: `{"messageTargetType":"room","messageType":"text","receiverId":"r1","content":"hi"}`,
		},
		{
			name: "valid direct signal",
			data: `{"messageTargetType":"direct","messageType":"signal","receiverId":"u2","content":{"sdp":"..."}}`,
		},
		{
			name: "valid ping",
			data: `{"messageTargetType":"direct","messageType":"ping","receiverId":"server"}`,
		},
		{
			name:    "unknown target type",
			data:    `{"messageTargetType":"multicast","messageType":"text","receiverId":"r1"}`,
			wantErr: true,
		},
		{
			name:    "unknown message type",
			data:    `{"messageTargetType":"room","messageType":"hologram","receiverId":"r1"}`,
			wantErr: true,
		},
		{
			name:    "missing receiver",
			data:    `{"messageTargetType":"room","messageType":"text"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			data:    `this is not json`,
			wantErr: true,
		},
		{
			name:    "empty",
			data:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrBadEnvelope)
				return
			}
			require.NoError(t, err)
			assert.True(t, env.TargetType.Valid())
			assert.True(t, env.Type.Valid())
		})
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := Envelope{
		TargetType: TargetRoom,
		Type:       MessageText,
		ReceiverID: "r1",
		SenderID:   "u1",
		SenderName: "Alice",
		Content:    []byte(`"hello"`),
		SendTime:   1724800000000,
	}
	data, err := env.Encode()
	require.NoError(t, err)

	got, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env, got)
}
