package gateway

import (
	"encoding/json"
	"testing"

	"taskline/errors"

	"github.com/stretchr/testify/require"
)

// decodeFrame runs both decode stages back to back, the way ReadPump does
// for an authenticated connection.
func decodeFrame(frame string) (InboundEvent, *errors.EventError) {
	env, evtErr := decodeEnvelope([]byte(frame))
	if evtErr != nil {
		return InboundEvent{}, evtErr
	}
	return decodeEvent(env)
}

func TestDecodeEvent_Join_Valid(t *testing.T) {
	req := require.New(t)

	decoded, evtErr := decodeFrame(`{"event":"join-conversation","data":{"id":"conv-1"}}`)

	req.Nil(evtErr)
	req.Equal(EventJoinConversation, decoded.Name)
	req.NotNil(decoded.Join)
	req.Equal("conv-1", decoded.Join.ID)
}

func TestDecodeEvent_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		frame    string
		wantName errors.Name
	}{
		{"malformed frame", `not json`, errors.NameInvalidData},
		{"unknown event", `{"event":"shutdown-server"}`, errors.NameInvalidData},
		{"join without payload", `{"event":"join-conversation"}`, errors.NameInvalidData},
		{"join with null payload", `{"event":"join-conversation","data":null}`, errors.NameInvalidData},
		{"join with blank id", `{"event":"join-conversation","data":{"id":""}}`, errors.NameInvalidData},
		{"join with malformed payload", `{"event":"join-conversation","data":42}`, errors.NameInvalidData},
		{"notification with payload", `{"event":"new-notification","data":{"id":"conv-1"}}`, errors.NameDataNotAllowed},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			_, evtErr := decodeFrame(tt.frame)

			req.NotNil(evtErr)
			req.Equal(tt.wantName, evtErr.Name)
		})
	}
}

func TestDecodeEvent_Leave_Ignores_Payload(t *testing.T) {
	req := require.New(t)

	// Leave carries no meaning in data; anything there is ignored
	decoded, evtErr := decodeFrame(`{"event":"leave-conversation","data":{"noise":true}}`)

	req.Nil(evtErr)
	req.Equal(EventLeaveConversation, decoded.Name)
}

func TestDecodeEvent_Notification_Null_Payload(t *testing.T) {
	req := require.New(t)

	// Explicit null counts as absent
	decoded, evtErr := decodeFrame(`{"event":"new-notification","data":null}`)

	req.Nil(evtErr)
	req.Equal(EventNewNotification, decoded.Name)
}

func TestToWireError_Shape(t *testing.T) {
	req := require.New(t)

	env := toWireError(errors.InvalidData("join-conversation", "conversation id is required"))
	req.Equal(EventError, env.Event)

	var wire wireError
	req.NoError(json.Unmarshal(env.Data, &wire))
	req.Equal("join-conversation", wire.Event)
	req.Equal("invalid-data", wire.Name)
	req.Equal("conversation id is required", wire.Info)
}
