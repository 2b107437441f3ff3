package gateway

import (
	"encoding/json"

	"taskline/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Inbound and outbound event names. The inbound set is closed: anything
// else is rejected at the boundary before reaching a handler.
const (
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventNewNotification   = "new-notification"
	EventError             = "error"
)

// envelope is the wire framing for both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinConversationPayload struct {
	ID string `json:"id" validate:"required"`
}

// InboundEvent is the decoded, validated form of a client frame: a tag
// plus the payload of the one variant that carries data.
type InboundEvent struct {
	Name string
	Join *JoinConversationPayload
}

// hasPayload reports whether a frame carried any data at all. An explicit
// JSON null counts as absent.
func hasPayload(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// decodeEnvelope parses the outer frame only, enough to learn the event
// name. Payload validation waits until the connection gate has passed, so
// an unauthenticated caller never learns anything about the schema.
func decodeEnvelope(data []byte) (envelope, *errors.EventError) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, errors.InvalidData("", "malformed frame")
	}
	return env, nil
}

// decodeEvent validates the variant payload of an already-gated frame.
// Validation failures return an EventError already tagged with the
// triggering event name.
func decodeEvent(env envelope) (InboundEvent, *errors.EventError) {
	switch env.Event {
	case EventJoinConversation:
		var payload JoinConversationPayload
		if !hasPayload(env.Data) {
			return InboundEvent{}, errors.InvalidData(env.Event, "missing payload")
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return InboundEvent{}, errors.InvalidData(env.Event, "malformed payload")
		}
		if err := validate.Struct(payload); err != nil {
			return InboundEvent{}, errors.InvalidData(env.Event, "conversation id is required")
		}
		return InboundEvent{Name: env.Event, Join: &payload}, nil

	case EventLeaveConversation:
		return InboundEvent{Name: env.Event}, nil

	case EventNewNotification:
		// This event must be argument-less.
		if hasPayload(env.Data) {
			return InboundEvent{}, errors.DataNotAllowed(env.Event)
		}
		return InboundEvent{Name: env.Event}, nil

	default:
		return InboundEvent{}, errors.InvalidData(env.Event, "unknown event")
	}
}

// wireError is the error shape pushed to the offending connection only.
type wireError struct {
	Event string `json:"event"`
	Name  string `json:"name"`
	Info  string `json:"info,omitempty"`
}

func toWireError(evtErr *errors.EventError) envelope {
	data, _ := json.Marshal(wireError{
		Event: evtErr.Event,
		Name:  string(evtErr.Name),
		Info:  evtErr.Info,
	})
	return envelope{Event: EventError, Data: data}
}
