// Package errors defines the event-error taxonomy surfaced to clients and
// the infrastructure sentinels shared across packages. Clients only ever
// see the {event, name, info} tuple, never internals.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrSessionNotFound   = fmt.Errorf("session not found")
	ErrNotFound          = fmt.Errorf("not found")
)

// Name tags an EventError with its wire-level kind.
type Name string

const (
	NameUnauthorized          Name = "unauthorized"
	NameInvalidData           Name = "invalid-data"
	NameDataNotAllowed        Name = "data-not-allowed"
	NameConversationNotFound  Name = "conversation-not-found"
	NameUserNotInConversation Name = "user-not-in-conversation"
	NameInternal              Name = "internal"
)

// EventError is the tagged variant matched at the transport boundary to
// produce the wire shape. Event is the inbound event that triggered it;
// Info is optional human-readable detail, safe to show a client.
type EventError struct {
	Event string
	Name  Name
	Info  string
}

func (e *EventError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("%s: %s", e.Event, e.Name)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Event, e.Name, e.Info)
}

func Unauthorized(event string) *EventError {
	return &EventError{Event: event, Name: NameUnauthorized}
}

func InvalidData(event, info string) *EventError {
	return &EventError{Event: event, Name: NameInvalidData, Info: info}
}

func DataNotAllowed(event string) *EventError {
	return &EventError{Event: event, Name: NameDataNotAllowed}
}

func ConversationNotFound(event string) *EventError {
	return &EventError{Event: event, Name: NameConversationNotFound}
}

func UserNotInConversation(event string) *EventError {
	return &EventError{Event: event, Name: NameUserNotInConversation}
}

// Internal hides collaborator failures behind a generic kind. The cause is
// for server logs only and is never serialized to the wire.
func Internal(event string) *EventError {
	return &EventError{Event: event, Name: NameInternal}
}

// AsEvent extracts an EventError, rewriting its Event field when the
// producer did not know which event was in flight.
func AsEvent(err error, event string) (*EventError, bool) {
	var evtErr *EventError
	if !stderrors.As(err, &evtErr) {
		return nil, false
	}
	if evtErr.Event == "" {
		evtErr.Event = event
	}
	return evtErr, true
}
