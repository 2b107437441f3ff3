package event

import (
	"taskline/domain"
)

// DomainEvent is anything the gateway pushes to a connected client.
type DomainEvent interface {
	ConversationID() domain.ConversationID
}

// ConversationJoined confirms a successful room move to the caller.
type ConversationJoined struct {
	Conversation domain.ConversationID
	Status       string
}

func (e ConversationJoined) ConversationID() domain.ConversationID {
	return e.Conversation
}

// NotificationPosted is the lightweight "new message" signal delivered to
// the computed audience. It carries no message content.
type NotificationPosted struct {
	Conversation domain.ConversationID
}

func (e NotificationPosted) ConversationID() domain.ConversationID {
	return e.Conversation
}
