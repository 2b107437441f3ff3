// Package domain contains core concepts of the notification gateway.
// This file defines Conversation entities and their link records.
// No runtime, network, or UI logic should be added here.
package domain

// ConversationID is the opaque identifier of a conversation, owned by the
// persistence layer. The gateway never interprets its content.
type ConversationID string

type ConversationKind string

const (
	KindDirect  ConversationKind = "direct"
	KindProject ConversationKind = "project"
	KindTask    ConversationKind = "task"
)

// DirectLink attaches a direct conversation to its two participants.
// The pair is order-insensitive for membership checks.
type DirectLink struct {
	UserA string
	UserB string
}

// Includes reports whether userID is one of the two participants.
func (l DirectLink) Includes(userID string) bool {
	return userID == l.UserA || userID == l.UserB
}

// ProjectLink attaches a conversation to a project.
type ProjectLink struct {
	ProjectID string
}

// TaskLink attaches a conversation to a task.
type TaskLink struct {
	TaskID string
}

// Conversation is an addressable channel for messages.
// Invariant: exactly one link record is populated, matching Kind.
type Conversation struct {
	ID      ConversationID
	Kind    ConversationKind
	Direct  *DirectLink
	Project *ProjectLink
	Task    *TaskLink
}

// IsDirect reports whether the conversation carries a DirectLink.
// Fan-out branches on this: direct conversations broadcast to the room,
// everything else is computed from history and roles.
func (c Conversation) IsDirect() bool {
	return c.Direct != nil
}
