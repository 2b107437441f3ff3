// Package domain contains core concepts of the notification gateway.
// This file defines Message events and related rules.
// Messages are immutable and append-only from the gateway's perspective.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable conversation entry. The gateway only
// queries messages to discover prior authors; it never mutates them.
type Message struct {
	ID           uuid.UUID // unique identifier
	Conversation ConversationID
	AuthorID     string
	Content      string
	CreatedAt    time.Time
}
