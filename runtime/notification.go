package runtime

import (
	"taskline/domain"
)

// NotificationRequest is the unit of work handed to the notifier worker.
// It is fire-and-forget: by the time the worker picks it up, the sending
// connection has already moved on.
type NotificationRequest struct {
	SenderID     string
	Conversation domain.ConversationID
}
