//go:generate go run go.uber.org/mock/mockgen -source=realtime_service.go -destination=../mocks/mock_realtime_service.go -package=mocks
package services

import (
	"context"
	"log/slog"

	"taskline/contract"
	"taskline/domain"
	"taskline/errors"
	"taskline/observability"
	"taskline/runtime"
)

type IRealtimeService interface {
	JoinConversation(ctx context.Context, userID string, conversationID domain.ConversationID) (domain.Conversation, error)
	LeaveConversation(userID string)
	PostNotification(ctx context.Context, userID string, current domain.ConversationID) error
}

// RealtimeService enforces conversation membership and room invariants on
// top of the registry, and feeds the fan-out queue. Event errors come back
// untagged; the transport fills in the triggering event name.
type RealtimeService struct {
	log        *slog.Logger
	registry   contract.IRegistry
	directory  contract.IDirectory
	requests   chan runtime.NotificationRequest
	monitoring *observability.MonitoringManager
}

func NewRealtimeService(log *slog.Logger, registry contract.IRegistry,
	directory contract.IDirectory, requests chan runtime.NotificationRequest,
	monitoring *observability.MonitoringManager) *RealtimeService {
	return &RealtimeService{
		log:        log,
		registry:   registry,
		directory:  directory,
		requests:   requests,
		monitoring: monitoring,
	}
}

// JoinConversation validates a join request and moves the user into the
// conversation's room. Direct conversations only admit their two
// participants; project and task conversations admit any authenticated
// user, their access control lives in the HTTP layer.
func (s *RealtimeService) JoinConversation(_ context.Context, userID string, conversationID domain.ConversationID) (domain.Conversation, error) {
	conversation, err := s.directory.ResolveConversation(conversationID)
	if err == errors.ErrNotFound {
		return domain.Conversation{}, errors.ConversationNotFound("")
	}
	if err != nil {
		s.log.Error("conversation lookup failed", "conversation", conversationID, "error", err)
		return domain.Conversation{}, errors.Internal("")
	}

	if conversation.IsDirect() && !conversation.Direct.Includes(userID) {
		return domain.Conversation{}, errors.UserNotInConversation("")
	}

	// Joining implicitly leaves whatever room the registry tracks for this
	// user: at most one active room per connection.
	s.registry.JoinRoom(userID, conversation.ID)
	s.monitoring.IncrRoomJoins()
	return conversation, nil
}

// LeaveConversation is idempotent: leaving with no room joined is a no-op.
func (s *RealtimeService) LeaveConversation(userID string) {
	s.registry.LeaveRoom(userID)
}

// PostNotification guards a new-notification signal and enqueues the
// fan-out. current is the connection's stored conversation id; the
// payload-must-be-absent check happens at the transport boundary before
// this is called.
//
// When the stored conversation no longer resolves, the user's room
// assignment is cleared as a safety reset before the error returns.
func (s *RealtimeService) PostNotification(_ context.Context, userID string, current domain.ConversationID) error {
	if current == "" {
		return errors.UserNotInConversation("")
	}

	_, err := s.directory.ResolveConversation(current)
	if err == errors.ErrNotFound {
		s.registry.LeaveRoom(userID)
		return errors.ConversationNotFound("")
	}
	if err != nil {
		s.log.Error("conversation lookup failed", "conversation", current, "error", err)
		return errors.Internal("")
	}

	select {
	case s.requests <- runtime.NotificationRequest{SenderID: userID, Conversation: current}:
		s.monitoring.IncrNotificationsFanned()
	default:
		s.log.Warn("notification queue full, dropping request",
			"conversation", current, "sender", userID)
	}
	return nil
}
