package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"taskline/contract"
	"taskline/domain"
	"taskline/domain/event"
	"taskline/observability"

	"github.com/samber/lo"
)

// FanoutEngine computes the audience of a notification and delivers it to
// every online, eligible user.
//
// It provides best-effort delivery with no guarantees regarding ordering,
// durability, or retries. A user with no registry entry simply receives
// nothing; that is not an error condition. Nothing is persisted: an
// offline recipient misses the signal entirely.
type FanoutEngine struct {
	log        *slog.Logger
	registry   contract.IRegistry
	directory  contract.IDirectory
	monitoring *observability.MonitoringManager
}

func NewFanoutEngine(log *slog.Logger, registry contract.IRegistry,
	directory contract.IDirectory, monitoring *observability.MonitoringManager) *FanoutEngine {
	return &FanoutEngine{
		log:        log,
		registry:   registry,
		directory:  directory,
		monitoring: monitoring,
	}
}

// Notify re-fetches the conversation with its link record and fans the
// notification out.
//
// Direct conversations broadcast to the room: everyone joined except the
// sender, no database fan-out beyond the initial lookup.
//
// Project and task conversations ignore the room. The audience is the
// distinct set of prior message authors (participants), plus the project
// manager or the task assignees when they are not already participants.
// The sender never receives their own notification. Each recipient is
// delivered at most once.
func (e *FanoutEngine) Notify(ctx context.Context, senderID string, conversationID domain.ConversationID) error {
	conversation, err := e.directory.ResolveConversation(conversationID)
	if err != nil {
		return fmt.Errorf("conversation lookup failed: %w", err)
	}

	notification := event.NotificationPosted{Conversation: conversation.ID}

	if conversation.IsDirect() {
		for _, sink := range e.registry.SinksForRoom(conversation.ID, senderID) {
			e.deliver(ctx, sink, notification)
		}
		return nil
	}

	participants, err := e.directory.DistinctAuthors(conversation.ID, senderID)
	if err != nil {
		return fmt.Errorf("participant lookup failed: %w", err)
	}
	for _, userID := range participants {
		e.deliverTo(ctx, userID, notification)
	}

	// The sender joins the exclusion set so the role-based additions below
	// can never route a notification back to them.
	counted := append(participants, senderID)

	if conversation.Project != nil {
		manager, err := e.directory.ProjectManager(conversation.Project.ProjectID)
		switch {
		case err != nil:
			e.log.Warn("project manager lookup failed, skipping role delivery",
				"conversation", conversation.ID, "error", err)
		case manager != "" && !lo.Contains(counted, manager):
			e.deliverTo(ctx, manager, notification)
		}
	}

	if conversation.Task != nil {
		assignees, err := e.directory.TaskAssignees(conversation.Task.TaskID)
		if err != nil {
			e.log.Warn("task assignee lookup failed, skipping role delivery",
				"conversation", conversation.ID, "error", err)
			return nil
		}
		for _, assignee := range lo.Uniq(assignees) {
			if !lo.Contains(counted, assignee) {
				e.deliverTo(ctx, assignee, notification)
			}
		}
	}

	return nil
}

// deliverTo delivers directly via the registry handle, not the room.
// Offline users are silently skipped.
func (e *FanoutEngine) deliverTo(ctx context.Context, userID string, notification event.NotificationPosted) {
	sink, online := e.registry.Sink(userID)
	if !online {
		return
	}
	e.deliver(ctx, sink, notification)
}

func (e *FanoutEngine) deliver(ctx context.Context, sink contract.EventSink, notification event.NotificationPosted) {
	if err := sink.Consume(ctx, notification); err != nil {
		e.monitoring.IncrDeliveriesDropped()
		e.log.Debug("notification dropped", "conversation", notification.Conversation, "error", err)
		return
	}
	e.monitoring.IncrDeliveries()
}
