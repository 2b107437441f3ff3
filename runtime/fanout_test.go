package runtime

import (
	"context"
	"log/slog"
	"testing"

	"taskline/contract"
	"taskline/domain"
	"taskline/domain/event"
	"taskline/mocks"
	"taskline/observability"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newFanoutFixtures(t *testing.T) (*gomock.Controller, *mocks.MockIRegistry, *mocks.MockIDirectory, *FanoutEngine) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	directory := mocks.NewMockIDirectory(ctrl)
	engine := NewFanoutEngine(log, registry, directory, observability.NewMonitoringManager(log))
	return ctrl, registry, directory, engine
}

func TestFanoutEngine_Direct_Broadcasts_Room_Except_Sender(t *testing.T) {
	req := require.New(t)
	ctrl, registry, directory, engine := newFanoutFixtures(t)
	defer ctrl.Finish()

	conversation := domain.Conversation{
		ID:     "conv-direct",
		Kind:   domain.KindDirect,
		Direct: &domain.DirectLink{UserA: "alice", UserB: "bob"},
	}
	bobSink := mocks.NewMockEventSink(ctrl)

	// Given a direct conversation with the other member's sink in the room
	directory.EXPECT().ResolveConversation(conversation.ID).Return(conversation, nil)
	registry.EXPECT().SinksForRoom(conversation.ID, "alice").
		Return([]contract.EventSink{bobSink})

	// Then only the other member is delivered
	bobSink.EXPECT().Consume(gomock.Any(), event.NotificationPosted{Conversation: conversation.ID}).Return(nil)

	// When alice posts a notification
	req.NoError(engine.Notify(context.Background(), "alice", conversation.ID))
}

func TestFanoutEngine_Project_Delivers_Participants_And_Manager(t *testing.T) {
	req := require.New(t)
	ctrl, registry, directory, engine := newFanoutFixtures(t)
	defer ctrl.Finish()

	conversation := domain.Conversation{
		ID:      "conv-project",
		Kind:    domain.KindProject,
		Project: &domain.ProjectLink{ProjectID: "project-1"},
	}
	bobSink := mocks.NewMockEventSink(ctrl)
	managerSink := mocks.NewMockEventSink(ctrl)

	// Given bob already wrote in the conversation and marc manages the project
	directory.EXPECT().ResolveConversation(conversation.ID).Return(conversation, nil)
	directory.EXPECT().DistinctAuthors(conversation.ID, "alice").Return([]string{"bob"}, nil)
	directory.EXPECT().ProjectManager("project-1").Return("marc", nil)
	registry.EXPECT().Sink("bob").Return(bobSink, true)
	registry.EXPECT().Sink("marc").Return(managerSink, true)

	// Then both participant and manager are delivered once
	bobSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil)
	managerSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil)

	// When alice posts a notification
	req.NoError(engine.Notify(context.Background(), "alice", conversation.ID))
}

func TestFanoutEngine_Project_Manager_Already_Participant(t *testing.T) {
	req := require.New(t)
	ctrl, registry, directory, engine := newFanoutFixtures(t)
	defer ctrl.Finish()

	conversation := domain.Conversation{
		ID:      "conv-project",
		Kind:    domain.KindProject,
		Project: &domain.ProjectLink{ProjectID: "project-1"},
	}
	managerSink := mocks.NewMockEventSink(ctrl)

	// Given the manager already wrote in the conversation
	directory.EXPECT().ResolveConversation(conversation.ID).Return(conversation, nil)
	directory.EXPECT().DistinctAuthors(conversation.ID, "alice").Return([]string{"marc"}, nil)
	directory.EXPECT().ProjectManager("project-1").Return("marc", nil)
	registry.EXPECT().Sink("marc").Return(managerSink, true)

	// Then the manager is delivered exactly once, as participant
	managerSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// When alice posts a notification
	req.NoError(engine.Notify(context.Background(), "alice", conversation.ID))
}

func TestFanoutEngine_Project_Sender_Is_Never_Delivered(t *testing.T) {
	req := require.New(t)
	ctrl, _, directory, engine := newFanoutFixtures(t)
	defer ctrl.Finish()

	conversation := domain.Conversation{
		ID:      "conv-project",
		Kind:    domain.KindProject,
		Project: &domain.ProjectLink{ProjectID: "project-1"},
	}

	// Given the sender manages the project and nobody else ever wrote
	directory.EXPECT().ResolveConversation(conversation.ID).Return(conversation, nil)
	directory.EXPECT().DistinctAuthors(conversation.ID, "marc").Return(nil, nil)
	directory.EXPECT().ProjectManager("project-1").Return("marc", nil)

	// When the manager posts a notification
	// Then no registry lookup happens at all
	req.NoError(engine.Notify(context.Background(), "marc", conversation.ID))
}

func TestFanoutEngine_Task_Assignees_Delivered_Once(t *testing.T) {
	req := require.New(t)
	ctrl, registry, directory, engine := newFanoutFixtures(t)
	defer ctrl.Finish()

	conversation := domain.Conversation{
		ID:   "conv-task",
		Kind: domain.KindTask,
		Task: &domain.TaskLink{TaskID: "task-1"},
	}
	bobSink := mocks.NewMockEventSink(ctrl)
	claraSink := mocks.NewMockEventSink(ctrl)

	// Given bob is both a prior author and an assignee, listed twice
	directory.EXPECT().ResolveConversation(conversation.ID).Return(conversation, nil)
	directory.EXPECT().DistinctAuthors(conversation.ID, "alice").Return([]string{"bob"}, nil)
	directory.EXPECT().TaskAssignees("task-1").Return([]string{"bob", "clara", "clara"}, nil)
	registry.EXPECT().Sink("bob").Return(bobSink, true)
	registry.EXPECT().Sink("clara").Return(claraSink, true)

	// Then each recipient is delivered exactly once
	bobSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	claraSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// When alice posts a notification
	req.NoError(engine.Notify(context.Background(), "alice", conversation.ID))
}

func TestFanoutEngine_Offline_Recipient_Is_Skipped(t *testing.T) {
	req := require.New(t)
	ctrl, registry, directory, engine := newFanoutFixtures(t)
	defer ctrl.Finish()

	conversation := domain.Conversation{
		ID:   "conv-task",
		Kind: domain.KindTask,
		Task: &domain.TaskLink{TaskID: "task-1"},
	}

	// Given the only eligible recipient has no live connection
	directory.EXPECT().ResolveConversation(conversation.ID).Return(conversation, nil)
	directory.EXPECT().DistinctAuthors(conversation.ID, "alice").Return([]string{"bob"}, nil)
	directory.EXPECT().TaskAssignees("task-1").Return(nil, nil)
	registry.EXPECT().Sink("bob").Return(nil, false)

	// When alice posts a notification
	// Then the offline user is skipped without error
	req.NoError(engine.Notify(context.Background(), "alice", conversation.ID))
}
