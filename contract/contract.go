//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"taskline/domain"
	"taskline/domain/event"
)

// EventSink is one client's delivery channel. Consume must not block the
// caller beyond ctx: fan-out is best-effort and a slow consumer drops.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the process-wide map from user id to online connection and
// current room. One entry per user: a second login overwrites the first.
type IRegistry interface {
	Bind(userID string, sink EventSink)
	Unbind(userID string, sink EventSink)
	Sink(userID string) (EventSink, bool)
	JoinRoom(userID string, conversation domain.ConversationID)
	LeaveRoom(userID string)
	Room(userID string) (domain.ConversationID, bool)
	SinksForRoom(conversation domain.ConversationID, exceptUserID string) []EventSink
}

// IDirectory is the read-only collaborator surface owned by the excluded
// persistence layer. The gateway only resolves, never writes.
type IDirectory interface {
	ResolveConversation(id domain.ConversationID) (domain.Conversation, error)
	ProjectManager(projectID string) (string, error)
	TaskAssignees(taskID string) ([]string, error)
	DistinctAuthors(conversation domain.ConversationID, excludeUserID string) ([]string, error)
	UserExists(userID string) (bool, error)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
