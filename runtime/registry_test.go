package runtime

import (
	"context"
	"testing"

	"taskline/domain"
	"taskline/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	id int
}

func (s *stubSink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Bind_One_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	sink := &stubSink{}

	// Given no user is connected
	_, online := registry.Sink(userID)
	req.False(online)

	// When the user binds a connection
	registry.Bind(userID, sink)

	// Then the sink resolves and no room is assigned yet
	got, online := registry.Sink(userID)
	req.True(online)
	req.Same(sink, got)

	_, joined := registry.Room(userID)
	req.False(joined)
}

func TestRegistry_Bind_Same_Sink_Keeps_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	conversation := domain.ConversationID("conv-1")
	sink := &stubSink{}

	// Given a bound user joined a room
	registry.Bind(userID, sink)
	registry.JoinRoom(userID, conversation)

	// When the same connection binds again
	registry.Bind(userID, sink)

	// Then the room assignment survives
	room, joined := registry.Room(userID)
	req.True(joined)
	req.Equal(conversation, room)
}

func TestRegistry_Bind_New_Sink_Replaces_Previous(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	conversation := domain.ConversationID("conv-1")
	first := &stubSink{id: 1}
	second := &stubSink{id: 2}

	// Given a bound user joined a room
	registry.Bind(userID, first)
	registry.JoinRoom(userID, conversation)

	// When a second login binds a new connection
	registry.Bind(userID, second)

	// Then the new sink wins and the stale room membership is gone
	got, online := registry.Sink(userID)
	req.True(online)
	req.Same(second, got)

	_, joined := registry.Room(userID)
	req.False(joined)
	req.Nil(registry.SinksForRoom(conversation, ""))
}

func TestRegistry_Unbind_Matching_Sink(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	conversation := domain.ConversationID("conv-1")
	sink := &stubSink{}

	// Given a bound user joined a room
	registry.Bind(userID, sink)
	registry.JoinRoom(userID, conversation)

	// When the connection unbinds
	registry.Unbind(userID, sink)

	// Then no session or room membership is left
	_, online := registry.Sink(userID)
	req.False(online)
	req.Nil(registry.SinksForRoom(conversation, ""))
}

func TestRegistry_Unbind_Stale_Sink_Keeps_New_Login(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	first := &stubSink{id: 1}
	second := &stubSink{id: 2}

	// Given a re-login overwrote the first connection
	registry.Bind(userID, first)
	registry.Bind(userID, second)

	// When the old connection finally disconnects
	registry.Unbind(userID, first)

	// Then the newer connection survives
	got, online := registry.Sink(userID)
	req.True(online)
	req.Same(second, got)
}

func TestRegistry_JoinRoom_Without_Bind_Is_Ignored(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	conversation := domain.ConversationID("conv-1")

	// When an unbound user tries to join a room
	registry.JoinRoom(userID, conversation)

	// Then nothing is recorded
	_, joined := registry.Room(userID)
	req.False(joined)
	req.Nil(registry.SinksForRoom(conversation, ""))
}

func TestRegistry_JoinRoom_Moves_Between_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	first := domain.ConversationID("conv-1")
	second := domain.ConversationID("conv-2")
	sink := &stubSink{}

	// Given a bound user in a first room
	registry.Bind(userID, sink)
	registry.JoinRoom(userID, first)

	// When the user joins another room
	registry.JoinRoom(userID, second)

	// Then only the second room tracks the user
	room, joined := registry.Room(userID)
	req.True(joined)
	req.Equal(second, room)

	req.Nil(registry.SinksForRoom(first, ""))
	req.Len(registry.SinksForRoom(second, ""), 1)
}

func TestRegistry_LeaveRoom_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	conversation := domain.ConversationID("conv-1")
	sink := &stubSink{}

	// Given a bound user joined a room
	registry.Bind(userID, sink)
	registry.JoinRoom(userID, conversation)

	// When the user leaves twice
	registry.LeaveRoom(userID)
	registry.LeaveRoom(userID)

	// Then the connection stays bound with no room
	_, online := registry.Sink(userID)
	req.True(online)

	_, joined := registry.Room(userID)
	req.False(joined)
	req.Nil(registry.SinksForRoom(conversation, ""))
}

func TestRegistry_SinksForRoom_Excludes_Sender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	senderID := uuid.NewString()
	otherID := uuid.NewString()
	conversation := domain.ConversationID("conv-1")
	senderSink := &stubSink{id: 1}
	otherSink := &stubSink{id: 2}

	// Given two users joined the same room
	registry.Bind(senderID, senderSink)
	registry.Bind(otherID, otherSink)
	registry.JoinRoom(senderID, conversation)
	registry.JoinRoom(otherID, conversation)

	// When resolving the room's sinks minus the sender
	sinks := registry.SinksForRoom(conversation, senderID)

	// Then only the other member's sink remains
	req.Len(sinks, 1)
	req.Same(otherSink, sinks[0].(*stubSink))
}
