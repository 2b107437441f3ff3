package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"taskline/auth"
	"taskline/domain"
	"taskline/errors"
	"taskline/mocks"
	"taskline/observability"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testCookieName = "taskline_sid"

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
}

func (s *memorySessions) Load(sessionID string) (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return auth.Session{}, errors.ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessions) put(session auth.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

type gatewayFixture struct {
	service   *mocks.MockIRealtimeService
	registry  *mocks.MockIRegistry
	directory *mocks.MockIDirectory
	sessions  *memorySessions
	secret    []byte
	addr      string
}

// newGatewayFixture serves the real websocket handler over httptest, with
// the service, registry and directory mocked behind it. The gomock
// controller must be created by the caller first, so its verification
// cleanup runs after the test server has drained its connections.
func newGatewayFixture(t *testing.T, ctrl *gomock.Controller) *gatewayFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	f := &gatewayFixture{
		service:   mocks.NewMockIRealtimeService(ctrl),
		registry:  mocks.NewMockIRegistry(ctrl),
		directory: mocks.NewMockIDirectory(ctrl),
		sessions:  &memorySessions{sessions: make(map[string]auth.Session)},
		secret:    []byte("test-secret"),
	}

	authenticator := auth.NewSessionAuthenticator(f.sessions, f.directory,
		f.secret, testCookieName, log)
	server := NewServer(log, "localhost", 0, nil, 8, 1024,
		authenticator, f.service, f.registry, observability.NewMonitoringManager(log))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.handleWebsocket(r.Context(), w, r)
	}))
	t.Cleanup(ts.Close)
	f.addr = strings.TrimPrefix(ts.URL, "http://")
	return f
}

// seedSession stores a session whose token identifies userID.
func (f *gatewayFixture) seedSession(t *testing.T, sessionID, userID string) {
	t.Helper()
	token, err := auth.GenerateToken(userID, []string{"user"}, time.Hour, f.secret)
	require.NoError(t, err)
	f.sessions.put(auth.Session{ID: sessionID, Token: token})
}

func dialGateway(t *testing.T, addr, sessionID string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Add("Cookie", testCookieName+"="+sessionID)
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func readWireError(t *testing.T, conn *websocket.Conn) wireError {
	t.Helper()
	env := readFrame(t, conn)
	require.Equal(t, EventError, env.Event)
	var wire wireError
	require.NoError(t, json.Unmarshal(env.Data, &wire))
	return wire
}

func sendRaw(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func TestGateway_Unauthenticated_Events_Yield_Uniform_Unauthorized(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fixture := newGatewayFixture(t, ctrl)

	// Given no session exists for the presented cookie, and no registry or
	// service expectations: the gate must short-circuit before any of them
	conn := dialGateway(t, fixture.addr, "sid-ghost")

	frames := []struct {
		name  string
		frame string
	}{
		{"valid join", `{"event":"join-conversation","data":{"id":"conv-1"}}`},
		{"join without payload", `{"event":"join-conversation"}`},
		{"notification with payload", `{"event":"new-notification","data":{"id":"conv-1"}}`},
		{"unknown event", `{"event":"shutdown-server"}`},
	}

	for _, tt := range frames {
		// When an unauthenticated connection sends any event, well-formed
		// or not
		sendRaw(t, conn, tt.frame)

		// Then the answer is always the bare unauthorized error, leaking
		// nothing about payload schemas
		wire := readWireError(t, conn)
		req.Equal(string(errors.NameUnauthorized), wire.Name, tt.name)
		req.Empty(wire.Info, tt.name)
	}
}

func TestGateway_Join_Confirmation_Roundtrip(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fixture := newGatewayFixture(t, ctrl)

	fixture.seedSession(t, "sid-alice", "alice")
	fixture.directory.EXPECT().UserExists("alice").Return(true, nil).AnyTimes()
	fixture.registry.EXPECT().Bind("alice", gomock.Any()).AnyTimes()
	fixture.registry.EXPECT().Unbind("alice", gomock.Any()).AnyTimes()

	conversation := domain.Conversation{
		ID:      "conv-1",
		Kind:    domain.KindProject,
		Project: &domain.ProjectLink{ProjectID: "project-1"},
	}
	fixture.service.EXPECT().
		JoinConversation(gomock.Any(), "alice", domain.ConversationID("conv-1")).
		Return(conversation, nil)

	// When an authenticated connection joins
	conn := dialGateway(t, fixture.addr, "sid-alice")
	sendRaw(t, conn, `{"event":"join-conversation","data":{"id":"conv-1"}}`)

	// Then the gateway confirms with the joined id and a success status
	env := readFrame(t, conn)
	req.Equal(EventJoinConversation, env.Event)
	var confirmation struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	req.NoError(json.Unmarshal(env.Data, &confirmation))
	req.Equal("conv-1", confirmation.ID)
	req.Equal("success", confirmation.Status)

	// And payload validation still bites once the gate has passed
	sendRaw(t, conn, `{"event":"join-conversation"}`)
	wire := readWireError(t, conn)
	req.Equal(string(errors.NameInvalidData), wire.Name)
}

func TestGateway_Stale_Conversation_Resets_Room(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fixture := newGatewayFixture(t, ctrl)

	fixture.seedSession(t, "sid-alice", "alice")
	fixture.directory.EXPECT().UserExists("alice").Return(true, nil).AnyTimes()
	fixture.registry.EXPECT().Bind("alice", gomock.Any()).AnyTimes()
	fixture.registry.EXPECT().Unbind("alice", gomock.Any()).AnyTimes()

	conversation := domain.Conversation{
		ID:      "conv-1",
		Kind:    domain.KindProject,
		Project: &domain.ProjectLink{ProjectID: "project-1"},
	}
	fixture.service.EXPECT().
		JoinConversation(gomock.Any(), "alice", domain.ConversationID("conv-1")).
		Return(conversation, nil)

	// Given a joined conversation that is then deleted server-side
	fixture.service.EXPECT().
		PostNotification(gomock.Any(), "alice", domain.ConversationID("conv-1")).
		Return(errors.ConversationNotFound(""))
	// The connection's room must be cleared by the failure: the next post
	// arrives with no conversation at all
	fixture.service.EXPECT().
		PostNotification(gomock.Any(), "alice", domain.ConversationID("")).
		Return(errors.UserNotInConversation(""))

	conn := dialGateway(t, fixture.addr, "sid-alice")
	sendRaw(t, conn, `{"event":"join-conversation","data":{"id":"conv-1"}}`)
	req.Equal(EventJoinConversation, readFrame(t, conn).Event)

	// When posting against the vanished conversation
	sendRaw(t, conn, `{"event":"new-notification"}`)
	req.Equal(string(errors.NameConversationNotFound), readWireError(t, conn).Name)

	// Then the follow-up post is treated as roomless
	sendRaw(t, conn, `{"event":"new-notification"}`)
	req.Equal(string(errors.NameUserNotInConversation), readWireError(t, conn).Name)
}

func TestGateway_Identity_Fixed_After_First_Authentication(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fixture := newGatewayFixture(t, ctrl)

	fixture.seedSession(t, "sid-shared", "alice")
	fixture.directory.EXPECT().UserExists("alice").Return(true, nil)
	fixture.directory.EXPECT().UserExists("bob").Return(true, nil)
	fixture.registry.EXPECT().Bind("alice", gomock.Any()).Times(1)
	fixture.registry.EXPECT().Unbind("alice", gomock.Any()).AnyTimes()

	conversation := domain.Conversation{
		ID:      "conv-1",
		Kind:    domain.KindProject,
		Project: &domain.ProjectLink{ProjectID: "project-1"},
	}
	fixture.service.EXPECT().
		JoinConversation(gomock.Any(), "alice", domain.ConversationID("conv-1")).
		Return(conversation, nil)

	// Given a connection authenticated as alice
	conn := dialGateway(t, fixture.addr, "sid-shared")
	sendRaw(t, conn, `{"event":"join-conversation","data":{"id":"conv-1"}}`)
	req.Equal(EventJoinConversation, readFrame(t, conn).Event)

	// When the session record is swapped to another user mid-connection
	fixture.seedSession(t, "sid-shared", "bob")
	sendRaw(t, conn, `{"event":"join-conversation","data":{"id":"conv-1"}}`)

	// Then the connection is not allowed to change hands: no bind for bob,
	// just the uniform unauthorized error
	req.Equal(string(errors.NameUnauthorized), readWireError(t, conn).Name)
}
