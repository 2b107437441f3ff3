package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"taskline/auth"
	"taskline/contract"
	"taskline/domain"
	"taskline/domain/event"
	"taskline/errors"
	"taskline/observability"
	"taskline/services"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client is the per-connection state and event loop.
//
// userID is set at first successful authentication and never changes for
// the connection's life. conversation is the connection's current room,
// mutated only by join/leave handling. eventInFlight names the inbound
// event being processed, for error reporting.
//
// The read pump parses the frame's envelope, runs the connection gate,
// then validates the payload and runs the handler to completion before
// reading the next frame, so events of one connection are processed
// strictly in the order received.
type Client struct {
	conn          *websocket.Conn
	req           *http.Request
	sink          *Sink
	authenticator *auth.SessionAuthenticator
	service       services.IRealtimeService
	registry      contract.IRegistry
	monitoring    *observability.MonitoringManager
	log           *slog.Logger

	maxPayloadBytes int64

	// errFrames feeds error envelopes to the write pump, which is the only
	// goroutine allowed to touch the connection's write side.
	errFrames chan envelope

	userID        string
	conversation  domain.ConversationID
	eventInFlight string
}

func NewClient(conn *websocket.Conn, req *http.Request, sink *Sink,
	authenticator *auth.SessionAuthenticator, service services.IRealtimeService,
	registry contract.IRegistry, monitoring *observability.MonitoringManager,
	maxPayloadBytes int64, log *slog.Logger) *Client {
	return &Client{
		conn:            conn,
		req:             req,
		sink:            sink,
		authenticator:   authenticator,
		service:         service,
		registry:        registry,
		monitoring:      monitoring,
		maxPayloadBytes: maxPayloadBytes,
		errFrames:       make(chan envelope, 8),
		log:             log,
	}
}

// ReadPump pumps frames from the websocket through the gate chain and the
// handlers. It returns when the connection dies; the caller unbinds the
// registry entry afterwards.
func (c *Client) ReadPump(ctx context.Context) {
	c.conn.SetReadLimit(c.maxPayloadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("websocket read error", "error", err)
			}
			return
		}

		env, decodeErr := decodeEnvelope(data)
		if decodeErr != nil {
			c.writeError(decodeErr)
			continue
		}

		c.eventInFlight = env.Event

		// The connection gate runs unconditionally for every event, before
		// any payload validation. Session reload plus token verification
		// happen here; failures short-circuit with the uniform unauthorized
		// error so unauthenticated callers learn nothing about the schema.
		userID, authErr := c.authenticator.Authenticate(c.req)
		if authErr != nil {
			c.monitoring.IncrAuthFailures()
			if evtErr, ok := errors.AsEvent(authErr, env.Event); ok {
				c.writeError(evtErr)
			}
			continue
		}

		// The connection's identity is fixed at first authentication. A
		// session record swapped server-side mid-connection must not let the
		// socket change hands.
		if c.userID == "" {
			c.userID = userID
		} else if c.userID != userID {
			c.monitoring.IncrAuthFailures()
			c.log.Warn("session identity changed mid-connection, rejecting",
				"bound_user", c.userID)
			c.writeError(errors.Unauthorized(env.Event))
			continue
		}
		c.registry.Bind(c.userID, c.sink)

		inbound, decodeErr := decodeEvent(env)
		if decodeErr != nil {
			c.writeError(decodeErr)
			continue
		}

		c.handle(ctx, inbound)
	}
}

func (c *Client) handle(ctx context.Context, inbound InboundEvent) {
	switch inbound.Name {
	case EventJoinConversation:
		conversation, err := c.service.JoinConversation(ctx, c.userID, domain.ConversationID(inbound.Join.ID))
		if err != nil {
			// Membership failures also reset the connection's current
			// conversation to null as a safety measure.
			c.conversation = ""
			c.reportError(err)
			return
		}
		c.conversation = conversation.ID
		_ = c.sink.Consume(ctx, event.ConversationJoined{Conversation: conversation.ID, Status: "success"})

	case EventLeaveConversation:
		c.conversation = ""
		c.service.LeaveConversation(c.userID)

	case EventNewNotification:
		err := c.service.PostNotification(ctx, c.userID, c.conversation)
		if err != nil {
			if evtErr, ok := errors.AsEvent(err, c.eventInFlight); ok && evtErr.Name == errors.NameConversationNotFound {
				c.conversation = ""
			}
			c.reportError(err)
			return
		}
	}
}

func (c *Client) reportError(err error) {
	evtErr, ok := errors.AsEvent(err, c.eventInFlight)
	if !ok {
		c.log.Error("handler failed", "event", c.eventInFlight, "error", err)
		evtErr = errors.Internal(c.eventInFlight)
	}
	c.writeError(evtErr)
}

// writeError reports a failure to the originating connection only, never
// broadcast. The frame travels through the write pump; if the error
// buffer is full the frame is dropped, matching best-effort delivery.
func (c *Client) writeError(evtErr *errors.EventError) {
	select {
	case c.errFrames <- toWireError(evtErr):
	default:
		c.log.Debug("error frame dropped, buffer full", "event", evtErr.Event)
	}
}

// WritePump pushes sink events, error frames, and pings to the peer.
// It is the connection's single writer.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-c.sink.ConnectedUserEvent:
			c.write(toWireEvent(evt))
		case env := <-c.errFrames:
			c.write(env)
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(env envelope) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(env); err != nil {
		c.log.Debug("websocket write failed", "error", err)
	}
}

// toWireEvent maps domain events to their wire shape. The new-notification
// signal deliberately carries no payload; it only tells the client to
// refresh.
func toWireEvent(evt event.DomainEvent) envelope {
	switch e := evt.(type) {
	case event.ConversationJoined:
		data, _ := json.Marshal(struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}{ID: string(e.Conversation), Status: e.Status})
		return envelope{Event: EventJoinConversation, Data: data}
	case event.NotificationPosted:
		return envelope{Event: EventNewNotification}
	default:
		return envelope{Event: EventError}
	}
}
