// Package client is a minimal Go client for the taskline gateway, used by
// the smoke CLI and the e2e scenarios. Browsers use the JS client; this
// one exists so the backend can be exercised without one.
package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const dialTimeout = 10 * time.Second

// Event is one decoded server frame.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WireError is the payload of an "error" frame.
type WireError struct {
	Event string `json:"event"`
	Name  string `json:"name"`
	Info  string `json:"info,omitempty"`
}

type Client struct {
	conn *websocket.Conn
}

// Dial connects to the gateway's /ws endpoint, presenting the session
// cookie the server authenticates against.
func Dial(addr, cookieName, sessionID string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}

	header := http.Header{}
	header.Add("Cookie", fmt.Sprintf("%s=%s", cookieName, sessionID))

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("could not connect to gateway at %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// JoinConversation requests to join a conversation room.
func (c *Client) JoinConversation(conversationID string) error {
	return c.send("join-conversation", map[string]string{"id": conversationID})
}

// LeaveConversation leaves the current room, if any.
func (c *Client) LeaveConversation() error {
	return c.send("leave-conversation", nil)
}

// PostNotification signals a new message in the current conversation.
// The event carries no payload by contract.
func (c *Client) PostNotification() error {
	return c.send("new-notification", nil)
}

// Next blocks until the next server frame arrives or the deadline passes.
func (c *Client) Next(timeout time.Duration) (Event, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	var evt Event
	if err := c.conn.ReadJSON(&evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

func (c *Client) send(event string, data any) error {
	frame := struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: event, Data: data}
	_ = c.conn.SetWriteDeadline(time.Now().Add(dialTimeout))
	return c.conn.WriteJSON(frame)
}
