package runtime

import (
	"sync"

	"taskline/contract"
	"taskline/domain"
)

type Set map[string]struct{}

type entry struct {
	sink contract.EventSink
	room *domain.ConversationID
}

// Registry is the process-wide mapping from user id to online connection
// and current room. It keeps exactly one entry per user: a second login
// silently replaces the first (last-writer-wins, no multi-device fan-out).
//
// Two decoupled maps back it, so a user's connection is managed in a
// single place regardless of room moves:
//  1. sessions resolves a user id to its live sink and current room.
//  2. roomMembers resolves a conversation to the set of joined user ids.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]entry
	roomMembers map[domain.ConversationID]Set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]entry),
		roomMembers: make(map[domain.ConversationID]Set),
	}
}

// Bind records a user's live connection with no room assigned yet.
// The gate re-authenticates on every inbound event, so re-binding the same
// sink must keep the current room; only a genuinely new connection
// overwrites the entry, dropping the stale room membership so the dead
// connection stops receiving broadcasts.
func (r *Registry) Bind(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.sessions[userID]
	if ok && previous.sink == sink {
		return
	}
	if ok && previous.room != nil {
		r.removeMemberLocked(userID, *previous.room)
	}
	r.sessions[userID] = entry{sink: sink}
}

// Unbind removes a user's entry at disconnect time, but only if it still
// points at the disconnecting sink: a re-login may already have overwritten
// the entry, and that newer connection must survive.
func (r *Registry) Unbind(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[userID]
	if !ok || current.sink != sink {
		return
	}
	if current.room != nil {
		r.removeMemberLocked(userID, *current.room)
	}
	delete(r.sessions, userID)
}

// Sink resolves a user's live connection handle, if any.
func (r *Registry) Sink(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	return e.sink, true
}

// JoinRoom moves a user into a conversation room. The user first leaves
// whatever room the registry tracks for them: a connection is never in
// more than one room at a time. Joining without a prior Bind is ignored.
func (r *Registry) JoinRoom(userID string, conversation domain.ConversationID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[userID]
	if !ok {
		return
	}
	if e.room != nil {
		r.removeMemberLocked(userID, *e.room)
	}

	if _, ok := r.roomMembers[conversation]; !ok {
		r.roomMembers[conversation] = make(Set)
	}
	r.roomMembers[conversation][userID] = struct{}{}

	e.room = &conversation
	r.sessions[userID] = e
}

// LeaveRoom clears the user's room assignment. Leaving with no room
// recorded is a no-op, not an error.
func (r *Registry) LeaveRoom(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[userID]
	if !ok || e.room == nil {
		return
	}
	r.removeMemberLocked(userID, *e.room)
	e.room = nil
	r.sessions[userID] = e
}

// Room returns the conversation the user is currently joined to, if any.
func (r *Registry) Room(userID string) (domain.ConversationID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[userID]
	if !ok || e.room == nil {
		return "", false
	}
	return *e.room, true
}

// SinksForRoom retrieves the active connections of every member of a room
// except exceptUserID. Returns nil if the room doesn't exist or has no
// other members.
func (r *Registry) SinksForRoom(conversation domain.ConversationID, exceptUserID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[conversation]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for userID := range members {
		if userID == exceptUserID {
			continue
		}
		if e, exists := r.sessions[userID]; exists {
			activeSinks = append(activeSinks, e.sink)
		}
	}
	return activeSinks
}

// removeMemberLocked drops a user from a room's member set and removes the
// set entirely once empty, so abandoned rooms don't accumulate.
func (r *Registry) removeMemberLocked(userID string, conversation domain.ConversationID) {
	members, ok := r.roomMembers[conversation]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.roomMembers, conversation)
	}
}
