package repositories

import (
	"encoding/json"
	"fmt"

	"taskline/auth"
	"taskline/errors"

	"github.com/dgraph-io/badger/v4"
)

// SessionRepository is the server-side session store. Sessions are written
// at login by the excluded HTTP layer (and by the seed tool); the gateway
// only reloads them, once per inbound event.
type SessionRepository struct {
	db *badger.DB
}

func NewSessionRepository(db *badger.DB) SessionRepository {
	return SessionRepository{db: db}
}

type sessionRecord struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

func sessionKey(id string) []byte {
	return []byte(fmt.Sprintf("session:%s", id))
}

func (r SessionRepository) Load(sessionID string) (auth.Session, error) {
	var record sessionRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(sessionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return auth.Session{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return auth.Session{}, err
	}

	return auth.Session{ID: record.ID, Token: record.Token}, nil
}

func (r SessionRepository) Put(session auth.Session) error {
	data, err := json.Marshal(sessionRecord{ID: session.ID, Token: session.Token})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.ID), data)
	})
}
