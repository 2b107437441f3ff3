//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"taskline/domain"
	"taskline/errors"

	"github.com/dgraph-io/badger/v4"
)

type IConversationRepository interface {
	Resolve(id domain.ConversationID) (domain.Conversation, error)
	Put(conversation domain.Conversation) error
}

type ConversationRepository struct {
	db *badger.DB
}

func NewConversationRepository(db *badger.DB) ConversationRepository {
	return ConversationRepository{db: db}
}

// conversationRecord is the stored shape. Exactly one link field group is
// populated, selected by Kind; the unused fields stay empty in JSON.
type conversationRecord struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	UserA     string `json:"user_a,omitempty"`
	UserB     string `json:"user_b,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
}

func conversationKey(id domain.ConversationID) []byte {
	return []byte(fmt.Sprintf("conv:%s", id))
}

// Resolve loads a conversation together with its link record.
// Returns errors.ErrNotFound when the id does not exist.
func (r ConversationRepository) Resolve(id domain.ConversationID) (domain.Conversation, error) {
	var record conversationRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Conversation{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}

	return toConversation(record), nil
}

func (r ConversationRepository) Put(conversation domain.Conversation) error {
	data, err := json.Marshal(fromConversation(conversation))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conversationKey(conversation.ID), data)
	})
}

func toConversation(record conversationRecord) domain.Conversation {
	conversation := domain.Conversation{
		ID:   domain.ConversationID(record.ID),
		Kind: domain.ConversationKind(record.Kind),
	}
	switch conversation.Kind {
	case domain.KindDirect:
		conversation.Direct = &domain.DirectLink{UserA: record.UserA, UserB: record.UserB}
	case domain.KindProject:
		conversation.Project = &domain.ProjectLink{ProjectID: record.ProjectID}
	case domain.KindTask:
		conversation.Task = &domain.TaskLink{TaskID: record.TaskID}
	}
	return conversation
}

func fromConversation(conversation domain.Conversation) conversationRecord {
	record := conversationRecord{
		ID:   string(conversation.ID),
		Kind: string(conversation.Kind),
	}
	if conversation.Direct != nil {
		record.UserA = conversation.Direct.UserA
		record.UserB = conversation.Direct.UserB
	}
	if conversation.Project != nil {
		record.ProjectID = conversation.Project.ProjectID
	}
	if conversation.Task != nil {
		record.TaskID = conversation.Task.TaskID
	}
	return record
}
