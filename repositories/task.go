package repositories

import (
	"encoding/json"
	"fmt"

	"taskline/domain"
	"taskline/errors"

	"github.com/dgraph-io/badger/v4"
)

type ITaskRepository interface {
	Resolve(id string) (domain.Task, error)
	Put(task domain.Task) error
}

type TaskRepository struct {
	db *badger.DB
}

func NewTaskRepository(db *badger.DB) TaskRepository {
	return TaskRepository{db: db}
}

type taskRecord struct {
	ID        string   `json:"id"`
	Assignees []string `json:"assignees"`
}

func taskKey(id string) []byte {
	return []byte(fmt.Sprintf("task:%s", id))
}

func (r TaskRepository) Resolve(id string) (domain.Task, error) {
	var record taskRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Task{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}

	return domain.Task{ID: record.ID, Assignees: record.Assignees}, nil
}

func (r TaskRepository) Put(task domain.Task) error {
	data, err := json.Marshal(taskRecord{ID: task.ID, Assignees: task.Assignees})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(taskKey(task.ID), data)
	})
}
