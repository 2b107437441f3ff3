package repositories

import (
	"encoding/json"
	"fmt"

	"taskline/domain"
	"taskline/errors"

	"github.com/dgraph-io/badger/v4"
)

type IProjectRepository interface {
	Resolve(id string) (domain.Project, error)
	Put(project domain.Project) error
}

type ProjectRepository struct {
	db *badger.DB
}

func NewProjectRepository(db *badger.DB) ProjectRepository {
	return ProjectRepository{db: db}
}

type projectRecord struct {
	ID      string `json:"id"`
	Manager string `json:"manager"`
}

func projectKey(id string) []byte {
	return []byte(fmt.Sprintf("project:%s", id))
}

func (r ProjectRepository) Resolve(id string) (domain.Project, error) {
	var record projectRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(projectKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Project{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}

	return domain.Project{ID: record.ID, ManagerID: record.Manager}, nil
}

func (r ProjectRepository) Put(project domain.Project) error {
	data, err := json.Marshal(projectRecord{ID: project.ID, Manager: project.ManagerID})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(projectKey(project.ID), data)
	})
}
