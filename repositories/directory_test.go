package repositories

import (
	"log/slog"
	"testing"

	"taskline/auth"
	"taskline/domain"
	"taskline/errors"

	"github.com/stretchr/testify/require"
)

func Test_Directory_Resolves_Roles_And_Users(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	projects := NewProjectRepository(db)
	tasks := NewTaskRepository(db)
	users := NewUserRepository(db)
	directory := NewDirectory(
		NewConversationRepository(db),
		NewMessageRepository(db, slog.Default()),
		projects, tasks, users,
	)

	// Given a project, a task and a user on disk
	req.NoError(projects.Put(domain.Project{ID: "project-1", ManagerID: "marc"}))
	req.NoError(tasks.Put(domain.Task{ID: "task-1", Assignees: []string{"bob", "clara"}}))
	userID, err := users.CreateUser("alice@taskline.dev", "hash")
	req.NoError(err)

	// Then the directory resolves each role lookup
	manager, err := directory.ProjectManager("project-1")
	req.NoError(err)
	req.Equal("marc", manager)

	assignees, err := directory.TaskAssignees("task-1")
	req.NoError(err)
	req.Equal([]string{"bob", "clara"}, assignees)

	exists, err := directory.UserExists(userID)
	req.NoError(err)
	req.True(exists)

	exists, err = directory.UserExists("user-deleted")
	req.NoError(err)
	req.False(exists)
}

func Test_CreateUser_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	users := NewUserRepository(openTestDB(t))

	// Given an account exists for the email
	_, err := users.CreateUser("alice@taskline.dev", "hash")
	req.NoError(err)

	// When creating a second account with the same email
	_, err = users.CreateUser("alice@taskline.dev", "other-hash")

	// Then the email index rejects it
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Session_Load_And_Missing(t *testing.T) {
	req := require.New(t)
	sessions := NewSessionRepository(openTestDB(t))

	// Given a stored session
	stored := auth.Session{ID: "sid-alice", Token: "jwt-token"}
	req.NoError(sessions.Put(stored))

	// Then it loads back as written
	loaded, err := sessions.Load("sid-alice")
	req.NoError(err)
	req.Equal(stored, loaded)

	// And an unknown id maps to the session sentinel
	_, err = sessions.Load("sid-missing")
	req.ErrorIs(err, errors.ErrSessionNotFound)
}
