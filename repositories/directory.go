package repositories

import (
	"taskline/domain"
)

// Directory is the read-only collaborator surface consumed by the gateway
// core, assembled from the per-entity repositories. It implements
// contract.IDirectory.
type Directory struct {
	conversations IConversationRepository
	messages      IMessageRepository
	projects      IProjectRepository
	tasks         ITaskRepository
	users         IUserRepository
}

func NewDirectory(
	conversations IConversationRepository,
	messages IMessageRepository,
	projects IProjectRepository,
	tasks ITaskRepository,
	users IUserRepository,
) Directory {
	return Directory{
		conversations: conversations,
		messages:      messages,
		projects:      projects,
		tasks:         tasks,
		users:         users,
	}
}

func (d Directory) ResolveConversation(id domain.ConversationID) (domain.Conversation, error) {
	return d.conversations.Resolve(id)
}

func (d Directory) ProjectManager(projectID string) (string, error) {
	project, err := d.projects.Resolve(projectID)
	if err != nil {
		return "", err
	}
	return project.ManagerID, nil
}

func (d Directory) TaskAssignees(taskID string) ([]string, error) {
	task, err := d.tasks.Resolve(taskID)
	if err != nil {
		return nil, err
	}
	return task.Assignees, nil
}

func (d Directory) DistinctAuthors(conversation domain.ConversationID, excludeUserID string) ([]string, error) {
	return d.messages.DistinctAuthors(conversation, excludeUserID)
}

func (d Directory) UserExists(userID string) (bool, error) {
	return d.users.Exists(userID)
}
