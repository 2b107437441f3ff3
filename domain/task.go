package domain

// Task exposes its assignees; they receive notifications for task
// conversations even without prior participation.
type Task struct {
	ID        string
	Assignees []string
}
