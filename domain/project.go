package domain

// Project exposes the single role the fan-out engine cares about:
// the manager receives notifications for project conversations even
// without prior participation.
type Project struct {
	ID        string
	ManagerID string
}
