package collaboration

import "time"

const (
	PermissionSuggest = "suggest"
	PermissionEdit    = "edit"
)

const (
	CollaboratorStatusPending = "pending"
	CollaboratorStatusActive  = "active"
	CollaboratorStatusRemoved = "removed"
)

func IsValidPermission(level string) bool {
	return level == PermissionSuggest || level == PermissionEdit
}

// Collaborator is the materialized membership record created once an
// invitation or request is accepted. Unique per (idea, user); status
// transitions reuse the one row.
type Collaborator struct {
	ID          uint
	IdeaID      uint
	UserID      uint
	Permission  string
	InvitedByID uint
	Status      string
	InvitedAt   time.Time
	AcceptedAt  *time.Time
	RemovedAt   *time.Time
}

func (c *Collaborator) IsActive() bool {
	return c.Status == CollaboratorStatusActive
}

// CanEdit reports whether the collaborator may directly apply changes.
// Only active records grant anything.
func (c *Collaborator) CanEdit() bool {
	return c.IsActive() && c.Permission == PermissionEdit
}
