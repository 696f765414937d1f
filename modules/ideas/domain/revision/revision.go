package revision

import "time"

const (
	TypeAuthor       = "author"
	TypeCollaborator = "collaborator"
	TypeRollback     = "rollback"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Revision is an immutable snapshot of a proposed change. Rows are
// append-only; acceptance and rejection mutate only the status.
type Revision struct {
	ID          uint
	IdeaID      uint
	Number      int
	Changes     ChangeSet
	Summary     string
	CreatedByID uint
	Type        string
	Status      string
	ReviewNote  *string
	CreatedAt   time.Time
	ReviewedAt  *time.Time
}

func (r *Revision) IsPending() bool {
	return r.Status == StatusPending
}
