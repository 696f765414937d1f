package audit

import (
	"context"
	"time"
)

// Workflow event types recorded by the engine.
const (
	ActionCollaborationRequestSubmitted = "collaboration_request_submitted"
	ActionCollaborationRequestAccepted  = "collaboration_request_accepted"
	ActionCollaborationRequestDeclined  = "collaboration_request_declined"
	ActionCollaborationInviteSent       = "collaboration_invite_sent"
	ActionCollaborationInviteAccepted   = "collaboration_invite_accepted"
	ActionCollaborationInviteDeclined   = "collaboration_invite_declined"
	ActionCollaboratorPermissionUpdated = "collaborator_permission_updated"
	ActionCollaboratorRemoved           = "collaborator_removed"
	ActionRevisionCreated               = "revision_created"
	ActionRevisionAccepted              = "revision_accepted"
	ActionRevisionRejected              = "revision_rejected"
	ActionRevisionRollback              = "revision_rollback"
	ActionIdeaCreated                   = "idea_created"
	ActionIdeaSubmitted                 = "idea_submitted"
	ActionIdeaCollaborationToggled      = "idea_collaboration_toggled"
)

// Entry is one append-only record in the audit trail.
type Entry struct {
	ID          uint
	ActorID     uint
	Action      string
	SubjectType string
	SubjectID   uint
	Metadata    map[string]any
	CreatedAt   time.Time
}

type FindParams struct {
	ActorID     *uint
	Action      string
	SubjectType string
	SubjectID   *uint
	Limit       int
	Offset      int
}

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, params *FindParams) ([]*Entry, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
}
