// Package events holds the domain events published on the in-process bus
// after a workflow transaction commits. Subscribers must tolerate
// at-most-once delivery: events are not persisted.
package events

import (
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
)

type IdeaCreated struct {
	Idea *idea.Idea
}

type IdeaSubmitted struct {
	Idea *idea.Idea
}

type CollaborationToggled struct {
	Idea    *idea.Idea
	Enabled bool
}

type RequestSubmitted struct {
	Idea    *idea.Idea
	Request *collaboration.Request
}

type RequestAccepted struct {
	Idea         *idea.Idea
	Request      *collaboration.Request
	Collaborator *collaboration.Collaborator
}

type RequestDeclined struct {
	Idea    *idea.Idea
	Request *collaboration.Request
}

type CollaboratorInvited struct {
	Idea         *idea.Idea
	Collaborator *collaboration.Collaborator
}

type InviteResponded struct {
	Idea         *idea.Idea
	Collaborator *collaboration.Collaborator
	Accepted     bool
}

type PermissionUpdated struct {
	Idea         *idea.Idea
	Collaborator *collaboration.Collaborator
	OldLevel     string
}

type CollaboratorRemoved struct {
	Idea         *idea.Idea
	Collaborator *collaboration.Collaborator
}

type RevisionCreated struct {
	Idea     *idea.Idea
	Revision *revision.Revision
}

type RevisionAccepted struct {
	Idea     *idea.Idea
	Revision *revision.Revision
}

type RevisionRejected struct {
	Idea     *idea.Idea
	Revision *revision.Revision
}

type RevisionRolledBack struct {
	Idea     *idea.Idea
	Revision *revision.Revision
	Target   int
}
