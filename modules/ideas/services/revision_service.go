package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence"
)

// RevisionService owns the revision lifecycle: creation with gapless
// per-idea numbering, review, rollback and comparison. Numbering is
// serialized by the idea row lock; the unique (idea_id, revision_number)
// index backs it up, and the facade retries on that conflict.
type RevisionService struct {
	ideas         idea.Repository
	revisions     revision.Repository
	collaborators collaboration.CollaboratorRepository
}

func NewRevisionService(
	ideas idea.Repository,
	revisions revision.Repository,
	collaborators collaboration.CollaboratorRepository,
) *RevisionService {
	return &RevisionService{
		ideas:         ideas,
		revisions:     revisions,
		collaborators: collaborators,
	}
}

type CreateRevisionResult struct {
	Revision *revision.Revision
	Idea     *idea.Idea
}

func (s *RevisionService) CreateRevision(ctx context.Context, ideaID, actorID uint, changes revision.ChangeSet, summary string) (*CreateRevisionResult, error) {
	if len(changes) == 0 {
		return nil, errInvalidBody("revision must change at least one field")
	}
	for field := range changes {
		if !idea.IsContentField(field) {
			return nil, errInvalidBody(fmt.Sprintf("unknown content field %q", field))
		}
	}

	entity, err := s.ideas.GetByIDForUpdate(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	revType := revision.TypeAuthor
	if !entity.IsAuthor(actorID) {
		collaborator, err := s.collaborators.GetByIdeaAndUser(ctx, ideaID, actorID)
		if err != nil && !errors.Is(err, persistence.ErrCollaboratorNotFound) {
			return nil, err
		}
		if !CanAct(actorID, entity, collaborator, CapabilitySuggest) {
			return nil, errForbidden("only active collaborators may propose revisions")
		}
		revType = revision.TypeCollaborator
	}

	number, err := s.revisions.MaxNumber(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	created, err := s.revisions.Create(ctx, &revision.Revision{
		IdeaID:      ideaID,
		Number:      number + 1,
		Changes:     changes,
		Summary:     strings.TrimSpace(summary),
		CreatedByID: actorID,
		Type:        revType,
		Status:      revision.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	return &CreateRevisionResult{Revision: created, Idea: entity}, nil
}

type ReviewResult struct {
	Revision *revision.Revision
	Idea     *idea.Idea
}

// AcceptRevision applies the revision's sparse diff onto the idea's live
// content and closes the revision. Acceptance is terminal.
func (s *RevisionService) AcceptRevision(ctx context.Context, revisionID, actorID uint) (*ReviewResult, error) {
	rev, entity, err := s.lockRevision(ctx, revisionID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}
	if !rev.IsPending() {
		return nil, errInvalidState("revision has already been reviewed")
	}

	if err := entity.ApplyContent(rev.Changes); err != nil {
		return nil, errInvalidBody(err.Error())
	}
	if err := s.ideas.Update(ctx, entity); err != nil {
		return nil, err
	}
	if err := s.revisions.UpdateStatus(ctx, rev.ID, revision.StatusAccepted, nil); err != nil {
		return nil, err
	}
	rev.Status = revision.StatusAccepted
	return &ReviewResult{Revision: rev, Idea: entity}, nil
}

// RejectRevision closes the revision without touching idea content.
func (s *RevisionService) RejectRevision(ctx context.Context, revisionID, actorID uint, reason *string) (*ReviewResult, error) {
	rev, entity, err := s.lockRevision(ctx, revisionID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}
	if !rev.IsPending() {
		return nil, errInvalidState("revision has already been reviewed")
	}

	if err := s.revisions.UpdateStatus(ctx, rev.ID, revision.StatusRejected, reason); err != nil {
		return nil, err
	}
	rev.Status = revision.StatusRejected
	rev.ReviewNote = reason
	return &ReviewResult{Revision: rev, Idea: entity}, nil
}

type RollbackResult struct {
	Revision *revision.Revision
	Idea     *idea.Idea
	Changed  revision.ChangeSet
}

// RollbackToRevision restores the idea content as it stood after the
// target accepted revision, by replaying accepted diffs over the idea's
// base content. The delta against live content is recorded as a new
// rollback revision, created directly in accepted state. Rolling back to
// the current state is a content no-op but still appends a row.
func (s *RevisionService) RollbackToRevision(ctx context.Context, ideaID uint, targetNumber int, actorID uint) (*RollbackResult, error) {
	entity, err := s.ideas.GetByIDForUpdate(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}

	if _, err := s.revisions.GetAcceptedByNumber(ctx, ideaID, targetNumber); err != nil {
		if errors.Is(err, persistence.ErrRevisionNotFound) {
			return nil, errRevisionNotFound()
		}
		return nil, err
	}

	accepted, err := s.revisions.ListAcceptedUpTo(ctx, ideaID, targetNumber)
	if err != nil {
		return nil, err
	}

	target := make(map[string]string, len(entity.BaseContent))
	for field, value := range entity.BaseContent {
		target[field] = value
	}
	for _, rev := range accepted {
		for field, value := range rev.Changes {
			target[field] = value
		}
	}

	current := entity.Content()
	changed := revision.ChangeSet{}
	for field, value := range target {
		if current[field] != value {
			changed[field] = value
		}
	}

	number, err := s.revisions.MaxNumber(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	created, err := s.revisions.Create(ctx, &revision.Revision{
		IdeaID:      ideaID,
		Number:      number + 1,
		Changes:     changed,
		Summary:     fmt.Sprintf("Rollback to revision %d", targetNumber),
		CreatedByID: actorID,
		Type:        revision.TypeRollback,
		Status:      revision.StatusAccepted,
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		if err := entity.ApplyContent(changed); err != nil {
			return nil, errInvalidBody(err.Error())
		}
		if err := s.ideas.Update(ctx, entity); err != nil {
			return nil, err
		}
	}
	return &RollbackResult{Revision: created, Idea: entity, Changed: changed}, nil
}

// CompareRevisions is read-only and needs no locks.
func (s *RevisionService) CompareRevisions(ctx context.Context, aID, bID uint) ([]revision.FieldDelta, error) {
	a, err := s.revisions.GetByID(ctx, aID)
	if err != nil {
		return nil, err
	}
	b, err := s.revisions.GetByID(ctx, bID)
	if err != nil {
		return nil, err
	}
	if a.IdeaID != b.IdeaID {
		return nil, errCrossIdeaComparison()
	}
	return revision.Compare(a.Changes, b.Changes), nil
}

func (s *RevisionService) ListRevisions(ctx context.Context, ideaID uint) ([]*revision.Revision, error) {
	return s.revisions.ListByIdea(ctx, ideaID)
}

func (s *RevisionService) lockRevision(ctx context.Context, revisionID uint) (*revision.Revision, *idea.Idea, error) {
	rev, err := s.revisions.GetByID(ctx, revisionID)
	if err != nil {
		return nil, nil, err
	}
	entity, err := s.ideas.GetByIDForUpdate(ctx, rev.IdeaID)
	if err != nil {
		return nil, nil, err
	}
	rev, err = s.revisions.GetByIDForUpdate(ctx, revisionID)
	if err != nil {
		return nil, nil, err
	}
	return rev, entity, nil
}
