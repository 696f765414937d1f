package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/audit"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/notification"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/events"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/eventbus"
)

// Point awards credited by the workflow.
const (
	PointsRequestAccepted    = 50
	PointsRevisionCreated    = 20
	PointsRevisionAccepted   = 100
	PointsFirstCollaboration = 25
)

// Ledger reasons. ReasonFirstCollaboration is one-off per user.
const (
	ReasonRequestAccepted    = "collaboration_request_accepted"
	ReasonRevisionCreated    = "collaborator_revision_created"
	ReasonRevisionAccepted   = "collaborator_revision_accepted"
	ReasonFirstCollaboration = "first_collaboration"
)

// Audit subject types.
const (
	subjectIdea         = "idea"
	subjectRequest      = "collaboration_request"
	subjectCollaborator = "collaborator"
	subjectRevision     = "revision"
)

const revisionCreateAttempts = 3

// WorkflowService is the single entry point for every user-facing
// workflow action. Each method runs one transaction: it delegates the
// state transition to a manager, then records audit, points and
// notification side effects inside that same transaction. It is the only
// layer allowed to touch those sinks, and the only one that publishes
// domain events, which go out after commit.
type WorkflowService struct {
	ideas         idea.Repository
	collaboration *CollaborationService
	revisions     *RevisionService
	auditSink     AuditSink
	notifier      Notifier
	rewards       RewardLedger
	publisher     eventbus.EventBus
	log           *logrus.Logger
}

func NewWorkflowService(
	ideas idea.Repository,
	collaborationService *CollaborationService,
	revisionService *RevisionService,
	auditSink AuditSink,
	notifier Notifier,
	rewards RewardLedger,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *WorkflowService {
	return &WorkflowService{
		ideas:         ideas,
		collaboration: collaborationService,
		revisions:     revisionService,
		auditSink:     auditSink,
		notifier:      notifier,
		rewards:       rewards,
		publisher:     publisher,
		log:           log,
	}
}

// ---- Idea lifecycle ----

type CreateIdeaInput struct {
	Title                string
	ProblemStatement     string
	ProposedSolution     string
	ExpectedImpact       string
	CollaborationEnabled bool
}

func (s *WorkflowService) CreateIdea(ctx context.Context, actorID uint, input CreateIdeaInput) (*idea.Idea, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errInvalidBody("title is required")
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*idea.Idea, error) {
		slug, err := uniqueSlug(txCtx, s.ideas, title)
		if err != nil {
			return nil, err
		}
		entity := &idea.Idea{
			Title:                title,
			Slug:                 slug,
			AuthorID:             actorID,
			ProblemStatement:     input.ProblemStatement,
			ProposedSolution:     input.ProposedSolution,
			ExpectedImpact:       input.ExpectedImpact,
			CollaborationEnabled: input.CollaborationEnabled,
			Status:               idea.StatusDraft,
		}
		entity.BaseContent = entity.Content()
		entity, err = s.ideas.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionIdeaCreated, subjectIdea, entity.ID, map[string]any{
			"slug": entity.Slug,
		}); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.IdeaCreated{Idea: created})
	return created, nil
}

func (s *WorkflowService) SubmitIdea(ctx context.Context, ideaID, actorID uint) (*idea.Idea, error) {
	entity, err := composables.InTxResult(ctx, func(txCtx context.Context) (*idea.Idea, error) {
		entity, err := s.ideas.GetByIDForUpdate(txCtx, ideaID)
		if err != nil {
			return nil, err
		}
		if !entity.IsAuthor(actorID) {
			return nil, errNotAuthor()
		}
		if entity.Status != idea.StatusDraft {
			return nil, errInvalidState("idea has already been submitted")
		}
		entity.Status = idea.StatusSubmitted
		if err := s.ideas.Update(txCtx, entity); err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionIdeaSubmitted, subjectIdea, entity.ID, nil); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.IdeaSubmitted{Idea: entity})
	return entity, nil
}

func (s *WorkflowService) SetCollaborationEnabled(ctx context.Context, ideaID, actorID uint, enabled bool) (*idea.Idea, error) {
	entity, err := composables.InTxResult(ctx, func(txCtx context.Context) (*idea.Idea, error) {
		entity, err := s.ideas.GetByIDForUpdate(txCtx, ideaID)
		if err != nil {
			return nil, err
		}
		if !entity.IsAuthor(actorID) {
			return nil, errNotAuthor()
		}
		if entity.CollaborationEnabled == enabled {
			return entity, nil
		}
		entity.CollaborationEnabled = enabled
		if err := s.ideas.Update(txCtx, entity); err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionIdeaCollaborationToggled, subjectIdea, entity.ID, map[string]any{
			"enabled": enabled,
		}); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.CollaborationToggled{Idea: entity, Enabled: enabled})
	return entity, nil
}

// ---- Collaboration requests ----

func (s *WorkflowService) SubmitRequest(ctx context.Context, ideaID, requesterID uint, message string) (*collaboration.Request, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*SubmitRequestResult, error) {
		result, err := s.collaboration.SubmitRequest(txCtx, ideaID, requesterID, message)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, requesterID, audit.ActionCollaborationRequestSubmitted, subjectRequest, result.Request.ID, map[string]any{
			"idea_id": result.Idea.ID,
		}); err != nil {
			return nil, err
		}
		s.notifier.Notify(txCtx, result.Idea.AuthorID, notification.SeverityInfo,
			"New collaboration request",
			fmt.Sprintf("Someone asked to collaborate on %q.", result.Idea.Title),
			ideaURL(result.Idea))
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.RequestSubmitted{Idea: result.Idea, Request: result.Request})
	return result.Request, nil
}

func (s *WorkflowService) AcceptRequest(ctx context.Context, requestID, actorID uint) (*collaboration.Collaborator, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*RespondRequestResult, error) {
		result, err := s.collaboration.AcceptRequest(txCtx, requestID, actorID)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionCollaborationRequestAccepted, subjectRequest, result.Request.ID, map[string]any{
			"idea_id":         result.Idea.ID,
			"collaborator_id": result.Collaborator.ID,
			"reactivated":     result.Reactivated,
		}); err != nil {
			return nil, err
		}
		if err := s.awardCollaborationJoin(txCtx, result.Request.RequesterID); err != nil {
			return nil, err
		}
		s.notifier.Notify(txCtx, result.Request.RequesterID, notification.SeveritySuccess,
			"Collaboration request accepted",
			fmt.Sprintf("You are now a collaborator on %q.", result.Idea.Title),
			ideaURL(result.Idea))
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.RequestAccepted{Idea: result.Idea, Request: result.Request, Collaborator: result.Collaborator})
	return result.Collaborator, nil
}

func (s *WorkflowService) DeclineRequest(ctx context.Context, requestID, actorID uint, reason *string) (*collaboration.Request, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*RespondRequestResult, error) {
		result, err := s.collaboration.DeclineRequest(txCtx, requestID, actorID, reason)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionCollaborationRequestDeclined, subjectRequest, result.Request.ID, map[string]any{
			"idea_id": result.Idea.ID,
		}); err != nil {
			return nil, err
		}
		message := fmt.Sprintf("Your request to collaborate on %q was declined.", result.Idea.Title)
		if reason != nil && *reason != "" {
			message += " Reason: " + *reason
		}
		s.notifier.Notify(txCtx, result.Request.RequesterID, notification.SeverityWarning,
			"Collaboration request declined", message, ideaURL(result.Idea))
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.RequestDeclined{Idea: result.Idea, Request: result.Request})
	return result.Request, nil
}

// ---- Collaborator management ----

func (s *WorkflowService) InviteCollaborator(ctx context.Context, ideaID, actorID, userID uint, permission string) (*collaboration.Collaborator, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*InviteResult, error) {
		result, err := s.collaboration.InviteCollaborator(txCtx, ideaID, actorID, userID, permission)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionCollaborationInviteSent, subjectCollaborator, result.Collaborator.ID, map[string]any{
			"idea_id":    result.Idea.ID,
			"user_id":    userID,
			"permission": permission,
		}); err != nil {
			return nil, err
		}
		s.notifier.Notify(txCtx, userID, notification.SeverityInfo,
			"Collaboration invitation",
			fmt.Sprintf("You have been invited to collaborate on %q.", result.Idea.Title),
			ideaURL(result.Idea))
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.CollaboratorInvited{Idea: result.Idea, Collaborator: result.Collaborator})
	return result.Collaborator, nil
}

func (s *WorkflowService) RespondToInvite(ctx context.Context, collaboratorID, actorID uint, accept bool) (*collaboration.Collaborator, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*InviteResult, error) {
		result, err := s.collaboration.RespondToInvite(txCtx, collaboratorID, actorID, accept)
		if err != nil {
			return nil, err
		}
		action := audit.ActionCollaborationInviteDeclined
		if accept {
			action = audit.ActionCollaborationInviteAccepted
		}
		if err := s.auditSink.Record(txCtx, actorID, action, subjectCollaborator, result.Collaborator.ID, map[string]any{
			"idea_id": result.Idea.ID,
		}); err != nil {
			return nil, err
		}
		if accept {
			if err := s.awardCollaborationJoin(txCtx, actorID); err != nil {
				return nil, err
			}
		}
		title := "Collaboration invitation declined"
		severity := notification.SeverityWarning
		if accept {
			title = "Collaboration invitation accepted"
			severity = notification.SeveritySuccess
		}
		s.notifier.Notify(txCtx, result.Idea.AuthorID, severity, title,
			fmt.Sprintf("Your invitation on %q was answered.", result.Idea.Title),
			ideaURL(result.Idea))
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.InviteResponded{Idea: result.Idea, Collaborator: result.Collaborator, Accepted: accept})
	return result.Collaborator, nil
}

func (s *WorkflowService) UpdatePermissions(ctx context.Context, collaboratorID uint, newLevel string, actorID uint) (*collaboration.Collaborator, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*PermissionUpdateResult, error) {
		result, err := s.collaboration.UpdatePermissions(txCtx, collaboratorID, newLevel, actorID)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionCollaboratorPermissionUpdated, subjectCollaborator, result.Collaborator.ID, map[string]any{
			"idea_id": result.Idea.ID,
			"old":     result.OldLevel,
			"new":     newLevel,
		}); err != nil {
			return nil, err
		}
		s.notifier.Notify(txCtx, result.Collaborator.UserID, notification.SeverityInfo,
			"Collaboration permissions updated",
			fmt.Sprintf("Your permission on %q is now %q.", result.Idea.Title, newLevel),
			ideaURL(result.Idea))
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.PermissionUpdated{Idea: result.Idea, Collaborator: result.Collaborator, OldLevel: result.OldLevel})
	return result.Collaborator, nil
}

func (s *WorkflowService) RemoveCollaborator(ctx context.Context, collaboratorID, actorID uint, reason *string) (*collaboration.Collaborator, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*RemovalResult, error) {
		result, err := s.collaboration.RemoveCollaborator(txCtx, collaboratorID, actorID)
		if err != nil {
			return nil, err
		}
		metadata := map[string]any{"idea_id": result.Idea.ID}
		if reason != nil && *reason != "" {
			metadata["reason"] = *reason
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionCollaboratorRemoved, subjectCollaborator, result.Collaborator.ID, metadata); err != nil {
			return nil, err
		}
		message := fmt.Sprintf("You were removed from %q.", result.Idea.Title)
		if reason != nil && *reason != "" {
			message += " Reason: " + *reason
		}
		s.notifier.Notify(txCtx, result.Collaborator.UserID, notification.SeverityWarning,
			"Removed from collaboration", message, ideaURL(result.Idea))
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.CollaboratorRemoved{Idea: result.Idea, Collaborator: result.Collaborator})
	return result.Collaborator, nil
}

// ---- Revisions ----

// CreateRevision retries the whole transaction a bounded number of times:
// the per-idea row lock serializes numbering, and the unique index turns
// any remaining race into a retryable conflict.
func (s *WorkflowService) CreateRevision(ctx context.Context, ideaID, actorID uint, changes revision.ChangeSet, summary string) (*revision.Revision, error) {
	var lastErr error
	for attempt := 0; attempt < revisionCreateAttempts; attempt++ {
		if attempt > 0 {
			recordRevisionRetry()
		}
		result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*CreateRevisionResult, error) {
			result, err := s.revisions.CreateRevision(txCtx, ideaID, actorID, changes, summary)
			if err != nil {
				return nil, err
			}
			if err := s.auditSink.Record(txCtx, actorID, audit.ActionRevisionCreated, subjectRevision, result.Revision.ID, map[string]any{
				"idea_id":         result.Idea.ID,
				"revision_number": result.Revision.Number,
				"type":            result.Revision.Type,
			}); err != nil {
				return nil, err
			}
			if result.Revision.Type == revision.TypeCollaborator {
				if err := s.rewards.Award(txCtx, actorID, PointsRevisionCreated, ReasonRevisionCreated); err != nil {
					return nil, err
				}
				s.notifier.Notify(txCtx, result.Idea.AuthorID, notification.SeverityInfo,
					"New revision proposed",
					fmt.Sprintf("Revision %d was proposed on %q.", result.Revision.Number, result.Idea.Title),
					ideaURL(result.Idea))
			}
			return result, nil
		})
		if err != nil {
			lastErr = mapPgError(err)
			if isRetryableConflict(lastErr) {
				if s.log != nil {
					s.log.WithFields(logrus.Fields{
						"idea_id": ideaID,
						"attempt": attempt + 1,
					}).WithError(lastErr).Warn("revision create conflict, retrying")
				}
				continue
			}
			return nil, lastErr
		}
		s.publisher.Publish(events.RevisionCreated{Idea: result.Idea, Revision: result.Revision})
		return result.Revision, nil
	}
	return nil, lastErr
}

func (s *WorkflowService) AcceptRevision(ctx context.Context, revisionID, actorID uint) (*revision.Revision, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*ReviewResult, error) {
		result, err := s.revisions.AcceptRevision(txCtx, revisionID, actorID)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionRevisionAccepted, subjectRevision, result.Revision.ID, map[string]any{
			"idea_id":         result.Idea.ID,
			"revision_number": result.Revision.Number,
		}); err != nil {
			return nil, err
		}
		if result.Revision.Type == revision.TypeCollaborator {
			if err := s.rewards.Award(txCtx, result.Revision.CreatedByID, PointsRevisionAccepted, ReasonRevisionAccepted); err != nil {
				return nil, err
			}
		}
		if result.Revision.CreatedByID != actorID {
			s.notifier.Notify(txCtx, result.Revision.CreatedByID, notification.SeveritySuccess,
				"Revision accepted",
				fmt.Sprintf("Revision %d on %q was accepted.", result.Revision.Number, result.Idea.Title),
				ideaURL(result.Idea))
		}
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.RevisionAccepted{Idea: result.Idea, Revision: result.Revision})
	return result.Revision, nil
}

func (s *WorkflowService) RejectRevision(ctx context.Context, revisionID, actorID uint, reason *string) (*revision.Revision, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*ReviewResult, error) {
		result, err := s.revisions.RejectRevision(txCtx, revisionID, actorID, reason)
		if err != nil {
			return nil, err
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionRevisionRejected, subjectRevision, result.Revision.ID, map[string]any{
			"idea_id":         result.Idea.ID,
			"revision_number": result.Revision.Number,
		}); err != nil {
			return nil, err
		}
		message := fmt.Sprintf("Revision %d on %q was rejected.", result.Revision.Number, result.Idea.Title)
		if reason != nil && *reason != "" {
			message += " Reason: " + *reason
		}
		if result.Revision.CreatedByID != actorID {
			s.notifier.Notify(txCtx, result.Revision.CreatedByID, notification.SeverityWarning,
				"Revision rejected", message, ideaURL(result.Idea))
		}
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.RevisionRejected{Idea: result.Idea, Revision: result.Revision})
	return result.Revision, nil
}

func (s *WorkflowService) RollbackToRevision(ctx context.Context, ideaID uint, targetNumber int, actorID uint) (*revision.Revision, error) {
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*RollbackResult, error) {
		result, err := s.revisions.RollbackToRevision(txCtx, ideaID, targetNumber, actorID)
		if err != nil {
			return nil, err
		}
		fields := make([]string, 0, len(result.Changed))
		for field := range result.Changed {
			fields = append(fields, field)
		}
		if err := s.auditSink.Record(txCtx, actorID, audit.ActionRevisionRollback, subjectRevision, result.Revision.ID, map[string]any{
			"idea_id":         result.Idea.ID,
			"target_number":   targetNumber,
			"revision_number": result.Revision.Number,
			"changed_fields":  fields,
		}); err != nil {
			return nil, err
		}
		active, err := s.collaboration.ListActiveCollaborators(txCtx, ideaID)
		if err != nil {
			return nil, err
		}
		for _, collaborator := range active {
			s.notifier.Notify(txCtx, collaborator.UserID, notification.SeverityWarning,
				"Idea rolled back",
				fmt.Sprintf("%q was rolled back to revision %d.", result.Idea.Title, targetNumber),
				ideaURL(result.Idea))
		}
		return result, nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	s.publisher.Publish(events.RevisionRolledBack{Idea: result.Idea, Revision: result.Revision, Target: targetNumber})
	return result.Revision, nil
}

func (s *WorkflowService) CompareRevisions(ctx context.Context, aID, bID uint) ([]revision.FieldDelta, error) {
	deltas, err := s.revisions.CompareRevisions(ctx, aID, bID)
	if err != nil {
		return nil, mapPgError(err)
	}
	return deltas, nil
}

// ---- Read surfaces ----

func (s *WorkflowService) GetIdea(ctx context.Context, ideaID uint) (*idea.Idea, error) {
	return s.ideas.GetByID(ctx, ideaID)
}

func (s *WorkflowService) GetIdeaBySlug(ctx context.Context, slug string) (*idea.Idea, error) {
	return s.ideas.GetBySlug(ctx, slug)
}

func (s *WorkflowService) ListRevisions(ctx context.Context, ideaID uint) ([]*revision.Revision, error) {
	return s.revisions.ListRevisions(ctx, ideaID)
}

func (s *WorkflowService) ListCollaborators(ctx context.Context, ideaID uint) ([]*collaboration.Collaborator, error) {
	return s.collaboration.ListCollaborators(ctx, ideaID)
}

func (s *WorkflowService) ListRequests(ctx context.Context, ideaID uint) ([]*collaboration.Request, error) {
	return s.collaboration.ListRequests(ctx, ideaID)
}

func (s *WorkflowService) ListPendingRequestsByUser(ctx context.Context, userID uint) ([]*collaboration.Request, error) {
	return s.collaboration.ListPendingRequestsByUser(ctx, userID)
}

// awardCollaborationJoin credits the standard acceptance award plus the
// one-off first-collaboration bonus.
func (s *WorkflowService) awardCollaborationJoin(ctx context.Context, userID uint) error {
	if err := s.rewards.Award(ctx, userID, PointsRequestAccepted, ReasonRequestAccepted); err != nil {
		return err
	}
	received, err := s.rewards.HasReceived(ctx, userID, ReasonFirstCollaboration)
	if err != nil {
		return err
	}
	if !received {
		if err := s.rewards.Award(ctx, userID, PointsFirstCollaboration, ReasonFirstCollaboration); err != nil {
			return err
		}
	}
	return nil
}

func ideaURL(entity *idea.Idea) string {
	return "/ideas/" + entity.Slug
}
