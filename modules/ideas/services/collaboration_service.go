package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence"
)

// CollaborationService owns the invitation/request lifecycle and the
// collaborator-record lifecycle. Every method runs inside the caller's
// transaction and locks the idea row first, so all transitions for one
// idea are serialized while independent ideas proceed concurrently.
type CollaborationService struct {
	ideas         idea.Repository
	requests      collaboration.RequestRepository
	collaborators collaboration.CollaboratorRepository
}

func NewCollaborationService(
	ideas idea.Repository,
	requests collaboration.RequestRepository,
	collaborators collaboration.CollaboratorRepository,
) *CollaborationService {
	return &CollaborationService{
		ideas:         ideas,
		requests:      requests,
		collaborators: collaborators,
	}
}

type SubmitRequestResult struct {
	Request *collaboration.Request
	Idea    *idea.Idea
}

func (s *CollaborationService) SubmitRequest(ctx context.Context, ideaID, requesterID uint, message string) (*SubmitRequestResult, error) {
	entity, err := s.ideas.GetByIDForUpdate(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if !entity.CollaborationEnabled {
		return nil, errCollaborationDisabled()
	}
	if entity.IsAuthor(requesterID) {
		return nil, errSelfCollaboration()
	}

	existing, err := s.collaborators.GetByIdeaAndUser(ctx, ideaID, requesterID)
	if err != nil && !errors.Is(err, persistence.ErrCollaboratorNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsActive() {
		return nil, errAlreadyCollaborator()
	}

	pending, err := s.requests.HasPending(ctx, ideaID, requesterID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errDuplicatePending()
	}

	request, err := s.requests.Create(ctx, &collaboration.Request{
		IdeaID:      ideaID,
		RequesterID: requesterID,
		Message:     strings.TrimSpace(message),
		Status:      collaboration.RequestStatusPending,
	})
	if err != nil {
		return nil, err
	}
	return &SubmitRequestResult{Request: request, Idea: entity}, nil
}

type RespondRequestResult struct {
	Request      *collaboration.Request
	Collaborator *collaboration.Collaborator
	Idea         *idea.Idea
	Reactivated  bool
}

func (s *CollaborationService) AcceptRequest(ctx context.Context, requestID, actorID uint) (*RespondRequestResult, error) {
	request, entity, err := s.lockRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}
	if !request.IsPending() {
		return nil, errInvalidState("collaboration request has already been handled")
	}

	now := time.Now()
	collaborator, reactivated, err := s.activateCollaborator(ctx, entity, request.RequesterID, actorID, now)
	if err != nil {
		return nil, err
	}

	request.Status = collaboration.RequestStatusAccepted
	request.RespondedAt = &now
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	return &RespondRequestResult{
		Request:      request,
		Collaborator: collaborator,
		Idea:         entity,
		Reactivated:  reactivated,
	}, nil
}

func (s *CollaborationService) DeclineRequest(ctx context.Context, requestID, actorID uint, reason *string) (*RespondRequestResult, error) {
	request, entity, err := s.lockRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}
	if !request.IsPending() {
		return nil, errInvalidState("collaboration request has already been handled")
	}

	now := time.Now()
	request.Status = collaboration.RequestStatusDeclined
	request.ResponseMessage = reason
	request.RespondedAt = &now
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}
	return &RespondRequestResult{Request: request, Idea: entity}, nil
}

type InviteResult struct {
	Collaborator *collaboration.Collaborator
	Idea         *idea.Idea
}

// InviteCollaborator is the author-initiated mirror of a request: it
// creates (or revives) the collaborator row directly in pending state,
// awaiting the invitee's response.
func (s *CollaborationService) InviteCollaborator(ctx context.Context, ideaID, actorID, userID uint, permission string) (*InviteResult, error) {
	entity, err := s.ideas.GetByIDForUpdate(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}
	if !entity.CollaborationEnabled {
		return nil, errCollaborationDisabled()
	}
	if userID == actorID {
		return nil, errSelfCollaboration()
	}
	if !collaboration.IsValidPermission(permission) {
		return nil, errInvalidBody("permission must be suggest or edit")
	}

	existing, err := s.collaborators.GetByIdeaAndUser(ctx, ideaID, userID)
	if err != nil && !errors.Is(err, persistence.ErrCollaboratorNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case collaboration.CollaboratorStatusActive:
			return nil, errAlreadyCollaborator()
		case collaboration.CollaboratorStatusPending:
			return nil, errInvalidState("an invitation is already pending for this user")
		}
		existing.Status = collaboration.CollaboratorStatusPending
		existing.Permission = permission
		existing.InvitedByID = actorID
		existing.InvitedAt = time.Now()
		existing.AcceptedAt = nil
		existing.RemovedAt = nil
		if err := s.collaborators.Update(ctx, existing); err != nil {
			return nil, err
		}
		return &InviteResult{Collaborator: existing, Idea: entity}, nil
	}

	collaborator, err := s.collaborators.Create(ctx, &collaboration.Collaborator{
		IdeaID:      ideaID,
		UserID:      userID,
		Permission:  permission,
		InvitedByID: actorID,
		Status:      collaboration.CollaboratorStatusPending,
	})
	if err != nil {
		return nil, err
	}
	return &InviteResult{Collaborator: collaborator, Idea: entity}, nil
}

// RespondToInvite lets the invited user accept or decline a pending
// invitation. Declining reuses the removed state.
func (s *CollaborationService) RespondToInvite(ctx context.Context, collaboratorID, actorID uint, accept bool) (*InviteResult, error) {
	collaborator, entity, err := s.lockCollaborator(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	if collaborator.UserID != actorID {
		return nil, errForbidden("only the invited user may respond to this invitation")
	}
	if collaborator.Status != collaboration.CollaboratorStatusPending {
		return nil, errInvalidState("invitation has already been handled")
	}

	now := time.Now()
	if accept {
		collaborator.Status = collaboration.CollaboratorStatusActive
		collaborator.AcceptedAt = &now
	} else {
		collaborator.Status = collaboration.CollaboratorStatusRemoved
		collaborator.RemovedAt = &now
	}
	if err := s.collaborators.Update(ctx, collaborator); err != nil {
		return nil, err
	}
	return &InviteResult{Collaborator: collaborator, Idea: entity}, nil
}

type PermissionUpdateResult struct {
	Collaborator *collaboration.Collaborator
	Idea         *idea.Idea
	OldLevel     string
}

func (s *CollaborationService) UpdatePermissions(ctx context.Context, collaboratorID uint, newLevel string, actorID uint) (*PermissionUpdateResult, error) {
	collaborator, entity, err := s.lockCollaborator(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}
	if !collaboration.IsValidPermission(newLevel) {
		return nil, errInvalidBody("permission must be suggest or edit")
	}
	if !collaborator.IsActive() {
		return nil, errInvalidState("collaborator is not active")
	}

	oldLevel := collaborator.Permission
	collaborator.Permission = newLevel
	if err := s.collaborators.Update(ctx, collaborator); err != nil {
		return nil, err
	}
	return &PermissionUpdateResult{Collaborator: collaborator, Idea: entity, OldLevel: oldLevel}, nil
}

type RemovalResult struct {
	Collaborator *collaboration.Collaborator
	Idea         *idea.Idea
}

func (s *CollaborationService) RemoveCollaborator(ctx context.Context, collaboratorID, actorID uint) (*RemovalResult, error) {
	collaborator, entity, err := s.lockCollaborator(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	if !entity.IsAuthor(actorID) {
		return nil, errNotAuthor()
	}
	if collaborator.Status == collaboration.CollaboratorStatusRemoved {
		return nil, errAlreadyRemoved()
	}

	now := time.Now()
	collaborator.Status = collaboration.CollaboratorStatusRemoved
	collaborator.RemovedAt = &now
	if err := s.collaborators.Update(ctx, collaborator); err != nil {
		return nil, err
	}
	return &RemovalResult{Collaborator: collaborator, Idea: entity}, nil
}

func (s *CollaborationService) ListCollaborators(ctx context.Context, ideaID uint) ([]*collaboration.Collaborator, error) {
	return s.collaborators.ListByIdea(ctx, ideaID)
}

func (s *CollaborationService) ListActiveCollaborators(ctx context.Context, ideaID uint) ([]*collaboration.Collaborator, error) {
	return s.collaborators.ListActiveByIdea(ctx, ideaID)
}

func (s *CollaborationService) ListRequests(ctx context.Context, ideaID uint) ([]*collaboration.Request, error) {
	return s.requests.ListByIdea(ctx, ideaID)
}

func (s *CollaborationService) ListPendingRequestsByUser(ctx context.Context, userID uint) ([]*collaboration.Request, error) {
	return s.requests.ListPendingByRequester(ctx, userID)
}

// activateCollaborator creates the membership row, or revives the
// existing one when the pair was previously invited or removed. Status
// transitions always reuse the single (idea, user) row.
func (s *CollaborationService) activateCollaborator(ctx context.Context, entity *idea.Idea, userID, invitedByID uint, now time.Time) (*collaboration.Collaborator, bool, error) {
	existing, err := s.collaborators.GetByIdeaAndUser(ctx, entity.ID, userID)
	if err != nil && !errors.Is(err, persistence.ErrCollaboratorNotFound) {
		return nil, false, err
	}
	if existing != nil {
		if existing.IsActive() {
			return nil, false, errAlreadyCollaborator()
		}
		existing.Status = collaboration.CollaboratorStatusActive
		existing.Permission = collaboration.PermissionSuggest
		existing.AcceptedAt = &now
		existing.RemovedAt = nil
		if err := s.collaborators.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}

	collaborator, err := s.collaborators.Create(ctx, &collaboration.Collaborator{
		IdeaID:      entity.ID,
		UserID:      userID,
		Permission:  collaboration.PermissionSuggest,
		InvitedByID: invitedByID,
		Status:      collaboration.CollaboratorStatusActive,
		AcceptedAt:  &now,
	})
	if err != nil {
		return nil, false, err
	}
	return collaborator, false, nil
}

// lockRequest resolves a request and locks its idea row, re-reading the
// request under the lock. Lock order is always idea first, then child
// rows, for every operation touching an idea.
func (s *CollaborationService) lockRequest(ctx context.Context, requestID uint) (*collaboration.Request, *idea.Idea, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	entity, err := s.ideas.GetByIDForUpdate(ctx, request.IdeaID)
	if err != nil {
		return nil, nil, err
	}
	request, err = s.requests.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return request, entity, nil
}

func (s *CollaborationService) lockCollaborator(ctx context.Context, collaboratorID uint) (*collaboration.Collaborator, *idea.Idea, error) {
	collaborator, err := s.collaborators.GetByID(ctx, collaboratorID)
	if err != nil {
		return nil, nil, err
	}
	entity, err := s.ideas.GetByIDForUpdate(ctx, collaborator.IdeaID)
	if err != nil {
		return nil, nil, err
	}
	collaborator, err = s.collaborators.GetByIDForUpdate(ctx, collaboratorID)
	if err != nil {
		return nil, nil, err
	}
	return collaborator, entity, nil
}
