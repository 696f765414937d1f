package controllers

import (
	"time"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
)

type ideaResponse struct {
	ID                   uint   `json:"id"`
	Title                string `json:"title"`
	Slug                 string `json:"slug"`
	AuthorID             uint   `json:"author_id"`
	ProblemStatement     string `json:"problem_statement"`
	ProposedSolution     string `json:"proposed_solution"`
	ExpectedImpact       string `json:"expected_impact"`
	CollaborationEnabled bool   `json:"collaboration_enabled"`
	Status               string `json:"status"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func toIdeaResponse(entity *idea.Idea) ideaResponse {
	return ideaResponse{
		ID:                   entity.ID,
		Title:                entity.Title,
		Slug:                 entity.Slug,
		AuthorID:             entity.AuthorID,
		ProblemStatement:     entity.ProblemStatement,
		ProposedSolution:     entity.ProposedSolution,
		ExpectedImpact:       entity.ExpectedImpact,
		CollaborationEnabled: entity.CollaborationEnabled,
		Status:               entity.Status,
		CreatedAt:            formatTime(entity.CreatedAt),
		UpdatedAt:            formatTime(entity.UpdatedAt),
	}
}

type requestResponse struct {
	ID              uint    `json:"id"`
	IdeaID          uint    `json:"idea_id"`
	RequesterID     uint    `json:"requester_id"`
	Message         string  `json:"message"`
	Status          string  `json:"status"`
	ResponseMessage *string `json:"response_message,omitempty"`
	RequestedAt     string  `json:"requested_at"`
	RespondedAt     *string `json:"responded_at,omitempty"`
}

func toRequestResponse(entity *collaboration.Request) requestResponse {
	return requestResponse{
		ID:              entity.ID,
		IdeaID:          entity.IdeaID,
		RequesterID:     entity.RequesterID,
		Message:         entity.Message,
		Status:          entity.Status,
		ResponseMessage: entity.ResponseMessage,
		RequestedAt:     formatTime(entity.RequestedAt),
		RespondedAt:     formatTimePtr(entity.RespondedAt),
	}
}

type collaboratorResponse struct {
	ID          uint    `json:"id"`
	IdeaID      uint    `json:"idea_id"`
	UserID      uint    `json:"user_id"`
	Permission  string  `json:"permission"`
	InvitedByID uint    `json:"invited_by_id"`
	Status      string  `json:"status"`
	InvitedAt   string  `json:"invited_at"`
	AcceptedAt  *string `json:"accepted_at,omitempty"`
	RemovedAt   *string `json:"removed_at,omitempty"`
}

func toCollaboratorResponse(entity *collaboration.Collaborator) collaboratorResponse {
	return collaboratorResponse{
		ID:          entity.ID,
		IdeaID:      entity.IdeaID,
		UserID:      entity.UserID,
		Permission:  entity.Permission,
		InvitedByID: entity.InvitedByID,
		Status:      entity.Status,
		InvitedAt:   formatTime(entity.InvitedAt),
		AcceptedAt:  formatTimePtr(entity.AcceptedAt),
		RemovedAt:   formatTimePtr(entity.RemovedAt),
	}
}

type revisionResponse struct {
	ID          uint              `json:"id"`
	IdeaID      uint              `json:"idea_id"`
	Number      int               `json:"revision_number"`
	Changes     map[string]string `json:"changes"`
	Summary     string            `json:"summary"`
	CreatedByID uint              `json:"created_by_id"`
	Type        string            `json:"type"`
	Status      string            `json:"status"`
	ReviewNote  *string           `json:"review_note,omitempty"`
	CreatedAt   string            `json:"created_at"`
	ReviewedAt  *string           `json:"reviewed_at,omitempty"`
}

func toRevisionResponse(entity *revision.Revision) revisionResponse {
	return revisionResponse{
		ID:          entity.ID,
		IdeaID:      entity.IdeaID,
		Number:      entity.Number,
		Changes:     entity.Changes,
		Summary:     entity.Summary,
		CreatedByID: entity.CreatedByID,
		Type:        entity.Type,
		Status:      entity.Status,
		ReviewNote:  entity.ReviewNote,
		CreatedAt:   formatTime(entity.CreatedAt),
		ReviewedAt:  formatTimePtr(entity.ReviewedAt),
	}
}

type fieldDeltaResponse struct {
	Field string  `json:"field"`
	Left  *string `json:"left"`
	Right *string `json:"right"`
}

func toFieldDeltaResponses(deltas []revision.FieldDelta) []fieldDeltaResponse {
	out := make([]fieldDeltaResponse, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, fieldDeltaResponse{Field: d.Field, Left: d.Left, Right: d.Right})
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
