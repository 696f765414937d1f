package persistence

import (
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence/models"
)

func toDomainIdea(m *models.Idea) (*idea.Idea, error) {
	var base map[string]string
	if len(m.BaseContent) > 0 {
		if err := json.Unmarshal(m.BaseContent, &base); err != nil {
			return nil, errors.Wrap(err, "failed to decode base content")
		}
	}
	return &idea.Idea{
		ID:                   m.ID,
		Title:                m.Title,
		Slug:                 m.Slug,
		AuthorID:             m.AuthorID,
		ProblemStatement:     m.ProblemStatement,
		ProposedSolution:     m.ProposedSolution,
		ExpectedImpact:       m.ExpectedImpact,
		CollaborationEnabled: m.CollaborationEnabled,
		Status:               m.Status,
		BaseContent:          base,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		DeletedAt:            m.DeletedAt,
	}, nil
}

func toDBIdea(e *idea.Idea) (*models.Idea, error) {
	base, err := json.Marshal(e.BaseContent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode base content")
	}
	return &models.Idea{
		ID:                   e.ID,
		Title:                e.Title,
		Slug:                 e.Slug,
		AuthorID:             e.AuthorID,
		ProblemStatement:     e.ProblemStatement,
		ProposedSolution:     e.ProposedSolution,
		ExpectedImpact:       e.ExpectedImpact,
		CollaborationEnabled: e.CollaborationEnabled,
		Status:               e.Status,
		BaseContent:          base,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
		DeletedAt:            e.DeletedAt,
	}, nil
}

func toDomainRequest(m *models.CollaborationRequest) *collaboration.Request {
	return &collaboration.Request{
		ID:              m.ID,
		IdeaID:          m.IdeaID,
		RequesterID:     m.RequesterID,
		Message:         m.Message,
		Status:          m.Status,
		ResponseMessage: m.ResponseMessage,
		RequestedAt:     m.RequestedAt,
		RespondedAt:     m.RespondedAt,
	}
}

func toDomainCollaborator(m *models.Collaborator) *collaboration.Collaborator {
	return &collaboration.Collaborator{
		ID:          m.ID,
		IdeaID:      m.IdeaID,
		UserID:      m.UserID,
		Permission:  m.Permission,
		InvitedByID: m.InvitedByID,
		Status:      m.Status,
		InvitedAt:   m.InvitedAt,
		AcceptedAt:  m.AcceptedAt,
		RemovedAt:   m.RemovedAt,
	}
}

func toDomainRevision(m *models.Revision) (*revision.Revision, error) {
	changes, err := revision.ChangeSetFromDB(m.Changes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode revision changes")
	}
	return &revision.Revision{
		ID:          m.ID,
		IdeaID:      m.IdeaID,
		Number:      m.RevisionNumber,
		Changes:     changes,
		Summary:     m.Summary,
		CreatedByID: m.CreatedByID,
		Type:        m.RevisionType,
		Status:      m.Status,
		ReviewNote:  m.ReviewNote,
		CreatedAt:   m.CreatedAt,
		ReviewedAt:  m.ReviewedAt,
	}, nil
}
