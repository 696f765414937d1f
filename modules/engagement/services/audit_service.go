package services

import (
	"context"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/audit"
)

type AuditService struct {
	repo audit.Repository
}

func NewAuditService(repo audit.Repository) *AuditService {
	return &AuditService{repo: repo}
}

// Record appends one audit entry inside the caller's transaction. A
// failure here rolls the whole operation back: workflow state transitions
// are never committed without their audit record.
func (s *AuditService) Record(ctx context.Context, actorID uint, action, subjectType string, subjectID uint, metadata map[string]any) error {
	return s.repo.Create(ctx, &audit.Entry{
		ActorID:     actorID,
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Metadata:    metadata,
	})
}

func (s *AuditService) List(ctx context.Context, params *audit.FindParams) ([]*audit.Entry, int64, error) {
	if params == nil {
		params = &audit.FindParams{}
	}
	entries, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return entries, count, nil
}
