package services

import (
	"context"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/points"
)

type PointsService struct {
	repo points.Repository
}

func NewPointsService(repo points.Repository) *PointsService {
	return &PointsService{repo: repo}
}

func (s *PointsService) Award(ctx context.Context, userID uint, amount int, reason string) error {
	return s.repo.Create(ctx, &points.Transaction{
		UserID: userID,
		Points: amount,
		Reason: reason,
	})
}

// HasReceived reports whether the user was already credited for the given
// reason. One-off bonuses check this before awarding.
func (s *PointsService) HasReceived(ctx context.Context, userID uint, reason string) (bool, error) {
	return s.repo.HasReason(ctx, userID, reason)
}

func (s *PointsService) Balance(ctx context.Context, userID uint) (int, error) {
	return s.repo.BalanceByUser(ctx, userID)
}

func (s *PointsService) History(ctx context.Context, userID uint, limit, offset int) ([]*points.Transaction, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
