package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/notification"
)

type NotificationService struct {
	repo notification.Repository
	log  *logrus.Logger
}

func NewNotificationService(repo notification.Repository, log *logrus.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// Notify is fire-and-forget: delivery failure is logged and swallowed so
// a broken notification channel never rolls back a workflow transition.
func (s *NotificationService) Notify(ctx context.Context, userID uint, severity, title, message, actionURL string) {
	entity := &notification.Notification{
		UserID:   userID,
		Severity: severity,
		Title:    title,
		Message:  message,
	}
	if actionURL != "" {
		entity.ActionURL = &actionURL
	}
	if err := s.repo.Create(ctx, entity); err != nil && s.log != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"title":   title,
		}).Warn("notification delivery failed")
	}
}

func (s *NotificationService) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	if params == nil {
		return nil, nil
	}
	return s.repo.List(ctx, params)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}
