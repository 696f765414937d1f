package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/notification"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/repo"
)

type NotificationRepository struct{}

func NewNotificationRepository() notification.Repository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, entity *notification.Notification) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now()
	}
	return tx.QueryRow(
		ctx,
		`INSERT INTO notifications (user_id, severity, title, message, action_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		entity.UserID,
		entity.Severity,
		entity.Title,
		entity.Message,
		entity.ActionURL,
		entity.CreatedAt,
	).Scan(&entity.ID)
}

func (r *NotificationRepository) List(ctx context.Context, params *notification.FindParams) ([]*notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	query := `
		SELECT id, user_id, severity, title, message, action_url, read_at, created_at
		FROM notifications
		WHERE user_id = $1`
	args := []interface{}{params.UserID}
	if params.UnreadOnly {
		query += " AND read_at IS NULL"
	}
	query += " ORDER BY created_at DESC " + repo.FormatLimitOffset(params.Limit, params.Offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query notifications")
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Severity,
			&n.Title,
			&n.Message,
			&n.ActionURL,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan notification row")
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	_, err = tx.Exec(
		ctx,
		`UPDATE notifications SET read_at = NOW() WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		id,
		userID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark notification as read")
	}
	return nil
}
