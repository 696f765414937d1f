package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/points"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/repo"
)

type PointsRepository struct{}

func NewPointsRepository() points.Repository {
	return &PointsRepository{}
}

func (r *PointsRepository) Create(ctx context.Context, entity *points.Transaction) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now()
	}
	return tx.QueryRow(
		ctx,
		`INSERT INTO point_transactions (user_id, points, reason, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		entity.UserID,
		entity.Points,
		entity.Reason,
		entity.CreatedAt,
	).Scan(&entity.ID)
}

func (r *PointsRepository) HasReason(ctx context.Context, userID uint, reason string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	query := repo.Exists(`SELECT 1 FROM point_transactions WHERE user_id = $1 AND reason = $2`)
	exists := false
	if err := tx.QueryRow(ctx, query, userID, reason).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking point reason existence failed")
	}
	return exists, nil
}

func (r *PointsRepository) BalanceByUser(ctx context.Context, userID uint) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var balance int
	err = tx.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(points), 0) FROM point_transactions WHERE user_id = $1`,
		userID,
	).Scan(&balance)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read point balance")
	}
	return balance, nil
}

func (r *PointsRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*points.Transaction, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	query := `
		SELECT id, user_id, points, reason, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC ` + repo.FormatLimitOffset(limit, offset)

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query point transactions")
	}
	defer rows.Close()

	var out []*points.Transaction
	for rows.Next() {
		var t points.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Points, &t.Reason, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan point transaction row")
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
