package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/audit"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/repo"
)

type AuditRepository struct{}

func NewAuditRepository() audit.Repository {
	return &AuditRepository{}
}

func (r *AuditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return errors.Wrap(err, "failed to encode audit metadata")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	return tx.QueryRow(
		ctx,
		`INSERT INTO audit_entries (actor_id, action, subject_type, subject_id, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		entry.ActorID,
		entry.Action,
		entry.SubjectType,
		entry.SubjectID,
		metadata,
		entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *AuditRepository) List(ctx context.Context, params *audit.FindParams) ([]*audit.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	where, args := buildAuditFilters(params)
	query := `
		SELECT id, actor_id, action, subject_type, subject_id, metadata, created_at
		FROM audit_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query audit entries")
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var entry audit.Entry
		var metadata []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.SubjectType,
			&entry.SubjectID,
			&metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan audit entry row")
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, errors.Wrap(err, "failed to decode audit metadata")
			}
		}
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (r *AuditRepository) Count(ctx context.Context, params *audit.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	where, args := buildAuditFilters(params)
	query := `SELECT COUNT(*) FROM audit_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count audit entries")
	}
	return count, nil
}

func buildAuditFilters(params *audit.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if params == nil {
		return where, args
	}

	if params.ActorID != nil {
		where = append(where, fmt.Sprintf("actor_id = $%d", len(args)+1))
		args = append(args, *params.ActorID)
	}
	if action := strings.TrimSpace(params.Action); action != "" {
		where = append(where, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, action)
	}
	if subjectType := strings.TrimSpace(params.SubjectType); subjectType != "" {
		where = append(where, fmt.Sprintf("subject_type = $%d", len(args)+1))
		args = append(args, subjectType)
	}
	if params.SubjectID != nil {
		where = append(where, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, *params.SubjectID)
	}
	return where, args
}
