package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence/models"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/repo"
)

var ErrRevisionNotFound = errors.New("revision not found")

const (
	revisionFindQuery = `
        SELECT
            v.id,
            v.idea_id,
            v.revision_number,
            v.changes,
            v.summary,
            v.created_by_id,
            v.revision_type,
            v.status,
            v.review_note,
            v.created_at,
            v.reviewed_at
        FROM idea_revisions v`

	revisionMaxNumberQuery = `SELECT COALESCE(MAX(revision_number), 0) FROM idea_revisions WHERE idea_id = $1`

	revisionUpdateStatusQuery = `
        UPDATE idea_revisions SET status = $1, review_note = $2, reviewed_at = $3 WHERE id = $4`
)

type PgRevisionRepository struct{}

func NewRevisionRepository() revision.Repository {
	return &PgRevisionRepository{}
}

func (g *PgRevisionRepository) Create(ctx context.Context, entity *revision.Revision) (*revision.Revision, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	changes, err := entity.Changes.MarshalDB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode revision changes")
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now()
	}

	fields := []string{
		"idea_id",
		"revision_number",
		"changes",
		"summary",
		"created_by_id",
		"revision_type",
		"status",
		"created_at",
	}
	q := repo.Insert("idea_revisions", fields, "id")
	err = tx.QueryRow(ctx, q,
		entity.IdeaID,
		entity.Number,
		changes,
		entity.Summary,
		entity.CreatedByID,
		entity.Type,
		entity.Status,
		entity.CreatedAt,
	).Scan(&entity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert revision")
	}
	return entity, nil
}

func (g *PgRevisionRepository) GetByID(ctx context.Context, id uint) (*revision.Revision, error) {
	return g.queryOne(ctx, revisionFindQuery+" WHERE v.id = $1", id)
}

func (g *PgRevisionRepository) GetByIDForUpdate(ctx context.Context, id uint) (*revision.Revision, error) {
	return g.queryOne(ctx, revisionFindQuery+" WHERE v.id = $1 FOR UPDATE OF v", id)
}

func (g *PgRevisionRepository) GetAcceptedByNumber(ctx context.Context, ideaID uint, number int) (*revision.Revision, error) {
	return g.queryOne(
		ctx,
		revisionFindQuery+" WHERE v.idea_id = $1 AND v.revision_number = $2 AND v.status = $3",
		ideaID,
		number,
		revision.StatusAccepted,
	)
}

func (g *PgRevisionRepository) MaxNumber(ctx context.Context, ideaID uint) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var number int
	if err := tx.QueryRow(ctx, revisionMaxNumberQuery, ideaID).Scan(&number); err != nil {
		return 0, errors.Wrap(err, "failed to read max revision number")
	}
	return number, nil
}

func (g *PgRevisionRepository) UpdateStatus(ctx context.Context, id uint, status string, reviewNote *string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, revisionUpdateStatusQuery, status, reviewNote, time.Now(), id); err != nil {
		return errors.Wrap(err, "failed to update revision status")
	}
	return nil
}

func (g *PgRevisionRepository) ListByIdea(ctx context.Context, ideaID uint) ([]*revision.Revision, error) {
	return g.queryMany(ctx, revisionFindQuery+" WHERE v.idea_id = $1 ORDER BY v.revision_number", ideaID)
}

func (g *PgRevisionRepository) ListAcceptedUpTo(ctx context.Context, ideaID uint, number int) ([]*revision.Revision, error) {
	return g.queryMany(
		ctx,
		revisionFindQuery+" WHERE v.idea_id = $1 AND v.revision_number <= $2 AND v.status = $3 ORDER BY v.revision_number",
		ideaID,
		number,
		revision.StatusAccepted,
	)
}

func (g *PgRevisionRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*revision.Revision, error) {
	revisions, err := g.queryMany(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, ErrRevisionNotFound
	}
	return revisions[0], nil
}

func (g *PgRevisionRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*revision.Revision, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query revisions")
	}
	defer rows.Close()

	var out []*revision.Revision
	for rows.Next() {
		var m models.Revision
		if err := rows.Scan(
			&m.ID,
			&m.IdeaID,
			&m.RevisionNumber,
			&m.Changes,
			&m.Summary,
			&m.CreatedByID,
			&m.RevisionType,
			&m.Status,
			&m.ReviewNote,
			&m.CreatedAt,
			&m.ReviewedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan revision row")
		}
		entity, err := toDomainRevision(&m)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
