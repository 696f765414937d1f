package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence/models"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/repo"
)

var (
	ErrRequestNotFound      = errors.New("collaboration request not found")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
)

const (
	requestFindQuery = `
        SELECT
            r.id,
            r.idea_id,
            r.requester_id,
            r.message,
            r.status,
            r.response_message,
            r.requested_at,
            r.responded_at
        FROM idea_collaboration_requests r`

	requestPendingExistsQuery = `SELECT 1 FROM idea_collaboration_requests r`

	collaboratorFindQuery = `
        SELECT
            c.id,
            c.idea_id,
            c.user_id,
            c.permission,
            c.invited_by_id,
            c.status,
            c.invited_at,
            c.accepted_at,
            c.removed_at
        FROM idea_collaborators c`
)

type PgRequestRepository struct{}

func NewRequestRepository() collaboration.RequestRepository {
	return &PgRequestRepository{}
}

func (g *PgRequestRepository) Create(ctx context.Context, entity *collaboration.Request) (*collaboration.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	if entity.RequestedAt.IsZero() {
		entity.RequestedAt = time.Now()
	}
	fields := []string{"idea_id", "requester_id", "message", "status", "requested_at"}
	q := repo.Insert("idea_collaboration_requests", fields, "id")
	err = tx.QueryRow(ctx, q,
		entity.IdeaID,
		entity.RequesterID,
		entity.Message,
		entity.Status,
		entity.RequestedAt,
	).Scan(&entity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert collaboration request")
	}
	return entity, nil
}

func (g *PgRequestRepository) GetByID(ctx context.Context, id uint) (*collaboration.Request, error) {
	return g.queryOne(ctx, requestFindQuery+" WHERE r.id = $1", id)
}

func (g *PgRequestRepository) GetByIDForUpdate(ctx context.Context, id uint) (*collaboration.Request, error) {
	return g.queryOne(ctx, requestFindQuery+" WHERE r.id = $1 FOR UPDATE OF r", id)
}

func (g *PgRequestRepository) HasPending(ctx context.Context, ideaID, requesterID uint) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	query := repo.Exists(repo.Join(
		requestPendingExistsQuery,
		"WHERE r.idea_id = $1 AND r.requester_id = $2 AND r.status = $3",
	))
	exists := false
	err = tx.QueryRow(ctx, query, ideaID, requesterID, collaboration.RequestStatusPending).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "checking pending request existence failed")
	}
	return exists, nil
}

func (g *PgRequestRepository) Update(ctx context.Context, entity *collaboration.Request) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	fields := []string{"status", "response_message", "responded_at"}
	q := repo.Update("idea_collaboration_requests", fields, fmt.Sprintf("id = $%d", len(fields)+1))
	_, err = tx.Exec(ctx, q, entity.Status, entity.ResponseMessage, entity.RespondedAt, entity.ID)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to update collaboration request with ID: %d", entity.ID))
	}
	return nil
}

func (g *PgRequestRepository) ListByIdea(ctx context.Context, ideaID uint) ([]*collaboration.Request, error) {
	return g.queryMany(ctx, requestFindQuery+" WHERE r.idea_id = $1 ORDER BY r.requested_at DESC", ideaID)
}

func (g *PgRequestRepository) ListPendingByRequester(ctx context.Context, requesterID uint) ([]*collaboration.Request, error) {
	return g.queryMany(
		ctx,
		requestFindQuery+" WHERE r.requester_id = $1 AND r.status = $2 ORDER BY r.requested_at DESC",
		requesterID,
		collaboration.RequestStatusPending,
	)
}

func (g *PgRequestRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*collaboration.Request, error) {
	requests, err := g.queryMany(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrRequestNotFound
	}
	return requests[0], nil
}

func (g *PgRequestRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*collaboration.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query collaboration requests")
	}
	defer rows.Close()

	var out []*collaboration.Request
	for rows.Next() {
		var m models.CollaborationRequest
		if err := rows.Scan(
			&m.ID,
			&m.IdeaID,
			&m.RequesterID,
			&m.Message,
			&m.Status,
			&m.ResponseMessage,
			&m.RequestedAt,
			&m.RespondedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan collaboration request row")
		}
		out = append(out, toDomainRequest(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

type PgCollaboratorRepository struct{}

func NewCollaboratorRepository() collaboration.CollaboratorRepository {
	return &PgCollaboratorRepository{}
}

func (g *PgCollaboratorRepository) Create(ctx context.Context, entity *collaboration.Collaborator) (*collaboration.Collaborator, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	if entity.InvitedAt.IsZero() {
		entity.InvitedAt = time.Now()
	}
	fields := []string{"idea_id", "user_id", "permission", "invited_by_id", "status", "invited_at", "accepted_at"}
	q := repo.Insert("idea_collaborators", fields, "id")
	err = tx.QueryRow(ctx, q,
		entity.IdeaID,
		entity.UserID,
		entity.Permission,
		entity.InvitedByID,
		entity.Status,
		entity.InvitedAt,
		entity.AcceptedAt,
	).Scan(&entity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert collaborator")
	}
	return entity, nil
}

func (g *PgCollaboratorRepository) GetByID(ctx context.Context, id uint) (*collaboration.Collaborator, error) {
	return g.queryOne(ctx, collaboratorFindQuery+" WHERE c.id = $1", id)
}

func (g *PgCollaboratorRepository) GetByIDForUpdate(ctx context.Context, id uint) (*collaboration.Collaborator, error) {
	return g.queryOne(ctx, collaboratorFindQuery+" WHERE c.id = $1 FOR UPDATE OF c", id)
}

func (g *PgCollaboratorRepository) GetByIdeaAndUser(ctx context.Context, ideaID, userID uint) (*collaboration.Collaborator, error) {
	return g.queryOne(ctx, collaboratorFindQuery+" WHERE c.idea_id = $1 AND c.user_id = $2", ideaID, userID)
}

func (g *PgCollaboratorRepository) Update(ctx context.Context, entity *collaboration.Collaborator) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	fields := []string{"permission", "status", "accepted_at", "removed_at"}
	q := repo.Update("idea_collaborators", fields, fmt.Sprintf("id = $%d", len(fields)+1))
	_, err = tx.Exec(ctx, q, entity.Permission, entity.Status, entity.AcceptedAt, entity.RemovedAt, entity.ID)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to update collaborator with ID: %d", entity.ID))
	}
	return nil
}

func (g *PgCollaboratorRepository) ListByIdea(ctx context.Context, ideaID uint) ([]*collaboration.Collaborator, error) {
	return g.queryMany(ctx, collaboratorFindQuery+" WHERE c.idea_id = $1 ORDER BY c.invited_at", ideaID)
}

func (g *PgCollaboratorRepository) ListActiveByIdea(ctx context.Context, ideaID uint) ([]*collaboration.Collaborator, error) {
	return g.queryMany(
		ctx,
		collaboratorFindQuery+" WHERE c.idea_id = $1 AND c.status = $2 ORDER BY c.invited_at",
		ideaID,
		collaboration.CollaboratorStatusActive,
	)
}

func (g *PgCollaboratorRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*collaboration.Collaborator, error) {
	collaborators, err := g.queryMany(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(collaborators) == 0 {
		return nil, ErrCollaboratorNotFound
	}
	return collaborators[0], nil
}

func (g *PgCollaboratorRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*collaboration.Collaborator, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query collaborators")
	}
	defer rows.Close()

	var out []*collaboration.Collaborator
	for rows.Next() {
		var m models.Collaborator
		if err := rows.Scan(
			&m.ID,
			&m.IdeaID,
			&m.UserID,
			&m.Permission,
			&m.InvitedByID,
			&m.Status,
			&m.InvitedAt,
			&m.AcceptedAt,
			&m.RemovedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan collaborator row")
		}
		out = append(out, toDomainCollaborator(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
