package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence/models"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/repo"
)

var ErrIdeaNotFound = errors.New("idea not found")

const (
	ideaFindQuery = `
        SELECT
            i.id,
            i.title,
            i.slug,
            i.author_id,
            i.problem_statement,
            i.proposed_solution,
            i.expected_impact,
            i.collaboration_enabled,
            i.status,
            i.base_content,
            i.created_at,
            i.updated_at,
            i.deleted_at
        FROM ideas i`

	ideaSlugExistsQuery = `SELECT 1 FROM ideas i`
)

type PgIdeaRepository struct{}

func NewIdeaRepository() idea.Repository {
	return &PgIdeaRepository{}
}

func (g *PgIdeaRepository) Create(ctx context.Context, entity *idea.Idea) (*idea.Idea, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	now := time.Now()
	entity.CreatedAt = now
	entity.UpdatedAt = now
	dbIdea, err := toDBIdea(entity)
	if err != nil {
		return nil, err
	}

	fields := []string{
		"title",
		"slug",
		"author_id",
		"problem_statement",
		"proposed_solution",
		"expected_impact",
		"collaboration_enabled",
		"status",
		"base_content",
		"created_at",
		"updated_at",
	}
	q := repo.Insert("ideas", fields, "id")
	err = tx.QueryRow(ctx, q,
		dbIdea.Title,
		dbIdea.Slug,
		dbIdea.AuthorID,
		dbIdea.ProblemStatement,
		dbIdea.ProposedSolution,
		dbIdea.ExpectedImpact,
		dbIdea.CollaborationEnabled,
		dbIdea.Status,
		dbIdea.BaseContent,
		dbIdea.CreatedAt,
		dbIdea.UpdatedAt,
	).Scan(&entity.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert idea")
	}
	return g.GetByID(ctx, entity.ID)
}

func (g *PgIdeaRepository) GetByID(ctx context.Context, id uint) (*idea.Idea, error) {
	return g.queryOne(ctx, ideaFindQuery+" WHERE i.id = $1 AND i.deleted_at IS NULL", id)
}

func (g *PgIdeaRepository) GetBySlug(ctx context.Context, slug string) (*idea.Idea, error) {
	return g.queryOne(ctx, ideaFindQuery+" WHERE i.slug = $1 AND i.deleted_at IS NULL", slug)
}

func (g *PgIdeaRepository) GetByIDForUpdate(ctx context.Context, id uint) (*idea.Idea, error) {
	return g.queryOne(ctx, ideaFindQuery+" WHERE i.id = $1 AND i.deleted_at IS NULL FOR UPDATE OF i", id)
}

func (g *PgIdeaRepository) Update(ctx context.Context, entity *idea.Idea) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	entity.UpdatedAt = time.Now()
	dbIdea, err := toDBIdea(entity)
	if err != nil {
		return err
	}

	fields := []string{
		"title",
		"problem_statement",
		"proposed_solution",
		"expected_impact",
		"collaboration_enabled",
		"status",
		"updated_at",
	}
	q := repo.Update("ideas", fields, fmt.Sprintf("id = $%d", len(fields)+1))
	_, err = tx.Exec(ctx, q,
		dbIdea.Title,
		dbIdea.ProblemStatement,
		dbIdea.ProposedSolution,
		dbIdea.ExpectedImpact,
		dbIdea.CollaborationEnabled,
		dbIdea.Status,
		dbIdea.UpdatedAt,
		dbIdea.ID,
	)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to update idea with ID: %d", dbIdea.ID))
	}
	return nil
}

func (g *PgIdeaRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	query := repo.Exists(repo.Join(ideaSlugExistsQuery, "WHERE i.slug = $1"))
	exists := false
	if err := tx.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking slug existence failed")
	}
	return exists, nil
}

func (g *PgIdeaRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*idea.Idea, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var m models.Idea
	err = tx.QueryRow(ctx, query, args...).Scan(
		&m.ID,
		&m.Title,
		&m.Slug,
		&m.AuthorID,
		&m.ProblemStatement,
		&m.ProposedSolution,
		&m.ExpectedImpact,
		&m.CollaborationEnabled,
		&m.Status,
		&m.BaseContent,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIdeaNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query idea")
	}
	return toDomainIdea(&m)
}
