package idea

import "context"

type Repository interface {
	Create(ctx context.Context, entity *Idea) (*Idea, error)
	GetByID(ctx context.Context, id uint) (*Idea, error)
	GetBySlug(ctx context.Context, slug string) (*Idea, error)
	// GetByIDForUpdate locks the idea row for the remainder of the
	// transaction. All revision-number assignment and collaborator state
	// transitions for an idea happen under this lock.
	GetByIDForUpdate(ctx context.Context, id uint) (*Idea, error)
	Update(ctx context.Context, entity *Idea) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}
