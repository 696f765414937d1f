package revision

import "context"

type Repository interface {
	Create(ctx context.Context, entity *Revision) (*Revision, error)
	GetByID(ctx context.Context, id uint) (*Revision, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*Revision, error)
	// GetAcceptedByNumber returns ErrRevisionNotFound when the idea has no
	// accepted revision with that number.
	GetAcceptedByNumber(ctx context.Context, ideaID uint, number int) (*Revision, error)
	MaxNumber(ctx context.Context, ideaID uint) (int, error)
	UpdateStatus(ctx context.Context, id uint, status string, reviewNote *string) error
	ListByIdea(ctx context.Context, ideaID uint) ([]*Revision, error)
	// ListAcceptedUpTo returns accepted revisions with number <= the given
	// bound, ordered by number ascending. Used to replay content for
	// rollbacks.
	ListAcceptedUpTo(ctx context.Context, ideaID uint, number int) ([]*Revision, error)
}
