package collaboration

import "context"

type RequestRepository interface {
	Create(ctx context.Context, entity *Request) (*Request, error)
	GetByID(ctx context.Context, id uint) (*Request, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*Request, error)
	HasPending(ctx context.Context, ideaID, requesterID uint) (bool, error)
	Update(ctx context.Context, entity *Request) error
	ListByIdea(ctx context.Context, ideaID uint) ([]*Request, error)
	ListPendingByRequester(ctx context.Context, requesterID uint) ([]*Request, error)
}

type CollaboratorRepository interface {
	Create(ctx context.Context, entity *Collaborator) (*Collaborator, error)
	GetByID(ctx context.Context, id uint) (*Collaborator, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*Collaborator, error)
	// GetByIdeaAndUser returns ErrCollaboratorNotFound when no record
	// exists for the pair.
	GetByIdeaAndUser(ctx context.Context, ideaID, userID uint) (*Collaborator, error)
	Update(ctx context.Context, entity *Collaborator) error
	ListByIdea(ctx context.Context, ideaID uint) ([]*Collaborator, error)
	ListActiveByIdea(ctx context.Context, ideaID uint) ([]*Collaborator, error)
}
