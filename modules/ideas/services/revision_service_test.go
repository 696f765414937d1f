package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/services"
)

type ideaLockRepo struct {
	idea.Repository
	entity *idea.Idea
}

func (r *ideaLockRepo) GetByIDForUpdate(_ context.Context, _ uint) (*idea.Idea, error) {
	return r.entity, nil
}

type revisionMemRepo struct {
	revision.Repository
	created []*revision.Revision
}

func (r *revisionMemRepo) MaxNumber(_ context.Context, _ uint) (int, error) {
	return len(r.created), nil
}

func (r *revisionMemRepo) Create(_ context.Context, entity *revision.Revision) (*revision.Revision, error) {
	entity.ID = uint(len(r.created) + 1)
	r.created = append(r.created, entity)
	return entity, nil
}

type collaboratorLookupRepo struct {
	collaboration.CollaboratorRepository
	byUser map[uint]*collaboration.Collaborator
}

func (r *collaboratorLookupRepo) GetByIdeaAndUser(_ context.Context, _, userID uint) (*collaboration.Collaborator, error) {
	if c, ok := r.byUser[userID]; ok {
		return c, nil
	}
	return nil, persistence.ErrCollaboratorNotFound
}

func TestCreateRevision_Permissions(t *testing.T) {
	entity := &idea.Idea{ID: 1, AuthorID: 1, Title: "Smart Tolling", CollaborationEnabled: true}
	collaborators := &collaboratorLookupRepo{byUser: map[uint]*collaboration.Collaborator{
		2: {ID: 10, IdeaID: 1, UserID: 2, Permission: collaboration.PermissionSuggest, Status: collaboration.CollaboratorStatusActive},
		3: {ID: 11, IdeaID: 1, UserID: 3, Permission: collaboration.PermissionEdit, Status: collaboration.CollaboratorStatusRemoved},
	}}
	svc := services.NewRevisionService(&ideaLockRepo{entity: entity}, &revisionMemRepo{}, collaborators)
	ctx := context.Background()

	// Suggest-level active collaborators may propose.
	result, err := svc.CreateRevision(ctx, 1, 2, revision.ChangeSet{"title": "Smarter Tolling"}, "")
	require.NoError(t, err)
	require.Equal(t, 1, result.Revision.Number)
	require.Equal(t, revision.TypeCollaborator, result.Revision.Type)
	require.Equal(t, revision.StatusPending, result.Revision.Status)

	// The author proposes too, as an author-type revision.
	result, err = svc.CreateRevision(ctx, 1, 1, revision.ChangeSet{"expected_impact": "Large"}, "")
	require.NoError(t, err)
	require.Equal(t, 2, result.Revision.Number)
	require.Equal(t, revision.TypeAuthor, result.Revision.Type)
	require.Equal(t, revision.StatusPending, result.Revision.Status)

	// Removed collaborators and outsiders may not.
	_, err = svc.CreateRevision(ctx, 1, 3, revision.ChangeSet{"title": "x"}, "")
	requireServiceCode(t, err, "FORBIDDEN")
	_, err = svc.CreateRevision(ctx, 1, 4, revision.ChangeSet{"title": "x"}, "")
	requireServiceCode(t, err, "FORBIDDEN")
}
