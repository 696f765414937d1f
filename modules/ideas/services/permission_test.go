package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
)

func TestCanAct(t *testing.T) {
	entity := &idea.Idea{ID: 10, AuthorID: 1}

	collaborator := func(userID uint, permission, status string) *collaboration.Collaborator {
		return &collaboration.Collaborator{IdeaID: 10, UserID: userID, Permission: permission, Status: status}
	}

	cases := []struct {
		name         string
		userID       uint
		collaborator *collaboration.Collaborator
		capability   string
		want         bool
	}{
		{"author suggest", 1, nil, CapabilitySuggest, true},
		{"author edit", 1, nil, CapabilityEdit, true},
		{"stranger", 2, nil, CapabilitySuggest, false},
		{"active edit collaborator edit", 2, collaborator(2, collaboration.PermissionEdit, collaboration.CollaboratorStatusActive), CapabilityEdit, true},
		{"active edit collaborator suggest", 2, collaborator(2, collaboration.PermissionEdit, collaboration.CollaboratorStatusActive), CapabilitySuggest, true},
		{"active suggest collaborator edit", 2, collaborator(2, collaboration.PermissionSuggest, collaboration.CollaboratorStatusActive), CapabilityEdit, false},
		{"active suggest collaborator suggest", 2, collaborator(2, collaboration.PermissionSuggest, collaboration.CollaboratorStatusActive), CapabilitySuggest, true},
		{"pending collaborator", 2, collaborator(2, collaboration.PermissionEdit, collaboration.CollaboratorStatusPending), CapabilitySuggest, false},
		{"removed collaborator", 2, collaborator(2, collaboration.PermissionEdit, collaboration.CollaboratorStatusRemoved), CapabilityEdit, false},
		{"record for another user", 3, collaborator(2, collaboration.PermissionEdit, collaboration.CollaboratorStatusActive), CapabilityEdit, false},
		{"unknown capability", 2, collaborator(2, collaboration.PermissionEdit, collaboration.CollaboratorStatusActive), "approve", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanAct(tc.userID, entity, tc.collaborator, tc.capability))
		})
	}
}

func TestCanAct_NilIdea(t *testing.T) {
	require.False(t, CanAct(1, nil, nil, CapabilitySuggest))
}

func TestCanAct_CollaboratorFromOtherIdea(t *testing.T) {
	entity := &idea.Idea{ID: 10, AuthorID: 1}
	other := &collaboration.Collaborator{
		IdeaID:     11,
		UserID:     2,
		Permission: collaboration.PermissionEdit,
		Status:     collaboration.CollaboratorStatusActive,
	}
	require.False(t, CanAct(2, entity, other, CapabilityEdit))
}
