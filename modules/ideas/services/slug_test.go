package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Smart Tolling for Highways", "smart-tolling-for-highways"},
		{"  Weird -- punctuation!!  ", "weird-punctuation"},
		{"UPPER case 123", "upper-case-123"},
		{"", "idea"},
		{"!!!", "idea"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, slugify(tc.in), "input %q", tc.in)
	}
}

type slugProbeRepo struct {
	idea.Repository
	taken map[string]bool
}

func (r *slugProbeRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return r.taken[slug], nil
}

func TestUniqueSlug(t *testing.T) {
	repo := &slugProbeRepo{taken: map[string]bool{}}
	slug, err := uniqueSlug(context.Background(), repo, "Smart Tolling")
	require.NoError(t, err)
	require.Equal(t, "smart-tolling", slug)

	repo.taken["smart-tolling"] = true
	slug, err = uniqueSlug(context.Background(), repo, "Smart Tolling")
	require.NoError(t, err)
	require.Equal(t, "smart-tolling-2", slug)

	for _, s := range []string{"smart-tolling-2", "smart-tolling-3", "smart-tolling-4", "smart-tolling-5"} {
		repo.taken[s] = true
	}
	slug, err = uniqueSlug(context.Background(), repo, "Smart Tolling")
	require.NoError(t, err)
	require.NotEqual(t, "smart-tolling", slug)
	require.Len(t, slug, len("smart-tolling-")+8)
}
