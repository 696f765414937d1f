package repo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/repo"
)

func TestJoin(t *testing.T) {
	require.Equal(t, "SELECT 1 FROM ideas WHERE id = $1", repo.Join("SELECT 1 FROM ideas", "", "WHERE id = $1"))
	require.Equal(t, "", repo.Join("", "  "))
}

func TestJoinWhere(t *testing.T) {
	require.Equal(t, "", repo.JoinWhere())
	require.Equal(t, "WHERE a = $1 AND b = $2", repo.JoinWhere("a = $1", "b = $2"))
}

func TestInsert(t *testing.T) {
	require.Equal(t,
		"INSERT INTO ideas (title, slug) VALUES ($1, $2) RETURNING id",
		repo.Insert("ideas", []string{"title", "slug"}, "id"),
	)
	require.Equal(t,
		"INSERT INTO ideas (title) VALUES ($1)",
		repo.Insert("ideas", []string{"title"}),
	)
}

func TestUpdate(t *testing.T) {
	require.Equal(t,
		"UPDATE ideas SET title = $1, status = $2 WHERE id = $3",
		repo.Update("ideas", []string{"title", "status"}, "id = $3"),
	)
}

func TestExists(t *testing.T) {
	require.Equal(t, "SELECT EXISTS (SELECT 1 FROM ideas)", repo.Exists("SELECT 1 FROM ideas"))
}

func TestFormatLimitOffset(t *testing.T) {
	require.Equal(t, "", repo.FormatLimitOffset(0, 0))
	require.Equal(t, "LIMIT 10", repo.FormatLimitOffset(10, 0))
	require.Equal(t, "OFFSET 5", repo.FormatLimitOffset(0, 5))
	require.Equal(t, "LIMIT 10 OFFSET 5", repo.FormatLimitOffset(10, 5))
}
