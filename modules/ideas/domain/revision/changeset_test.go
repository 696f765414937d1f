package revision_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
)

func TestCompare_SymmetricKeyUnion(t *testing.T) {
	left := revision.ChangeSet{
		"title":             "Old title",
		"problem_statement": "Roads are congested",
	}
	right := revision.ChangeSet{
		"title":           "New title",
		"expected_impact": "Less congestion",
	}

	deltas := revision.Compare(left, right)
	require.Len(t, deltas, 3)

	require.Equal(t, "expected_impact", deltas[0].Field)
	require.Nil(t, deltas[0].Left)
	require.NotNil(t, deltas[0].Right)
	require.Equal(t, "Less congestion", *deltas[0].Right)

	require.Equal(t, "problem_statement", deltas[1].Field)
	require.NotNil(t, deltas[1].Left)
	require.Equal(t, "Roads are congested", *deltas[1].Left)
	require.Nil(t, deltas[1].Right)

	require.Equal(t, "title", deltas[2].Field)
	require.Equal(t, "Old title", *deltas[2].Left)
	require.Equal(t, "New title", *deltas[2].Right)
}

func TestCompare_EmptySides(t *testing.T) {
	require.Empty(t, revision.Compare(nil, nil))

	deltas := revision.Compare(nil, revision.ChangeSet{"title": "x"})
	require.Len(t, deltas, 1)
	require.Nil(t, deltas[0].Left)
	require.Equal(t, "x", *deltas[0].Right)
}

func TestChangeSetDBRoundTrip(t *testing.T) {
	raw, err := revision.ChangeSet(nil).MarshalDB()
	require.NoError(t, err)
	require.Equal(t, "{}", string(raw))

	cs, err := revision.ChangeSetFromDB(nil)
	require.NoError(t, err)
	require.Empty(t, cs)

	cs, err = revision.ChangeSetFromDB([]byte(`{"title":"a"}`))
	require.NoError(t, err)
	require.Equal(t, revision.ChangeSet{"title": "a"}, cs)
}
