package idea_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
)

func TestApplyContent(t *testing.T) {
	entity := &idea.Idea{
		Title:            "Smart tolling",
		ProblemStatement: "Manual toll booths cause queues",
	}

	err := entity.ApplyContent(map[string]string{
		"title":             "Smarter tolling",
		"proposed_solution": "Automated number plate recognition",
	})
	require.NoError(t, err)
	require.Equal(t, "Smarter tolling", entity.Title)
	require.Equal(t, "Automated number plate recognition", entity.ProposedSolution)
	require.Equal(t, "Manual toll booths cause queues", entity.ProblemStatement)
}

func TestApplyContent_UnknownField(t *testing.T) {
	entity := &idea.Idea{Title: "x"}
	err := entity.ApplyContent(map[string]string{"slug": "not-allowed"})
	require.Error(t, err)
	require.Equal(t, "x", entity.Title)
}

func TestContentRoundTrip(t *testing.T) {
	entity := &idea.Idea{
		Title:            "a",
		ProblemStatement: "b",
		ProposedSolution: "c",
		ExpectedImpact:   "d",
	}
	content := entity.Content()
	require.Len(t, content, len(idea.ContentFields))
	for _, field := range idea.ContentFields {
		require.True(t, idea.IsContentField(field))
		require.Contains(t, content, field)
	}
	require.False(t, idea.IsContentField("status"))
}
