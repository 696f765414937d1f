package idea

import (
	"fmt"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// Content field names recognized by the revision workflow. Changed-field
// maps are validated against this set at write time.
const (
	FieldTitle            = "title"
	FieldProblemStatement = "problem_statement"
	FieldProposedSolution = "proposed_solution"
	FieldExpectedImpact   = "expected_impact"
)

var ContentFields = []string{
	FieldTitle,
	FieldProblemStatement,
	FieldProposedSolution,
	FieldExpectedImpact,
}

func IsContentField(name string) bool {
	for _, f := range ContentFields {
		if f == name {
			return true
		}
	}
	return false
}

type Idea struct {
	ID                   uint
	Title                string
	Slug                 string
	AuthorID             uint
	ProblemStatement     string
	ProposedSolution     string
	ExpectedImpact       string
	CollaborationEnabled bool
	Status               string
	// BaseContent freezes the content fields as they were at creation.
	// Accepted revisions replayed over it reconstruct the content at any
	// revision number.
	BaseContent map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Content returns the live values of the revisable fields.
func (i *Idea) Content() map[string]string {
	return map[string]string{
		FieldTitle:            i.Title,
		FieldProblemStatement: i.ProblemStatement,
		FieldProposedSolution: i.ProposedSolution,
		FieldExpectedImpact:   i.ExpectedImpact,
	}
}

// ApplyContent writes a sparse changed-field map onto the idea. Unknown
// keys are rejected.
func (i *Idea) ApplyContent(changes map[string]string) error {
	for name, value := range changes {
		switch name {
		case FieldTitle:
			i.Title = value
		case FieldProblemStatement:
			i.ProblemStatement = value
		case FieldProposedSolution:
			i.ProposedSolution = value
		case FieldExpectedImpact:
			i.ExpectedImpact = value
		default:
			return fmt.Errorf("unknown content field: %s", name)
		}
	}
	return nil
}

func (i *Idea) IsAuthor(userID uint) bool {
	return i.AuthorID == userID
}
