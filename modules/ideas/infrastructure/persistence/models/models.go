package models

import "time"

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
	BaseContent          []byte
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DeletedAt            *time.Time
}

type CollaborationRequest struct {
	ID              uint
	IdeaID          uint
	RequesterID     uint
	Message         string
	Status          string
	ResponseMessage *string
	RequestedAt     time.Time
	RespondedAt     *time.Time
}

type Collaborator struct {
	ID          uint
	IdeaID      uint
	UserID      uint
	Permission  string
	InvitedByID uint
	Status      string
	InvitedAt   time.Time
	AcceptedAt  *time.Time
	RemovedAt   *time.Time
}

type Revision struct {
	ID             uint
	IdeaID         uint
	RevisionNumber int
	Changes        []byte
	Summary        string
	CreatedByID    uint
	RevisionType   string
	Status         string
	ReviewNote     *string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
}
