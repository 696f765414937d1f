package collaboration

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// Request is an unsolicited ask from a non-author to join an idea. At most
// one pending request may exist per (idea, requester) pair.
type Request struct {
	ID              uint
	IdeaID          uint
	RequesterID     uint
	Message         string
	Status          string
	ResponseMessage *string
	RequestedAt     time.Time
	RespondedAt     *time.Time
}

func (r *Request) IsPending() bool {
	return r.Status == RequestStatusPending
}
