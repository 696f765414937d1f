package services

import (
	"fmt"
	"net/http"
)

// ServiceError is the discriminated failure surfaced by every workflow
// operation. Callers branch on Code; Status maps it onto HTTP.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

// Authorization failures. Never retried.
func errNotAuthor() *ServiceError {
	return newServiceError(http.StatusForbidden, "NOT_AUTHOR", "only the idea author may perform this action", nil)
}

func errForbidden(message string) *ServiceError {
	return newServiceError(http.StatusForbidden, "FORBIDDEN", message, nil)
}

// State conflicts: the requested transition is illegal for the current
// entity state. Surfaced as "already handled", never retried.
func errInvalidState(message string) *ServiceError {
	return newServiceError(http.StatusConflict, "INVALID_STATE", message, nil)
}

func errDuplicatePending() *ServiceError {
	return newServiceError(http.StatusConflict, "DUPLICATE_PENDING", "a pending collaboration request already exists", nil)
}

func errAlreadyCollaborator() *ServiceError {
	return newServiceError(http.StatusConflict, "ALREADY_COLLABORATOR", "user is already an active collaborator", nil)
}

func errAlreadyRemoved() *ServiceError {
	return newServiceError(http.StatusConflict, "ALREADY_REMOVED", "collaborator has already been removed", nil)
}

// Not-found failures: the caller referenced an entity outside valid scope.
func errRevisionNotFound() *ServiceError {
	return newServiceError(http.StatusNotFound, "REVISION_NOT_FOUND", "no accepted revision with that number", nil)
}

func errCrossIdeaComparison() *ServiceError {
	return newServiceError(http.StatusNotFound, "CROSS_IDEA_COMPARISON", "revisions belong to different ideas", nil)
}

// Preconditions: structurally impossible given idea configuration.
func errCollaborationDisabled() *ServiceError {
	return newServiceError(http.StatusUnprocessableEntity, "COLLABORATION_DISABLED", "idea does not accept collaboration", nil)
}

func errSelfCollaboration() *ServiceError {
	return newServiceError(http.StatusUnprocessableEntity, "SELF_COLLABORATION", "authors cannot request to collaborate on their own idea", nil)
}

func errInvalidBody(message string) *ServiceError {
	return newServiceError(http.StatusBadRequest, "INVALID_BODY", message, nil)
}
