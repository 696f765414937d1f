package services

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// mapPgError translates low-level pgx failures into the workflow error
// taxonomy. Unique-index hits are the defense-in-depth twin of the
// application-level checks, so they surface as the same conflicts.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		recordWriteConflict("unique")
		switch pgErr.ConstraintName {
		case "idea_collaboration_requests_pending_unique":
			return errDuplicatePending()
		case "idea_collaborators_idea_id_user_id_key":
			return errAlreadyCollaborator()
		case "idea_revisions_idea_id_revision_number_key":
			return newServiceError(http.StatusConflict, "REVISION_NUMBER_CONFLICT", "revision number already taken", err)
		case "ideas_slug_key":
			return newServiceError(http.StatusConflict, "SLUG_CONFLICT", "slug already exists", err)
		default:
			return newServiceError(http.StatusConflict, "CONFLICT", "unique constraint violated", err)
		}
	case pgSerializationFailure, pgDeadlockDetected:
		recordWriteConflict("serialization")
		return newServiceError(http.StatusConflict, "WRITE_CONFLICT", "concurrent write conflict", err)
	default:
		return err
	}
}

// isRetryableConflict reports whether a revision-create attempt may be
// retried with a freshly computed number.
func isRetryableConflict(err error) bool {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return false
	}
	return svcErr.Code == "REVISION_NUMBER_CONFLICT" || svcErr.Code == "WRITE_CONFLICT"
}
