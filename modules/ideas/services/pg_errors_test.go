package services

import (
	"net/http"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapPgError_UniqueConstraints(t *testing.T) {
	cases := []struct {
		constraint string
		wantCode   string
	}{
		{"idea_collaboration_requests_pending_unique", "DUPLICATE_PENDING"},
		{"idea_collaborators_idea_id_user_id_key", "ALREADY_COLLABORATOR"},
		{"idea_revisions_idea_id_revision_number_key", "REVISION_NUMBER_CONFLICT"},
		{"ideas_slug_key", "SLUG_CONFLICT"},
		{"some_other_constraint", "CONFLICT"},
	}

	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: tc.constraint}
			mapped := mapPgError(errors.Wrap(pgErr, "insert failed"))

			var svcErr *ServiceError
			require.ErrorAs(t, mapped, &svcErr)
			require.Equal(t, tc.wantCode, svcErr.Code)
			require.Equal(t, http.StatusConflict, svcErr.Status)
		})
	}
}

func TestMapPgError_Serialization(t *testing.T) {
	for _, code := range []string{pgSerializationFailure, pgDeadlockDetected} {
		mapped := mapPgError(&pgconn.PgError{Code: code})
		var svcErr *ServiceError
		require.ErrorAs(t, mapped, &svcErr)
		require.Equal(t, "WRITE_CONFLICT", svcErr.Code)
		require.True(t, isRetryableConflict(mapped))
	}
}

func TestMapPgError_Passthrough(t *testing.T) {
	require.NoError(t, mapPgError(nil))

	plain := errors.New("boom")
	require.Equal(t, plain, mapPgError(plain))
}

func TestIsRetryableConflict(t *testing.T) {
	require.True(t, isRetryableConflict(mapPgError(&pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: "idea_revisions_idea_id_revision_number_key",
	})))
	require.False(t, isRetryableConflict(errDuplicatePending()))
	require.False(t, isRetryableConflict(errors.New("boom")))
}
