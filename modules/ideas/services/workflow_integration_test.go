package services_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/audit"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/notification"
	engpersistence "github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/infrastructure/persistence"
	engservices "github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/services"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/collaboration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/events"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/idea"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/domain/revision"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/services"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/configuration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/eventbus"
)

const (
	authorID    = uint(1)
	requesterID = uint(2)
	strangerID  = uint(3)
)

type workflowEnv struct {
	workflow      *services.WorkflowService
	points        *engservices.PointsService
	audit         *engservices.AuditService
	notifications *engservices.NotificationService
	bus           eventbus.EventBus
}

func newWorkflowEnv(tb testing.TB, ctx context.Context) (*workflowEnv, context.Context) {
	tb.Helper()

	pool := newWorkflowTestDB(tb, ctx)
	logger := configuration.Use().Logger()
	bus := eventbus.NewEventPublisher(logger)

	ideaRepo := persistence.NewIdeaRepository()
	requestRepo := persistence.NewRequestRepository()
	collaboratorRepo := persistence.NewCollaboratorRepository()
	revisionRepo := persistence.NewRevisionRepository()

	auditService := engservices.NewAuditService(engpersistence.NewAuditRepository())
	notificationService := engservices.NewNotificationService(engpersistence.NewNotificationRepository(), logger)
	pointsService := engservices.NewPointsService(engpersistence.NewPointsRepository())

	collaborationService := services.NewCollaborationService(ideaRepo, requestRepo, collaboratorRepo)
	revisionService := services.NewRevisionService(ideaRepo, revisionRepo, collaboratorRepo)
	workflow := services.NewWorkflowService(
		ideaRepo,
		collaborationService,
		revisionService,
		auditService,
		notificationService,
		pointsService,
		bus,
		logger,
	)

	env := &workflowEnv{
		workflow:      workflow,
		points:        pointsService,
		audit:         auditService,
		notifications: notificationService,
		bus:           bus,
	}
	return env, composables.WithPool(ctx, pool)
}

func (e *workflowEnv) createIdea(tb testing.TB, ctx context.Context, collaborationEnabled bool) *idea.Idea {
	tb.Helper()
	entity, err := e.workflow.CreateIdea(ctx, authorID, services.CreateIdeaInput{
		Title:                "Smart tolling " + tb.Name(),
		ProblemStatement:     "Manual toll booths cause queues",
		ProposedSolution:     "Automated number plate recognition",
		ExpectedImpact:       "Shorter travel times",
		CollaborationEnabled: collaborationEnabled,
	})
	require.NoError(tb, err)
	return entity
}

func requireServiceCode(tb testing.TB, err error, code string) {
	tb.Helper()
	var svcErr *services.ServiceError
	require.ErrorAs(tb, err, &svcErr)
	require.Equal(tb, code, svcErr.Code)
}

func hasNotification(entries []*notification.Notification, title string) bool {
	for _, n := range entries {
		if n.Title == title {
			return true
		}
	}
	return false
}

func TestWorkflow_RequestLifecycle(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, true)

	_, err := env.workflow.SubmitRequest(ctx, entity.ID, authorID, "let me in")
	requireServiceCode(t, err, "SELF_COLLABORATION")

	request, err := env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "let me help")
	require.NoError(t, err)
	require.Equal(t, collaboration.RequestStatusPending, request.Status)

	_, err = env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "again")
	requireServiceCode(t, err, "DUPLICATE_PENDING")

	_, err = env.workflow.AcceptRequest(ctx, request.ID, strangerID)
	requireServiceCode(t, err, "NOT_AUTHOR")

	var acceptedEvents []events.RequestAccepted
	env.bus.Subscribe(func(e events.RequestAccepted) { acceptedEvents = append(acceptedEvents, e) })

	collaborator, err := env.workflow.AcceptRequest(ctx, request.ID, authorID)
	require.NoError(t, err)
	require.Equal(t, collaboration.CollaboratorStatusActive, collaborator.Status)
	require.Equal(t, collaboration.PermissionSuggest, collaborator.Permission)
	require.NotNil(t, collaborator.AcceptedAt)

	_, err = env.workflow.AcceptRequest(ctx, request.ID, authorID)
	requireServiceCode(t, err, "INVALID_STATE")

	require.Len(t, acceptedEvents, 1)
	require.Equal(t, collaborator.ID, acceptedEvents[0].Collaborator.ID)

	balance, err := env.points.Balance(ctx, requesterID)
	require.NoError(t, err)
	require.Equal(t, services.PointsRequestAccepted+services.PointsFirstCollaboration, balance)

	requestID := request.ID
	_, total, err := env.audit.List(ctx, &audit.FindParams{
		SubjectType: "collaboration_request",
		SubjectID:   &requestID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	// Active collaborators cannot file another request.
	_, err = env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "once more")
	requireServiceCode(t, err, "ALREADY_COLLABORATOR")
}

func TestWorkflow_CollaborationDisabled(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, false)

	_, err := env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "please")
	requireServiceCode(t, err, "COLLABORATION_DISABLED")

	_, err = env.workflow.SetCollaborationEnabled(ctx, entity.ID, authorID, true)
	require.NoError(t, err)

	_, err = env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "please")
	require.NoError(t, err)
}

func TestWorkflow_DeclineAndRemoval(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, true)

	request, err := env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "let me help")
	require.NoError(t, err)

	reason := "not a fit"
	declined, err := env.workflow.DeclineRequest(ctx, request.ID, authorID, &reason)
	require.NoError(t, err)
	require.Equal(t, collaboration.RequestStatusDeclined, declined.Status)
	require.NotNil(t, declined.ResponseMessage)
	require.Equal(t, reason, *declined.ResponseMessage)

	// A declined request frees the pending slot.
	request, err = env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "second try")
	require.NoError(t, err)
	collaborator, err := env.workflow.AcceptRequest(ctx, request.ID, authorID)
	require.NoError(t, err)

	removed, err := env.workflow.RemoveCollaborator(ctx, collaborator.ID, authorID, nil)
	require.NoError(t, err)
	require.Equal(t, collaboration.CollaboratorStatusRemoved, removed.Status)
	require.NotNil(t, removed.RemovedAt)

	_, err = env.workflow.RemoveCollaborator(ctx, collaborator.ID, authorID, nil)
	requireServiceCode(t, err, "ALREADY_REMOVED")

	// Re-acceptance reuses the removed row instead of inserting another.
	request, err = env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "third try")
	require.NoError(t, err)
	reactivated, err := env.workflow.AcceptRequest(ctx, request.ID, authorID)
	require.NoError(t, err)
	require.Equal(t, collaborator.ID, reactivated.ID)
	require.Equal(t, collaboration.CollaboratorStatusActive, reactivated.Status)
}

func TestWorkflow_InviteLifecycle(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, true)

	invited, err := env.workflow.InviteCollaborator(ctx, entity.ID, authorID, requesterID, collaboration.PermissionEdit)
	require.NoError(t, err)
	require.Equal(t, collaboration.CollaboratorStatusPending, invited.Status)

	_, err = env.workflow.RespondToInvite(ctx, invited.ID, strangerID, true)
	requireServiceCode(t, err, "FORBIDDEN")

	accepted, err := env.workflow.RespondToInvite(ctx, invited.ID, requesterID, true)
	require.NoError(t, err)
	require.Equal(t, collaboration.CollaboratorStatusActive, accepted.Status)
	require.Equal(t, collaboration.PermissionEdit, accepted.Permission)

	updated, err := env.workflow.UpdatePermissions(ctx, accepted.ID, collaboration.PermissionSuggest, authorID)
	require.NoError(t, err)
	require.Equal(t, collaboration.PermissionSuggest, updated.Permission)

	_, err = env.workflow.UpdatePermissions(ctx, accepted.ID, "admin", authorID)
	requireServiceCode(t, err, "INVALID_BODY")

	// Authorship is checked before the level is validated.
	_, err = env.workflow.UpdatePermissions(ctx, accepted.ID, "admin", requesterID)
	requireServiceCode(t, err, "NOT_AUTHOR")
}

func TestWorkflow_RevisionLifecycle(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, true)

	request, err := env.workflow.SubmitRequest(ctx, entity.ID, requesterID, "let me help")
	require.NoError(t, err)
	joined, err := env.workflow.AcceptRequest(ctx, request.ID, authorID)
	require.NoError(t, err)
	require.Equal(t, collaboration.PermissionSuggest, joined.Permission)

	// Outside users cannot propose revisions.
	_, err = env.workflow.CreateRevision(ctx, entity.ID, strangerID, revision.ChangeSet{"title": "x"}, "")
	requireServiceCode(t, err, "FORBIDDEN")

	// Suggest-level is enough to propose.
	rev, err := env.workflow.CreateRevision(ctx, entity.ID, requesterID, revision.ChangeSet{
		"title": "Smarter tolling",
	}, "sharper title")
	require.NoError(t, err)
	require.Equal(t, 1, rev.Number)
	require.Equal(t, revision.TypeCollaborator, rev.Type)
	require.Equal(t, revision.StatusPending, rev.Status)

	balance, err := env.points.Balance(ctx, requesterID)
	require.NoError(t, err)
	require.Equal(t, services.PointsRequestAccepted+services.PointsFirstCollaboration+services.PointsRevisionCreated, balance)

	_, err = env.workflow.AcceptRevision(ctx, rev.ID, requesterID)
	requireServiceCode(t, err, "NOT_AUTHOR")

	accepted, err := env.workflow.AcceptRevision(ctx, rev.ID, authorID)
	require.NoError(t, err)
	require.Equal(t, revision.StatusAccepted, accepted.Status)

	updated, err := env.workflow.GetIdea(ctx, entity.ID)
	require.NoError(t, err)
	require.Equal(t, "Smarter tolling", updated.Title)

	notified, err := env.notifications.List(ctx, &notification.FindParams{UserID: requesterID, Limit: 50})
	require.NoError(t, err)
	require.True(t, hasNotification(notified, "Revision accepted"))

	balance, err = env.points.Balance(ctx, requesterID)
	require.NoError(t, err)
	require.Equal(t, services.PointsRequestAccepted+services.PointsFirstCollaboration+services.PointsRevisionCreated+services.PointsRevisionAccepted, balance)

	_, err = env.workflow.AcceptRevision(ctx, rev.ID, authorID)
	requireServiceCode(t, err, "INVALID_STATE")

	// Rejection leaves content untouched.
	rejectMe, err := env.workflow.CreateRevision(ctx, entity.ID, requesterID, revision.ChangeSet{
		"expected_impact": "None",
	}, "")
	require.NoError(t, err)
	note := "not convincing"
	rejected, err := env.workflow.RejectRevision(ctx, rejectMe.ID, authorID, &note)
	require.NoError(t, err)
	require.Equal(t, revision.StatusRejected, rejected.Status)

	after, err := env.workflow.GetIdea(ctx, entity.ID)
	require.NoError(t, err)
	require.Equal(t, "Shorter travel times", after.ExpectedImpact)
}

func TestWorkflow_RollbackReplaysAcceptedRevisions(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, true)

	first, err := env.workflow.CreateRevision(ctx, entity.ID, authorID, revision.ChangeSet{
		"title": "Version two",
	}, "")
	require.NoError(t, err)
	_, err = env.workflow.AcceptRevision(ctx, first.ID, authorID)
	require.NoError(t, err)

	// Authors reviewing their own revisions are not notified.
	notified, err := env.notifications.List(ctx, &notification.FindParams{UserID: authorID, Limit: 50})
	require.NoError(t, err)
	require.False(t, hasNotification(notified, "Revision accepted"))

	second, err := env.workflow.CreateRevision(ctx, entity.ID, authorID, revision.ChangeSet{
		"title":           "Version three",
		"expected_impact": "Huge",
	}, "")
	require.NoError(t, err)
	_, err = env.workflow.AcceptRevision(ctx, second.ID, authorID)
	require.NoError(t, err)

	_, err = env.workflow.RollbackToRevision(ctx, entity.ID, 99, authorID)
	requireServiceCode(t, err, "REVISION_NOT_FOUND")

	rollback, err := env.workflow.RollbackToRevision(ctx, entity.ID, first.Number, authorID)
	require.NoError(t, err)
	require.Equal(t, revision.TypeRollback, rollback.Type)
	require.Equal(t, revision.StatusAccepted, rollback.Status)
	require.Equal(t, 3, rollback.Number)

	restored, err := env.workflow.GetIdea(ctx, entity.ID)
	require.NoError(t, err)
	require.Equal(t, "Version two", restored.Title)
	require.Equal(t, "Shorter travel times", restored.ExpectedImpact)

	// Rolling back to the same point again is a content no-op but still
	// appends a revision row.
	again, err := env.workflow.RollbackToRevision(ctx, entity.ID, first.Number, authorID)
	require.NoError(t, err)
	require.Equal(t, 4, again.Number)
	require.Empty(t, again.Changes)
}

func TestWorkflow_CompareRevisions(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, true)
	other := env.createIdea(t, ctx, true)

	a, err := env.workflow.CreateRevision(ctx, entity.ID, authorID, revision.ChangeSet{
		"title": "A",
	}, "")
	require.NoError(t, err)
	b, err := env.workflow.CreateRevision(ctx, entity.ID, authorID, revision.ChangeSet{
		"title":           "B",
		"expected_impact": "More",
	}, "")
	require.NoError(t, err)
	foreign, err := env.workflow.CreateRevision(ctx, other.ID, authorID, revision.ChangeSet{
		"title": "C",
	}, "")
	require.NoError(t, err)

	deltas, err := env.workflow.CompareRevisions(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	require.Equal(t, "expected_impact", deltas[0].Field)
	require.Nil(t, deltas[0].Left)
	require.Equal(t, "title", deltas[1].Field)
	require.Equal(t, "A", *deltas[1].Left)
	require.Equal(t, "B", *deltas[1].Right)

	_, err = env.workflow.CompareRevisions(ctx, a.ID, foreign.ID)
	requireServiceCode(t, err, "CROSS_IDEA_COMPARISON")
}

func TestWorkflow_ConcurrentRevisionCreation(t *testing.T) {
	env, ctx := newWorkflowEnv(t, context.Background())
	entity := env.createIdea(t, ctx, true)

	const writers = 4
	var wg sync.WaitGroup
	results := make([]*revision.Revision, writers)
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.workflow.CreateRevision(ctx, entity.ID, authorID, revision.ChangeSet{
				"title": "Concurrent title",
			}, "")
		}(i)
	}
	wg.Wait()

	numbers := make(map[int]bool, writers)
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		require.False(t, numbers[results[i].Number], "revision number %d assigned twice", results[i].Number)
		numbers[results[i].Number] = true
	}
	for n := 1; n <= writers; n++ {
		require.True(t, numbers[n], "revision numbers must be gapless, missing %d", n)
	}
}

func newWorkflowTestDB(tb testing.TB, ctx context.Context) *pgxpool.Pool {
	tb.Helper()

	isCI := strings.TrimSpace(os.Getenv("CI")) != "" ||
		strings.EqualFold(strings.TrimSpace(os.Getenv("GITHUB_ACTIONS")), "true")

	conf := configuration.Use()
	host := strings.TrimSpace(conf.Database.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(conf.Database.Port)
	if port == "" {
		port = "5432"
	}
	user := strings.TrimSpace(conf.Database.User)
	if user == "" {
		user = "postgres"
	}
	password := conf.Database.Password

	adminDSN := "postgres://" + user + ":" + password + "@" + host + ":" + port + "/postgres?sslmode=disable"
	adminConn, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		if isCI {
			require.NoError(tb, err)
		}
		tb.Skip("postgres is not reachable; skipping integration test")
	}
	tb.Cleanup(func() { _ = adminConn.Close(ctx) })

	dbName := "wf_" + strings.ToLower(strings.ReplaceAll(tb.Name(), "/", "_"))
	dbName = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, dbName)

	_, _ = adminConn.Exec(ctx, "DROP DATABASE IF EXISTS "+dbName)
	if _, err = adminConn.Exec(ctx, "CREATE DATABASE "+dbName); err != nil {
		if isCI {
			require.NoError(tb, err)
		}
		tb.Skip("failed to create test database; skipping integration test")
	}

	pool, err := pgxpool.New(ctx, "postgres://"+user+":"+password+"@"+host+":"+port+"/"+dbName+"?sslmode=disable")
	require.NoError(tb, err)

	applyGooseUpSQL(tb, ctx, pool, filepath.Join("..", "..", "..", "migrations", "00001_workflow_schema.sql"))

	tb.Cleanup(func() {
		pool.Close()
		_, _ = adminConn.Exec(ctx, "DROP DATABASE IF EXISTS "+dbName)
	})

	return pool
}

func applyGooseUpSQL(tb testing.TB, ctx context.Context, pool *pgxpool.Pool, relPath string) {
	tb.Helper()
	raw, err := os.ReadFile(filepath.Clean(relPath))
	require.NoError(tb, err)
	sql := extractGooseUp(string(raw))
	require.NotEmpty(tb, strings.TrimSpace(sql))
	_, err = pool.Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	require.NoError(tb, err)
}

func extractGooseUp(raw string) string {
	const up = "-- +goose Up"
	const down = "-- +goose Down"
	start := strings.Index(raw, up)
	if start < 0 {
		return raw
	}
	raw = raw[start+len(up):]
	if end := strings.Index(raw, down); end >= 0 {
		raw = raw[:end]
	}
	return raw
}
