package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/services"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/httpapi"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/middleware"
)

// WorkflowAPIController exposes the collaboration and revision workflow
// as a JSON API. Handlers resolve the actor, delegate to the workflow
// service and translate its error taxonomy onto HTTP.
type WorkflowAPIController struct {
	workflow  *services.WorkflowService
	apiPrefix string
}

func NewWorkflowAPIController(workflow *services.WorkflowService) *WorkflowAPIController {
	return &WorkflowAPIController{
		workflow:  workflow,
		apiPrefix: "/api/v1",
	}
}

func (c *WorkflowAPIController) Key() string {
	return c.apiPrefix
}

func (c *WorkflowAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.RequireActor())

	api.HandleFunc("/ideas", c.CreateIdea).Methods(http.MethodPost)
	api.HandleFunc("/ideas/{id:[0-9]+}", c.GetIdea).Methods(http.MethodGet)
	api.HandleFunc("/ideas/by-slug/{slug}", c.GetIdeaBySlug).Methods(http.MethodGet)
	api.HandleFunc("/ideas/{id:[0-9]+}:submit", c.SubmitIdea).Methods(http.MethodPost)
	api.HandleFunc("/ideas/{id:[0-9]+}:set-collaboration", c.SetCollaboration).Methods(http.MethodPost)

	api.HandleFunc("/ideas/{id:[0-9]+}/requests", c.SubmitRequest).Methods(http.MethodPost)
	api.HandleFunc("/ideas/{id:[0-9]+}/requests", c.ListRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/pending", c.ListPendingRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}:accept", c.AcceptRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}:decline", c.DeclineRequest).Methods(http.MethodPost)

	api.HandleFunc("/ideas/{id:[0-9]+}/collaborators", c.InviteCollaborator).Methods(http.MethodPost)
	api.HandleFunc("/ideas/{id:[0-9]+}/collaborators", c.ListCollaborators).Methods(http.MethodGet)
	api.HandleFunc("/collaborators/{id:[0-9]+}:accept-invite", c.AcceptInvite).Methods(http.MethodPost)
	api.HandleFunc("/collaborators/{id:[0-9]+}:decline-invite", c.DeclineInvite).Methods(http.MethodPost)
	api.HandleFunc("/collaborators/{id:[0-9]+}", c.UpdatePermissions).Methods(http.MethodPatch)
	api.HandleFunc("/collaborators/{id:[0-9]+}:remove", c.RemoveCollaborator).Methods(http.MethodPost)

	api.HandleFunc("/ideas/{id:[0-9]+}/revisions", c.CreateRevision).Methods(http.MethodPost)
	api.HandleFunc("/ideas/{id:[0-9]+}/revisions", c.ListRevisions).Methods(http.MethodGet)
	api.HandleFunc("/ideas/{id:[0-9]+}:rollback", c.Rollback).Methods(http.MethodPost)
	api.HandleFunc("/revisions/{id:[0-9]+}:accept", c.AcceptRevision).Methods(http.MethodPost)
	api.HandleFunc("/revisions/{id:[0-9]+}:reject", c.RejectRevision).Methods(http.MethodPost)
	api.HandleFunc("/revisions/compare", c.CompareRevisions).Methods(http.MethodGet)
}

type createIdeaRequest struct {
	Title                string `json:"title"`
	ProblemStatement     string `json:"problem_statement"`
	ProposedSolution     string `json:"proposed_solution"`
	ExpectedImpact       string `json:"expected_impact"`
	CollaborationEnabled bool   `json:"collaboration_enabled"`
}

func (c *WorkflowAPIController) CreateIdea(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var body createIdeaRequest
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	entity, err := c.workflow.CreateIdea(r.Context(), actorID, services.CreateIdeaInput{
		Title:                body.Title,
		ProblemStatement:     body.ProblemStatement,
		ProposedSolution:     body.ProposedSolution,
		ExpectedImpact:       body.ExpectedImpact,
		CollaborationEnabled: body.CollaborationEnabled,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toIdeaResponse(entity))
}

func (c *WorkflowAPIController) GetIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entity, err := c.workflow.GetIdea(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toIdeaResponse(entity))
}

func (c *WorkflowAPIController) GetIdeaBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	entity, err := c.workflow.GetIdeaBySlug(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toIdeaResponse(entity))
}

func (c *WorkflowAPIController) SubmitIdea(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entity, err := c.workflow.SubmitIdea(r.Context(), id, actorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toIdeaResponse(entity))
}

type setCollaborationRequest struct {
	Enabled bool `json:"enabled"`
}

func (c *WorkflowAPIController) SetCollaboration(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body setCollaborationRequest
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	entity, err := c.workflow.SetCollaborationEnabled(r.Context(), id, actorID, body.Enabled)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toIdeaResponse(entity))
}

type submitRequestRequest struct {
	Message string `json:"message"`
}

func (c *WorkflowAPIController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body submitRequestRequest
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	request, err := c.workflow.SubmitRequest(r.Context(), ideaID, actorID, body.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toRequestResponse(request))
}

func (c *WorkflowAPIController) ListRequests(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	requests, err := c.workflow.ListRequests(r.Context(), ideaID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, toRequestResponse(request))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *WorkflowAPIController) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	requests, err := c.workflow.ListPendingRequestsByUser(r.Context(), actorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, toRequestResponse(request))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *WorkflowAPIController) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	collaborator, err := c.workflow.AcceptRequest(r.Context(), id, actorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toCollaboratorResponse(collaborator))
}

type reasonRequest struct {
	Reason *string `json:"reason"`
}

func (c *WorkflowAPIController) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, ok := decodeOptionalReason(w, r)
	if !ok {
		return
	}
	request, err := c.workflow.DeclineRequest(r.Context(), id, actorID, body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toRequestResponse(request))
}

type inviteRequest struct {
	UserID     uint   `json:"user_id"`
	Permission string `json:"permission"`
}

func (c *WorkflowAPIController) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body inviteRequest
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	collaborator, err := c.workflow.InviteCollaborator(r.Context(), ideaID, actorID, body.UserID, body.Permission)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toCollaboratorResponse(collaborator))
}

func (c *WorkflowAPIController) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	collaborators, err := c.workflow.ListCollaborators(r.Context(), ideaID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]collaboratorResponse, 0, len(collaborators))
	for _, collaborator := range collaborators {
		out = append(out, toCollaboratorResponse(collaborator))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *WorkflowAPIController) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	c.respondToInvite(w, r, true)
}

func (c *WorkflowAPIController) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	c.respondToInvite(w, r, false)
}

func (c *WorkflowAPIController) respondToInvite(w http.ResponseWriter, r *http.Request, accept bool) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	collaborator, err := c.workflow.RespondToInvite(r.Context(), id, actorID, accept)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toCollaboratorResponse(collaborator))
}

type updatePermissionsRequest struct {
	Permission string `json:"permission"`
}

func (c *WorkflowAPIController) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body updatePermissionsRequest
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	collaborator, err := c.workflow.UpdatePermissions(r.Context(), id, body.Permission, actorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toCollaboratorResponse(collaborator))
}

func (c *WorkflowAPIController) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, ok := decodeOptionalReason(w, r)
	if !ok {
		return
	}
	collaborator, err := c.workflow.RemoveCollaborator(r.Context(), id, actorID, body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toCollaboratorResponse(collaborator))
}

type createRevisionRequest struct {
	Changes map[string]string `json:"changes"`
	Summary string            `json:"summary"`
}

func (c *WorkflowAPIController) CreateRevision(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body createRevisionRequest
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	rev, err := c.workflow.CreateRevision(r.Context(), ideaID, actorID, body.Changes, body.Summary)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toRevisionResponse(rev))
}

func (c *WorkflowAPIController) ListRevisions(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	revisions, err := c.workflow.ListRevisions(r.Context(), ideaID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]revisionResponse, 0, len(revisions))
	for _, rev := range revisions {
		out = append(out, toRevisionResponse(rev))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type rollbackRequest struct {
	RevisionNumber int `json:"revision_number"`
}

func (c *WorkflowAPIController) Rollback(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body rollbackRequest
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	rev, err := c.workflow.RollbackToRevision(r.Context(), ideaID, body.RevisionNumber, actorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toRevisionResponse(rev))
}

func (c *WorkflowAPIController) AcceptRevision(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rev, err := c.workflow.AcceptRevision(r.Context(), id, actorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toRevisionResponse(rev))
}

func (c *WorkflowAPIController) RejectRevision(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, ok := decodeOptionalReason(w, r)
	if !ok {
		return
	}
	rev, err := c.workflow.RejectRevision(r.Context(), id, actorID, body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toRevisionResponse(rev))
}

func (c *WorkflowAPIController) CompareRevisions(w http.ResponseWriter, r *http.Request) {
	a, err := strconv.ParseUint(r.URL.Query().Get("a"), 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "a must be a revision id", nil)
		return
	}
	b, err := strconv.ParseUint(r.URL.Query().Get("b"), 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "b must be a revision id", nil)
		return
	}
	deltas, err := c.workflow.CompareRevisions(r.Context(), uint(a), uint(b))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toFieldDeltaResponses(deltas))
}

func requireActor(w http.ResponseWriter, r *http.Request) (uint, bool) {
	actorID, err := composables.UseActorID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "MISSING_ACTOR", "acting user is not set", nil)
		return 0, false
	}
	return actorID, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_PATH", name+" must be a positive integer", nil)
		return 0, false
	}
	return uint(id), true
}

func decodeOptionalReason(w http.ResponseWriter, r *http.Request) (reasonRequest, bool) {
	var body reasonRequest
	if r.ContentLength == 0 {
		return body, true
	}
	if err := httpapi.DecodeJSON(r.Body, &body); err != nil {
		writeBadBody(w, err)
		return body, false
	}
	return body, true
}

func writeBadBody(w http.ResponseWriter, err error) {
	_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		_ = httpapi.WriteError(w, svcErr.Status, svcErr.Code, svcErr.Message, nil)
		return
	}
	switch {
	case errors.Is(err, persistence.ErrIdeaNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "IDEA_NOT_FOUND", "idea not found", nil)
	case errors.Is(err, persistence.ErrRequestNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "REQUEST_NOT_FOUND", "collaboration request not found", nil)
	case errors.Is(err, persistence.ErrCollaboratorNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "COLLABORATOR_NOT_FOUND", "collaborator not found", nil)
	case errors.Is(err, persistence.ErrRevisionNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "REVISION_NOT_FOUND", "revision not found", nil)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("workflow operation failed")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
