package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/audit"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/domain/notification"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/services"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/httpapi"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/middleware"
)

// EngagementAPIController serves the read side of the engagement module:
// the actor's notifications, point balance and the audit trail.
type EngagementAPIController struct {
	notifications *services.NotificationService
	points        *services.PointsService
	auditLog      *services.AuditService
	apiPrefix     string
}

func NewEngagementAPIController(
	notifications *services.NotificationService,
	points *services.PointsService,
	auditLog *services.AuditService,
) *EngagementAPIController {
	return &EngagementAPIController{
		notifications: notifications,
		points:        points,
		auditLog:      auditLog,
		apiPrefix:     "/api/v1",
	}
}

func (c *EngagementAPIController) Key() string {
	return c.apiPrefix + "/engagement"
}

func (c *EngagementAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.RequireActor())

	api.HandleFunc("/notifications", c.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}:read", c.MarkNotificationRead).Methods(http.MethodPost)
	api.HandleFunc("/points/balance", c.PointsBalance).Methods(http.MethodGet)
	api.HandleFunc("/points/history", c.PointsHistory).Methods(http.MethodGet)
	api.HandleFunc("/audit", c.ListAudit).Methods(http.MethodGet)
}

type notificationResponse struct {
	ID        uint    `json:"id"`
	Severity  string  `json:"severity"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	ActionURL *string `json:"action_url,omitempty"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func (c *EngagementAPIController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actorID, err := composables.UseActorID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "MISSING_ACTOR", "acting user is not set", nil)
		return
	}
	limit, offset := pagination(r)
	entities, err := c.notifications.List(r.Context(), &notification.FindParams{
		UserID:     actorID,
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeInternal(w)
		return
	}
	out := make([]notificationResponse, 0, len(entities))
	for _, entity := range entities {
		out = append(out, notificationResponse{
			ID:        entity.ID,
			Severity:  entity.Severity,
			Title:     entity.Title,
			Message:   entity.Message,
			ActionURL: entity.ActionURL,
			ReadAt:    timePtr(entity.ReadAt),
			CreatedAt: entity.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *EngagementAPIController) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	actorID, err := composables.UseActorID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "MISSING_ACTOR", "acting user is not set", nil)
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_PATH", "id must be a positive integer", nil)
		return
	}
	if err := c.notifications.MarkRead(r.Context(), uint(id), actorID); err != nil {
		writeInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *EngagementAPIController) PointsBalance(w http.ResponseWriter, r *http.Request) {
	actorID, err := composables.UseActorID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "MISSING_ACTOR", "acting user is not set", nil)
		return
	}
	balance, err := c.points.Balance(r.Context(), actorID)
	if err != nil {
		writeInternal(w)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

type pointTransactionResponse struct {
	ID        uint   `json:"id"`
	Points    int    `json:"points"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

func (c *EngagementAPIController) PointsHistory(w http.ResponseWriter, r *http.Request) {
	actorID, err := composables.UseActorID(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "MISSING_ACTOR", "acting user is not set", nil)
		return
	}
	limit, offset := pagination(r)
	transactions, err := c.points.History(r.Context(), actorID, limit, offset)
	if err != nil {
		writeInternal(w)
		return
	}
	out := make([]pointTransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, pointTransactionResponse{
			ID:        tx.ID,
			Points:    tx.Points,
			Reason:    tx.Reason,
			CreatedAt: tx.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type auditEntryResponse struct {
	ID          uint           `json:"id"`
	ActorID     uint           `json:"actor_id"`
	Action      string         `json:"action"`
	SubjectType string         `json:"subject_type"`
	SubjectID   uint           `json:"subject_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

func (c *EngagementAPIController) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	params := &audit.FindParams{
		Action:      r.URL.Query().Get("action"),
		SubjectType: r.URL.Query().Get("subject_type"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := r.URL.Query().Get("subject_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "subject_id must be a positive integer", nil)
			return
		}
		subjectID := uint(id)
		params.SubjectID = &subjectID
	}
	entries, total, err := c.auditLog.List(r.Context(), params)
	if err != nil {
		writeInternal(w)
		return
	}
	out := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, auditEntryResponse{
			ID:          entry.ID,
			ActorID:     entry.ActorID,
			Action:      entry.Action,
			SubjectType: entry.SubjectType,
			SubjectID:   entry.SubjectID,
			Metadata:    entry.Metadata,
			CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"total":   total,
		"entries": out,
	})
}

func pagination(r *http.Request) (int, int) {
	limit := 50
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func writeInternal(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
