package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	engpersistence "github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/infrastructure/persistence"
	engcontrollers "github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/presentation/controllers"
	engservices "github.com/mwasobaddy/KeNHA-VATE-sub001/modules/engagement/services"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/infrastructure/persistence"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/presentation/controllers"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/modules/ideas/services"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/configuration"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/eventbus"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/httpapi"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/metrics"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/middleware"
)

// New assembles the full application: repositories, services, the
// workflow facade and the HTTP surface.
func New(conf *configuration.Configuration, pool *pgxpool.Pool) *http.Server {
	logger := conf.Logger()
	publisher := eventbus.NewEventPublisher(logger)

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
		publisher,
		logger,
	)

	r := mux.NewRouter()
	r.Use(
		middleware.RequestLogger(logger),
		middleware.ProvidePool(pool),
	)

	controllers.NewWorkflowAPIController(workflow).Register(r)
	engcontrollers.NewEngagementAPIController(notificationService, pointsService, auditService).Register(r)
	if conf.Prometheus.Enabled {
		metrics.NewPrometheusController(conf.Prometheus.Path).Register(r)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database unreachable", nil)
			return
		}
		_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return &http.Server{
		Addr:              conf.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
