package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-hrms/atlas-hrms/internal/agents"
	"github.com/atlas-hrms/atlas-hrms/internal/analytics"
	"github.com/atlas-hrms/atlas-hrms/internal/auth"
	"github.com/atlas-hrms/atlas-hrms/internal/employees"
	"github.com/atlas-hrms/atlas-hrms/internal/observability"
	"github.com/atlas-hrms/atlas-hrms/internal/rbac"
	"github.com/atlas-hrms/atlas-hrms/internal/recruitment"
	"github.com/atlas-hrms/atlas-hrms/internal/settings"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
	"github.com/atlas-hrms/atlas-hrms/internal/users"
	"github.com/atlas-hrms/atlas-hrms/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthHandler        *auth.Handler
	RolesHandler       *rbac.Handler
	UsersHandler       *users.Handler
	EmployeesHandler   *employees.Handler
	RecruitmentHandler *recruitment.Handler
	AgentsHandler      *agents.Handler
	SettingsHandler    *settings.Handler
	AnalyticsHandler   *analytics.Handler
	JobHandler         *jobs.Handler
	Pool               *pgxpool.Pool
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := params.Pool.Ping(pingCtx); err != nil {
				params.Logger.Warn("healthz db ping", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)
		if params.RolesHandler != nil {
			api.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			api.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.EmployeesHandler != nil {
			api.Route("/employees", params.EmployeesHandler.MountRoutes)
		}
		if params.RecruitmentHandler != nil {
			api.Route("/recruitment", params.RecruitmentHandler.MountRoutes)
		}
		if params.AgentsHandler != nil {
			api.Route("/agents", params.AgentsHandler.MountRoutes)
		}
		if params.SettingsHandler != nil {
			api.Route("/settings", params.SettingsHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			api.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
