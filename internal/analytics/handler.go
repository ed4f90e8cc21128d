package analytics

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-hrms/atlas-hrms/internal/platform/httpx"
	"github.com/atlas-hrms/atlas-hrms/internal/rbac"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Handler wires HTTP endpoints for dashboard analytics.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers analytics routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermReadEmployees, shared.PermManageEmployees))
		r.Get("/", h.dashboard)
		r.Get("/employee-status", h.employeeStatus)
		r.Get("/turnover", h.turnover)
		r.Get("/departments", h.departments)
		r.Get("/tenure", h.tenure)
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}

func (h *Handler) employeeStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.EmployeeStatus(r.Context())
	if err != nil {
		h.fail(w, "employee status", err)
		return
	}
	if counts == nil {
		counts = []StatusCount{}
	}
	httpx.JSON(w, http.StatusOK, counts)
}

func (h *Handler) turnover(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.TurnoverRatio(r.Context())
	if err != nil {
		h.fail(w, "turnover", err)
		return
	}
	if series == nil {
		series = []MonthlyTurnover{}
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) departments(w http.ResponseWriter, r *http.Request) {
	shares, err := h.service.DepartmentDistribution(r.Context())
	if err != nil {
		h.fail(w, "department distribution", err)
		return
	}
	if shares == nil {
		shares = []DepartmentShare{}
	}
	httpx.JSON(w, http.StatusOK, shares)
}

func (h *Handler) tenure(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Tenure(r.Context())
	if err != nil {
		h.fail(w, "tenure", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Error(w, http.StatusInternalServerError, "internal server error")
}
