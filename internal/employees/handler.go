package employees

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-hrms/atlas-hrms/internal/platform/httpx"
	"github.com/atlas-hrms/atlas-hrms/internal/rbac"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Handler wires HTTP endpoints for employee management.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers employee routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermReadEmployees, shared.PermManageEmployees))
		r.Get("/", h.listEmployees)
		r.Get("/departments", h.listDepartments)
		r.Get("/designations", h.listDesignations)
		r.Get("/{id}", h.getEmployee)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageEmployees))
		r.Post("/", h.createEmployee)
		r.Put("/{id}", h.updateEmployee)
		r.Delete("/{id}", h.deleteEmployee)
	})
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	if raw := r.URL.Query().Get("departmentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid departmentId")
			return
		}
		filter.DepartmentID = id
	}
	filter.Status = r.URL.Query().Get("status")
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("perPage"))

	employees, page, err := h.service.ListEmployees(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list employees", err)
		return
	}
	if employees == nil {
		employees = []Employee{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       employees,
		"pagination": page,
	})
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	emp, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var input CreateEmployeeInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	emp, err := h.service.CreateEmployee(r.Context(), input)
	if err != nil {
		h.fail(w, r, "create employee", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, emp)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input UpdateEmployeeInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	emp, err := h.service.UpdateEmployee(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, "update employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteEmployee(r.Context(), id); err != nil {
		h.fail(w, r, "delete employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.ListDepartments(r.Context())
	if err != nil {
		h.fail(w, r, "list departments", err)
		return
	}
	if departments == nil {
		departments = []Department{}
	}
	httpx.JSON(w, http.StatusOK, departments)
}

func (h *Handler) listDesignations(w http.ResponseWriter, r *http.Request) {
	designations, err := h.service.ListDesignations(r.Context())
	if err != nil {
		h.fail(w, r, "list designations", err)
		return
	}
	if designations == nil {
		designations = []Designation{}
	}
	httpx.JSON(w, http.StatusOK, designations)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid employee id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrConflict) && !errors.Is(err, shared.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err)
}
