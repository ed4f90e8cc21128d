package settings

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-hrms/atlas-hrms/internal/platform/httpx"
	"github.com/atlas-hrms/atlas-hrms/internal/rbac"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Handler wires HTTP endpoints for system settings.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbacMW}
}

// MountRoutes registers settings routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermReadSettings, shared.PermUpdateSettings, shared.PermManageSettings))
		r.Get("/", h.listSettings)
		r.Get("/{key}", h.getSetting)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermUpdateSettings, shared.PermManageSettings))
		r.Put("/{key}", h.updateSetting)
		r.Put("/", h.batchUpdate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageSettings))
		r.Post("/", h.createSetting)
		r.Delete("/{key}", h.deleteSetting)
	})
}

func (h *Handler) listSettings(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		settings, err := h.service.ListSettings(r.Context(), category)
		if err != nil {
			h.fail(w, r, "list settings", err)
			return
		}
		if settings == nil {
			settings = []Setting{}
		}
		httpx.JSON(w, http.StatusOK, settings)
		return
	}
	groups, err := h.service.ListGrouped(r.Context())
	if err != nil {
		h.fail(w, r, "list settings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) getSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.service.GetSetting(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, r, "get setting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, setting)
}

func (h *Handler) createSetting(w http.ResponseWriter, r *http.Request) {
	var input CreateSettingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "key and category are required")
		return
	}
	setting, err := h.service.CreateSetting(r.Context(), input)
	if err != nil {
		h.fail(w, r, "create setting", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, setting)
}

type updateSettingRequest struct {
	Value string `json:"value"`
}

func (h *Handler) updateSetting(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	setting, err := h.service.UpdateSetting(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		h.fail(w, r, "update setting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, setting)
}

type batchUpdateRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}

func (h *Handler) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var req batchUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "settings map is required")
		return
	}
	results, err := h.service.BatchUpdate(r.Context(), req.Settings)
	if err != nil {
		h.fail(w, r, "batch update settings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) deleteSetting(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSetting(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.fail(w, r, "delete setting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "setting deleted"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrConflict) && !errors.Is(err, shared.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err)
}
