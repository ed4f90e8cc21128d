package recruitment

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-hrms/atlas-hrms/internal/platform/httpx"
	"github.com/atlas-hrms/atlas-hrms/internal/rbac"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Handler wires HTTP endpoints for job posting management.
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

// MountRoutes registers recruitment routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermReadRecruitment, shared.PermManageRecruitment))
		r.Get("/", h.listPostings)
		r.Get("/{id}", h.getPosting)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageRecruitment))
		r.Post("/", h.createPosting)
		r.Put("/{id}", h.updatePosting)
		r.Delete("/{id}", h.deletePosting)
	})
}

func (h *Handler) listPostings(w http.ResponseWriter, r *http.Request) {
	postings, err := h.service.ListPostings(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, "list postings", err)
		return
	}
	if postings == nil {
		postings = []Posting{}
	}
	httpx.JSON(w, http.StatusOK, postings)
}

func (h *Handler) getPosting(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	posting, err := h.service.GetPosting(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get posting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, posting)
}

func (h *Handler) createPosting(w http.ResponseWriter, r *http.Request) {
	var input CreatePostingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "position and departmentId are required")
		return
	}
	posting, err := h.service.CreatePosting(r.Context(), input)
	if err != nil {
		h.fail(w, r, "create posting", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, posting)
}

func (h *Handler) updatePosting(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input UpdatePostingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	posting, err := h.service.UpdatePosting(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, "update posting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, posting)
}

func (h *Handler) deletePosting(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePosting(r.Context(), id); err != nil {
		h.fail(w, r, "delete posting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "posting deleted"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid posting id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrValidation) {
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err)
}
