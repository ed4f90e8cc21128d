package agents

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

// Handler wires HTTP endpoints for agent management.
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

// MountRoutes registers agent routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageAgents, shared.PermReadRecruitment))
		r.Get("/", h.listAgents)
		r.Get("/{id}", h.getAgent)
		r.Get("/{id}/candidates", h.listCandidates)
		r.Get("/{id}/stats", h.agentStats)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageAgents))
		r.Put("/{id}", h.updateAgent)
		r.Delete("/{id}", h.deleteAgent)
		r.Post("/{id}/candidates", h.addCandidate)
		r.Put("/candidates/{candidateId}/status", h.updateCandidateStatus)
	})
}

func (h *Handler) listAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.service.ListAgents(r.Context())
	if err != nil {
		h.fail(w, r, "list agents", err)
		return
	}
	if agents == nil {
		agents = []Agent{}
	}
	httpx.JSON(w, http.StatusOK, agents)
}

func (h *Handler) getAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	agent, err := h.service.GetAgent(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get agent", err)
		return
	}
	httpx.JSON(w, http.StatusOK, agent)
}

func (h *Handler) updateAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var input UpdateAgentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	agent, err := h.service.UpdateAgent(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, "update agent", err)
		return
	}
	httpx.JSON(w, http.StatusOK, agent)
}

func (h *Handler) deleteAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteAgent(r.Context(), id); err != nil {
		var inUse *AgentInUseError
		if errors.As(err, &inUse) {
			httpx.JSON(w, http.StatusBadRequest, map[string]any{
				"error":          "agent has candidates and cannot be deleted",
				"candidateCount": inUse.CandidateCount,
			})
			return
		}
		h.fail(w, r, "delete agent", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "agent deleted"})
}

func (h *Handler) listCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	candidates, err := h.service.ListCandidates(r.Context(), id)
	if err != nil {
		h.fail(w, r, "list candidates", err)
		return
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	httpx.JSON(w, http.StatusOK, candidates)
}

func (h *Handler) addCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var input AddCandidateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "recruitmentId, fullName and email are required")
		return
	}
	candidate, err := h.service.AddCandidate(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, "add candidate", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, candidate)
}

type candidateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateCandidateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "candidateId")
	if !ok {
		return
	}
	var req candidateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "status is required")
		return
	}
	candidate, err := h.service.UpdateCandidateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, r, "update candidate status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, candidate)
}

func (h *Handler) agentStats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.service.AgentStats(r.Context(), id)
	if err != nil {
		h.fail(w, r, "agent stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
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
