package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Service handles agent and candidate business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListAgents returns all agents.
func (s *Service) ListAgents(ctx context.Context) ([]Agent, error) {
	return s.repo.ListAgents(ctx)
}

// GetAgent returns one agent.
func (s *Service) GetAgent(ctx context.Context, id int64) (Agent, error) {
	return s.repo.GetAgent(ctx, id)
}

// UpdateAgentInput carries partial agent updates.
type UpdateAgentInput struct {
	CompanyName *string `json:"companyName"`
	Phone       *string `json:"phone"`
}

// UpdateAgent applies a partial update.
func (s *Service) UpdateAgent(ctx context.Context, id int64, input UpdateAgentInput) (Agent, error) {
	agent, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		return Agent{}, err
	}
	if input.CompanyName != nil {
		agent.CompanyName = strings.TrimSpace(*input.CompanyName)
	}
	if input.Phone != nil {
		agent.Phone = strings.TrimSpace(*input.Phone)
	}
	return s.repo.UpdateAgent(ctx, agent)
}

// DeleteAgent removes an agent. Agents with submitted candidates are
// protected; the returned AgentInUseError carries the candidate count.
func (s *Service) DeleteAgent(ctx context.Context, id int64) error {
	if _, err := s.repo.GetAgent(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountCandidates(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &AgentInUseError{AgentID: id, CandidateCount: count}
	}
	return s.repo.DeleteAgent(ctx, id)
}

// ListCandidates returns the agent's candidates.
func (s *Service) ListCandidates(ctx context.Context, agentID int64) ([]Candidate, error) {
	if _, err := s.repo.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	return s.repo.ListCandidates(ctx, agentID)
}

// AddCandidateInput carries fields for a new candidate submission.
type AddCandidateInput struct {
	RecruitmentID int64  `json:"recruitmentId" validate:"required"`
	FullName      string `json:"fullName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
}

// AddCandidate submits a candidate for a posting. The same agent cannot
// submit the same email for the same posting twice.
func (s *Service) AddCandidate(ctx context.Context, agentID int64, input AddCandidateInput) (Candidate, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Email == "" || input.FullName == "" {
		return Candidate{}, fmt.Errorf("%w: fullName and email are required", shared.ErrValidation)
	}
	if _, err := s.repo.GetAgent(ctx, agentID); err != nil {
		return Candidate{}, err
	}
	open, err := s.repo.RecruitmentOpen(ctx, input.RecruitmentID)
	if err != nil {
		return Candidate{}, err
	}
	if !open {
		return Candidate{}, fmt.Errorf("%w: posting %d is not open for applications", shared.ErrValidation, input.RecruitmentID)
	}
	exists, err := s.repo.CandidateExists(ctx, agentID, input.RecruitmentID, input.Email)
	if err != nil {
		return Candidate{}, err
	}
	if exists {
		return Candidate{}, fmt.Errorf("%w: candidate already applied for this posting", shared.ErrConflict)
	}
	return s.repo.InsertCandidate(ctx, Candidate{
		AgentID:       agentID,
		RecruitmentID: input.RecruitmentID,
		FullName:      input.FullName,
		Email:         input.Email,
		Phone:         strings.TrimSpace(input.Phone),
		Status:        CandidateApplied,
	})
}

// UpdateCandidateStatus moves a candidate through the pipeline.
func (s *Service) UpdateCandidateStatus(ctx context.Context, candidateID int64, status string) (Candidate, error) {
	if !ValidCandidateStatus(status) {
		return Candidate{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, status)
	}
	return s.repo.UpdateCandidateStatus(ctx, candidateID, status)
}

// AgentStats returns the agent's submission summary.
func (s *Service) AgentStats(ctx context.Context, agentID int64) (Stats, error) {
	if _, err := s.repo.GetAgent(ctx, agentID); err != nil {
		return Stats{}, err
	}
	return s.repo.AgentStats(ctx, agentID)
}
