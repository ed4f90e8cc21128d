package agents

import "context"

// RepositoryPort defines data access methods for agents and candidates.
type RepositoryPort interface {
	ListAgents(ctx context.Context) ([]Agent, error)
	GetAgent(ctx context.Context, id int64) (Agent, error)
	UpdateAgent(ctx context.Context, agent Agent) (Agent, error)
	DeleteAgent(ctx context.Context, id int64) error
	CountCandidates(ctx context.Context, agentID int64) (int64, error)

	ListCandidates(ctx context.Context, agentID int64) ([]Candidate, error)
	GetCandidate(ctx context.Context, id int64) (Candidate, error)
	CandidateExists(ctx context.Context, agentID, recruitmentID int64, email string) (bool, error)
	InsertCandidate(ctx context.Context, candidate Candidate) (Candidate, error)
	UpdateCandidateStatus(ctx context.Context, id int64, status string) (Candidate, error)
	RecruitmentOpen(ctx context.Context, recruitmentID int64) (bool, error)

	AgentStats(ctx context.Context, agentID int64) (Stats, error)
}
