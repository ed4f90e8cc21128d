package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	platformdb "github.com/atlas-hrms/atlas-hrms/internal/platform/db"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const agentColumns = `a.id, a.user_id, a.agent_code, u.full_name, u.email, a.company_name, a.phone, a.created_at, a.updated_at`

// ListAgents returns all agents ordered by code.
func (r *Repository) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+agentColumns+` FROM agents a JOIN users u ON u.id = a.user_id ORDER BY a.agent_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.UserID, &a.AgentCode, &a.FullName, &a.Email, &a.CompanyName, &a.Phone, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// GetAgent fetches one agent.
func (r *Repository) GetAgent(ctx context.Context, id int64) (Agent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+agentColumns+` FROM agents a JOIN users u ON u.id = a.user_id WHERE a.id = $1`, id)
	var a Agent
	if err := row.Scan(&a.ID, &a.UserID, &a.AgentCode, &a.FullName, &a.Email, &a.CompanyName, &a.Phone, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Agent{}, fmt.Errorf("%w: agent %d", shared.ErrNotFound, id)
		}
		return Agent{}, err
	}
	return a, nil
}

// UpdateAgent persists mutable agent fields.
func (r *Repository) UpdateAgent(ctx context.Context, agent Agent) (Agent, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE agents SET company_name = $2, phone = $3, updated_at = NOW() WHERE id = $1`,
		agent.ID, agent.CompanyName, agent.Phone)
	if err != nil {
		return Agent{}, err
	}
	if tag.RowsAffected() == 0 {
		return Agent{}, fmt.Errorf("%w: agent %d", shared.ErrNotFound, agent.ID)
	}
	return r.GetAgent(ctx, agent.ID)
}

// DeleteAgent removes an agent profile.
func (r *Repository) DeleteAgent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: agent %d", shared.ErrNotFound, id)
	}
	return nil
}

// CountCandidates counts candidates submitted by the agent.
func (r *Repository) CountCandidates(ctx context.Context, agentID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates WHERE agent_id = $1`, agentID).Scan(&count)
	return count, err
}

const candidateColumns = `c.id, c.agent_id, c.recruitment_id, r.position, c.full_name, c.email, c.phone, c.status, c.applied_date, c.updated_at`

// ListCandidates returns the agent's candidates, newest first.
func (r *Repository) ListCandidates(ctx context.Context, agentID int64) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates c JOIN recruitments r ON r.id = c.recruitment_id
		WHERE c.agent_id = $1
		ORDER BY c.applied_date DESC, c.id DESC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var candidates []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// GetCandidate fetches one candidate.
func (r *Repository) GetCandidate(ctx context.Context, id int64) (Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates c JOIN recruitments r ON r.id = c.recruitment_id
		WHERE c.id = $1`, id)
	if err != nil {
		return Candidate{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Candidate{}, err
		}
		return Candidate{}, fmt.Errorf("%w: candidate %d", shared.ErrNotFound, id)
	}
	return scanCandidate(rows)
}

// CandidateExists reports whether the agent already submitted this email for
// the posting.
func (r *Repository) CandidateExists(ctx context.Context, agentID, recruitmentID int64, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM candidates WHERE agent_id = $1 AND recruitment_id = $2 AND email = $3)`,
		agentID, recruitmentID, email).Scan(&exists)
	return exists, err
}

// InsertCandidate creates a candidate. The unique constraint on
// (agent_id, recruitment_id, email) rejects racing duplicates.
func (r *Repository) InsertCandidate(ctx context.Context, candidate Candidate) (Candidate, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO candidates (agent_id, recruitment_id, full_name, email, phone, status, applied_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, applied_date, updated_at`,
		candidate.AgentID, candidate.RecruitmentID, candidate.FullName, candidate.Email, candidate.Phone, candidate.Status)
	if err := row.Scan(&candidate.ID, &candidate.AppliedDate, &candidate.UpdatedAt); err != nil {
		if platformdb.IsUniqueViolation(err) {
			return Candidate{}, fmt.Errorf("%w: candidate already applied for this posting", shared.ErrConflict)
		}
		return Candidate{}, err
	}
	return r.GetCandidate(ctx, candidate.ID)
}

// UpdateCandidateStatus moves a candidate through the pipeline.
func (r *Repository) UpdateCandidateStatus(ctx context.Context, id int64, status string) (Candidate, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE candidates SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return Candidate{}, err
	}
	if tag.RowsAffected() == 0 {
		return Candidate{}, fmt.Errorf("%w: candidate %d", shared.ErrNotFound, id)
	}
	return r.GetCandidate(ctx, id)
}

// RecruitmentOpen reports whether the posting exists and is accepting
// applications.
func (r *Repository) RecruitmentOpen(ctx context.Context, recruitmentID int64) (bool, error) {
	var open bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM recruitments WHERE id = $1 AND status = 'open')`, recruitmentID).Scan(&open)
	return open, err
}

// AgentStats aggregates the agent's submission counts.
func (r *Repository) AgentStats(ctx context.Context, agentID int64) (Stats, error) {
	stats := Stats{AgentID: agentID}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'hired'),
		       COUNT(*) FILTER (WHERE status = 'rejected')
		FROM candidates WHERE agent_id = $1`, agentID).
		Scan(&stats.TotalCandidates, &stats.Hired, &stats.Rejected)
	if err != nil {
		return Stats{}, err
	}
	stats.InProgress = stats.TotalCandidates - stats.Hired - stats.Rejected
	if stats.TotalCandidates > 0 {
		stats.SuccessRate = float64(stats.Hired) / float64(stats.TotalCandidates) * 100
	}
	return stats, nil
}

func scanCandidate(rows pgx.Rows) (Candidate, error) {
	var c Candidate
	if err := rows.Scan(
		&c.ID, &c.AgentID, &c.RecruitmentID, &c.Position, &c.FullName, &c.Email, &c.Phone,
		&c.Status, &c.AppliedDate, &c.UpdatedAt,
	); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

var _ RepositoryPort = (*Repository)(nil)
