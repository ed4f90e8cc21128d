package agents

import (
	"fmt"
	"time"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Candidate pipeline statuses.
const (
	CandidateApplied     = "applied"
	CandidateShortlisted = "shortlisted"
	CandidateInterviewed = "interviewed"
	CandidateHired       = "hired"
	CandidateRejected    = "rejected"
)

// ValidCandidateStatus reports whether the status is part of the pipeline.
func ValidCandidateStatus(status string) bool {
	switch status {
	case CandidateApplied, CandidateShortlisted, CandidateInterviewed, CandidateHired, CandidateRejected:
		return true
	}
	return false
}

// Agent is a recruitment agent profile joined with its account.
type Agent struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	AgentCode   string    `json:"agentCode"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	CompanyName string    `json:"companyName"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Candidate is an applicant submitted by an agent for a posting.
type Candidate struct {
	ID            int64     `json:"id"`
	AgentID       int64     `json:"agentId"`
	RecruitmentID int64     `json:"recruitmentId"`
	Position      string    `json:"position"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Status        string    `json:"status"`
	AppliedDate   time.Time `json:"appliedDate"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Stats summarises an agent's submissions.
type Stats struct {
	AgentID         int64   `json:"agentId"`
	TotalCandidates int64   `json:"totalCandidates"`
	Hired           int64   `json:"hired"`
	Rejected        int64   `json:"rejected"`
	InProgress      int64   `json:"inProgress"`
	SuccessRate     float64 `json:"successRate"`
}

// AgentInUseError reports a delete attempt on an agent with candidates.
type AgentInUseError struct {
	AgentID        int64
	CandidateCount int64
}

func (e *AgentInUseError) Error() string {
	return fmt.Sprintf("agent %d has %d candidate(s) and cannot be deleted", e.AgentID, e.CandidateCount)
}

// Is lets callers match the error against shared.ErrConflict.
func (e *AgentInUseError) Is(target error) bool {
	return target == shared.ErrConflict
}
