package recruitment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Service handles job posting business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListPostings returns postings, optionally filtered by status.
func (s *Service) ListPostings(ctx context.Context, status string) ([]Posting, error) {
	if status != "" && !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, status)
	}
	return s.repo.ListPostings(ctx, status)
}

// GetPosting returns one posting.
func (s *Service) GetPosting(ctx context.Context, id int64) (Posting, error) {
	return s.repo.GetPosting(ctx, id)
}

// CreatePostingInput carries fields for a new posting.
type CreatePostingInput struct {
	Position      string     `json:"position" validate:"required"`
	DepartmentID  int64      `json:"departmentId" validate:"required"`
	Description   string     `json:"description"`
	NumberOfPosts int        `json:"numberOfPosts"`
	ClosingDate   *time.Time `json:"closingDate"`
}

// CreatePosting opens a new posting. Postings start open with posted_date now
// unless a closing date in the past is supplied.
func (s *Service) CreatePosting(ctx context.Context, input CreatePostingInput) (Posting, error) {
	input.Position = strings.TrimSpace(input.Position)
	if input.Position == "" {
		return Posting{}, fmt.Errorf("%w: position required", shared.ErrValidation)
	}
	exists, err := s.repo.DepartmentExists(ctx, input.DepartmentID)
	if err != nil {
		return Posting{}, err
	}
	if !exists {
		return Posting{}, fmt.Errorf("%w: department %d", shared.ErrNotFound, input.DepartmentID)
	}
	if input.NumberOfPosts <= 0 {
		input.NumberOfPosts = 1
	}
	return s.repo.InsertPosting(ctx, Posting{
		Position:      input.Position,
		DepartmentID:  input.DepartmentID,
		Description:   input.Description,
		NumberOfPosts: input.NumberOfPosts,
		Status:        StatusOpen,
		PostedDate:    time.Now(),
		ClosingDate:   input.ClosingDate,
	})
}

// UpdatePostingInput carries partial posting updates.
type UpdatePostingInput struct {
	Position      *string    `json:"position"`
	DepartmentID  *int64     `json:"departmentId"`
	Description   *string    `json:"description"`
	NumberOfPosts *int       `json:"numberOfPosts"`
	Status        *string    `json:"status"`
	ClosingDate   *time.Time `json:"closingDate"`
}

// UpdatePosting applies a partial update.
func (s *Service) UpdatePosting(ctx context.Context, id int64, input UpdatePostingInput) (Posting, error) {
	posting, err := s.repo.GetPosting(ctx, id)
	if err != nil {
		return Posting{}, err
	}
	if input.Position != nil {
		position := strings.TrimSpace(*input.Position)
		if position == "" {
			return Posting{}, fmt.Errorf("%w: position cannot be empty", shared.ErrValidation)
		}
		posting.Position = position
	}
	if input.DepartmentID != nil {
		exists, err := s.repo.DepartmentExists(ctx, *input.DepartmentID)
		if err != nil {
			return Posting{}, err
		}
		if !exists {
			return Posting{}, fmt.Errorf("%w: department %d", shared.ErrNotFound, *input.DepartmentID)
		}
		posting.DepartmentID = *input.DepartmentID
	}
	if input.Description != nil {
		posting.Description = *input.Description
	}
	if input.NumberOfPosts != nil {
		if *input.NumberOfPosts <= 0 {
			return Posting{}, fmt.Errorf("%w: numberOfPosts must be positive", shared.ErrValidation)
		}
		posting.NumberOfPosts = *input.NumberOfPosts
	}
	if input.Status != nil {
		if !ValidStatus(*input.Status) {
			return Posting{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *input.Status)
		}
		posting.Status = *input.Status
	}
	if input.ClosingDate != nil {
		posting.ClosingDate = input.ClosingDate
	}
	return s.repo.UpdatePosting(ctx, posting)
}

// DeletePosting removes a posting.
func (s *Service) DeletePosting(ctx context.Context, id int64) error {
	return s.repo.DeletePosting(ctx, id)
}
