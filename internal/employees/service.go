package employees

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// InvalidatorPort bumps cached dashboard data after an employee write.
type InvalidatorPort interface {
	Invalidate(ctx context.Context) error
}

// Service handles employee business logic.
type Service struct {
	repo        RepositoryPort
	invalidator InvalidatorPort
	logger      *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, invalidator InvalidatorPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// invalidate is best effort; a failed bump leaves stale data until the cache
// TTL expires.
func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}

// ListEmployees returns one page of employees matching the filter along with
// page metadata.
func (s *Service) ListEmployees(ctx context.Context, filter Filter) ([]Employee, shared.Pagination, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, filter.Status)
	}
	total, err := s.repo.CountEmployees(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	page := shared.NewPagination(filter.Page, filter.PerPage, total)
	filter.Page = page.Page
	filter.PerPage = page.PerPage
	employees, err := s.repo.ListEmployees(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return employees, page, nil
}

// GetEmployee returns one employee profile.
func (s *Service) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

// CreateEmployeeInput carries fields for a new employee record. The backing
// account is created without credentials; a password is set later through the
// user endpoints.
type CreateEmployeeInput struct {
	FullName      string     `json:"fullName" validate:"required"`
	Email         string     `json:"email" validate:"required,email"`
	Phone         string     `json:"phone"`
	DepartmentID  int64      `json:"departmentId" validate:"required"`
	DesignationID *int64     `json:"designationId"`
	JoiningDate   *time.Time `json:"joiningDate"`
}

// CreateEmployee registers an employee record together with its backing
// account in one transaction.
func (s *Service) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (Employee, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.FullName == "" || input.Email == "" {
		return Employee{}, fmt.Errorf("%w: fullName and email are required", shared.ErrValidation)
	}
	if input.DepartmentID <= 0 {
		return Employee{}, fmt.Errorf("%w: departmentId is required", shared.ErrValidation)
	}
	exists, err := s.repo.DepartmentExists(ctx, input.DepartmentID)
	if err != nil {
		return Employee{}, err
	}
	if !exists {
		return Employee{}, fmt.Errorf("%w: department %d", shared.ErrNotFound, input.DepartmentID)
	}
	emp, err := s.repo.CreateEmployee(ctx, input)
	if err != nil {
		return Employee{}, err
	}
	s.invalidate(ctx)
	return emp, nil
}

// UpdateEmployeeInput carries partial profile updates.
type UpdateEmployeeInput struct {
	DepartmentID  *int64     `json:"departmentId"`
	DesignationID *int64     `json:"designationId"`
	Status        *string    `json:"status"`
	JoiningDate   *time.Time `json:"joiningDate"`
	LeavingDate   *time.Time `json:"leavingDate"`
}

// UpdateEmployee applies a partial update to an employee profile.
func (s *Service) UpdateEmployee(ctx context.Context, id int64, input UpdateEmployeeInput) (Employee, error) {
	emp, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if input.DepartmentID != nil {
		exists, err := s.repo.DepartmentExists(ctx, *input.DepartmentID)
		if err != nil {
			return Employee{}, err
		}
		if !exists {
			return Employee{}, fmt.Errorf("%w: department %d", shared.ErrNotFound, *input.DepartmentID)
		}
		emp.DepartmentID = *input.DepartmentID
	}
	if input.DesignationID != nil {
		emp.DesignationID = input.DesignationID
	}
	if input.Status != nil {
		if !ValidStatus(*input.Status) {
			return Employee{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *input.Status)
		}
		emp.Status = *input.Status
	}
	if input.JoiningDate != nil {
		emp.JoiningDate = input.JoiningDate
	}
	if input.LeavingDate != nil {
		emp.LeavingDate = input.LeavingDate
	}
	updated, err := s.repo.UpdateEmployee(ctx, emp)
	if err != nil {
		return Employee{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// DeleteEmployee removes an employee profile.
func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListDepartments returns the department lookup.
func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.repo.ListDepartments(ctx)
}

// ListDesignations returns the designation lookup.
func (s *Service) ListDesignations(ctx context.Context) ([]Designation, error) {
	return s.repo.ListDesignations(ctx)
}
