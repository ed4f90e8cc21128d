package employees

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

type memoryRepo struct {
	employees   map[int64]Employee
	departments map[int64]Department
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		employees: make(map[int64]Employee),
		departments: map[int64]Department{
			1: {ID: 1, Name: "Engineering"},
			2: {ID: 2, Name: "People"},
		},
	}
}

func (r *memoryRepo) matchEmployees(filter Filter) []Employee {
	var result []Employee
	for _, emp := range r.employees {
		if filter.DepartmentID != 0 && emp.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Status != "" && emp.Status != filter.Status {
			continue
		}
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeCode < result[j].EmployeeCode })
	return result
}

func (r *memoryRepo) ListEmployees(ctx context.Context, filter Filter) ([]Employee, error) {
	result := r.matchEmployees(filter)
	if filter.PerPage > 0 {
		offset := (filter.Page - 1) * filter.PerPage
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
		if len(result) > filter.PerPage {
			result = result[:filter.PerPage]
		}
	}
	return result, nil
}

func (r *memoryRepo) CountEmployees(ctx context.Context, filter Filter) (int, error) {
	return len(r.matchEmployees(filter)), nil
}

func (r *memoryRepo) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return Employee{}, fmt.Errorf("%w: employee %d", shared.ErrNotFound, id)
	}
	return emp, nil
}

func (r *memoryRepo) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (Employee, error) {
	for _, emp := range r.employees {
		if emp.Email == input.Email {
			return Employee{}, fmt.Errorf("%w: email %q already registered", shared.ErrConflict, input.Email)
		}
	}
	r.nextID++
	emp := Employee{
		ID: r.nextID, UserID: r.nextID,
		EmployeeCode:  fmt.Sprintf("EMP%03d", r.nextID),
		FullName:      input.FullName,
		Email:         input.Email,
		DepartmentID:  input.DepartmentID,
		DesignationID: input.DesignationID,
		Status:        StatusActive,
		JoiningDate:   input.JoiningDate,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	r.employees[emp.ID] = emp
	return emp, nil
}

func (r *memoryRepo) UpdateEmployee(ctx context.Context, emp Employee) (Employee, error) {
	if _, ok := r.employees[emp.ID]; !ok {
		return Employee{}, fmt.Errorf("%w: employee %d", shared.ErrNotFound, emp.ID)
	}
	emp.UpdatedAt = time.Now()
	r.employees[emp.ID] = emp
	return emp, nil
}

func (r *memoryRepo) DeleteEmployee(ctx context.Context, id int64) error {
	if _, ok := r.employees[id]; !ok {
		return fmt.Errorf("%w: employee %d", shared.ErrNotFound, id)
	}
	delete(r.employees, id)
	return nil
}

func (r *memoryRepo) ListDepartments(ctx context.Context) ([]Department, error) {
	var result []Department
	for _, d := range r.departments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memoryRepo) ListDesignations(ctx context.Context) ([]Designation, error) {
	return nil, nil
}

func (r *memoryRepo) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.departments[id]
	return ok, nil
}

func seedEmployee(repo *memoryRepo, id int64, code string, departmentID int64, status string) {
	repo.employees[id] = Employee{
		ID: id, UserID: id, EmployeeCode: code,
		DepartmentID: departmentID, Status: status,
	}
}

func TestListEmployeesFilters(t *testing.T) {
	repo := newMemoryRepo()
	seedEmployee(repo, 1, "EMP001", 1, StatusActive)
	seedEmployee(repo, 2, "EMP002", 2, StatusActive)
	seedEmployee(repo, 3, "EMP003", 1, StatusOnLeave)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	all, page, err := svc.ListEmployees(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 3, page.Total)

	engineering, _, err := svc.ListEmployees(ctx, Filter{DepartmentID: 1})
	require.NoError(t, err)
	require.Len(t, engineering, 2)

	onLeave, _, err := svc.ListEmployees(ctx, Filter{Status: StatusOnLeave})
	require.NoError(t, err)
	require.Len(t, onLeave, 1)
	require.Equal(t, "EMP003", onLeave[0].EmployeeCode)

	_, _, err = svc.ListEmployees(ctx, Filter{Status: "vacationing"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListEmployeesPaginates(t *testing.T) {
	repo := newMemoryRepo()
	for i := int64(1); i <= 5; i++ {
		seedEmployee(repo, i, fmt.Sprintf("EMP%03d", i), 1, StatusActive)
	}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	first, page, err := svc.ListEmployees(ctx, Filter{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, []string{"EMP001", "EMP002"}, []string{first[0].EmployeeCode, first[1].EmployeeCode})
	require.Equal(t, 5, page.Total)
	require.Equal(t, 3, page.TotalPages)

	last, page, err := svc.ListEmployees(ctx, Filter{Page: 3, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, last, 1)
	require.Equal(t, "EMP005", last[0].EmployeeCode)
	require.Equal(t, 3, page.Page)
}

func TestCreateEmployee(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	emp, err := svc.CreateEmployee(ctx, CreateEmployeeInput{
		FullName:     "Ana Silva",
		Email:        "Ana@Example.com",
		DepartmentID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, "EMP001", emp.EmployeeCode)
	require.Equal(t, "ana@example.com", emp.Email)
	require.Equal(t, StatusActive, emp.Status)

	_, err = svc.CreateEmployee(ctx, CreateEmployeeInput{
		FullName:     "Other",
		Email:        "ana@example.com",
		DepartmentID: 1,
	})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateEmployeeValidates(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateEmployee(ctx, CreateEmployeeInput{Email: "ana@example.com", DepartmentID: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateEmployee(ctx, CreateEmployeeInput{FullName: "Ana", Email: "ana@example.com"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateEmployee(ctx, CreateEmployeeInput{FullName: "Ana", Email: "ana@example.com", DepartmentID: 99})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateEmployeePartial(t *testing.T) {
	repo := newMemoryRepo()
	seedEmployee(repo, 1, "EMP001", 1, StatusActive)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	status := StatusOnLeave
	emp, err := svc.UpdateEmployee(ctx, 1, UpdateEmployeeInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, StatusOnLeave, emp.Status)
	require.EqualValues(t, 1, emp.DepartmentID)

	dept := int64(2)
	emp, err = svc.UpdateEmployee(ctx, 1, UpdateEmployeeInput{DepartmentID: &dept})
	require.NoError(t, err)
	require.EqualValues(t, 2, emp.DepartmentID)
	require.Equal(t, StatusOnLeave, emp.Status)
}

func TestUpdateEmployeeRejectsUnknownDepartmentAndStatus(t *testing.T) {
	repo := newMemoryRepo()
	seedEmployee(repo, 1, "EMP001", 1, StatusActive)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	dept := int64(99)
	_, err := svc.UpdateEmployee(ctx, 1, UpdateEmployeeInput{DepartmentID: &dept})
	require.ErrorIs(t, err, shared.ErrNotFound)

	bad := "gardening"
	_, err = svc.UpdateEmployee(ctx, 1, UpdateEmployeeInput{Status: &bad})
	require.ErrorIs(t, err, shared.ErrValidation)
}

type countingInvalidator struct {
	bumps int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.bumps++
	return nil
}

func TestWritesBumpDashboardCache(t *testing.T) {
	repo := newMemoryRepo()
	inv := &countingInvalidator{}
	svc := NewService(repo, inv, nil)
	ctx := context.Background()

	emp, err := svc.CreateEmployee(ctx, CreateEmployeeInput{FullName: "Ana", Email: "ana@example.com", DepartmentID: 1})
	require.NoError(t, err)
	require.Equal(t, 1, inv.bumps)

	status := StatusOnLeave
	_, err = svc.UpdateEmployee(ctx, emp.ID, UpdateEmployeeInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, 2, inv.bumps)

	require.NoError(t, svc.DeleteEmployee(ctx, emp.ID))
	require.Equal(t, 3, inv.bumps)

	// Failed writes leave the cache version alone.
	require.ErrorIs(t, svc.DeleteEmployee(ctx, emp.ID), shared.ErrNotFound)
	require.Equal(t, 3, inv.bumps)
}

func TestDeleteEmployee(t *testing.T) {
	repo := newMemoryRepo()
	seedEmployee(repo, 1, "EMP001", 1, StatusActive)
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteEmployee(ctx, 1))
	require.ErrorIs(t, svc.DeleteEmployee(ctx, 1), shared.ErrNotFound)
}
