package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	platformdb "github.com/atlas-hrms/atlas-hrms/internal/platform/db"
	"github.com/atlas-hrms/atlas-hrms/internal/shared"
	"github.com/atlas-hrms/atlas-hrms/internal/users"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `e.id, e.user_id, e.employee_code, u.full_name, u.email,
	e.department_id, d.name, e.designation_id, ds.title, e.status,
	e.joining_date, e.leaving_date, e.created_at, e.updated_at`

const employeeJoins = `FROM employees e
	JOIN users u ON u.id = e.user_id
	JOIN departments d ON d.id = e.department_id
	LEFT JOIN designations ds ON ds.id = e.designation_id`

// ListEmployees returns one page of employees matching the filter ordered by
// code. A zero PerPage disables the limit.
func (r *Repository) ListEmployees(ctx context.Context, filter Filter) ([]Employee, error) {
	limit := filter.PerPage
	offset := 0
	if limit > 0 {
		offset = (filter.Page - 1) * limit
		if offset < 0 {
			offset = 0
		}
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+employeeColumns+` `+employeeJoins+`
		WHERE ($1 = 0 OR e.department_id = $1)
		  AND ($2 = '' OR e.status = $2)
		ORDER BY e.employee_code
		LIMIT NULLIF($3, 0) OFFSET $4`, filter.DepartmentID, filter.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// CountEmployees returns the number of employees matching the filter.
func (r *Repository) CountEmployees(ctx context.Context, filter Filter) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) `+employeeJoins+`
		WHERE ($1 = 0 OR e.department_id = $1)
		  AND ($2 = '' OR e.status = $2)`, filter.DepartmentID, filter.Status).Scan(&total)
	return total, err
}

// GetEmployee fetches one employee profile.
func (r *Repository) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` `+employeeJoins+` WHERE e.id = $1`, id)
	if err != nil {
		return Employee{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Employee{}, err
		}
		return Employee{}, fmt.Errorf("%w: employee %d", shared.ErrNotFound, id)
	}
	return scanEmployee(rows)
}

// CreateEmployee inserts the backing account row and the employee profile in
// one transaction. The employee code is derived from the new account id.
func (r *Repository) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (Employee, error) {
	var id int64
	err := platformdb.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var userID int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, full_name, phone, is_active, created_at, updated_at)
			VALUES ($1, '', $2, $3, TRUE, NOW(), NOW())
			RETURNING id`, input.Email, input.FullName, input.Phone).Scan(&userID); err != nil {
			if platformdb.IsUniqueViolation(err) {
				return fmt.Errorf("%w: email %q already registered", shared.ErrConflict, input.Email)
			}
			return err
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO employees (user_id, employee_code, department_id, designation_id, joining_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id`, userID, users.EmployeeCode(userID), input.DepartmentID, input.DesignationID, input.JoiningDate).Scan(&id); err != nil {
			if platformdb.IsUniqueViolation(err) {
				return fmt.Errorf("%w: employee profile already exists for user %d", shared.ErrConflict, userID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return Employee{}, err
	}
	return r.GetEmployee(ctx, id)
}

// UpdateEmployee persists the mutable employee fields.
func (r *Repository) UpdateEmployee(ctx context.Context, emp Employee) (Employee, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE employees
		SET department_id = $2, designation_id = $3, status = $4, joining_date = $5, leaving_date = $6, updated_at = NOW()
		WHERE id = $1`,
		emp.ID, emp.DepartmentID, emp.DesignationID, emp.Status, emp.JoiningDate, emp.LeavingDate)
	if err != nil {
		return Employee{}, err
	}
	if tag.RowsAffected() == 0 {
		return Employee{}, fmt.Errorf("%w: employee %d", shared.ErrNotFound, emp.ID)
	}
	return r.GetEmployee(ctx, emp.ID)
}

// DeleteEmployee removes an employee profile. The account row stays.
func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee %d", shared.ErrNotFound, id)
	}
	return nil
}

// ListDepartments returns all departments ordered by name.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// ListDesignations returns all designations ordered by title.
func (r *Repository) ListDesignations(ctx context.Context) ([]Designation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, department_id FROM designations ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var designations []Designation
	for rows.Next() {
		var d Designation
		if err := rows.Scan(&d.ID, &d.Title, &d.DepartmentID); err != nil {
			return nil, err
		}
		designations = append(designations, d)
	}
	return designations, rows.Err()
}

// DepartmentExists reports whether a department row exists.
func (r *Repository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanEmployee(rows pgx.Rows) (Employee, error) {
	var emp Employee
	if err := rows.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode, &emp.FullName, &emp.Email,
		&emp.DepartmentID, &emp.Department, &emp.DesignationID, &emp.Designation, &emp.Status,
		&emp.JoiningDate, &emp.LeavingDate, &emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

var _ RepositoryPort = (*Repository)(nil)
