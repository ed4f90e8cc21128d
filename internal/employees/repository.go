package employees

import "context"

// RepositoryPort defines data access methods for employees.
type RepositoryPort interface {
	ListEmployees(ctx context.Context, filter Filter) ([]Employee, error)
	CountEmployees(ctx context.Context, filter Filter) (int, error)
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	CreateEmployee(ctx context.Context, input CreateEmployeeInput) (Employee, error)
	UpdateEmployee(ctx context.Context, emp Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error

	ListDepartments(ctx context.Context) ([]Department, error)
	ListDesignations(ctx context.Context) ([]Designation, error)
	DepartmentExists(ctx context.Context, id int64) (bool, error)
}
