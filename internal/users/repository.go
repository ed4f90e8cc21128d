package users

import "context"

// Row is a user joined with its profile flags and role names.
type Row struct {
	User
	Roles       []string
	HasEmployee bool
	HasAgent    bool
}

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	ListUsers(ctx context.Context) ([]Row, error)
	GetUser(ctx context.Context, id int64) (Row, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	ResolveRoleIDs(ctx context.Context, names []string) (map[string]int64, error)
}

// TxRepository defines the operations available inside a transaction.
type TxRepository interface {
	InsertUser(ctx context.Context, user User) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error

	InsertEmployeeProfile(ctx context.Context, userID int64, code string, input EmployeeProfileInput) error
	InsertAgentProfile(ctx context.Context, userID int64, code string, input AgentProfileInput) error

	DeleteUserRoles(ctx context.Context, userID int64) error
	DeleteEmployeeProfile(ctx context.Context, userID int64) error
	DeleteAgentProfile(ctx context.Context, userID int64) error
	DeleteUser(ctx context.Context, userID int64) error
}
