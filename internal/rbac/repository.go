package rbac

import "context"

// RepositoryPort abstracts persistence for the RBAC service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	CreatePermission(ctx context.Context, perm Permission) (Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	ResolvePermissionNames(ctx context.Context, names []string) ([]Permission, error)

	GetRole(ctx context.Context, id int64) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	ListRolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	ListRoleUsers(ctx context.Context, roleID int64) ([]UserRef, error)
	CountRoleAssignments(ctx context.Context, roleID int64) (int64, error)

	UserExists(ctx context.Context, userID int64) (bool, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) (int64, error)
	UserPermissions(ctx context.Context, userID int64) ([]Permission, error)
	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
}

// TxRepository exposes the multi-row mutations that must run atomically:
// role creation with an initial permission set, permission-set replace, and
// the two-step role delete.
type TxRepository interface {
	InsertRole(ctx context.Context, name, description string) (Role, error)
	UpdateRole(ctx context.Context, id int64, name, description string) (Role, error)
	DeleteRolePermissions(ctx context.Context, roleID int64) error
	InsertRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	DeleteRole(ctx context.Context, roleID int64) error
}
