package rbac

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

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction so
// concurrent readers never observe a partially replaced permission set.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return platformdb.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// CreatePermission inserts a permission. Duplicate names surface as conflicts.
func (r *Repository) CreatePermission(ctx context.Context, perm Permission) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, description, resource, action, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, name, description, resource, action, created_at`,
		perm.Name, perm.Description, perm.Resource, perm.Action)
	var created Permission
	if err := row.Scan(&created.ID, &created.Name, &created.Description, &created.Resource, &created.Action, &created.CreatedAt); err != nil {
		if platformdb.IsUniqueViolation(err) {
			return Permission{}, fmt.Errorf("%w: permission %q already exists", shared.ErrConflict, perm.Name)
		}
		return Permission{}, err
	}
	return created, nil
}

// ListPermissions returns the whole catalog ordered by (resource, action).
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, resource, action, created_at
		FROM permissions ORDER BY resource ASC, action ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// ResolvePermissionNames returns the permissions whose names are in the set.
// Unknown names are simply absent from the result.
func (r *Repository) ResolvePermissionNames(ctx context.Context, names []string) ([]Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, resource, action, created_at
		FROM permissions WHERE name = ANY($1) ORDER BY resource ASC, action ASC`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`, id)
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("%w: role %d", shared.ErrNotFound, id)
		}
		return Role{}, err
	}
	return role, nil
}

// ListRoles returns all roles.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListRolePermissions returns the permissions attached to a role.
func (r *Repository) ListRolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.resource, p.action, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.resource ASC, p.action ASC`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// ListRoleUsers returns id, name and email of every user holding the role.
func (r *Repository) ListRoleUsers(ctx context.Context, roleID int64) ([]UserRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.full_name, u.email
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.role_id = $1
		ORDER BY u.id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []UserRef
	for rows.Next() {
		var ref UserRef
		if err := rows.Scan(&ref.ID, &ref.FullName, &ref.Email); err != nil {
			return nil, err
		}
		users = append(users, ref)
	}
	return users, rows.Err()
}

// CountRoleAssignments counts user_roles rows referencing the role.
func (r *Repository) CountRoleAssignments(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_roles WHERE role_id = $1`, roleID).Scan(&count)
	return count, err
}

// UserExists reports whether a user row exists.
func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

// AssignRole inserts a user-role link. The unique constraint on the pair
// rejects the loser of a racing duplicate insert.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, created_at) VALUES ($1, $2, NOW())`, userID, roleID)
	if err != nil && platformdb.IsUniqueViolation(err) {
		return fmt.Errorf("%w: role already assigned to this user", shared.ErrConflict)
	}
	return err
}

// RemoveRole deletes a user-role link, reporting how many rows went away.
func (r *Repository) RemoveRole(ctx context.Context, userID, roleID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UserPermissions returns the deduplicated union of permissions across all
// roles assigned to the user.
func (r *Repository) UserPermissions(ctx context.Context, userID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.id, p.name, p.description, p.resource, p.action, p.created_at
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// UserRoleNames returns the role names assigned to the user.
func (r *Repository) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Transactional operations.

func (t *txRepo) InsertRole(ctx context.Context, name, description string) (Role, error) {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO roles (name, description, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, name, description, created_at, updated_at`, name, description)
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if platformdb.IsUniqueViolation(err) {
			return Role{}, fmt.Errorf("%w: role %q already exists", shared.ErrConflict, name)
		}
		return Role{}, err
	}
	return role, nil
}

func (t *txRepo) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	row := t.tx.QueryRow(ctx, `
		UPDATE roles SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at`, id, name, description)
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("%w: role %d", shared.ErrNotFound, id)
		}
		if platformdb.IsUniqueViolation(err) {
			return Role{}, fmt.Errorf("%w: role name %q already taken", shared.ErrConflict, name)
		}
		return Role{}, err
	}
	return role, nil
}

func (t *txRepo) DeleteRolePermissions(ctx context.Context, roleID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID)
	return err
}

func (t *txRepo) InsertRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	for _, permID := range permissionIDs {
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT DO NOTHING`, roleID, permID); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) DeleteRole(ctx context.Context, roleID int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: role %d", shared.ErrNotFound, roleID)
	}
	return nil
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
