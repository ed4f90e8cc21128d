package users

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

// WithTx runs the callback inside a transaction so account, profile and role
// rows land or vanish together.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return platformdb.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const userColumns = `u.id, u.email, u.password_hash, u.full_name, u.phone, u.is_active, u.last_login, u.created_at, u.updated_at,
	EXISTS (SELECT 1 FROM employees e WHERE e.user_id = u.id),
	EXISTS (SELECT 1 FROM agents a WHERE a.user_id = u.id),
	COALESCE((SELECT ARRAY_AGG(r.name ORDER BY r.name) FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = u.id), '{}')`

// ListUsers returns all accounts with their profile flags and role names.
func (r *Repository) ListUsers(ctx context.Context) ([]Row, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Row
	for rows.Next() {
		row, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GetUser fetches one account.
func (r *Repository) GetUser(ctx context.Context, id int64) (Row, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
	if err != nil {
		return Row{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Row{}, err
		}
		return Row{}, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	return scanUserRow(rows)
}

// EmailTaken reports whether another account already uses the email.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, excludeID).Scan(&taken)
	return taken, err
}

// ResolveRoleIDs maps role names onto IDs. Unknown names are absent from the
// result.
func (r *Repository) ResolveRoleIDs(ctx context.Context, names []string) (map[string]int64, error) {
	resolved := make(map[string]int64, len(names))
	if len(names) == 0 {
		return resolved, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		resolved[name] = id
	}
	return resolved, rows.Err()
}

func (t *txRepo) InsertUser(ctx context.Context, user User) (User, error) {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		user.Email, user.PasswordHash, user.FullName, user.Phone, user.IsActive)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if platformdb.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: email %q already registered", shared.ErrConflict, user.Email)
		}
		return User{}, err
	}
	return user, nil
}

func (t *txRepo) UpdateUser(ctx context.Context, user User) (User, error) {
	row := t.tx.QueryRow(ctx, `
		UPDATE users
		SET email = $2, password_hash = $3, full_name = $4, phone = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Phone, user.IsActive)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("%w: user %d", shared.ErrNotFound, user.ID)
		}
		if platformdb.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: email %q already registered", shared.ErrConflict, user.Email)
		}
		return User{}, err
	}
	return user, nil
}

func (t *txRepo) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, created_at) VALUES ($1, $2, NOW())
			ON CONFLICT DO NOTHING`, userID, roleID); err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) InsertEmployeeProfile(ctx context.Context, userID int64, code string, input EmployeeProfileInput) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO employees (user_id, employee_code, department_id, designation_id, joining_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, NOW(), NOW())`,
		userID, code, input.DepartmentID, input.DesignationID, input.JoiningDate)
	if err != nil && platformdb.IsUniqueViolation(err) {
		return fmt.Errorf("%w: employee profile already exists for user %d", shared.ErrConflict, userID)
	}
	return err
}

func (t *txRepo) InsertAgentProfile(ctx context.Context, userID int64, code string, input AgentProfileInput) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO agents (user_id, agent_code, company_name, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`,
		userID, code, input.CompanyName, input.Phone)
	if err != nil && platformdb.IsUniqueViolation(err) {
		return fmt.Errorf("%w: agent profile already exists for user %d", shared.ErrConflict, userID)
	}
	return err
}

func (t *txRepo) DeleteUserRoles(ctx context.Context, userID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	return err
}

func (t *txRepo) DeleteEmployeeProfile(ctx context.Context, userID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM employees WHERE user_id = $1`, userID)
	return err
}

func (t *txRepo) DeleteAgentProfile(ctx context.Context, userID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM agents WHERE user_id = $1`, userID)
	return err
}

func (t *txRepo) DeleteUser(ctx context.Context, userID int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
	}
	return nil
}

func scanUserRow(rows pgx.Rows) (Row, error) {
	var row Row
	if err := rows.Scan(
		&row.ID, &row.Email, &row.PasswordHash, &row.FullName, &row.Phone, &row.IsActive,
		&row.LastLogin, &row.CreatedAt, &row.UpdatedAt,
		&row.HasEmployee, &row.HasAgent, &row.Roles,
	); err != nil {
		return Row{}, err
	}
	return row, nil
}

var _ RepositoryPort = (*Repository)(nil)
