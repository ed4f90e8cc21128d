package settings

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

const settingColumns = `id, key, value, category, description, is_editable, updated_at`

// ListSettings returns settings, optionally filtered by category, ordered by
// (category, key).
func (r *Repository) ListSettings(ctx context.Context, category string) ([]Setting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+settingColumns+` FROM system_settings
		WHERE ($1 = '' OR category = $1)
		ORDER BY category, key`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.Category, &s.Description, &s.IsEditable, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetSetting fetches one setting by key.
func (r *Repository) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+settingColumns+` FROM system_settings WHERE key = $1`, key)
	var s Setting
	if err := row.Scan(&s.ID, &s.Key, &s.Value, &s.Category, &s.Description, &s.IsEditable, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, fmt.Errorf("%w: setting %q", shared.ErrNotFound, key)
		}
		return Setting{}, err
	}
	return s, nil
}

// InsertSetting creates a setting. Duplicate keys surface as conflicts.
func (r *Repository) InsertSetting(ctx context.Context, setting Setting) (Setting, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO system_settings (key, value, category, description, is_editable, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, updated_at`,
		setting.Key, setting.Value, setting.Category, setting.Description, setting.IsEditable)
	if err := row.Scan(&setting.ID, &setting.UpdatedAt); err != nil {
		if platformdb.IsUniqueViolation(err) {
			return Setting{}, fmt.Errorf("%w: setting %q already exists", shared.ErrConflict, setting.Key)
		}
		return Setting{}, err
	}
	return setting, nil
}

// UpdateSettingValue stores a new value for the key.
func (r *Repository) UpdateSettingValue(ctx context.Context, key, value string) (Setting, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE system_settings SET value = $2, updated_at = NOW() WHERE key = $1`, key, value)
	if err != nil {
		return Setting{}, err
	}
	if tag.RowsAffected() == 0 {
		return Setting{}, fmt.Errorf("%w: setting %q", shared.ErrNotFound, key)
	}
	return r.GetSetting(ctx, key)
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM system_settings WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: setting %q", shared.ErrNotFound, key)
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
