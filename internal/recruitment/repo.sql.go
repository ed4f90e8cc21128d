package recruitment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

const postingColumns = `r.id, r.position, r.department_id, d.name, r.description, r.number_of_posts,
	r.status, r.posted_date, r.closing_date, r.created_at, r.updated_at`

// ListPostings returns postings, optionally filtered by status, newest first.
func (r *Repository) ListPostings(ctx context.Context, status string) ([]Posting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postingColumns+`
		FROM recruitments r JOIN departments d ON d.id = r.department_id
		WHERE ($1 = '' OR r.status = $1)
		ORDER BY r.posted_date DESC, r.id DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var postings []Posting
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}
	return postings, rows.Err()
}

// GetPosting fetches one posting.
func (r *Repository) GetPosting(ctx context.Context, id int64) (Posting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postingColumns+`
		FROM recruitments r JOIN departments d ON d.id = r.department_id
		WHERE r.id = $1`, id)
	if err != nil {
		return Posting{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Posting{}, err
		}
		return Posting{}, fmt.Errorf("%w: posting %d", shared.ErrNotFound, id)
	}
	return scanPosting(rows)
}

// InsertPosting creates a posting.
func (r *Repository) InsertPosting(ctx context.Context, posting Posting) (Posting, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO recruitments (position, department_id, description, number_of_posts, status, posted_date, closing_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		posting.Position, posting.DepartmentID, posting.Description, posting.NumberOfPosts,
		posting.Status, posting.PostedDate, posting.ClosingDate)
	if err := row.Scan(&posting.ID, &posting.CreatedAt, &posting.UpdatedAt); err != nil {
		return Posting{}, err
	}
	return r.GetPosting(ctx, posting.ID)
}

// UpdatePosting persists posting fields.
func (r *Repository) UpdatePosting(ctx context.Context, posting Posting) (Posting, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE recruitments
		SET position = $2, department_id = $3, description = $4, number_of_posts = $5,
		    status = $6, closing_date = $7, updated_at = NOW()
		WHERE id = $1`,
		posting.ID, posting.Position, posting.DepartmentID, posting.Description,
		posting.NumberOfPosts, posting.Status, posting.ClosingDate)
	if err != nil {
		return Posting{}, err
	}
	if tag.RowsAffected() == 0 {
		return Posting{}, fmt.Errorf("%w: posting %d", shared.ErrNotFound, posting.ID)
	}
	return r.GetPosting(ctx, posting.ID)
}

// DeletePosting removes a posting.
func (r *Repository) DeletePosting(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recruitments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: posting %d", shared.ErrNotFound, id)
	}
	return nil
}

// DepartmentExists reports whether a department row exists.
func (r *Repository) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanPosting(rows pgx.Rows) (Posting, error) {
	var p Posting
	if err := rows.Scan(
		&p.ID, &p.Position, &p.DepartmentID, &p.Department, &p.Description, &p.NumberOfPosts,
		&p.Status, &p.PostedDate, &p.ClosingDate, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Posting{}, err
	}
	return p, nil
}

var _ RepositoryPort = (*Repository)(nil)
