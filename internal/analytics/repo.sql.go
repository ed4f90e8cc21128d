package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StatusCounts groups employees by employment status.
func (r *Repository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM employees GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// MonthlyFlows returns joins and departures per month for the given year.
func (r *Repository) MonthlyFlows(ctx context.Context, year int) ([]MonthlyFlow, error) {
	rows, err := r.pool.Query(ctx, `
		WITH months AS (
			SELECT generate_series(
				make_date($1, 1, 1),
				make_date($1, 12, 1),
				interval '1 month'
			)::date AS month
		)
		SELECT m.month,
		       COUNT(e.id) FILTER (WHERE date_trunc('month', e.joining_date) = m.month),
		       COUNT(e.id) FILTER (WHERE date_trunc('month', e.leaving_date) = m.month)
		FROM months m
		LEFT JOIN employees e
		  ON date_trunc('month', e.joining_date) = m.month
		  OR date_trunc('month', e.leaving_date) = m.month
		GROUP BY m.month
		ORDER BY m.month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var flows []MonthlyFlow
	for rows.Next() {
		var f MonthlyFlow
		if err := rows.Scan(&f.Month, &f.Joined, &f.Left); err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// Headcount counts employees currently on the books.
func (r *Repository) Headcount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE leaving_date IS NULL`).Scan(&count)
	return count, err
}

// DepartmentCounts groups active employees by department.
func (r *Repository) DepartmentCounts(ctx context.Context) ([]DepartmentShare, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name, COUNT(e.id)
		FROM departments d
		LEFT JOIN employees e ON e.department_id = d.id AND e.leaving_date IS NULL
		GROUP BY d.id, d.name
		ORDER BY COUNT(e.id) DESC, d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var shares []DepartmentShare
	for rows.Next() {
		var s DepartmentShare
		if err := rows.Scan(&s.DepartmentID, &s.Department, &s.Count); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

// AverageTenureMonths averages tenure of employees still on the books.
func (r *Repository) AverageTenureMonths(ctx context.Context) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (NOW() - joining_date)) / 2629800), 0)
		FROM employees WHERE leaving_date IS NULL AND joining_date IS NOT NULL`).Scan(&avg)
	return avg, err
}

// RecentHires counts employees who joined since the cutoff.
func (r *Repository) RecentHires(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM employees WHERE joining_date >= $1`, since).Scan(&count)
	return count, err
}

// DepartmentHires counts hires per department since the cutoff.
func (r *Repository) DepartmentHires(ctx context.Context, since time.Time) ([]DepartmentGrowth, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name, COUNT(e.id)
		FROM departments d
		LEFT JOIN employees e ON e.department_id = d.id AND e.joining_date >= $1
		GROUP BY d.id, d.name
		ORDER BY COUNT(e.id) DESC, d.name`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var growth []DepartmentGrowth
	for rows.Next() {
		var g DepartmentGrowth
		if err := rows.Scan(&g.DepartmentID, &g.Department, &g.Hires); err != nil {
			return nil, err
		}
		growth = append(growth, g)
	}
	return growth, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
