package analytics

import (
	"context"
	"time"
)

// MonthlyFlow is the raw joined/left count for one month.
type MonthlyFlow struct {
	Month  time.Time
	Joined int64
	Left   int64
}

// RepositoryPort exposes the aggregate queries the dashboard needs.
type RepositoryPort interface {
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	MonthlyFlows(ctx context.Context, year int) ([]MonthlyFlow, error)
	Headcount(ctx context.Context) (int64, error)
	DepartmentCounts(ctx context.Context) ([]DepartmentShare, error)
	AverageTenureMonths(ctx context.Context) (float64, error)
	RecentHires(ctx context.Context, since time.Time) (int64, error)
	DepartmentHires(ctx context.Context, since time.Time) ([]DepartmentGrowth, error)
}
