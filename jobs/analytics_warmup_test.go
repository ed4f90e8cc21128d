package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlas-hrms/atlas-hrms/internal/analytics"
)

type countingRepo struct {
	calls map[string]int
}

func (r *countingRepo) bump(name string) {
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[name]++
}

func (r *countingRepo) StatusCounts(ctx context.Context) ([]analytics.StatusCount, error) {
	r.bump("status")
	return []analytics.StatusCount{{Status: "active", Count: 3}}, nil
}

func (r *countingRepo) MonthlyFlows(ctx context.Context, year int) ([]analytics.MonthlyFlow, error) {
	r.bump("flows")
	return nil, nil
}

func (r *countingRepo) Headcount(ctx context.Context) (int64, error) {
	r.bump("headcount")
	return 3, nil
}

func (r *countingRepo) DepartmentCounts(ctx context.Context) ([]analytics.DepartmentShare, error) {
	r.bump("departments")
	return nil, nil
}

func (r *countingRepo) AverageTenureMonths(ctx context.Context) (float64, error) {
	r.bump("tenure")
	return 14.5, nil
}

func (r *countingRepo) RecentHires(ctx context.Context, since time.Time) (int64, error) {
	r.bump("recent")
	return 1, nil
}

func (r *countingRepo) DepartmentHires(ctx context.Context, since time.Time) ([]analytics.DepartmentGrowth, error) {
	r.bump("growth")
	return nil, nil
}

func TestAnalyticsWarmupRefreshesEveryReport(t *testing.T) {
	repo := &countingRepo{}
	svc := analytics.NewService(repo, nil)
	job := NewAnalyticsWarmupJob(svc, nil, nil)

	task, err := NewAnalyticsWarmupTask()
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}

	for _, name := range []string{"status", "flows", "departments", "tenure"} {
		if repo.calls[name] == 0 {
			t.Fatalf("expected %s query to run, calls: %v", name, repo.calls)
		}
	}
}

func TestAnalyticsWarmupSkipsUnknownReport(t *testing.T) {
	repo := &countingRepo{}
	svc := analytics.NewService(repo, nil)
	job := NewAnalyticsWarmupJob(svc, nil, nil)

	task, err := NewAnalyticsWarmupTask("payroll-forecast")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("expected no queries for unknown report, calls: %v", repo.calls)
	}
}

func TestAnalyticsWarmupRejectsMalformedPayload(t *testing.T) {
	repo := &countingRepo{}
	svc := analytics.NewService(repo, nil)
	job := NewAnalyticsWarmupJob(svc, nil, nil)

	task := asynq.NewTask(TaskTypeAnalyticsWarmup, []byte("{"))
	if err := job.Handle(context.Background(), task); err != asynq.SkipRetry {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
