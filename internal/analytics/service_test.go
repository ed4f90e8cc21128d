package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/atlas-hrms/atlas-hrms/testing"
)

type fakeRepo struct {
	statusCalls int
	headcount   int64
	flows       []MonthlyFlow
	shares      []DepartmentShare
	avgTenure   float64
	recentHires int64
	growth      []DepartmentGrowth
}

func (f *fakeRepo) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	f.statusCalls++
	return []StatusCount{
		{Status: "active", Count: 8},
		{Status: "on_leave", Count: 2},
	}, nil
}

func (f *fakeRepo) MonthlyFlows(ctx context.Context, year int) ([]MonthlyFlow, error) {
	return f.flows, nil
}

func (f *fakeRepo) Headcount(ctx context.Context) (int64, error) {
	return f.headcount, nil
}

func (f *fakeRepo) DepartmentCounts(ctx context.Context) ([]DepartmentShare, error) {
	return f.shares, nil
}

func (f *fakeRepo) AverageTenureMonths(ctx context.Context) (float64, error) {
	return f.avgTenure, nil
}

func (f *fakeRepo) RecentHires(ctx context.Context, since time.Time) (int64, error) {
	return f.recentHires, nil
}

func (f *fakeRepo) DepartmentHires(ctx context.Context, since time.Time) ([]DepartmentGrowth, error) {
	return f.growth, nil
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(repo, NewCache(client, time.Minute))
}

func TestEmployeeStatusLabelsAndCaching(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)
	ctx := context.Background()

	counts, err := svc.EmployeeStatus(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, "Active", counts[0].Label)
	require.Equal(t, "On Leave", counts[1].Label)

	// Second read is served from cache.
	_, err = svc.EmployeeStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.statusCalls)

	// A version bump forces a reload.
	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.EmployeeStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.statusCalls)
}

func TestTurnoverRatio(t *testing.T) {
	jan := time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		headcount: 20,
		flows: []MonthlyFlow{
			{Month: jan, Joined: 3, Left: 1},
			{Month: jan.AddDate(0, 1, 0), Joined: 0, Left: 2},
		},
	}
	svc := newTestService(t, repo)

	series, err := svc.TurnoverRatio(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, jan.Format("2006-01"), series[0].Month)
	require.InDelta(t, 5.0, series[0].TurnoverPc, 0.001)
	require.InDelta(t, 10.0, series[1].TurnoverPc, 0.001)
}

func TestDepartmentDistributionPercentages(t *testing.T) {
	repo := &fakeRepo{
		shares: []DepartmentShare{
			{DepartmentID: 1, Department: "Engineering", Count: 6},
			{DepartmentID: 2, Department: "People", Count: 2},
		},
	}
	svc := newTestService(t, repo)

	shares, err := svc.DepartmentDistribution(context.Background())
	require.NoError(t, err)
	require.Len(t, shares, 2)
	require.InDelta(t, 75.0, shares[0].Percent, 0.001)
	require.InDelta(t, 25.0, shares[1].Percent, 0.001)
}

func TestDashboardAssemblesAllWidgets(t *testing.T) {
	repo := &fakeRepo{
		headcount:   10,
		avgTenure:   18.5,
		recentHires: 4,
		growth:      []DepartmentGrowth{{DepartmentID: 1, Department: "Engineering", Hires: 3}},
		shares:      []DepartmentShare{{DepartmentID: 1, Department: "Engineering", Count: 10}},
	}
	svc := newTestService(t, repo)

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, dash.EmployeeStatus, 2)
	require.InDelta(t, 18.5, dash.Tenure.AverageTenureMonths, 0.001)
	require.EqualValues(t, 4, dash.Tenure.RecentHires)
	require.Len(t, dash.Departments, 1)
	require.InDelta(t, 100.0, dash.Departments[0].Percent, 0.001)
}
