package analytics

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Service coordinates dashboard query execution with the cache layer.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	now   func() time.Time
}

// NewService wires a RepositoryPort with a Cache helper.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// EmployeeStatus returns headcount per employment status with display labels.
func (s *Service) EmployeeStatus(ctx context.Context) ([]StatusCount, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "employee-status")
	if err != nil {
		return nil, err
	}
	var counts []StatusCount
	err = s.cache.FetchJSON(ctx, key, &counts, func(ctx context.Context) (interface{}, error) {
		raw, err := s.repo.StatusCounts(ctx)
		if err != nil {
			return nil, err
		}
		for i := range raw {
			raw[i].Label = StatusLabel(raw[i].Status)
		}
		return raw, nil
	})
	return counts, err
}

// TurnoverRatio returns the monthly turnover series for the current year.
// Turnover for a month is departures divided by current headcount.
func (s *Service) TurnoverRatio(ctx context.Context) ([]MonthlyTurnover, error) {
	year := s.now().Year()
	key, err := s.cache.BuildKey(ctx, "analytics", "turnover", formatYear(year))
	if err != nil {
		return nil, err
	}
	var series []MonthlyTurnover
	err = s.cache.FetchJSON(ctx, key, &series, func(ctx context.Context) (interface{}, error) {
		flows, err := s.repo.MonthlyFlows(ctx, year)
		if err != nil {
			return nil, err
		}
		headcount, err := s.repo.Headcount(ctx)
		if err != nil {
			return nil, err
		}
		result := make([]MonthlyTurnover, 0, len(flows))
		for _, f := range flows {
			entry := MonthlyTurnover{
				Month:     f.Month.Format("2006-01"),
				Joined:    f.Joined,
				Left:      f.Left,
				Headcount: headcount,
			}
			if headcount > 0 {
				entry.TurnoverPc = float64(f.Left) / float64(headcount) * 100
			}
			result = append(result, entry)
		}
		return result, nil
	})
	return series, err
}

// DepartmentDistribution returns each department's share of the headcount.
func (s *Service) DepartmentDistribution(ctx context.Context) ([]DepartmentShare, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "departments")
	if err != nil {
		return nil, err
	}
	var shares []DepartmentShare
	err = s.cache.FetchJSON(ctx, key, &shares, func(ctx context.Context) (interface{}, error) {
		raw, err := s.repo.DepartmentCounts(ctx)
		if err != nil {
			return nil, err
		}
		var total int64
		for _, share := range raw {
			total += share.Count
		}
		for i := range raw {
			if total > 0 {
				raw[i].Percent = float64(raw[i].Count) / float64(total) * 100
			}
		}
		return raw, nil
	})
	return shares, err
}

// Tenure returns tenure aggregates over the trailing year.
func (s *Service) Tenure(ctx context.Context) (TenureReport, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "tenure")
	if err != nil {
		return TenureReport{}, err
	}
	var report TenureReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		since := s.now().AddDate(0, -12, 0)
		var result TenureReport
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			avg, err := s.repo.AverageTenureMonths(ctx)
			result.AverageTenureMonths = avg
			return err
		})
		g.Go(func() error {
			hires, err := s.repo.RecentHires(ctx, since)
			result.RecentHires = hires
			return err
		})
		g.Go(func() error {
			growth, err := s.repo.DepartmentHires(ctx, since)
			result.DepartmentGrowth = growth
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return result, nil
	})
	return report, err
}

// Dashboard assembles every widget in parallel.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.EmployeeStatus(ctx)
		dash.EmployeeStatus = counts
		return err
	})
	g.Go(func() error {
		series, err := s.TurnoverRatio(ctx)
		dash.Turnover = series
		return err
	})
	g.Go(func() error {
		shares, err := s.DepartmentDistribution(ctx)
		dash.Departments = shares
		return err
	})
	g.Go(func() error {
		report, err := s.Tenure(ctx)
		dash.Tenure = report
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}

// Invalidate bumps the cache version after a write to employee data.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// StatusLabel renders a status slug as a display label ("on_leave" -> "On Leave").
func StatusLabel(status string) string {
	return titleCaser.String(strings.ReplaceAll(status, "_", " "))
}

func formatYear(year int) string {
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}
