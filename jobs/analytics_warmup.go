package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlas-hrms/atlas-hrms/internal/analytics"
	jobmetrics "github.com/atlas-hrms/atlas-hrms/internal/jobs"
)

// Report names accepted in AnalyticsWarmupPayload.
const (
	ReportEmployeeStatus = "employee-status"
	ReportTurnover       = "turnover"
	ReportDepartments    = "departments"
	ReportTenure         = "tenure"
)

// AnalyticsWarmupJob pre-populates the dashboard caches so the first request
// after an invalidation does not pay the aggregation cost.
type AnalyticsWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analyticsSvc *analytics.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{Analytics: analyticsSvc, Logger: logger, Metrics: metrics}
}

// Handle processes analytics warmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	reports := payload.Reports
	if len(reports) == 0 {
		reports = []string{ReportEmployeeStatus, ReportTurnover, ReportDepartments, ReportTenure}
	}

	tracker := j.Metrics.Track(TaskTypeAnalyticsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting analytics warmup", slog.Int("reports", len(reports)))
	start := time.Now()

	for _, report := range reports {
		if err := j.warm(ctx, report); err != nil {
			resultErr = err
			logger.Error("warm report", slog.String("report", report), slog.Any("error", err))
			return resultErr
		}
		j.Metrics.AddWarmed(report, 1)
	}

	logger.Info("completed analytics warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *AnalyticsWarmupJob) warm(ctx context.Context, report string) error {
	// Each report gets its own timeout so a slow aggregate cannot stall the run.
	reportCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	switch report {
	case ReportEmployeeStatus:
		_, err := j.Analytics.EmployeeStatus(reportCtx)
		return err
	case ReportTurnover:
		_, err := j.Analytics.TurnoverRatio(reportCtx)
		return err
	case ReportDepartments:
		_, err := j.Analytics.DepartmentDistribution(reportCtx)
		return err
	case ReportTenure:
		_, err := j.Analytics.Tenure(reportCtx)
		return err
	default:
		j.logger().Warn("unknown warmup report", slog.String("report", report))
		return nil
	}
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
