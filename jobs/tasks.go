package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeAnalyticsWarmup is the task type for refreshing dashboard caches.
	TaskTypeAnalyticsWarmup = "analytics:warmup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Kind    string `json:"kind"`
}

// NewSendEmailTask constructs an Asynq task carrying the mail payload.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// AnalyticsWarmupPayload selects which dashboard reports to refresh. An empty
// list refreshes every report.
type AnalyticsWarmupPayload struct {
	Reports []string `json:"reports"`
}

// NewAnalyticsWarmupTask constructs an Asynq task for cache warmup.
func NewAnalyticsWarmupTask(reports ...string) (*asynq.Task, error) {
	data, err := json.Marshal(AnalyticsWarmupPayload{Reports: reports})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAnalyticsWarmup, data), nil
}
