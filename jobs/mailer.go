package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/atlas-hrms/atlas-hrms/internal/jobs"
)

// Mailer delivers transactional mail through a plain SMTP relay such as
// Mailpit in development.
type Mailer struct {
	Host    string
	Port    int
	From    string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewMailer wires an SMTP mailer for the send-email task handler.
func NewMailer(host string, port int, from string, logger *slog.Logger, metrics *jobmetrics.Metrics) *Mailer {
	return &Mailer{Host: host, Port: port, From: from, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeSendEmail tasks.
func (m *Mailer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	tracker := m.Metrics.Track(TaskTypeSendEmail)
	err := tracker.End(m.send(payload))
	if err != nil {
		m.logger().Error("send mail", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	m.Metrics.AddMail(kindOrDefault(payload.Kind))
	m.logger().Info("mail sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}

func (m *Mailer) send(payload SendEmailPayload) error {
	if m.Host == "" {
		m.logger().Info("mailer not configured, dropping mail", slog.String("to", payload.To))
		return nil
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", payload.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", payload.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(payload.Body)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return smtp.SendMail(addr, nil, m.From, []string{payload.To}, []byte(msg.String()))
}

func (m *Mailer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func kindOrDefault(kind string) string {
	if kind == "" {
		return "generic"
	}
	return kind
}
