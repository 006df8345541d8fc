package slack

import (
	"context"
	"log/slog"
	"time"
)

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token        string
	Channel      string
	DashboardURL string
}

// JobStartedInput contains data for a job-submission notification.
type JobStartedInput struct {
	JobID  string
	Prompt string
}

// JobCompletedInput contains data for a terminal job notification.
type JobCompletedInput struct {
	JobID         string
	Status        string // completed, failed, cancelled
	ComponentName string
	ChartType     string
	ErrorMessage  string
	ThreadTS      string // cached from the start notification, for threading
}

// Service handles Slack notification delivery. Nil-safe: every method is
// a no-op when the Service itself is nil, so a deployment without Slack
// configured can pass a nil *Service straight through unconditionally.
type Service struct {
	client       *Client
	dashboardURL string
	logger       *slog.Logger
}

// NewService creates a new Slack notification service. Returns nil if
// Token or Channel is empty, so callers never need to branch on whether
// notifications are configured.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return &Service{
		client:       NewClient(cfg.Token, cfg.Channel),
		dashboardURL: cfg.DashboardURL,
		logger:       slog.Default().With("component", "slack-service"),
	}
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
// Useful for testing with a mock API server.
func NewServiceWithClient(client *Client, dashboardURL string) *Service {
	return &Service{
		client:       client,
		dashboardURL: dashboardURL,
		logger:       slog.Default().With("component", "slack-service"),
	}
}

// NotifyJobStarted sends a "generating" notification and returns the
// posted message's timestamp, for threading by NotifyJobCompleted.
// Fail-open: errors are logged, never returned.
func (s *Service) NotifyJobStarted(ctx context.Context, input JobStartedInput) string {
	if s == nil {
		return ""
	}

	blocks := BuildJobStartedMessage(input.JobID, input.Prompt)
	ts, err := s.client.PostMessage(ctx, blocks, "", 5*time.Second)
	if err != nil {
		s.logger.Error("failed to send Slack start notification", "job_id", input.JobID, "error", err)
		return ""
	}
	return ts
}

// NotifyJobCompleted sends a terminal status notification, threaded under
// ThreadTS when present. Fail-open: errors are logged, never returned.
func (s *Service) NotifyJobCompleted(ctx context.Context, input JobCompletedInput) {
	if s == nil {
		return
	}

	blocks := BuildJobCompletedMessage(input, s.dashboardURL)
	if _, err := s.client.PostMessage(ctx, blocks, input.ThreadTS, 10*time.Second); err != nil {
		s.logger.Error("failed to send Slack completion notification",
			"job_id", input.JobID, "status", input.Status, "error", err)
	}
}
