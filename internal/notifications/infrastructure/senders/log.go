package senders

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
)

// LogSender writes notifications to the structured log.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Notify logs n at info level.
func (s *LogSender) Notify(ctx context.Context, n domain.Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"type", n.Type,
		"channel", n.Channel,
		"recipient_id", n.RecipientID,
		"project_id", n.ProjectID,
		"title", n.Title,
	)
	return nil
}
