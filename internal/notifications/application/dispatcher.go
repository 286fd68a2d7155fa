// Package application fans notifications out to a Sender and reports
// failures to the caller instead of aborting its work.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

// Failure is one notification that could not be delivered.
type Failure struct {
	Notification domain.Notification
	Err          error
}

// Report summarizes a dispatch.
type Report struct {
	Sent     int
	Failures []Failure
}

// Failed reports whether any notification failed.
func (r Report) Failed() bool { return len(r.Failures) > 0 }

// Err joins every failure, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = fmt.Errorf("%s to %s: %w", f.Notification.Type, f.Notification.RecipientID, f.Err)
	}
	return errors.Join(errs...)
}

// Merge adds other into r.
func (r *Report) Merge(other Report) {
	r.Sent += other.Sent
	r.Failures = append(r.Failures, other.Failures...)
}

// Dispatcher sends notifications one by one; a failure never stops the rest.
type Dispatcher struct {
	sender  domain.Sender
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(sender domain.Sender, logger *slog.Logger, metrics observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Dispatcher{sender: sender, logger: logger, metrics: metrics}
}

// Dispatch delivers every notification and reports the outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications []domain.Notification) Report {
	var report Report
	for _, n := range notifications {
		err := n.Validate()
		if err == nil {
			err = d.sender.Notify(ctx, n)
		}
		tag := observability.T("type", string(n.Type))
		if err != nil {
			report.Failures = append(report.Failures, Failure{Notification: n, Err: err})
			d.metrics.Counter(observability.MetricNotificationsFailed, 1, tag)
			d.logger.WarnContext(ctx, "notification failed",
				"type", n.Type,
				"recipient_id", n.RecipientID,
				"project_id", n.ProjectID,
				"error", err,
			)
			continue
		}
		report.Sent++
		d.metrics.Counter(observability.MetricNotificationsSent, 1, tag)
	}
	return report
}
