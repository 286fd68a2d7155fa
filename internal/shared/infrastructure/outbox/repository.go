package outbox

import (
	"context"
	"time"
)

// Writer enqueues messages. Inside a unit of work the rows commit or roll
// back with the aggregate change that produced them.
type Writer interface {
	SaveBatch(ctx context.Context, msgs []*Message) error
}

// Repository is the relay's view of the outbox table.
type Repository interface {
	Writer

	// GetUnpublished returns pending messages whose retry time has passed,
	// oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id int64) error
	// MarkFailed bumps the retry count and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error
	// MarkDead parks a message that exhausted its retries.
	MarkDead(ctx context.Context, id int64, reason string) error
	// DeleteOld purges published rows older than the retention window.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
