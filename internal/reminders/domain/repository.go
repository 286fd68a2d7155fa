package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists reminders. Save uses the aggregate version as a
// compare-and-swap guard and returns ErrStaleReminder when it lost.
type Repository interface {
	Save(ctx context.Context, reminder *Reminder) error
	FindByID(ctx context.Context, id uuid.UUID) (*Reminder, error)
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]*Reminder, error)
	FindByRecipient(ctx context.Context, userID uuid.UUID, includeFinished bool) ([]*Reminder, error)

	// FindUnscheduledStageBased returns scheduled stage reminders that have
	// not matched their stage yet.
	FindUnscheduledStageBased(ctx context.Context, limit int) ([]*Reminder, error)
	// FindDue returns active, unclaimed reminders due at or before now.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*Reminder, error)
	// Claim marks a due reminder as processing. It returns false when another
	// process already claimed or changed it.
	Claim(ctx context.Context, reminder *Reminder, now time.Time) (bool, error)
	// ReclaimStale releases claims older than cutoff.
	ReclaimStale(ctx context.Context, cutoff, now time.Time) (int64, error)
	// NextTriggerAt returns the earliest pending due time, or nil.
	NextTriggerAt(ctx context.Context) (*time.Time, error)
}

// ProjectStatusReader reports the current status of projects.
type ProjectStatusReader interface {
	ProjectStatuses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// ProjectTypeReader reports the workflow type of projects.
type ProjectTypeReader interface {
	ProjectTypes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
