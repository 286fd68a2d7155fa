package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Reminder"

// Routing keys published through the outbox.
const (
	RoutingKeyCreated   = "reminders.reminder.created"
	RoutingKeyFired     = "reminders.reminder.fired"
	RoutingKeyCancelled = "reminders.reminder.cancelled"
	RoutingKeyCompleted = "reminders.reminder.completed"
)

func baseEvent(r *Reminder, routingKey string, now time.Time) sharedDomain.BaseEvent {
	return sharedDomain.NewBaseEventAt(r.ID(), aggregateType, routingKey, now)
}

// ReminderCreated is emitted when a reminder is scheduled.
type ReminderCreated struct {
	sharedDomain.BaseEvent
	ReminderID  uuid.UUID   `json:"reminder_id"`
	ProjectID   uuid.UUID   `json:"project_id,omitempty"`
	TriggerMode TriggerMode `json:"trigger_mode"`
	CreatedBy   uuid.UUID   `json:"created_by"`
}

// NewReminderCreated creates a ReminderCreated event.
func NewReminderCreated(r *Reminder, now time.Time) *ReminderCreated {
	return &ReminderCreated{
		BaseEvent:   baseEvent(r, RoutingKeyCreated, now),
		ReminderID:  r.ID(),
		ProjectID:   r.projectID,
		TriggerMode: r.triggerMode,
		CreatedBy:   r.createdBy,
	}
}

// ReminderFired is emitted after a reminder was delivered.
type ReminderFired struct {
	sharedDomain.BaseEvent
	ReminderID    uuid.UUID   `json:"reminder_id"`
	FireCount     int         `json:"fire_count"`
	Recipients    []uuid.UUID `json:"recipients"`
	NextTriggerAt *time.Time  `json:"next_trigger_at,omitempty"`
}

// NewReminderFired creates a ReminderFired event.
func NewReminderFired(r *Reminder, now time.Time) *ReminderFired {
	e := &ReminderFired{
		BaseEvent:  baseEvent(r, RoutingKeyFired, now),
		ReminderID: r.ID(),
		FireCount:  r.fireCount,
		Recipients: r.PendingRecipients(),
	}
	if r.status == StatusScheduled {
		e.NextTriggerAt = r.nextTriggerAt
	}
	return e
}

// ReminderCancelled is emitted when a reminder is cancelled.
type ReminderCancelled struct {
	sharedDomain.BaseEvent
	ReminderID  uuid.UUID `json:"reminder_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
}

// NewReminderCancelled creates a ReminderCancelled event.
func NewReminderCancelled(r *Reminder, actorID uuid.UUID, now time.Time) *ReminderCancelled {
	return &ReminderCancelled{
		BaseEvent:   baseEvent(r, RoutingKeyCancelled, now),
		ReminderID:  r.ID(),
		CancelledBy: actorID,
	}
}

// ReminderCompleted is emitted when every recipient completed a one-off reminder.
type ReminderCompleted struct {
	sharedDomain.BaseEvent
	ReminderID uuid.UUID `json:"reminder_id"`
}

// NewReminderCompleted creates a ReminderCompleted event.
func NewReminderCompleted(r *Reminder, now time.Time) *ReminderCompleted {
	return &ReminderCompleted{
		BaseEvent:  baseEvent(r, RoutingKeyCompleted, now),
		ReminderID: r.ID(),
	}
}
