// Package domain holds the Reminder aggregate: a notification scheduled
// either for a fixed time or for a delay after a project reaches a stage.
package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrStaleReminder    = errors.New("reminder was modified concurrently")
	ErrEmptyTitle       = errors.New("reminder title is required")
	ErrNoRecipients     = errors.New("reminder needs at least one recipient")
	ErrInvalidTrigger   = errors.New("invalid reminder trigger")
	ErrInvalidRepeat    = errors.New("invalid repeat period")
	ErrInvalidChannel   = errors.New("invalid delivery channel")
	ErrReminderFinished = errors.New("reminder is no longer scheduled")
	ErrNotARecipient    = errors.New("user is not a recipient of this reminder")
	ErrNotReminderOwner = errors.New("only the creator can change this reminder")
)

// TriggerMode says how the due time is derived.
type TriggerMode string

const (
	TriggerAbsolute TriggerMode = "absolute_time"
	TriggerStage    TriggerMode = "stage_based"
)

// Repeat is the period a fired reminder advances by.
type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

// IsValid reports whether r is a known period.
func (r Repeat) IsValid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// Next returns t advanced by one period.
func (r Repeat) Next(t time.Time) time.Time {
	switch r {
	case RepeatDaily:
		return t.AddDate(0, 0, 1)
	case RepeatWeekly:
		return t.AddDate(0, 0, 7)
	case RepeatMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t
}

// Status is the lifecycle of a reminder.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Recipient is one user the reminder is delivered to.
type Recipient struct {
	UserID      uuid.UUID  `json:"user_id"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Reminder is the aggregate root.
type Reminder struct {
	sharedDomain.BaseAggregateRoot
	createdBy      uuid.UUID
	title          string
	message        string
	projectID      uuid.UUID
	triggerMode    TriggerMode
	remindAt       *time.Time
	nextTriggerAt  *time.Time
	watchStatus    string
	delayMinutes   int
	stageMatchedAt *time.Time
	repeat         Repeat
	status         Status
	isActive       bool
	processing     bool
	processingAt   *time.Time
	lastError      string
	lastFiredAt    *time.Time
	fireCount      int
	channel        notifDomain.Channel
	recipients     []Recipient
}

// NewReminderParams describes a reminder to create.
type NewReminderParams struct {
	CreatedBy    uuid.UUID
	Title        string
	Message      string
	ProjectID    uuid.UUID
	TriggerMode  TriggerMode
	RemindAt     time.Time
	WatchStatus  string
	DelayMinutes int
	Repeat       Repeat
	Channel      notifDomain.Channel
	Recipients   []uuid.UUID
}

// NewReminder validates params and creates a scheduled reminder.
func NewReminder(params NewReminderParams, now time.Time) (*Reminder, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	repeat := params.Repeat
	if repeat == "" {
		repeat = RepeatNone
	}
	if !repeat.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRepeat, params.Repeat)
	}
	channel := params.Channel
	if channel == "" {
		channel = notifDomain.ChannelInApp
	}
	if !channel.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, params.Channel)
	}

	var recipients []Recipient
	for _, id := range params.Recipients {
		if id == uuid.Nil || slices.ContainsFunc(recipients, func(r Recipient) bool { return r.UserID == id }) {
			continue
		}
		recipients = append(recipients, Recipient{UserID: id})
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	r := &Reminder{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRootAt(uuid.New(), now),
		createdBy:         params.CreatedBy,
		title:             title,
		message:           strings.TrimSpace(params.Message),
		projectID:         params.ProjectID,
		triggerMode:       params.TriggerMode,
		repeat:            repeat,
		status:            StatusScheduled,
		isActive:          true,
		channel:           channel,
		recipients:        recipients,
	}

	switch params.TriggerMode {
	case TriggerAbsolute:
		if params.RemindAt.IsZero() {
			return nil, fmt.Errorf("%w: absolute reminders need a time", ErrInvalidTrigger)
		}
		at := params.RemindAt.UTC()
		r.remindAt = &at
		next := at
		r.nextTriggerAt = &next
	case TriggerStage:
		if params.ProjectID == uuid.Nil {
			return nil, fmt.Errorf("%w: stage reminders need a project", ErrInvalidTrigger)
		}
		if strings.TrimSpace(params.WatchStatus) == "" {
			return nil, fmt.Errorf("%w: stage reminders need a watch status", ErrInvalidTrigger)
		}
		if params.DelayMinutes < 0 {
			return nil, fmt.Errorf("%w: delay cannot be negative", ErrInvalidTrigger)
		}
		r.watchStatus = params.WatchStatus
		r.delayMinutes = params.DelayMinutes
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidTrigger, params.TriggerMode)
	}

	r.AddDomainEvent(NewReminderCreated(r, now))
	return r, nil
}

func (r *Reminder) CreatedBy() uuid.UUID         { return r.createdBy }
func (r *Reminder) Title() string                { return r.title }
func (r *Reminder) Message() string              { return r.message }
func (r *Reminder) ProjectID() uuid.UUID         { return r.projectID }
func (r *Reminder) TriggerMode() TriggerMode     { return r.triggerMode }
func (r *Reminder) RemindAt() *time.Time         { return r.remindAt }
func (r *Reminder) NextTriggerAt() *time.Time    { return r.nextTriggerAt }
func (r *Reminder) WatchStatus() string          { return r.watchStatus }
func (r *Reminder) DelayMinutes() int            { return r.delayMinutes }
func (r *Reminder) StageMatchedAt() *time.Time   { return r.stageMatchedAt }
func (r *Reminder) Repeat() Repeat               { return r.repeat }
func (r *Reminder) Status() Status               { return r.status }
func (r *Reminder) IsActive() bool               { return r.isActive }
func (r *Reminder) Processing() bool             { return r.processing }
func (r *Reminder) ProcessingAt() *time.Time     { return r.processingAt }
func (r *Reminder) LastError() string            { return r.lastError }
func (r *Reminder) LastFiredAt() *time.Time      { return r.lastFiredAt }
func (r *Reminder) FireCount() int               { return r.fireCount }
func (r *Reminder) Channel() notifDomain.Channel { return r.channel }
func (r *Reminder) Recipients() []Recipient      { return slices.Clone(r.recipients) }

// PendingRecipients returns the users who have not completed the reminder.
func (r *Reminder) PendingRecipients() []uuid.UUID {
	var ids []uuid.UUID
	for _, rc := range r.recipients {
		if rc.CompletedAt == nil {
			ids = append(ids, rc.UserID)
		}
	}
	return ids
}

// Activate schedules a stage reminder once its project reached the stage.
func (r *Reminder) Activate(now time.Time) bool {
	if r.triggerMode != TriggerStage || r.nextTriggerAt != nil || r.status != StatusScheduled {
		return false
	}
	matched := now.UTC()
	next := matched.Add(time.Duration(r.delayMinutes) * time.Minute)
	r.stageMatchedAt = &matched
	r.nextTriggerAt = &next
	r.Touch(now)
	return true
}

// Claim marks the reminder as being fired by this process.
func (r *Reminder) Claim(now time.Time) {
	at := now.UTC()
	r.processing = true
	r.processingAt = &at
}

// Fired records a successful delivery and advances or completes the reminder.
func (r *Reminder) Fired(now time.Time) {
	at := now.UTC()
	r.processing = false
	r.processingAt = nil
	r.lastError = ""
	r.lastFiredAt = &at
	r.fireCount++
	if r.repeat != RepeatNone && r.nextTriggerAt != nil {
		next := r.repeat.Next(*r.nextTriggerAt)
		for !next.After(at) {
			next = r.repeat.Next(next)
		}
		r.nextTriggerAt = &next
	} else {
		r.status = StatusCompleted
		r.isActive = false
	}
	r.Touch(now)
	r.AddDomainEvent(NewReminderFired(r, now))
}

// FireFailed releases the claim so the next sweep retries.
func (r *Reminder) FireFailed(cause error, now time.Time) {
	r.processing = false
	r.processingAt = nil
	r.lastError = cause.Error()
	r.Touch(now)
}

// NoteDeliveryError records a partial delivery failure on a fired reminder.
func (r *Reminder) NoteDeliveryError(cause error) {
	if cause != nil {
		r.lastError = cause.Error()
	}
}

// Cancel stops future fires.
func (r *Reminder) Cancel(actorID uuid.UUID, now time.Time) error {
	if r.status != StatusScheduled {
		return ErrReminderFinished
	}
	r.status = StatusCancelled
	r.isActive = false
	r.Touch(now)
	r.AddDomainEvent(NewReminderCancelled(r, actorID, now))
	return nil
}

// CompleteFor marks the reminder done for one recipient. A non-repeating
// reminder completes once every recipient is done.
func (r *Reminder) CompleteFor(userID uuid.UUID, now time.Time) error {
	idx := slices.IndexFunc(r.recipients, func(rc Recipient) bool { return rc.UserID == userID })
	if idx < 0 {
		return ErrNotARecipient
	}
	if r.recipients[idx].CompletedAt != nil {
		return nil
	}
	at := now.UTC()
	r.recipients[idx].CompletedAt = &at
	r.Touch(now)

	if len(r.PendingRecipients()) == 0 && r.repeat == RepeatNone && r.status == StatusScheduled {
		r.status = StatusCompleted
		r.isActive = false
		r.AddDomainEvent(NewReminderCompleted(r, now))
	}
	return nil
}

// Snapshot is the flat persisted form of a Reminder.
type Snapshot struct {
	ID             uuid.UUID
	CreatedBy      uuid.UUID
	Title          string
	Message        string
	ProjectID      uuid.UUID
	TriggerMode    TriggerMode
	RemindAt       *time.Time
	NextTriggerAt  *time.Time
	WatchStatus    string
	DelayMinutes   int
	StageMatchedAt *time.Time
	Repeat         Repeat
	Status         Status
	IsActive       bool
	Processing     bool
	ProcessingAt   *time.Time
	LastError      string
	LastFiredAt    *time.Time
	FireCount      int
	Channel        notifDomain.Channel
	Recipients     []Recipient
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Snapshot captures the current state.
func (r *Reminder) Snapshot() Snapshot {
	return Snapshot{
		ID:             r.ID(),
		CreatedBy:      r.createdBy,
		Title:          r.title,
		Message:        r.message,
		ProjectID:      r.projectID,
		TriggerMode:    r.triggerMode,
		RemindAt:       r.remindAt,
		NextTriggerAt:  r.nextTriggerAt,
		WatchStatus:    r.watchStatus,
		DelayMinutes:   r.delayMinutes,
		StageMatchedAt: r.stageMatchedAt,
		Repeat:         r.repeat,
		Status:         r.status,
		IsActive:       r.isActive,
		Processing:     r.processing,
		ProcessingAt:   r.processingAt,
		LastError:      r.lastError,
		LastFiredAt:    r.lastFiredAt,
		FireCount:      r.fireCount,
		Channel:        r.channel,
		Recipients:     slices.Clone(r.recipients),
		Version:        r.Version(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
}

// RehydrateReminder rebuilds a reminder from storage.
func RehydrateReminder(s Snapshot) *Reminder {
	entity := sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt)
	return &Reminder{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, s.Version),
		createdBy:         s.CreatedBy,
		title:             s.Title,
		message:           s.Message,
		projectID:         s.ProjectID,
		triggerMode:       s.TriggerMode,
		remindAt:          s.RemindAt,
		nextTriggerAt:     s.NextTriggerAt,
		watchStatus:       s.WatchStatus,
		delayMinutes:      s.DelayMinutes,
		stageMatchedAt:    s.StageMatchedAt,
		repeat:            s.Repeat,
		status:            s.Status,
		isActive:          s.IsActive,
		processing:        s.Processing,
		processingAt:      s.ProcessingAt,
		lastError:         s.LastError,
		lastFiredAt:       s.LastFiredAt,
		fireCount:         s.FireCount,
		channel:           s.Channel,
		recipients:        slices.Clone(s.Recipients),
	}
}
