// Package queries holds the read side of reminders.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
)

// ReminderDTO is the read model of a reminder.
type ReminderDTO struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Message       string             `json:"message,omitempty"`
	ProjectID     *uuid.UUID         `json:"project_id,omitempty"`
	TriggerMode   string             `json:"trigger_mode"`
	WatchStatus   string             `json:"watch_status,omitempty"`
	DelayMinutes  int                `json:"delay_minutes,omitempty"`
	NextTriggerAt *time.Time         `json:"next_trigger_at,omitempty"`
	Repeat        string             `json:"repeat"`
	Status        string             `json:"status"`
	Channel       string             `json:"channel"`
	FireCount     int                `json:"fire_count"`
	LastFiredAt   *time.Time         `json:"last_fired_at,omitempty"`
	LastError     string             `json:"last_error,omitempty"`
	Recipients    []domain.Recipient `json:"recipients"`
	CreatedBy     uuid.UUID          `json:"created_by"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewReminderDTO maps a reminder to its read model.
func NewReminderDTO(r *domain.Reminder) ReminderDTO {
	dto := ReminderDTO{
		ID:            r.ID(),
		Title:         r.Title(),
		Message:       r.Message(),
		TriggerMode:   string(r.TriggerMode()),
		WatchStatus:   r.WatchStatus(),
		DelayMinutes:  r.DelayMinutes(),
		NextTriggerAt: r.NextTriggerAt(),
		Repeat:        string(r.Repeat()),
		Status:        string(r.Status()),
		Channel:       string(r.Channel()),
		FireCount:     r.FireCount(),
		LastFiredAt:   r.LastFiredAt(),
		LastError:     r.LastError(),
		Recipients:    r.Recipients(),
		CreatedBy:     r.CreatedBy(),
		CreatedAt:     r.CreatedAt(),
	}
	if id := r.ProjectID(); id != uuid.Nil {
		dto.ProjectID = &id
	}
	return dto
}

// ListRemindersQuery selects reminders by recipient or by project.
// ProjectID wins when both are set.
type ListRemindersQuery struct {
	RecipientID     uuid.UUID
	ProjectID       uuid.UUID
	IncludeFinished bool
}

// ListRemindersHandler handles the ListRemindersQuery.
type ListRemindersHandler struct {
	repo domain.Repository
}

// NewListRemindersHandler creates a new ListRemindersHandler.
func NewListRemindersHandler(repo domain.Repository) *ListRemindersHandler {
	return &ListRemindersHandler{repo: repo}
}

// Handle runs the query.
func (h *ListRemindersHandler) Handle(ctx context.Context, query ListRemindersQuery) ([]ReminderDTO, error) {
	var (
		reminders []*domain.Reminder
		err       error
	)
	if query.ProjectID != uuid.Nil {
		reminders, err = h.repo.FindByProject(ctx, query.ProjectID)
	} else {
		reminders, err = h.repo.FindByRecipient(ctx, query.RecipientID, query.IncludeFinished)
	}
	if err != nil {
		return nil, err
	}
	out := make([]ReminderDTO, 0, len(reminders))
	for _, r := range reminders {
		if !query.IncludeFinished && r.Status() != domain.StatusScheduled {
			continue
		}
		out = append(out, NewReminderDTO(r))
	}
	return out, nil
}

// GetReminderHandler loads one reminder.
type GetReminderHandler struct {
	repo domain.Repository
}

// NewGetReminderHandler creates a new GetReminderHandler.
func NewGetReminderHandler(repo domain.Repository) *GetReminderHandler {
	return &GetReminderHandler{repo: repo}
}

// Handle returns the reminder with id.
func (h *GetReminderHandler) Handle(ctx context.Context, id uuid.UUID) (ReminderDTO, error) {
	r, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return ReminderDTO{}, err
	}
	return NewReminderDTO(r), nil
}
