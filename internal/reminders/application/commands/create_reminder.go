package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	projectsDomain "github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
)

// CreateReminderCommand describes a reminder to schedule.
type CreateReminderCommand struct {
	Meta
	Title        string
	Message      string
	ProjectID    uuid.UUID
	TriggerMode  domain.TriggerMode
	RemindAt     time.Time
	WatchStatus  string
	DelayMinutes int
	Repeat       domain.Repeat
	Channel      notifDomain.Channel
	Recipients   []uuid.UUID
}

// CreateReminderHandler handles the CreateReminderCommand.
type CreateReminderHandler struct {
	store    *Store
	projects domain.ProjectTypeReader
}

// NewCreateReminderHandler creates a new CreateReminderHandler.
func NewCreateReminderHandler(store *Store, projects domain.ProjectTypeReader) *CreateReminderHandler {
	return &CreateReminderHandler{store: store, projects: projects}
}

// Handle validates and stores the reminder.
func (h *CreateReminderHandler) Handle(ctx context.Context, cmd CreateReminderCommand) (*domain.Reminder, error) {
	var projectType projectsDomain.ProjectType
	if cmd.ProjectID != uuid.Nil {
		types, err := h.projects.ProjectTypes(ctx, []uuid.UUID{cmd.ProjectID})
		if err != nil {
			return nil, err
		}
		raw, ok := types[cmd.ProjectID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", projectsDomain.ErrProjectNotFound, cmd.ProjectID)
		}
		projectType = projectsDomain.ProjectType(raw)
	}
	if cmd.TriggerMode == domain.TriggerStage && cmd.WatchStatus != "" {
		if err := checkWatchStatus(cmd.WatchStatus, projectType); err != nil {
			return nil, err
		}
	}

	reminder, err := domain.NewReminder(domain.NewReminderParams{
		CreatedBy:    cmd.ActorID,
		Title:        cmd.Title,
		Message:      cmd.Message,
		ProjectID:    cmd.ProjectID,
		TriggerMode:  cmd.TriggerMode,
		RemindAt:     cmd.RemindAt,
		WatchStatus:  cmd.WatchStatus,
		DelayMinutes: cmd.DelayMinutes,
		Repeat:       cmd.Repeat,
		Channel:      cmd.Channel,
		Recipients:   cmd.Recipients,
	}, h.store.now())
	if err != nil {
		return nil, err
	}
	if err := h.store.commit(ctx, cmd.Meta, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// checkWatchStatus rejects stages a project of projectType can never be
// stored at: unknown statuses, statuses of the other workflow, and
// completion statuses that auto-advance before they are saved.
func checkWatchStatus(raw string, projectType projectsDomain.ProjectType) error {
	status, err := projectsDomain.ParseStatus(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTrigger, err)
	}
	if next := projectsDomain.AutoAdvance(status); next != status {
		return fmt.Errorf("%w: %q advances to %q and is never reached; watch %q instead",
			domain.ErrInvalidTrigger, status, next, next)
	}
	if projectType != "" && !status.ValidFor(projectType) {
		return fmt.Errorf("%w: %q is not a %s status", domain.ErrInvalidTrigger, status, projectType)
	}
	return nil
}
