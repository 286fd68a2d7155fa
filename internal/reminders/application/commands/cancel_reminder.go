package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
)

// CancelReminderCommand stops future fires of a reminder.
type CancelReminderCommand struct {
	Meta
	ReminderID uuid.UUID
}

// CancelReminderHandler handles the CancelReminderCommand.
type CancelReminderHandler struct {
	store *Store
}

// NewCancelReminderHandler creates a new CancelReminderHandler.
func NewCancelReminderHandler(store *Store) *CancelReminderHandler {
	return &CancelReminderHandler{store: store}
}

// Handle cancels the reminder. Only its creator or an admin may do so.
func (h *CancelReminderHandler) Handle(ctx context.Context, cmd CancelReminderCommand) (*domain.Reminder, error) {
	reminder, err := h.store.repo.FindByID(ctx, cmd.ReminderID)
	if err != nil {
		return nil, err
	}
	if !cmd.IsAdmin && reminder.CreatedBy() != cmd.ActorID {
		return nil, domain.ErrNotReminderOwner
	}
	if err := reminder.Cancel(cmd.ActorID, h.store.now()); err != nil {
		return nil, err
	}
	if err := h.store.commit(ctx, cmd.Meta, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}
