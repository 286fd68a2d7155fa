package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
)

// CompleteReminderCommand marks a reminder done for one recipient.
type CompleteReminderCommand struct {
	Meta
	ReminderID  uuid.UUID
	RecipientID uuid.UUID
}

// CompleteReminderHandler handles the CompleteReminderCommand.
type CompleteReminderHandler struct {
	store *Store
}

// NewCompleteReminderHandler creates a new CompleteReminderHandler.
func NewCompleteReminderHandler(store *Store) *CompleteReminderHandler {
	return &CompleteReminderHandler{store: store}
}

// Handle records the completion. RecipientID defaults to the actor; only
// admins may complete on someone else's behalf.
func (h *CompleteReminderHandler) Handle(ctx context.Context, cmd CompleteReminderCommand) (*domain.Reminder, error) {
	recipient := cmd.RecipientID
	if recipient == uuid.Nil {
		recipient = cmd.ActorID
	}
	if recipient != cmd.ActorID && !cmd.IsAdmin {
		return nil, domain.ErrNotARecipient
	}

	reminder, err := h.store.repo.FindByID(ctx, cmd.ReminderID)
	if err != nil {
		return nil, err
	}
	if err := reminder.CompleteFor(recipient, h.store.now()); err != nil {
		return nil, err
	}
	if err := h.store.commit(ctx, cmd.Meta, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}
