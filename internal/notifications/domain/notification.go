// Package domain defines notifications sent to staff about project and
// reminder activity.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification.
type Type string

const (
	TypeStatusChanged            Type = "status_changed"
	TypeTransitionBlocked        Type = "transition_blocked"
	TypePrerequisiteCleared      Type = "prerequisite_cleared"
	TypeBillingOverrideUsed      Type = "billing_override_used"
	TypeProjectOnHold            Type = "project_on_hold"
	TypeProjectReleased          Type = "project_released"
	TypeProjectCancelled         Type = "project_cancelled"
	TypeProjectReactivated       Type = "project_reactivated"
	TypeProjectReopened          Type = "project_reopened"
	TypeDepartmentActionRequired Type = "department_action_required"
	TypeReminder                 Type = "reminder"
)

// Channel is the delivery medium.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
)

// IsValid reports whether c is a known channel.
func (c Channel) IsValid() bool { return c == ChannelInApp || c == ChannelEmail }

// ErrNoRecipient is returned for a notification without a recipient.
var ErrNoRecipient = errors.New("notification has no recipient")

// Notification is one message to one recipient. ProjectID is uuid.Nil for
// reminders not tied to a project.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Type        Type      `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Channel     Channel   `json:"channel"`
	CreatedAt   time.Time `json:"created_at"`
}

// New creates an in-app notification.
func New(recipientID, senderID, projectID uuid.UUID, t Type, title, message string, now time.Time) Notification {
	return Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		SenderID:    senderID,
		ProjectID:   projectID,
		Type:        t,
		Title:       title,
		Message:     message,
		Channel:     ChannelInApp,
		CreatedAt:   now.UTC(),
	}
}

// Validate checks the fields every sender relies on.
func (n Notification) Validate() error {
	if n.RecipientID == uuid.Nil {
		return ErrNoRecipient
	}
	if !n.Channel.IsValid() {
		return errors.New("notification has an unknown channel: " + string(n.Channel))
	}
	return nil
}

// Sender delivers a single notification.
type Sender interface {
	Notify(ctx context.Context, n Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n Notification) error

// Notify calls f.
func (f SenderFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }
