// Package domain models the append-only project activity log.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action classifies an activity entry.
type Action string

const (
	ActionStatusChanged          Action = "status_changed"
	ActionTransitionBlocked      Action = "transition_blocked"
	ActionBillingOverride        Action = "billing_override"
	ActionHoldSet                Action = "hold_set"
	ActionHoldReleased           Action = "hold_released"
	ActionCancelled              Action = "cancelled"
	ActionReactivated            Action = "reactivated"
	ActionReopened               Action = "reopened"
	ActionSuperseded             Action = "superseded"
	ActionDeleted                Action = "deleted"
	ActionCreated                Action = "created"
	ActionInvoiceSent            Action = "invoice_sent"
	ActionPaymentVerified        Action = "payment_verified"
	ActionMockupUploaded         Action = "mockup_uploaded"
	ActionMockupApproved         Action = "mockup_approved"
	ActionMockupRejected         Action = "mockup_rejected"
	ActionSampleRequirementSet   Action = "sample_requirement_set"
	ActionSampleApproved         Action = "sample_approved"
	ActionDepartmentsSet         Action = "departments_set"
	ActionDepartmentAcknowledged Action = "department_acknowledged"
	ActionFeedbackAdded          Action = "feedback_added"
	ActionCorporateEmergencySet  Action = "corporate_emergency_set"
	ActionGateCleared            Action = "gate_cleared"
	ActionPromoted               Action = "promoted"
)

// Entry is one immutable line of a project's history.
type Entry struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	ActorID     uuid.UUID
	Action      Action
	Description string
	Details     map[string]any
	CreatedAt   time.Time
}

// NewEntry creates an entry stamped at now.
func NewEntry(projectID, actorID uuid.UUID, action Action, description string, details map[string]any, now time.Time) *Entry {
	if details == nil {
		details = map[string]any{}
	}
	return &Entry{
		ID:          uuid.New(),
		ProjectID:   projectID,
		ActorID:     actorID,
		Action:      action,
		Description: description,
		Details:     details,
		CreatedAt:   now.UTC(),
	}
}

// Repository stores entries. It has no update or delete.
type Repository interface {
	Append(ctx context.Context, entries ...*Entry) error
	// ListByProject returns entries oldest first; limit <= 0 means all.
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*Entry, error)
}
