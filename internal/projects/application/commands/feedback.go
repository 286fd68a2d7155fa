package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// AddFeedbackCommand records client feedback.
type AddFeedbackCommand struct {
	Meta
	ProjectID uuid.UUID
	Type      domain.FeedbackType
	Notes     string
}

// AddFeedbackHandler handles the AddFeedbackCommand.
type AddFeedbackHandler struct {
	pipeline *Pipeline
}

// NewAddFeedbackHandler creates a new AddFeedbackHandler.
func NewAddFeedbackHandler(pipeline *Pipeline) *AddFeedbackHandler {
	return &AddFeedbackHandler{pipeline: pipeline}
}

// Handle executes the AddFeedbackCommand.
func (h *AddFeedbackHandler) Handle(ctx context.Context, cmd AddFeedbackCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.AddFeedback(cmd.Actor, cmd.Type, cmd.Notes, now)
	})
}

// SetCorporateEmergencyCommand flags a corporate job as an emergency.
type SetCorporateEmergencyCommand struct {
	Meta
	ProjectID uuid.UUID
	Enabled   bool
}

// SetCorporateEmergencyHandler handles the SetCorporateEmergencyCommand.
type SetCorporateEmergencyHandler struct {
	pipeline *Pipeline
}

// NewSetCorporateEmergencyHandler creates a new SetCorporateEmergencyHandler.
func NewSetCorporateEmergencyHandler(pipeline *Pipeline) *SetCorporateEmergencyHandler {
	return &SetCorporateEmergencyHandler{pipeline: pipeline}
}

// Handle executes the SetCorporateEmergencyCommand.
func (h *SetCorporateEmergencyHandler) Handle(ctx context.Context, cmd SetCorporateEmergencyCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.SetCorporateEmergency(cmd.Actor, cmd.Enabled, now)
	})
}
