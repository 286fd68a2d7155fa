package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// SetSampleRequirementCommand toggles whether a physical sample must be approved.
type SetSampleRequirementCommand struct {
	Meta
	ProjectID uuid.UUID
	Required  bool
}

// SetSampleRequirementHandler handles the SetSampleRequirementCommand.
type SetSampleRequirementHandler struct {
	pipeline *Pipeline
}

// NewSetSampleRequirementHandler creates a new SetSampleRequirementHandler.
func NewSetSampleRequirementHandler(pipeline *Pipeline) *SetSampleRequirementHandler {
	return &SetSampleRequirementHandler{pipeline: pipeline}
}

// Handle executes the SetSampleRequirementCommand.
func (h *SetSampleRequirementHandler) Handle(ctx context.Context, cmd SetSampleRequirementCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.SetSampleRequirement(cmd.Actor, cmd.Required, now)
	})
}

// ApproveSampleCommand records the client's sample sign-off.
type ApproveSampleCommand struct {
	Meta
	ProjectID uuid.UUID
}

// ApproveSampleHandler handles the ApproveSampleCommand.
type ApproveSampleHandler struct {
	pipeline *Pipeline
}

// NewApproveSampleHandler creates a new ApproveSampleHandler.
func NewApproveSampleHandler(pipeline *Pipeline) *ApproveSampleHandler {
	return &ApproveSampleHandler{pipeline: pipeline}
}

// Handle executes the ApproveSampleCommand.
func (h *ApproveSampleHandler) Handle(ctx context.Context, cmd ApproveSampleCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.ApproveSample(cmd.Actor, now)
	})
}
