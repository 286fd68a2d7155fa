package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// CancelProjectCommand cancels a project, preserving its status and hold.
type CancelProjectCommand struct {
	Meta
	ProjectID uuid.UUID
	Reason    string
}

// CancelProjectHandler handles the CancelProjectCommand.
type CancelProjectHandler struct {
	pipeline *Pipeline
}

// NewCancelProjectHandler creates a new CancelProjectHandler.
func NewCancelProjectHandler(pipeline *Pipeline) *CancelProjectHandler {
	return &CancelProjectHandler{pipeline: pipeline}
}

// Handle executes the CancelProjectCommand.
func (h *CancelProjectHandler) Handle(ctx context.Context, cmd CancelProjectCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.Cancel(cmd.Actor, cmd.Reason, now)
	})
}

// ReactivateProjectCommand undoes a cancellation.
type ReactivateProjectCommand struct {
	Meta
	ProjectID uuid.UUID
}

// ReactivateProjectHandler handles the ReactivateProjectCommand.
type ReactivateProjectHandler struct {
	pipeline *Pipeline
}

// NewReactivateProjectHandler creates a new ReactivateProjectHandler.
func NewReactivateProjectHandler(pipeline *Pipeline) *ReactivateProjectHandler {
	return &ReactivateProjectHandler{pipeline: pipeline}
}

// Handle executes the ReactivateProjectCommand.
func (h *ReactivateProjectHandler) Handle(ctx context.Context, cmd ReactivateProjectCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.Reactivate(cmd.Actor, now)
	})
}
