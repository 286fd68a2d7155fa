package commands

import (
	"context"
	"time"

	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// SetHoldCommand places a project on hold or releases it.
type SetHoldCommand struct {
	Meta
	ProjectID     uuid.UUID
	OnHold        bool
	Reason        string
	ReleaseStatus string
}

// SetHoldResult contains the project after the hold change.
type SetHoldResult struct {
	Project  *domain.Project
	Change   domain.HoldChange
	Dispatch notifApp.Report
}

// SetHoldHandler handles the SetHoldCommand.
type SetHoldHandler struct {
	pipeline *Pipeline
}

// NewSetHoldHandler creates a new SetHoldHandler.
func NewSetHoldHandler(pipeline *Pipeline) *SetHoldHandler {
	return &SetHoldHandler{pipeline: pipeline}
}

// Handle executes the SetHoldCommand.
func (h *SetHoldHandler) Handle(ctx context.Context, cmd SetHoldCommand) (*SetHoldResult, error) {
	var change domain.HoldChange
	project, report, err := h.pipeline.mutate(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		var err error
		change, err = p.SetHold(cmd.Actor, cmd.OnHold, cmd.Reason, cmd.ReleaseStatus, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &SetHoldResult{Project: project, Change: change, Dispatch: report}, nil
}
