package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// DeleteProjectCommand removes one revision of a lineage.
type DeleteProjectCommand struct {
	Meta
	ProjectID uuid.UUID
}

// DeleteProjectResult reports which revision, if any, became latest.
type DeleteProjectResult struct {
	Promoted *domain.Project
}

// DeleteProjectHandler handles the DeleteProjectCommand.
type DeleteProjectHandler struct {
	pipeline *Pipeline
}

// NewDeleteProjectHandler creates a new DeleteProjectHandler.
func NewDeleteProjectHandler(pipeline *Pipeline) *DeleteProjectHandler {
	return &DeleteProjectHandler{pipeline: pipeline}
}

// Handle deletes the revision and, when it was the latest, promotes the
// highest remaining version of the lineage.
func (h *DeleteProjectHandler) Handle(ctx context.Context, cmd DeleteProjectCommand) (*DeleteProjectResult, error) {
	p := h.pipeline
	result := &DeleteProjectResult{}

	_, err := p.underLineage(ctx, cmd.Meta, cmd.ProjectID, func(txCtx context.Context, project *domain.Project, now time.Time) ([]*domain.Project, error) {
		wasLatest := project.IsLatestVersion()
		if err := project.MarkDeleted(cmd.Actor, now); err != nil {
			return nil, err
		}
		if err := p.projects.Delete(txCtx, project.ID()); err != nil {
			return nil, err
		}
		touched := []*domain.Project{project}
		if !wasLatest {
			return touched, nil
		}

		remaining, err := p.projects.FindLineage(txCtx, project.LineageID())
		if err != nil {
			return nil, err
		}
		if len(remaining) == 0 {
			return touched, nil
		}
		top := remaining[len(remaining)-1]
		top.PromoteToLatest(cmd.Actor.ID, now)
		if err := p.projects.Save(txCtx, top); err != nil {
			return nil, lineageConflict(err)
		}
		result.Promoted = top
		return append(touched, top), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
