package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
	"github.com/google/uuid"
)

// ReopenProjectCommand starts a new revision from a terminal project.
type ReopenProjectCommand struct {
	Meta
	ProjectID uuid.UUID
	Reason    string
}

// ReopenResult holds the new revision and the superseded source.
type ReopenResult struct {
	Project  *domain.Project
	Source   *domain.Project
	Dispatch notifApp.Report
}

// ReopenProjectHandler handles the ReopenProjectCommand.
type ReopenProjectHandler struct {
	pipeline *Pipeline
}

// NewReopenProjectHandler creates a new ReopenProjectHandler.
func NewReopenProjectHandler(pipeline *Pipeline) *ReopenProjectHandler {
	return &ReopenProjectHandler{pipeline: pipeline}
}

// Handle executes the ReopenProjectCommand. The source is demoted before
// the new revision is inserted so the single-latest index never sees two.
func (h *ReopenProjectHandler) Handle(ctx context.Context, cmd ReopenProjectCommand) (*ReopenResult, error) {
	p := h.pipeline
	result := &ReopenResult{}

	report, err := p.underLineage(ctx, cmd.Meta, cmd.ProjectID, func(txCtx context.Context, source *domain.Project, now time.Time) ([]*domain.Project, error) {
		next, err := source.Reopen(cmd.Actor, cmd.Reason, now)
		if err != nil {
			return nil, err
		}
		if err := p.projects.Save(txCtx, source); err != nil {
			return nil, lineageConflict(err)
		}
		if err := p.projects.Save(txCtx, next); err != nil {
			return nil, lineageConflict(err)
		}
		result.Project, result.Source = next, source
		return []*domain.Project{source, next}, nil
	})
	if err != nil {
		return nil, err
	}

	p.metrics.Counter(observability.MetricReopens, 1, observability.T("type", string(result.Project.Type())))
	p.logger.InfoContext(ctx, "project reopened",
		"lineage_id", result.Project.LineageID(), "source_id", result.Source.ID(),
		"project_id", result.Project.ID(), "version_number", result.Project.VersionNumber())
	result.Dispatch = report
	return result, nil
}

// lineageConflict reports a lost race on the lineage as a conflict.
func lineageConflict(err error) error {
	if errors.Is(err, domain.ErrStaleProject) {
		return fmt.Errorf("%w: %v", domain.ErrLineageConflict, err)
	}
	return err
}
