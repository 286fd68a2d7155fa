package commands

import (
	"context"
	"time"

	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
	"github.com/google/uuid"
)

// TransitionStatusCommand requests a workflow status change.
type TransitionStatusCommand struct {
	Meta
	ProjectID            uuid.UUID
	Status               domain.Status
	AllowBillingOverride bool
}

// TransitionResult describes what a transition request did. Block is set
// when a gate held the project in place; that is not an error.
type TransitionResult struct {
	Project  *domain.Project
	Outcome  domain.TransitionOutcome
	Block    *domain.GateBlock
	Dispatch notifApp.Report
}

// TransitionStatusHandler handles the TransitionStatusCommand.
type TransitionStatusHandler struct {
	pipeline *Pipeline
}

// NewTransitionStatusHandler creates a new TransitionStatusHandler.
func NewTransitionStatusHandler(pipeline *Pipeline) *TransitionStatusHandler {
	return &TransitionStatusHandler{pipeline: pipeline}
}

// Handle executes the TransitionStatusCommand.
func (h *TransitionStatusHandler) Handle(ctx context.Context, cmd TransitionStatusCommand) (*TransitionResult, error) {
	var outcome domain.TransitionOutcome
	opts := domain.TransitionOptions{AllowBillingOverride: cmd.AllowBillingOverride}

	project, report, err := h.pipeline.mutate(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		var err error
		outcome, err = p.Transition(cmd.Actor, cmd.Status, opts, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	m := h.pipeline.metrics
	if outcome.Block != nil {
		m.Counter(observability.MetricTransitionsBlocked, 1, observability.T("gate", string(outcome.Block.Code)))
		h.pipeline.logger.InfoContext(ctx, "transition blocked",
			"project_id", cmd.ProjectID, "requested", cmd.Status, "gate", outcome.Block.Code, "missing", outcome.Block.Missing)
	} else {
		m.Counter(observability.MetricTransitions, 1, observability.T("to", string(outcome.To)))
	}
	if len(outcome.Overridden) > 0 {
		m.Counter(observability.MetricBillingOverrides, 1)
	}

	return &TransitionResult{
		Project:  project,
		Outcome:  outcome,
		Block:    outcome.Block,
		Dispatch: report,
	}, nil
}
