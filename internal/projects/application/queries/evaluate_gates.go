package queries

import (
	"context"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// EvaluateGatesQuery asks what would block a transition without
// attempting it.
type EvaluateGatesQuery struct {
	ProjectID uuid.UUID
	Status    domain.Status
}

// GateReport is the pre-flight answer. Block is nil when nothing blocks.
type GateReport struct {
	Requested domain.Status        `json:"requested"`
	Target    domain.Status        `json:"target"`
	Block     *domain.GateBlock    `json:"block,omitempty"`
	Missing   []domain.Requirement `json:"missing"`
}

// EvaluateGatesHandler handles the EvaluateGatesQuery.
type EvaluateGatesHandler struct {
	projectRepo domain.Repository
}

// NewEvaluateGatesHandler creates a new EvaluateGatesHandler.
func NewEvaluateGatesHandler(projectRepo domain.Repository) *EvaluateGatesHandler {
	return &EvaluateGatesHandler{projectRepo: projectRepo}
}

// Handle executes the EvaluateGatesQuery.
func (h *EvaluateGatesHandler) Handle(ctx context.Context, query EvaluateGatesQuery) (*GateReport, error) {
	project, err := h.projectRepo.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	return &GateReport{
		Requested: query.Status,
		Target:    domain.AutoAdvance(query.Status),
		Block:     domain.EvaluateGates(project, query.Status),
		Missing:   domain.MissingRequirements(project, query.Status),
	}, nil
}
