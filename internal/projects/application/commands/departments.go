package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// SetDepartmentsCommand replaces the engaged departments.
type SetDepartmentsCommand struct {
	Meta
	ProjectID   uuid.UUID
	Departments []domain.Department
}

// SetDepartmentsHandler handles the SetDepartmentsCommand.
type SetDepartmentsHandler struct {
	pipeline *Pipeline
}

// NewSetDepartmentsHandler creates a new SetDepartmentsHandler.
func NewSetDepartmentsHandler(pipeline *Pipeline) *SetDepartmentsHandler {
	return &SetDepartmentsHandler{pipeline: pipeline}
}

// Handle executes the SetDepartmentsCommand.
func (h *SetDepartmentsHandler) Handle(ctx context.Context, cmd SetDepartmentsCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.SetDepartments(cmd.Actor, cmd.Departments, now)
	})
}

// AcknowledgeDepartmentCommand records a department accepting the job.
type AcknowledgeDepartmentCommand struct {
	Meta
	ProjectID  uuid.UUID
	Department domain.Department
}

// AcknowledgeDepartmentHandler handles the AcknowledgeDepartmentCommand.
type AcknowledgeDepartmentHandler struct {
	pipeline *Pipeline
}

// NewAcknowledgeDepartmentHandler creates a new AcknowledgeDepartmentHandler.
func NewAcknowledgeDepartmentHandler(pipeline *Pipeline) *AcknowledgeDepartmentHandler {
	return &AcknowledgeDepartmentHandler{pipeline: pipeline}
}

// Handle executes the AcknowledgeDepartmentCommand.
func (h *AcknowledgeDepartmentHandler) Handle(ctx context.Context, cmd AcknowledgeDepartmentCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.AcknowledgeDepartment(cmd.Actor, cmd.Department, now)
	})
}
