package commands

import (
	"context"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/jobflow/internal/shared/application"
	"github.com/google/uuid"
)

// CreateProjectCommand contains the data needed to open a new job.
type CreateProjectCommand struct {
	Meta
	OrderNumber        string
	Name               string
	Type               domain.ProjectType
	LeadID             uuid.UUID
	AssistantID        uuid.UUID
	Departments        []domain.Department
	SampleRequired     bool
	CorporateEmergency bool
}

// CreateProjectHandler handles the CreateProjectCommand.
type CreateProjectHandler struct {
	pipeline *Pipeline
}

// NewCreateProjectHandler creates a new CreateProjectHandler.
func NewCreateProjectHandler(pipeline *Pipeline) *CreateProjectHandler {
	return &CreateProjectHandler{pipeline: pipeline}
}

// Handle creates version 1 of a new lineage.
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*domain.Project, error) {
	p := h.pipeline
	now := p.now()

	project, err := domain.NewProject(domain.NewProjectParams{
		OrderNumber:        cmd.OrderNumber,
		Name:               cmd.Name,
		Type:               cmd.Type,
		LeadID:             cmd.LeadID,
		AssistantID:        cmd.AssistantID,
		Departments:        cmd.Departments,
		SampleRequired:     cmd.SampleRequired,
		CorporateEmergency: cmd.CorporateEmergency,
		CreatedBy:          cmd.Actor.ID,
	}, now)
	if err != nil {
		return nil, err
	}

	out, err := sharedApplication.WithUnitOfWorkResult(ctx, p.uow, func(txCtx context.Context) (committed, error) {
		events, err := p.save(txCtx, project)
		if err != nil {
			return committed{}, err
		}
		return committed{events: events, projects: []*domain.Project{project}}, p.record(txCtx, cmd.Meta, now, events)
	})
	if err != nil {
		return nil, err
	}
	p.notify(ctx, cmd.Meta, out)
	return project, nil
}
