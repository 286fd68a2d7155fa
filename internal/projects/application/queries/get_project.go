package queries

import (
	"context"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// GetProjectQuery contains the parameters for getting a single project.
type GetProjectQuery struct {
	ProjectID uuid.UUID
}

// GetProjectHandler handles the GetProjectQuery.
type GetProjectHandler struct {
	projectRepo domain.Repository
}

// NewGetProjectHandler creates a new GetProjectHandler.
func NewGetProjectHandler(projectRepo domain.Repository) *GetProjectHandler {
	return &GetProjectHandler{projectRepo: projectRepo}
}

// Handle executes the GetProjectQuery.
func (h *GetProjectHandler) Handle(ctx context.Context, query GetProjectQuery) (*ProjectDTO, error) {
	project, err := h.projectRepo.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	dto := NewProjectDTO(project)
	return &dto, nil
}

// ListLineageQuery lists every revision sharing a lineage. Either the
// lineage ID or the ID of any revision in it may be given.
type ListLineageQuery struct {
	ProjectID uuid.UUID
}

// ListLineageHandler handles the ListLineageQuery.
type ListLineageHandler struct {
	projectRepo domain.Repository
}

// NewListLineageHandler creates a new ListLineageHandler.
func NewListLineageHandler(projectRepo domain.Repository) *ListLineageHandler {
	return &ListLineageHandler{projectRepo: projectRepo}
}

// Handle returns the revisions ordered by version number.
func (h *ListLineageHandler) Handle(ctx context.Context, query ListLineageQuery) ([]ProjectDTO, error) {
	lineageID := query.ProjectID
	if project, err := h.projectRepo.FindByID(ctx, query.ProjectID); err == nil {
		lineageID = project.LineageID()
	}

	projects, err := h.projectRepo.FindLineage(ctx, lineageID)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, domain.ErrProjectNotFound
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = NewProjectDTO(p)
	}
	return dtos, nil
}

// ListProjectsQuery lists the latest revisions in the given statuses, or
// in any status when none are given.
type ListProjectsQuery struct {
	Statuses []domain.Status
}

// ListProjectsHandler handles the ListProjectsQuery.
type ListProjectsHandler struct {
	projectRepo domain.Repository
}

// NewListProjectsHandler creates a new ListProjectsHandler.
func NewListProjectsHandler(projectRepo domain.Repository) *ListProjectsHandler {
	return &ListProjectsHandler{projectRepo: projectRepo}
}

// Handle executes the ListProjectsQuery.
func (h *ListProjectsHandler) Handle(ctx context.Context, query ListProjectsQuery) ([]ProjectDTO, error) {
	statuses := query.Statuses
	if len(statuses) == 0 {
		statuses = domain.AllStatuses()
	}
	projects, err := h.projectRepo.FindByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, NewProjectDTO(p))
	}
	return dtos, nil
}
