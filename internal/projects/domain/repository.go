package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for projects.
type Repository interface {
	// Save inserts a new project or updates an existing one when its stored
	// version still matches. A lost race returns ErrStaleProject.
	Save(ctx context.Context, project *Project) error

	// FindByID finds a project by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindLineage returns every revision of a lineage ordered by version number.
	FindLineage(ctx context.Context, lineageID uuid.UUID) ([]*Project, error)

	// FindByStatus returns latest revisions currently in one of statuses.
	FindByStatus(ctx context.Context, statuses ...Status) ([]*Project, error)

	// Delete removes a project.
	Delete(ctx context.Context, id uuid.UUID) error
}
