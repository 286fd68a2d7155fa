// Package services turns project domain events into their side effects:
// activity log entries and stakeholder notifications.
package services

import (
	"context"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// Directory resolves who is an admin and who staffs each department.
type Directory interface {
	Admins(ctx context.Context) ([]uuid.UUID, error)
	DepartmentMembers(ctx context.Context, dept domain.Department) ([]uuid.UUID, error)
}
