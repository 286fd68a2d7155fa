package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var (
	leadID  = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	adminID = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	staffID = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func admin() Actor {
	return Actor{ID: adminID, Role: RoleAdmin, Origin: OriginAdminPortal}
}

func staff(depts ...Department) Actor {
	return Actor{ID: staffID, Role: RoleStaff, Departments: depts, Origin: OriginEngagedPortal}
}

func lead() Actor {
	return Actor{ID: leadID, Role: RoleStaff, Origin: OriginLeadPortal}
}

func newTestProject(t *testing.T, projectType ProjectType) *Project {
	t.Helper()
	p, err := NewProject(NewProjectParams{
		OrderNumber: "ORD-1001",
		Name:        "Shop signage",
		Type:        projectType,
		LeadID:      leadID,
		Departments: []Department{DepartmentGraphics, DepartmentProduction},
		CreatedBy:   adminID,
	}, t0)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

// projectAt returns a project forced into status, bypassing the pipeline.
func projectAt(t *testing.T, projectType ProjectType, status Status) *Project {
	t.Helper()
	s := newTestProject(t, projectType).Snapshot()
	s.Status = status
	return RehydrateProject(s)
}

func eventsOf[T any](p *Project) []T {
	var out []T
	for _, e := range p.DomainEvents() {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func assertHoldInvariant(t *testing.T, p *Project) {
	t.Helper()
	require.Equal(t, p.Status() == StatusOnHold, p.IsOnHold(), "status %s vs hold %v", p.Status(), p.IsOnHold())
}
