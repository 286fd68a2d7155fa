package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	activityDomain "github.com/felixgeelhaar/jobflow/internal/activity/domain"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var (
	leadID  = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	adminID = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	staffID = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func adminMeta() Meta {
	return Meta{Actor: domain.Actor{ID: adminID, Role: domain.RoleAdmin, Origin: domain.OriginAdminPortal}}
}

func staffMeta(depts ...domain.Department) Meta {
	return Meta{Actor: domain.Actor{ID: staffID, Role: domain.RoleStaff, Departments: depts, Origin: domain.OriginEngagedPortal}}
}

// storedProject returns a project as a repository would hand it out.
func storedProject(t *testing.T, status domain.Status) *domain.Project {
	t.Helper()
	p, err := domain.NewProject(domain.NewProjectParams{
		OrderNumber: "ORD-1001",
		Name:        "Shop signage",
		Type:        domain.ProjectTypeStandard,
		LeadID:      leadID,
		Departments: []domain.Department{domain.DepartmentGraphics, domain.DepartmentProduction},
		CreatedBy:   adminID,
	}, t0)
	require.NoError(t, err)
	s := p.Snapshot()
	s.Status = status
	s.Version = 3
	return domain.RehydrateProject(s)
}

// mockProjectRepo is a mock implementation of domain.Repository.
type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) FindLineage(ctx context.Context, lineageID uuid.UUID) ([]*domain.Project, error) {
	args := m.Called(ctx, lineageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) FindByStatus(ctx context.Context, statuses ...domain.Status) ([]*domain.Project, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockOutboxRepo is a mock implementation of outbox.Writer.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

// mockActivityRepo is a mock implementation of activity domain.Repository.
type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) Append(ctx context.Context, entries ...*activityDomain.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *mockActivityRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*activityDomain.Entry, error) {
	args := m.Called(ctx, projectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activityDomain.Entry), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeDirectory serves fixed admins and department members.
type fakeDirectory struct {
	admins  []uuid.UUID
	members map[domain.Department][]uuid.UUID
}

func (d fakeDirectory) Admins(context.Context) ([]uuid.UUID, error) { return d.admins, nil }

func (d fakeDirectory) DepartmentMembers(_ context.Context, dept domain.Department) ([]uuid.UUID, error) {
	return d.members[dept], nil
}
