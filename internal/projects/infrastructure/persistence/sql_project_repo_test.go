package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/dbtest"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var admin = domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin, Origin: domain.OriginAdminPortal}

func newProject(t *testing.T) *domain.Project {
	t.Helper()
	p, err := domain.NewProject(domain.NewProjectParams{
		OrderNumber: "ORD-7",
		Name:        "Vinyl wrap",
		Type:        domain.ProjectTypeCorporateJob,
		LeadID:      uuid.New(),
		Departments: []domain.Department{domain.DepartmentGraphics},
		CreatedBy:   admin.ID,
	}, t0)
	require.NoError(t, err)
	return p
}

func TestSQLProjectRepository_RoundTrip(t *testing.T) {
	conn := dbtest.SQLite(t)
	repo := NewSQLProjectRepository(conn)
	ctx := context.Background()

	p := newProject(t)
	require.NoError(t, p.MarkInvoiceSent(admin, t0))
	require.NoError(t, p.VerifyPayment(admin, domain.PaymentPO, "PO-44", t0))
	_, err := p.UploadMockup(admin, "s3://mockups/1.pdf", t0)
	require.NoError(t, err)
	require.NoError(t, p.SetCorporateEmergency(admin, true, t0))
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, 1, p.Version())

	got, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, p.Name(), got.Name())
	assert.Equal(t, p.OrderNumber(), got.OrderNumber())
	assert.Equal(t, p.LeadID(), got.LeadID())
	assert.Equal(t, p.Departments(), got.Departments())
	assert.Equal(t, p.ID(), got.LineageID())
	assert.Equal(t, 1, got.VersionNumber())
	assert.True(t, got.IsLatestVersion())
	assert.Equal(t, 1, got.Version())
	assert.True(t, p.CreatedAt().Equal(got.CreatedAt()))
	require.NotNil(t, got.Mockup().Latest())
	assert.Equal(t, "s3://mockups/1.pdf", got.Mockup().Latest().FileURL)
	assert.Equal(t, domain.StatusOrderConfirmed, got.Status())
	assert.True(t, got.Invoice().Sent)
	assert.Len(t, got.Payments(), 1)
	assert.True(t, got.CorporateEmergency())
	assert.Equal(t, uuid.Nil, got.AssistantID())
	assert.Equal(t, uuid.Nil, got.ParentProjectID())
}

func TestSQLProjectRepository_SaveChecksRevision(t *testing.T) {
	repo := NewSQLProjectRepository(dbtest.SQLite(t))
	ctx := context.Background()

	p := newProject(t)
	require.NoError(t, repo.Save(ctx, p))

	first, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)

	require.NoError(t, first.MarkInvoiceSent(admin, t0.Add(time.Hour)))
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, 2, first.Version())

	require.NoError(t, second.AddFeedback(admin, domain.FeedbackPositive, "late", t0.Add(time.Hour)))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, domain.ErrStaleProject)
}

func TestSQLProjectRepository_Lineage(t *testing.T) {
	repo := NewSQLProjectRepository(dbtest.SQLite(t))
	ctx := context.Background()

	v1 := newProject(t)
	require.NoError(t, repo.Save(ctx, v1))
	s := v1.Snapshot()
	s.Status = domain.StatusFinished
	v1 = domain.RehydrateProject(s)

	v2, err := v1.Reopen(admin, "reprint", t0)
	require.NoError(t, err)

	t.Run("a second latest revision is rejected", func(t *testing.T) {
		err := repo.Save(ctx, v2)
		assert.ErrorIs(t, err, domain.ErrLineageConflict)
	})

	require.NoError(t, repo.Save(ctx, v1))
	require.NoError(t, repo.Save(ctx, v2))

	lineage, err := repo.FindLineage(ctx, v1.LineageID())
	require.NoError(t, err)
	require.Len(t, lineage, 2)
	assert.Equal(t, 1, lineage[0].VersionNumber())
	assert.Equal(t, 2, lineage[1].VersionNumber())
	assert.Equal(t, v1.ID(), lineage[1].ParentProjectID())

	n, err := repo.CountLatest(ctx, v1.LineageID())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	latest, err := repo.FindByStatus(ctx, domain.StatusFinished, domain.StatusPendingScopeApproval)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, v2.ID(), latest[0].ID())

	statuses, err := repo.ProjectStatuses(ctx, []uuid.UUID{v1.ID(), v2.ID(), uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{
		v1.ID(): string(domain.StatusFinished),
		v2.ID(): string(domain.StatusPendingScopeApproval),
	}, statuses)
	types, err := repo.ProjectTypes(ctx, []uuid.UUID{v2.ID(), uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{v2.ID(): string(v2.Type())}, types)
}

func TestSQLProjectRepository_Delete(t *testing.T) {
	repo := NewSQLProjectRepository(dbtest.SQLite(t))
	ctx := context.Background()

	p := newProject(t)
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID()))

	_, err := repo.FindByID(ctx, p.ID())
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID()), domain.ErrProjectNotFound)
}

func TestSQLProjectRepository_Postgres(t *testing.T) {
	conn := dbtest.Postgres(t)
	repo := NewSQLProjectRepository(conn)
	ctx := context.Background()

	p := newProject(t)
	require.NoError(t, repo.Save(ctx, p))
	got, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, p.ID(), got.ID())
	require.NoError(t, repo.Delete(ctx, p.ID()))
}
