package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jobflow/internal/activity/domain"
	"github.com/felixgeelhaar/jobflow/internal/activity/infrastructure/persistence"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/dbtest"
)

func TestSQLActivityRepository_AppendAndList(t *testing.T) {
	conn := dbtest.SQLite(t)
	repo := persistence.NewSQLActivityRepository(conn)
	ctx := context.Background()

	projectID := uuid.New()
	actorID := uuid.New()
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	first := domain.NewEntry(projectID, actorID, domain.ActionStatusChanged, "Pending Mockup -> Pending Proof Reading",
		map[string]any{"from": "Pending Mockup", "to": "Pending Proof Reading"}, t0)
	second := domain.NewEntry(projectID, actorID, domain.ActionBillingOverride, "billing override", nil, t0.Add(time.Minute))
	other := domain.NewEntry(uuid.New(), actorID, domain.ActionCancelled, "cancelled", nil, t0)

	require.NoError(t, repo.Append(ctx, second, first, other))

	entries, err := repo.ListByProject(ctx, projectID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, "Pending Mockup", entries[0].Details["from"])
	assert.Equal(t, t0, entries[0].CreatedAt)
	assert.Equal(t, domain.ActionBillingOverride, entries[1].Action)
	assert.Empty(t, entries[1].Details)

	limited, err := repo.ListByProject(ctx, projectID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLActivityRepository_JoinsTransaction(t *testing.T) {
	conn := dbtest.SQLite(t)
	repo := persistence.NewSQLActivityRepository(conn)
	uow := database.NewUnitOfWork(conn)
	ctx := context.Background()
	projectID := uuid.New()

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Append(txCtx, domain.NewEntry(projectID, uuid.New(), domain.ActionCreated, "created", nil, time.Now())))
	require.NoError(t, uow.Rollback(txCtx))

	entries, err := repo.ListByProject(ctx, projectID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
