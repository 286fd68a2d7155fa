package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/sqlite"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newReminder(t *testing.T, at time.Time, recipients ...uuid.UUID) *domain.Reminder {
	t.Helper()
	if len(recipients) == 0 {
		recipients = []uuid.UUID{uuid.New()}
	}
	r, err := domain.NewReminder(domain.NewReminderParams{
		CreatedBy:   uuid.New(),
		Title:       "Chase the proof",
		TriggerMode: domain.TriggerAbsolute,
		RemindAt:    at,
		Recipients:  recipients,
	}, t0)
	require.NoError(t, err)
	return r
}

func TestSQLReminderRepository_RoundTrip(t *testing.T) {
	repo := NewSQLReminderRepository(dbtest.SQLite(t))
	ctx := context.Background()

	user := uuid.New()
	r := newReminder(t, t0.Add(time.Hour), user)
	require.NoError(t, repo.Save(ctx, r))
	assert.Equal(t, 1, r.Version())

	got, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, r.Title(), got.Title())
	assert.Equal(t, r.CreatedBy(), got.CreatedBy())
	assert.Equal(t, uuid.Nil, got.ProjectID())
	assert.Equal(t, domain.TriggerAbsolute, got.TriggerMode())
	require.NotNil(t, got.NextTriggerAt())
	assert.True(t, t0.Add(time.Hour).Equal(*got.NextTriggerAt()))
	assert.Equal(t, []uuid.UUID{user}, got.PendingRecipients())
	assert.Equal(t, domain.RepeatNone, got.Repeat())

	require.NoError(t, got.CompleteFor(user, t0))
	require.NoError(t, repo.Save(ctx, got))
	assert.Equal(t, 2, got.Version())

	again, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, again.Status())
	require.NotNil(t, again.Recipients()[0].CompletedAt)

	mine, err := repo.FindByRecipient(ctx, user, true)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	open, err := repo.FindByRecipient(ctx, user, false)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrReminderNotFound)
}

func TestSQLReminderRepository_SaveChecksVersion(t *testing.T) {
	repo := NewSQLReminderRepository(dbtest.SQLite(t))
	ctx := context.Background()

	r := newReminder(t, t0)
	require.NoError(t, repo.Save(ctx, r))
	first, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)

	require.NoError(t, first.Cancel(uuid.New(), t0))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, second.Cancel(uuid.New(), t0))
	assert.ErrorIs(t, repo.Save(ctx, second), domain.ErrStaleReminder)
}

func TestSQLReminderRepository_DueAndNext(t *testing.T) {
	repo := NewSQLReminderRepository(dbtest.SQLite(t))
	ctx := context.Background()

	next, err := repo.NextTriggerAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)

	soon := newReminder(t, t0.Add(5*time.Second))
	later := newReminder(t, t0.Add(50*time.Second))
	require.NoError(t, repo.Save(ctx, soon))
	require.NoError(t, repo.Save(ctx, later))

	next, err = repo.NextTriggerAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, t0.Add(5*time.Second).Equal(*next))

	due, err := repo.FindDue(ctx, t0.Add(10*time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID(), due[0].ID())

	ok, err := repo.Claim(ctx, due[0], t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, due[0].Processing())

	// Claimed reminders are no longer pending.
	next, err = repo.NextTriggerAt(ctx)
	require.NoError(t, err)
	assert.True(t, t0.Add(50*time.Second).Equal(*next))
	due, err = repo.FindDue(ctx, t0.Add(10*time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestSQLReminderRepository_ClaimIsExclusive(t *testing.T) {
	conn, path := dbtest.SQLiteFile(t)
	other, err := sqlite.NewConnection(context.Background(), database.Config{Driver: database.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	ctx := context.Background()
	repoA := NewSQLReminderRepository(conn)
	repoB := NewSQLReminderRepository(other)

	r := newReminder(t, t0)
	require.NoError(t, repoA.Save(ctx, r))

	seenA, err := repoA.FindDue(ctx, t0, 10)
	require.NoError(t, err)
	seenB, err := repoB.FindDue(ctx, t0, 10)
	require.NoError(t, err)
	require.Len(t, seenA, 1)
	require.Len(t, seenB, 1)

	okA, err := repoA.Claim(ctx, seenA[0], t0)
	require.NoError(t, err)
	okB, err := repoB.Claim(ctx, seenB[0], t0)
	require.NoError(t, err)
	assert.True(t, okA)
	assert.False(t, okB)
}

func TestSQLReminderRepository_ReclaimStale(t *testing.T) {
	repo := NewSQLReminderRepository(dbtest.SQLite(t))
	ctx := context.Background()

	r := newReminder(t, t0)
	require.NoError(t, repo.Save(ctx, r))
	ok, err := repo.Claim(ctx, r, t0)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := repo.ReclaimStale(ctx, t0.Add(-time.Minute), t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n, "fresh claims are kept")

	n, err = repo.ReclaimStale(ctx, t0.Add(time.Second), t0.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.False(t, got.Processing())
	assert.Equal(t, "processing lease expired", got.LastError())
}

func TestSQLReminderRepository_StageBased(t *testing.T) {
	repo := NewSQLReminderRepository(dbtest.SQLite(t))
	ctx := context.Background()

	projectID := uuid.New()
	r, err := domain.NewReminder(domain.NewReminderParams{
		CreatedBy:    uuid.New(),
		Title:        "Follow up",
		ProjectID:    projectID,
		TriggerMode:  domain.TriggerStage,
		WatchStatus:  "Finished",
		DelayMinutes: 15,
		Recipients:   []uuid.UUID{uuid.New()},
	}, t0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, r))

	waiting, err := repo.FindUnscheduledStageBased(ctx, 10)
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, 15, waiting[0].DelayMinutes())

	require.True(t, waiting[0].Activate(t0))
	require.NoError(t, repo.Save(ctx, waiting[0]))

	waiting, err = repo.FindUnscheduledStageBased(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, waiting)

	byProject, err := repo.FindByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.True(t, t0.Add(15*time.Minute).Equal(*byProject[0].NextTriggerAt()))
}
