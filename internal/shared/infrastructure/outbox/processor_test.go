package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
)

type recordingPublisher struct {
	mu      sync.Mutex
	keys    []string
	failFor map[string]bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{failFor: make(map[string]bool)}
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[routingKey] {
		return errors.New("broker unavailable")
	}
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type reminderFired struct {
	domain.BaseEvent
	Title string `json:"title"`
}

func newRepo(t *testing.T) (*outbox.SQLRepository, database.Connection) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return outbox.NewSQLRepository(conn), conn
}

func enqueue(t *testing.T, repo outbox.Writer, routingKeys ...string) {
	t.Helper()
	events := make([]domain.DomainEvent, 0, len(routingKeys))
	for _, key := range routingKeys {
		events = append(events, &reminderFired{
			BaseEvent: domain.NewBaseEvent(uuid.New(), "Reminder", key),
			Title:     "call the client",
		})
	}
	msgs, err := outbox.NewMessages(events)
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(context.Background(), msgs))
}

func TestSQLRepository_SaveInsideUnitOfWorkRollsBack(t *testing.T) {
	repo, conn := newRepo(t)
	ctx := context.Background()
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	enqueue(t, &txRepo{repo: repo, ctx: txCtx}, "reminders.reminder.fired")
	require.NoError(t, uow.Rollback(txCtx))

	msgs, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

// txRepo pins a writer to a transactional context.
type txRepo struct {
	repo *outbox.SQLRepository
	ctx  context.Context
}

func (r *txRepo) SaveBatch(_ context.Context, msgs []*outbox.Message) error {
	return r.repo.SaveBatch(r.ctx, msgs)
}

func TestProcessor_ProcessOnce(t *testing.T) {
	repo, _ := newRepo(t)
	publisher := newRecordingPublisher()
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil)
	enqueue(t, repo, "reminders.reminder.fired", "projects.project.status_changed")

	require.NoError(t, processor.ProcessOnce(context.Background()))

	assert.Equal(t, []string{"reminders.reminder.fired", "projects.project.status_changed"}, publisher.published())
	pending, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	stats := processor.GetStats()
	assert.Equal(t, uint64(2), stats.PublishedCount)
	assert.NotNil(t, stats.LastProcessedAt)
}

func TestProcessor_FailureSchedulesRetry(t *testing.T) {
	repo, _ := newRepo(t)
	publisher := newRecordingPublisher()
	publisher.failFor["reminders.reminder.fired"] = true
	cfg := outbox.DefaultProcessorConfig()
	cfg.RetryBackoffBase = time.Hour
	processor := outbox.NewProcessor(repo, publisher, cfg, nil)
	enqueue(t, repo, "reminders.reminder.fired")

	require.NoError(t, processor.ProcessOnce(context.Background()))

	pending, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "message is parked until its retry time")
	assert.Equal(t, uint64(1), processor.GetStats().FailedCount)
}

func TestProcessor_DeadLettersAfterMaxRetries(t *testing.T) {
	repo, conn := newRepo(t)
	publisher := newRecordingPublisher()
	publisher.failFor["reminders.reminder.fired"] = true
	cfg := outbox.DefaultProcessorConfig()
	cfg.MaxRetries = 1
	processor := outbox.NewProcessor(repo, publisher, cfg, nil)
	enqueue(t, repo, "reminders.reminder.fired")

	require.NoError(t, processor.ProcessOnce(context.Background()))

	var dead int
	require.NoError(t, conn.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM outbox WHERE dead_lettered_at IS NOT NULL`).Scan(&dead))
	assert.Equal(t, 1, dead)
	assert.Equal(t, uint64(1), processor.GetStats().DeadCount)
}

func TestProcessor_CleanupRemovesOldPublished(t *testing.T) {
	repo, conn := newRepo(t)
	processor := outbox.NewProcessor(repo, newRecordingPublisher(), outbox.DefaultProcessorConfig(), nil)
	enqueue(t, repo, "reminders.reminder.fired")
	require.NoError(t, processor.ProcessOnce(context.Background()))

	old := database.FormatTime(time.Now().AddDate(0, 0, -30))
	_, err := conn.Exec(context.Background(), `UPDATE outbox SET published_at = ?`, old)
	require.NoError(t, err)

	deleted, err := processor.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestProcessor_StartStop(t *testing.T) {
	repo, _ := newRepo(t)
	publisher := newRecordingPublisher()
	cfg := outbox.DefaultProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	processor := outbox.NewProcessor(repo, publisher, cfg, nil)

	require.NoError(t, processor.Start(context.Background()))
	require.NoError(t, processor.Start(context.Background()))
	assert.True(t, processor.GetStats().IsRunning)

	enqueue(t, repo, "projects.project.reopened")
	assert.Eventually(t, func() bool { return len(publisher.published()) == 1 }, time.Second, 10*time.Millisecond)

	processor.Stop()
	processor.Stop()
	assert.False(t, processor.IsRunning())
}
