package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/notifications/infrastructure/senders"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/services"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

type txKey struct{}

type handlerFixture struct {
	repo     *mockProjectRepo
	outbox   *mockOutboxRepo
	activity *mockActivityRepo
	uow      *mockUnitOfWork
	sender   *senders.MemorySender
	metrics  *observability.InMemoryMetrics
	pipeline *Pipeline
	txCtx    context.Context
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		repo:     new(mockProjectRepo),
		outbox:   new(mockOutboxRepo),
		activity: new(mockActivityRepo),
		uow:      new(mockUnitOfWork),
		sender:   senders.NewMemorySender(),
		metrics:  observability.NewInMemoryMetrics(),
		txCtx:    context.WithValue(context.Background(), txKey{}, "tx"),
	}
	dir := fakeDirectory{
		admins: []uuid.UUID{adminID},
		members: map[domain.Department][]uuid.UUID{
			domain.DepartmentProduction: {staffID},
		},
	}
	logger := observability.DiscardLogger()
	notifier := services.NewNotifier(dir, notifApp.NewDispatcher(f.sender, logger, f.metrics), logger)
	f.pipeline = NewPipeline(f.repo, f.outbox, f.activity, f.uow, nil, notifier,
		WithClock(func() time.Time { return t0 }),
		WithLogger(logger),
		WithMetrics(f.metrics),
	)
	return f
}

func (f *handlerFixture) expectCommit() {
	f.uow.On("Begin", mock.Anything).Return(f.txCtx, nil)
	f.uow.On("Commit", f.txCtx).Return(nil)
}

func (f *handlerFixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.activity.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestTransitionStatusHandler_Handle(t *testing.T) {
	t.Run("applies the transition and records its side effects", func(t *testing.T) {
		f := newHandlerFixture(t)
		project := storedProject(t, domain.StatusPendingPhotography)

		f.expectCommit()
		f.repo.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		f.repo.On("Save", f.txCtx, project).Return(nil)
		f.outbox.On("SaveBatch", f.txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
		f.activity.On("Append", f.txCtx, mock.Anything).Return(nil)

		result, err := NewTransitionStatusHandler(f.pipeline).Handle(context.Background(), TransitionStatusCommand{
			Meta:      staffMeta(domain.DepartmentPhotography),
			ProjectID: project.ID(),
			Status:    domain.StatusPhotographyCompleted,
		})

		require.NoError(t, err)
		assert.Nil(t, result.Block)
		assert.Equal(t, domain.StatusPendingPackaging, result.Project.Status())
		assert.Empty(t, result.Project.DomainEvents())
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricTransitions, observability.T("to", string(domain.StatusPendingPackaging))))

		// lead and admin hear about it; the acting staff member does not.
		sent := f.sender.OfType(notifDomain.TypeStatusChanged)
		require.Len(t, sent, 2)
		assert.ElementsMatch(t, []uuid.UUID{leadID, adminID}, []uuid.UUID{sent[0].RecipientID, sent[1].RecipientID})
		f.assertExpectations(t)
	})

	t.Run("a gate block persists the watch without an error", func(t *testing.T) {
		f := newHandlerFixture(t)
		project := storedProject(t, domain.StatusPendingProofReading)

		f.expectCommit()
		f.repo.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		f.repo.On("Save", f.txCtx, project).Return(nil)
		f.outbox.On("SaveBatch", f.txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
		f.activity.On("Append", f.txCtx, mock.Anything).Return(nil)

		result, err := NewTransitionStatusHandler(f.pipeline).Handle(context.Background(), TransitionStatusCommand{
			Meta:      adminMeta(),
			ProjectID: project.ID(),
			Status:    domain.StatusProofReadingCompleted,
		})

		require.NoError(t, err)
		require.NotNil(t, result.Block)
		assert.Equal(t, domain.GateBilling, result.Block.Code)
		assert.Equal(t, domain.StatusPendingProofReading, result.Project.Status())
		assert.Len(t, result.Project.GateWatches(), 1)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricTransitionsBlocked, observability.T("gate", string(domain.GateBilling))))
		f.assertExpectations(t)
	})

	t.Run("a repeated block with an unchanged watch writes nothing", func(t *testing.T) {
		f := newHandlerFixture(t)
		project := storedProject(t, domain.StatusPendingProofReading)
		_, err := project.Transition(adminMeta().Actor, domain.StatusProofReadingCompleted, domain.TransitionOptions{}, t0)
		require.NoError(t, err)
		project.ClearDomainEvents()

		f.expectCommit()
		f.repo.On("FindByID", f.txCtx, project.ID()).Return(project, nil)

		result, err := NewTransitionStatusHandler(f.pipeline).Handle(context.Background(), TransitionStatusCommand{
			Meta:      adminMeta(),
			ProjectID: project.ID(),
			Status:    domain.StatusProofReadingCompleted,
		})

		require.NoError(t, err)
		require.NotNil(t, result.Block)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.outbox.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		assert.Empty(t, f.sender.Sent())
	})

	t.Run("a stale revision rolls back and notifies no one", func(t *testing.T) {
		f := newHandlerFixture(t)
		project := storedProject(t, domain.StatusPendingPhotography)

		f.uow.On("Begin", mock.Anything).Return(f.txCtx, nil)
		f.uow.On("Rollback", f.txCtx).Return(nil)
		f.repo.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		f.repo.On("Save", f.txCtx, project).Return(domain.ErrStaleProject)

		_, err := NewTransitionStatusHandler(f.pipeline).Handle(context.Background(), TransitionStatusCommand{
			Meta:      adminMeta(),
			ProjectID: project.ID(),
			Status:    domain.StatusPhotographyCompleted,
		})

		require.ErrorIs(t, err, domain.ErrStaleProject)
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
		assert.Empty(t, f.sender.Sent())
	})

	t.Run("unauthorized requests roll back", func(t *testing.T) {
		f := newHandlerFixture(t)
		project := storedProject(t, domain.StatusPendingMockup)

		f.uow.On("Begin", mock.Anything).Return(f.txCtx, nil)
		f.uow.On("Rollback", f.txCtx).Return(nil)
		f.repo.On("FindByID", f.txCtx, project.ID()).Return(project, nil)

		_, err := NewTransitionStatusHandler(f.pipeline).Handle(context.Background(), TransitionStatusCommand{
			Meta:      staffMeta(domain.DepartmentStores),
			ProjectID: project.ID(),
			Status:    domain.StatusMockupCompleted,
		})

		require.ErrorIs(t, err, domain.ErrUnauthorized)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("delivery failures are reported, not returned", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.sender.FailFor(leadID, errors.New("mailbox full"))
		project := storedProject(t, domain.StatusPendingPhotography)

		f.expectCommit()
		f.repo.On("FindByID", f.txCtx, project.ID()).Return(project, nil)
		f.repo.On("Save", f.txCtx, project).Return(nil)
		f.outbox.On("SaveBatch", f.txCtx, mock.Anything).Return(nil)
		f.activity.On("Append", f.txCtx, mock.Anything).Return(nil)

		result, err := NewTransitionStatusHandler(f.pipeline).Handle(context.Background(), TransitionStatusCommand{
			Meta:      adminMeta(),
			ProjectID: project.ID(),
			Status:    domain.StatusPhotographyCompleted,
		})

		require.NoError(t, err)
		assert.True(t, result.Dispatch.Failed())
		assert.Equal(t, domain.StatusPendingPackaging, result.Project.Status())
	})
}
