// Package commands holds the write side of reminders.
package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
	sharedApplication "github.com/felixgeelhaar/jobflow/internal/shared/application"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
)

// Meta identifies who issues a command.
type Meta struct {
	ActorID       uuid.UUID
	IsAdmin       bool
	CorrelationID string
}

// Waker is told when the schedule changed so a sleeping sweep loop can
// look again.
type Waker interface {
	Wake()
}

// Store bundles what every reminder handler writes through.
type Store struct {
	repo       domain.Repository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	waker      Waker
	now        func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithWaker wakes the scheduler after every committed change.
func WithWaker(w Waker) StoreOption {
	return func(s *Store) { s.waker = w }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store.
func NewStore(repo domain.Repository, outboxRepo outbox.Writer, uow sharedApplication.UnitOfWork, opts ...StoreOption) *Store {
	s := &Store{repo: repo, outboxRepo: outboxRepo, uow: uow, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// commit saves reminder and its events in one transaction.
func (s *Store) commit(ctx context.Context, meta Meta, reminder *domain.Reminder) error {
	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.repo.Save(txCtx, reminder); err != nil {
			return err
		}
		events := reminder.DomainEvents()
		if len(events) == 0 {
			return nil
		}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(meta.ActorID.String(), meta.CorrelationID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return s.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return err
	}
	reminder.ClearDomainEvents()
	if s.waker != nil {
		s.waker.Wake()
	}
	return nil
}
