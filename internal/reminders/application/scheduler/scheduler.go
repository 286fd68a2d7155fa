// Package scheduler fires due reminders. A sweep reclaims abandoned claims,
// activates stage reminders whose project reached the watched status and
// fires whatever is due. The background loop sleeps until the next trigger
// time, bounded by the configured interval range, and can be woken early.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
	sharedApplication "github.com/felixgeelhaar/jobflow/internal/shared/application"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

// Config bounds the sweep loop.
type Config struct {
	MinInterval  time.Duration
	MaxInterval  time.Duration
	LeaseTimeout time.Duration
	BatchSize    int
}

// DefaultConfig returns the worker defaults.
func DefaultConfig() Config {
	return Config{
		MinInterval:  time.Second,
		MaxInterval:  5 * time.Minute,
		LeaseTimeout: 10 * time.Minute,
		BatchSize:    100,
	}
}

// Dispatcher delivers notifications and reports failures.
type Dispatcher interface {
	Dispatch(ctx context.Context, notifications []notifDomain.Notification) notifApp.Report
}

// SweepResult counts what one sweep did.
type SweepResult struct {
	Activated int
	Fired     int
	Errored   int
	Reclaimed int
}

// Scheduler runs reminder sweeps.
type Scheduler struct {
	repo       domain.Repository
	projects   domain.ProjectStatusReader
	dispatcher Dispatcher
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	config     Config
	logger     *slog.Logger
	metrics    observability.Metrics
	now        func() time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
	wake    chan struct{}

	statsMu sync.Mutex
	stats   Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithMetrics records sweep metrics.
func WithMetrics(m observability.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// NewScheduler creates a scheduler. A nil logger falls back to slog.Default.
func NewScheduler(
	repo domain.Repository,
	projects domain.ProjectStatusReader,
	dispatcher Dispatcher,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	config Config,
	logger *slog.Logger,
	opts ...Option,
) *Scheduler {
	defaults := DefaultConfig()
	if config.MinInterval <= 0 {
		config.MinInterval = defaults.MinInterval
	}
	if config.MaxInterval < config.MinInterval {
		config.MaxInterval = max(defaults.MaxInterval, config.MinInterval)
	}
	if config.LeaseTimeout <= 0 {
		config.LeaseTimeout = defaults.LeaseTimeout
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		repo:       repo,
		projects:   projects,
		dispatcher: dispatcher,
		outboxRepo: outboxRepo,
		uow:        uow,
		config:     config,
		logger:     logger.With("component", "reminder_scheduler"),
		metrics:    observability.NoopMetrics{},
		now:        time.Now,
		wake:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the sweep loop. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.loop(ctx, s.stop)

	s.logger.Info("reminder scheduler started",
		"min_interval", s.config.MinInterval,
		"max_interval", s.config.MaxInterval,
		"lease_timeout", s.config.LeaseTimeout,
	)
	return nil
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("reminder scheduler stopped")
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wake cuts the current sleep short. It never blocks; wakes that arrive
// while one is already pending are merged.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-timer.C:
		case <-s.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("reminder sweep failed", "error", err)
		}
		delay, err := s.NextDelay(ctx)
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("next reminder lookup failed", "error", err)
		}
		s.noteNextWake(s.now().Add(delay))
		timer.Reset(delay)
	}
}

// NextDelay returns how long to sleep before the next sweep.
func (s *Scheduler) NextDelay(ctx context.Context) (time.Duration, error) {
	next, err := s.repo.NextTriggerAt(ctx)
	if err != nil {
		return s.config.MinInterval, err
	}
	if next == nil {
		return s.config.MaxInterval, nil
	}
	return s.clamp(next.Sub(s.now())), nil
}

func (s *Scheduler) clamp(d time.Duration) time.Duration {
	return min(max(d, s.config.MinInterval), s.config.MaxInterval)
}

// SweepOnce runs one reclaim, activation and fire pass. Errors on single
// reminders are counted and logged; only failures to read the queue are
// returned.
func (s *Scheduler) SweepOnce(ctx context.Context) (SweepResult, error) {
	defer observability.Time(s.metrics, observability.MetricReminderSweepTime, time.Now())
	start := s.now()
	s.metrics.Counter(observability.MetricReminderSweeps, 1)

	var result SweepResult
	var errs []error

	reclaimed, err := s.repo.ReclaimStale(ctx, start.Add(-s.config.LeaseTimeout), start)
	if err != nil {
		errs = append(errs, err)
	} else if reclaimed > 0 {
		result.Reclaimed = int(reclaimed)
		s.logger.WarnContext(ctx, "reclaimed expired reminder claims", "count", reclaimed)
	}

	activated, err := s.activate(ctx, start)
	result.Activated = activated
	if err != nil {
		errs = append(errs, err)
	}

	fired, errored, err := s.fireDue(ctx)
	result.Fired, result.Errored = fired, errored
	if err != nil {
		errs = append(errs, err)
	}

	s.metrics.Counter(observability.MetricRemindersReclaimed, int64(result.Reclaimed))
	s.metrics.Counter(observability.MetricRemindersActivated, int64(result.Activated))
	s.metrics.Counter(observability.MetricRemindersFired, int64(result.Fired))
	s.metrics.Counter(observability.MetricRemindersErrored, int64(result.Errored))

	err = errors.Join(errs...)
	s.noteSweep(result, err)
	return result, err
}

func (s *Scheduler) activate(ctx context.Context, now time.Time) (int, error) {
	waiting, err := s.repo.FindUnscheduledStageBased(ctx, s.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("find unscheduled reminders: %w", err)
	}
	if len(waiting) == 0 {
		return 0, nil
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, r := range waiting {
		if !seen[r.ProjectID()] {
			seen[r.ProjectID()] = true
			ids = append(ids, r.ProjectID())
		}
	}
	statuses, err := s.projects.ProjectStatuses(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("read project statuses: %w", err)
	}

	activated := 0
	for _, r := range waiting {
		status, ok := statuses[r.ProjectID()]
		if !ok || status != r.WatchStatus() {
			continue
		}
		if !r.Activate(now) {
			continue
		}
		if err := s.repo.Save(ctx, r); err != nil {
			if errors.Is(err, domain.ErrStaleReminder) {
				continue
			}
			s.logger.WarnContext(ctx, "reminder activation failed", "reminder_id", r.ID(), "error", err)
			continue
		}
		activated++
		s.logger.InfoContext(ctx, "stage reminder scheduled",
			"reminder_id", r.ID(),
			"project_id", r.ProjectID(),
			"next_trigger_at", r.NextTriggerAt(),
		)
	}
	return activated, nil
}

func (s *Scheduler) fireDue(ctx context.Context) (fired, errored int, err error) {
	due, err := s.repo.FindDue(ctx, s.now(), s.config.BatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("find due reminders: %w", err)
	}
	for _, r := range due {
		if ctx.Err() != nil {
			return fired, errored, ctx.Err()
		}
		ok, err := s.repo.Claim(ctx, r, s.now())
		if err != nil {
			errored++
			s.logger.WarnContext(ctx, "reminder claim failed", "reminder_id", r.ID(), "error", err)
			continue
		}
		if !ok {
			continue
		}
		if s.fire(ctx, r) {
			fired++
		} else {
			errored++
		}
	}
	return fired, errored, nil
}

// fire delivers a claimed reminder and persists the outcome.
func (s *Scheduler) fire(ctx context.Context, r *domain.Reminder) bool {
	now := s.now()
	var notifications []notifDomain.Notification
	for _, userID := range r.PendingRecipients() {
		n := notifDomain.New(userID, r.CreatedBy(), r.ProjectID(), notifDomain.TypeReminder, r.Title(), r.Message(), now)
		n.Channel = r.Channel()
		notifications = append(notifications, n)
	}
	report := s.dispatcher.Dispatch(ctx, notifications)

	delivered := !report.Failed() || report.Sent > 0
	if delivered {
		r.Fired(now)
		r.NoteDeliveryError(report.Err())
	} else {
		r.FireFailed(report.Err(), now)
	}

	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.repo.Save(txCtx, r); err != nil {
			return err
		}
		events := r.DomainEvents()
		if len(events) == 0 {
			return nil
		}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(r.CreatedBy().String(), ""))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return s.outboxRepo.SaveBatch(txCtx, msgs)
	})
	r.ClearDomainEvents()
	if err != nil {
		// The claim stays until the lease expires and the reminder is reclaimed.
		s.logger.ErrorContext(ctx, "saving fired reminder failed", "reminder_id", r.ID(), "error", err)
		return false
	}

	if !delivered {
		s.logger.WarnContext(ctx, "reminder delivery failed", "reminder_id", r.ID(), "error", report.Err())
		return false
	}
	s.logger.InfoContext(ctx, "reminder fired",
		"reminder_id", r.ID(),
		"recipients", len(notifications),
		"fire_count", r.FireCount(),
		"status", r.Status(),
	)
	return true
}

// Stats is a point-in-time view of scheduler health.
type Stats struct {
	IsRunning   bool
	Sweeps      uint64
	Activated   uint64
	Fired       uint64
	Errored     uint64
	Reclaimed   uint64
	LastError   string
	LastErrorAt *time.Time
	LastSweepAt *time.Time
	NextWakeAt  *time.Time
}

// GetStats returns current scheduler statistics.
func (s *Scheduler) GetStats() Stats {
	running := s.IsRunning()
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	st := s.stats
	st.IsRunning = running
	return st
}

func (s *Scheduler) noteSweep(result SweepResult, err error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	now := s.now()
	s.stats.Sweeps++
	s.stats.Activated += uint64(result.Activated)
	s.stats.Fired += uint64(result.Fired)
	s.stats.Errored += uint64(result.Errored)
	s.stats.Reclaimed += uint64(result.Reclaimed)
	s.stats.LastSweepAt = &now
	if err != nil {
		s.stats.LastError = err.Error()
		s.stats.LastErrorAt = &now
	}
}

func (s *Scheduler) noteNextWake(at time.Time) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.NextWakeAt = &at
}
