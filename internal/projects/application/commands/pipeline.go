package commands

import (
	"context"
	"log/slog"
	"time"

	activityDomain "github.com/felixgeelhaar/jobflow/internal/activity/domain"
	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/services"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	sharedApplication "github.com/felixgeelhaar/jobflow/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/locking"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
	"github.com/google/uuid"
)

// Pipeline is the write path shared by every project command: lock, unit
// of work, load, mutate, save, outbox, activity, commit, notify.
type Pipeline struct {
	projects   domain.Repository
	outboxRepo outbox.Writer
	activity   activityDomain.Repository
	uow        sharedApplication.UnitOfWork
	locker     locking.Locker
	notifier   *services.Notifier
	logger     *slog.Logger
	metrics    observability.Metrics
	now        func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock overrides the time source.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics observability.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = metrics }
}

// NewPipeline creates the command pipeline. A nil notifier disables
// notifications; a nil locker serializes in process only.
func NewPipeline(
	projects domain.Repository,
	outboxRepo outbox.Writer,
	activity activityDomain.Repository,
	uow sharedApplication.UnitOfWork,
	locker locking.Locker,
	notifier *services.Notifier,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		projects:   projects,
		outboxRepo: outboxRepo,
		activity:   activity,
		uow:        uow,
		locker:     locker,
		notifier:   notifier,
		logger:     slog.Default(),
		metrics:    observability.NoopMetrics{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.locker == nil {
		p.locker = locking.NewLocalLocker()
	}
	return p
}

// Meta identifies who runs a command and which request it belongs to.
type Meta struct {
	Actor         domain.Actor
	CorrelationID string
}

// committed carries what a unit of work produced to the post-commit step.
type committed struct {
	events   []sharedDomain.DomainEvent
	projects []*domain.Project
}

// mutate applies fn to the stored project under its lock and persists
// whatever events it produced.
func (p *Pipeline) mutate(ctx context.Context, meta Meta, projectID uuid.UUID, fn func(project *domain.Project, now time.Time) error) (*domain.Project, notifApp.Report, error) {
	var project *domain.Project
	var report notifApp.Report

	err := locking.With(ctx, p.locker, locking.ProjectKey(projectID.String()), func(ctx context.Context) error {
		now := p.now()
		out, err := sharedApplication.WithUnitOfWorkResult(ctx, p.uow, func(txCtx context.Context) (committed, error) {
			loaded, err := p.projects.FindByID(txCtx, projectID)
			if err != nil {
				return committed{}, err
			}
			if err := fn(loaded, now); err != nil {
				return committed{}, err
			}
			events, err := p.save(txCtx, loaded)
			if err != nil {
				return committed{}, err
			}
			project = loaded
			return committed{events: events, projects: []*domain.Project{loaded}}, p.record(txCtx, meta, now, events)
		})
		if err != nil {
			return err
		}
		report = p.notify(ctx, meta, out)
		return nil
	})
	if err != nil {
		return nil, report, err
	}
	return project, report, nil
}

// save persists a project when it has pending events and returns them.
func (p *Pipeline) save(txCtx context.Context, project *domain.Project) ([]sharedDomain.DomainEvent, error) {
	events := project.DomainEvents()
	if len(events) == 0 {
		return nil, nil
	}
	if err := p.projects.Save(txCtx, project); err != nil {
		return nil, err
	}
	return events, nil
}

// record writes outbox messages and activity entries for events inside
// the caller's transaction.
func (p *Pipeline) record(txCtx context.Context, meta Meta, now time.Time, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(meta.Actor.ID.String(), meta.CorrelationID))

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := p.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
		return err
	}
	if entries := services.ActivityEntries(meta.Actor.ID, events, now); len(entries) > 0 {
		return p.activity.Append(txCtx, entries...)
	}
	return nil
}

// notify runs after commit. Delivery problems are logged and reported,
// never returned as errors.
func (p *Pipeline) notify(ctx context.Context, meta Meta, out committed) notifApp.Report {
	for _, project := range out.projects {
		project.ClearDomainEvents()
	}
	if p.notifier == nil || len(out.events) == 0 {
		return notifApp.Report{}
	}
	report := p.notifier.Notify(ctx, meta.Actor.ID, out.events, out.projects...)
	if report.Failed() {
		p.logger.WarnContext(ctx, "notifications failed after commit",
			"failures", len(report.Failures), "sent", report.Sent, "error", report.Err())
	}
	return report
}

// lineageOf resolves the lineage lock key for a project outside any
// transaction. The caller re-reads the project once the lock is held.
func (p *Pipeline) lineageOf(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	project, err := p.projects.FindByID(ctx, projectID)
	if err != nil {
		return uuid.Nil, err
	}
	return project.LineageID(), nil
}

// underLineage runs fn for projectID while holding its lineage lock. fn
// does its own saves and returns the projects whose events must be
// recorded, in the order they were written.
func (p *Pipeline) underLineage(ctx context.Context, meta Meta, projectID uuid.UUID, fn func(txCtx context.Context, project *domain.Project, now time.Time) ([]*domain.Project, error)) (notifApp.Report, error) {
	lineageID, err := p.lineageOf(ctx, projectID)
	if err != nil {
		return notifApp.Report{}, err
	}

	var report notifApp.Report
	err = locking.With(ctx, p.locker, locking.LineageKey(lineageID.String()), func(ctx context.Context) error {
		now := p.now()
		out, err := sharedApplication.WithUnitOfWorkResult(ctx, p.uow, func(txCtx context.Context) (committed, error) {
			project, err := p.projects.FindByID(txCtx, projectID)
			if err != nil {
				return committed{}, err
			}
			touched, err := fn(txCtx, project, now)
			if err != nil {
				return committed{}, err
			}
			var events []sharedDomain.DomainEvent
			for _, t := range touched {
				events = append(events, t.DomainEvents()...)
			}
			return committed{events: events, projects: touched}, p.record(txCtx, meta, now, events)
		})
		if err != nil {
			return err
		}
		report = p.notify(ctx, meta, out)
		return nil
	})
	return report, err
}

// Result is what most project commands return.
type Result struct {
	Project  *domain.Project
	Dispatch notifApp.Report
}

func (p *Pipeline) run(ctx context.Context, meta Meta, projectID uuid.UUID, fn func(project *domain.Project, now time.Time) error) (*Result, error) {
	project, report, err := p.mutate(ctx, meta, projectID, fn)
	if err != nil {
		return nil, err
	}
	return &Result{Project: project, Dispatch: report}, nil
}
