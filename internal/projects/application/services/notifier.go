package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
)

// Notifier plans stakeholder notifications for project events and hands
// them to the dispatcher.
type Notifier struct {
	directory  Directory
	dispatcher *notifApp.Dispatcher
	logger     *slog.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(directory Directory, dispatcher *notifApp.Dispatcher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{directory: directory, dispatcher: dispatcher, logger: logger}
}

// Notify plans and dispatches notifications for events. A directory
// failure is reported like a delivery failure.
func (n *Notifier) Notify(ctx context.Context, actorID uuid.UUID, events []sharedDomain.DomainEvent, projects ...*domain.Project) notifApp.Report {
	planned, err := n.Plan(ctx, actorID, events, projects...)
	report := n.dispatcher.Dispatch(ctx, planned)
	if err != nil {
		n.logger.WarnContext(ctx, "notification planning incomplete", "error", err)
		report.Failures = append(report.Failures, notifApp.Failure{Err: err})
	}
	return report
}

// Plan builds the notifications for events without sending them. Project
// snapshots supply titles; events for unknown projects fall back to IDs.
func (n *Notifier) Plan(ctx context.Context, actorID uuid.UUID, events []sharedDomain.DomainEvent, projects ...*domain.Project) ([]notifDomain.Notification, error) {
	p := &plan{
		ctx:      ctx,
		dir:      n.directory,
		actorID:  actorID,
		projects: make(map[uuid.UUID]*domain.Project, len(projects)),
	}
	for _, project := range projects {
		if project != nil {
			p.projects[project.ID()] = project
		}
	}

	for _, event := range events {
		if err := p.add(event); err != nil {
			return p.out, err
		}
	}
	return p.out, nil
}

type plan struct {
	ctx      context.Context
	dir      Directory
	actorID  uuid.UUID
	projects map[uuid.UUID]*domain.Project
	admins   []uuid.UUID
	loaded   bool
	out      []notifDomain.Notification
}

func (p *plan) add(event sharedDomain.DomainEvent) error {
	at := event.OccurredAt()
	projectID := event.AggregateID()

	switch e := event.(type) {
	case *domain.StatusChanged:
		msg := fmt.Sprintf("Status changed from %s to %s", e.From, e.To)
		if err := p.toAudience(projectID, notifDomain.TypeStatusChanged, msg, at); err != nil {
			return err
		}
		if reached(e, domain.StatusMockupCompleted) {
			if err := p.toDepartment(projectID, domain.DepartmentFrontDesk,
				"Mockup completed and ready for client review", at); err != nil {
				return err
			}
		}
		if reached(e, domain.StatusPendingProduction) {
			return p.toDepartment(projectID, domain.DepartmentProduction,
				"Project is ready for production", at)
		}
	case *domain.TransitionBlocked:
		return p.toAudience(projectID, notifDomain.TypeTransitionBlocked, e.Message, at)
	case *domain.GateCleared:
		msg := fmt.Sprintf("Prerequisites for %s are now satisfied", e.TargetStatus)
		return p.toAudience(projectID, notifDomain.TypePrerequisiteCleared, msg, at)
	case *domain.BillingOverrideUsed:
		msg := fmt.Sprintf("Billing requirements overridden for %s: %s", e.Requested, joinRequirements(e.Overridden))
		return p.toAudience(projectID, notifDomain.TypeBillingOverrideUsed, msg, at)
	case *domain.ProjectHeld:
		if e.ReasonOnly {
			return nil
		}
		return p.toAudience(projectID, notifDomain.TypeProjectOnHold, "Project put on hold: "+e.Reason, at)
	case *domain.ProjectReleased:
		return p.toAudience(projectID, notifDomain.TypeProjectReleased, fmt.Sprintf("Hold released, resuming at %s", e.Status), at)
	case *domain.ProjectCancelled:
		return p.toAudience(projectID, notifDomain.TypeProjectCancelled, "Project cancelled: "+e.Reason, at)
	case *domain.ProjectReactivated:
		return p.toAudience(projectID, notifDomain.TypeProjectReactivated, fmt.Sprintf("Project reactivated at %s", e.Status), at)
	case *domain.ProjectReopened:
		msg := fmt.Sprintf("Reopened as version %d: %s", e.VersionNumber, e.Reason)
		return p.toAudience(projectID, notifDomain.TypeProjectReopened, msg, at)
	}
	return nil
}

func reached(e *domain.StatusChanged, s domain.Status) bool {
	return e.Requested == s || e.To == s
}

// toAudience notifies the lead, the assistant and every admin except the actor.
func (p *plan) toAudience(projectID uuid.UUID, t notifDomain.Type, msg string, at time.Time) error {
	if !p.loaded {
		admins, err := p.dir.Admins(p.ctx)
		if err != nil {
			return fmt.Errorf("resolve admins: %w", err)
		}
		p.admins, p.loaded = admins, true
	}
	var recipients []uuid.UUID
	if project, ok := p.projects[projectID]; ok {
		recipients = append(recipients, project.Stakeholders()...)
	}
	recipients = append(recipients, p.admins...)
	p.emit(projectID, t, recipients, msg, at)
	return nil
}

func (p *plan) toDepartment(projectID uuid.UUID, dept domain.Department, msg string, at time.Time) error {
	members, err := p.dir.DepartmentMembers(p.ctx, dept)
	if err != nil {
		return fmt.Errorf("resolve %s members: %w", dept, err)
	}
	p.emit(projectID, notifDomain.TypeDepartmentActionRequired, members, msg, at)
	return nil
}

func (p *plan) emit(projectID uuid.UUID, t notifDomain.Type, recipients []uuid.UUID, msg string, at time.Time) {
	title := projectID.String()
	if project, ok := p.projects[projectID]; ok {
		title = strings.TrimSpace(project.OrderNumber() + " " + project.Name())
	}
	var seen []uuid.UUID
	for _, r := range recipients {
		if r == uuid.Nil || r == p.actorID || slices.Contains(seen, r) {
			continue
		}
		seen = append(seen, r)
		p.out = append(p.out, notifDomain.New(r, p.actorID, projectID, t, title, msg, at))
	}
}

func joinRequirements(reqs []domain.Requirement) string {
	return strings.Join(requirementStrings(reqs), ", ")
}
