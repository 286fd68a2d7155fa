package cli

import (
	"errors"
	"fmt"

	internalApp "github.com/felixgeelhaar/jobflow/internal/app"
	projectCommands "github.com/felixgeelhaar/jobflow/internal/projects/application/commands"
	projectQueries "github.com/felixgeelhaar/jobflow/internal/projects/application/queries"
	projectDomain "github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/internal/projects/infrastructure/directory"
	reminderCommands "github.com/felixgeelhaar/jobflow/internal/reminders/application/commands"
	reminderQueries "github.com/felixgeelhaar/jobflow/internal/reminders/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/reminders/application/scheduler"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ErrNoActor is returned by commands that need an acting user when none
// was configured.
var ErrNoActor = errors.New("no acting user: pass --actor or set JOBFLOW_ACTOR_ID")

// App holds the CLI application dependencies.
type App struct {
	// Project Command Handlers
	CreateProjectHandler         *projectCommands.CreateProjectHandler
	TransitionStatusHandler      *projectCommands.TransitionStatusHandler
	SetHoldHandler               *projectCommands.SetHoldHandler
	CancelProjectHandler         *projectCommands.CancelProjectHandler
	ReactivateProjectHandler     *projectCommands.ReactivateProjectHandler
	ReopenProjectHandler         *projectCommands.ReopenProjectHandler
	DeleteProjectHandler         *projectCommands.DeleteProjectHandler
	MarkInvoiceSentHandler       *projectCommands.MarkInvoiceSentHandler
	VerifyPaymentHandler         *projectCommands.VerifyPaymentHandler
	UploadMockupHandler          *projectCommands.UploadMockupHandler
	ApproveMockupHandler         *projectCommands.ApproveMockupHandler
	RejectMockupHandler          *projectCommands.RejectMockupHandler
	SetSampleRequirementHandler  *projectCommands.SetSampleRequirementHandler
	ApproveSampleHandler         *projectCommands.ApproveSampleHandler
	SetDepartmentsHandler        *projectCommands.SetDepartmentsHandler
	AcknowledgeDepartmentHandler *projectCommands.AcknowledgeDepartmentHandler
	AddFeedbackHandler           *projectCommands.AddFeedbackHandler
	SetCorporateEmergencyHandler *projectCommands.SetCorporateEmergencyHandler

	// Project Query Handlers
	GetProjectHandler    *projectQueries.GetProjectHandler
	ListProjectsHandler  *projectQueries.ListProjectsHandler
	ListLineageHandler   *projectQueries.ListLineageHandler
	EvaluateGatesHandler *projectQueries.EvaluateGatesHandler
	ListActivityHandler  *projectQueries.ListActivityHandler

	// Reminder Handlers
	CreateReminderHandler   *reminderCommands.CreateReminderHandler
	CancelReminderHandler   *reminderCommands.CancelReminderHandler
	CompleteReminderHandler *reminderCommands.CompleteReminderHandler
	ListRemindersHandler    *reminderQueries.ListRemindersHandler
	GetReminderHandler      *reminderQueries.GetReminderHandler

	Scheduler *scheduler.Scheduler
	Directory *directory.Static
	Health    *observability.HealthRegistry

	// Current acting user
	CurrentActor projectDomain.Actor
}

// NewApp creates a new CLI application from a wired container.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateProjectHandler:         c.CreateProjectHandler,
		TransitionStatusHandler:      c.TransitionStatusHandler,
		SetHoldHandler:               c.SetHoldHandler,
		CancelProjectHandler:         c.CancelProjectHandler,
		ReactivateProjectHandler:     c.ReactivateProjectHandler,
		ReopenProjectHandler:         c.ReopenProjectHandler,
		DeleteProjectHandler:         c.DeleteProjectHandler,
		MarkInvoiceSentHandler:       c.MarkInvoiceSentHandler,
		VerifyPaymentHandler:         c.VerifyPaymentHandler,
		UploadMockupHandler:          c.UploadMockupHandler,
		ApproveMockupHandler:         c.ApproveMockupHandler,
		RejectMockupHandler:          c.RejectMockupHandler,
		SetSampleRequirementHandler:  c.SetSampleRequirementHandler,
		ApproveSampleHandler:         c.ApproveSampleHandler,
		SetDepartmentsHandler:        c.SetDepartmentsHandler,
		AcknowledgeDepartmentHandler: c.AcknowledgeDepartmentHandler,
		AddFeedbackHandler:           c.AddFeedbackHandler,
		SetCorporateEmergencyHandler: c.SetCorporateEmergencyHandler,
		GetProjectHandler:            c.GetProjectHandler,
		ListProjectsHandler:          c.ListProjectsHandler,
		ListLineageHandler:           c.ListLineageHandler,
		EvaluateGatesHandler:         c.EvaluateGatesHandler,
		ListActivityHandler:          c.ListActivityHandler,
		CreateReminderHandler:        c.CreateReminderHandler,
		CancelReminderHandler:        c.CancelReminderHandler,
		CompleteReminderHandler:      c.CompleteReminderHandler,
		ListRemindersHandler:         c.ListRemindersHandler,
		GetReminderHandler:           c.GetReminderHandler,
		Scheduler:                    c.Scheduler,
		Directory:                    c.Directory,
		Health:                       c.Health,
	}
}

// SetCurrentActor sets the acting user for subsequent commands.
func (a *App) SetCurrentActor(actor projectDomain.Actor) {
	a.CurrentActor = actor
}

// ResolveActor builds an actor for id. Directory admins are always admins;
// departments default to the directory's membership and are canonicalized
// through its alias table.
func (a *App) ResolveActor(id uuid.UUID, role, origin string, departments []string) (projectDomain.Actor, error) {
	actor := projectDomain.Actor{ID: id, Role: projectDomain.RoleStaff}

	switch projectDomain.Role(role) {
	case "", projectDomain.RoleStaff:
	case projectDomain.RoleAdmin:
		actor.Role = projectDomain.RoleAdmin
	default:
		return projectDomain.Actor{}, fmt.Errorf("invalid role %q", role)
	}
	if a.Directory != nil && a.Directory.IsAdmin(id) {
		actor.Role = projectDomain.RoleAdmin
	}

	switch o := projectDomain.Origin(origin); o {
	case "":
		actor.Origin = projectDomain.OriginEngagedPortal
		if actor.IsAdmin() {
			actor.Origin = projectDomain.OriginAdminPortal
		}
	case projectDomain.OriginAdminPortal, projectDomain.OriginEngagedPortal, projectDomain.OriginLeadPortal:
		actor.Origin = o
	default:
		return projectDomain.Actor{}, fmt.Errorf("invalid origin %q", origin)
	}

	if len(departments) > 0 {
		depts, err := a.CanonicalDepartments(departments)
		if err != nil {
			return projectDomain.Actor{}, err
		}
		actor.Departments = depts
	} else if a.Directory != nil {
		actor.Departments = a.Directory.DepartmentsOf(id)
	}
	return actor, nil
}

// CanonicalDepartments maps user-entered department names to their
// canonical keys.
func (a *App) CanonicalDepartments(names []string) ([]projectDomain.Department, error) {
	registry := projectDomain.DefaultDepartmentRegistry()
	if a.Directory != nil {
		registry = a.Directory.Registry()
	}
	return registry.CanonicalizeAll(names)
}

// ProjectMeta returns the command metadata for project operations.
func (a *App) ProjectMeta(cmd *cobra.Command) (projectCommands.Meta, error) {
	if a.CurrentActor.ID == uuid.Nil {
		return projectCommands.Meta{}, ErrNoActor
	}
	return projectCommands.Meta{
		Actor:         a.CurrentActor,
		CorrelationID: CorrelationID(cmd),
	}, nil
}

// ReminderMeta returns the command metadata for reminder operations.
func (a *App) ReminderMeta(cmd *cobra.Command) (reminderCommands.Meta, error) {
	if a.CurrentActor.ID == uuid.Nil {
		return reminderCommands.Meta{}, ErrNoActor
	}
	return reminderCommands.Meta{
		ActorID:       a.CurrentActor.ID,
		IsAdmin:       a.CurrentActor.IsAdmin(),
		CorrelationID: CorrelationID(cmd),
	}, nil
}

// Global app instance (set by main)
var globalApp *App

// SetApp sets the global app instance.
func SetApp(a *App) {
	globalApp = a
}

// GetApp returns the global app instance.
func GetApp() *App {
	return globalApp
}
