package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityDomain "github.com/felixgeelhaar/jobflow/internal/activity/domain"
	activityPersistence "github.com/felixgeelhaar/jobflow/internal/activity/infrastructure/persistence"
	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/notifications/infrastructure/senders"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/services"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/internal/projects/infrastructure/persistence"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

var productionID = uuid.MustParse("00000000-0000-0000-0000-0000000000d1")

type world struct {
	ctx      context.Context
	projects *persistence.SQLProjectRepository
	activity *activityPersistence.SQLActivityRepository
	outbox   *outbox.SQLRepository
	sender   *senders.MemorySender
	pipeline *Pipeline
	clock    time.Time
}

func newWorld(t *testing.T) *world {
	t.Helper()
	conn := dbtest.SQLite(t)
	w := &world{
		ctx:      context.Background(),
		projects: persistence.NewSQLProjectRepository(conn),
		activity: activityPersistence.NewSQLActivityRepository(conn),
		outbox:   outbox.NewSQLRepository(conn),
		sender:   senders.NewMemorySender(),
		clock:    t0,
	}
	dir := fakeDirectory{
		admins: []uuid.UUID{adminID},
		members: map[domain.Department][]uuid.UUID{
			domain.DepartmentProduction: {productionID},
		},
	}
	logger := observability.DiscardLogger()
	notifier := services.NewNotifier(dir, notifApp.NewDispatcher(w.sender, logger, nil), logger)
	w.pipeline = NewPipeline(w.projects, w.outbox, w.activity, database.NewUnitOfWork(conn), nil, notifier,
		WithClock(func() time.Time {
			w.clock = w.clock.Add(time.Minute)
			return w.clock
		}),
		WithLogger(logger),
	)
	return w
}

func (w *world) create(t *testing.T, projectType domain.ProjectType) *domain.Project {
	t.Helper()
	p, err := NewCreateProjectHandler(w.pipeline).Handle(w.ctx, CreateProjectCommand{
		Meta:        adminMeta(),
		OrderNumber: "ORD-2001",
		Name:        "Banner run",
		Type:        projectType,
		LeadID:      leadID,
		Departments: []domain.Department{domain.DepartmentGraphics, domain.DepartmentProduction},
	})
	require.NoError(t, err)
	return p
}

// force moves a stored project to status outside the workflow rules.
func (w *world) force(t *testing.T, id uuid.UUID, status domain.Status) {
	t.Helper()
	p, err := w.projects.FindByID(w.ctx, id)
	require.NoError(t, err)
	s := p.Snapshot()
	s.Status = status
	require.NoError(t, w.projects.Save(w.ctx, domain.RehydrateProject(s)))
}

func (w *world) actions(t *testing.T, id uuid.UUID) []activityDomain.Action {
	t.Helper()
	entries, err := w.activity.ListByProject(w.ctx, id, 0)
	require.NoError(t, err)
	out := make([]activityDomain.Action, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}

func TestScenarioA_BillingBlocksProofReading(t *testing.T) {
	w := newWorld(t)
	p := w.create(t, domain.ProjectTypeStandard)
	w.force(t, p.ID(), domain.StatusPendingProofReading)

	result, err := NewTransitionStatusHandler(w.pipeline).Handle(w.ctx, TransitionStatusCommand{
		Meta:      adminMeta(),
		ProjectID: p.ID(),
		Status:    domain.StatusProofReadingCompleted,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Block)
	assert.Equal(t, domain.GateBilling, result.Block.Code)
	assert.Equal(t, domain.StatusPendingProduction, result.Block.TargetStatus)
	assert.Equal(t, []domain.Requirement{domain.RequirementInvoice, domain.RequirementPaymentAny}, result.Block.Missing)

	stored, err := w.projects.FindByID(w.ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingProofReading, stored.Status())
	require.Len(t, stored.GateWatches(), 1)

	assert.Contains(t, w.actions(t, p.ID()), activityDomain.ActionTransitionBlocked)
	blocked := w.sender.OfType(notifDomain.TypeTransitionBlocked)
	require.Len(t, blocked, 1)
	assert.Equal(t, leadID, blocked[0].RecipientID)
}

func TestScenarioB_PaymentClearsGateOnce(t *testing.T) {
	w := newWorld(t)
	p := w.create(t, domain.ProjectTypeStandard)
	w.force(t, p.ID(), domain.StatusPendingProofReading)

	transition := NewTransitionStatusHandler(w.pipeline)
	cmd := TransitionStatusCommand{Meta: adminMeta(), ProjectID: p.ID(), Status: domain.StatusProofReadingCompleted}
	result, err := transition.Handle(w.ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, result.Block)

	_, err = NewMarkInvoiceSentHandler(w.pipeline).Handle(w.ctx, MarkInvoiceSentCommand{Meta: adminMeta(), ProjectID: p.ID()})
	require.NoError(t, err)
	assert.Empty(t, w.sender.OfType(notifDomain.TypePrerequisiteCleared), "payment still missing")

	_, err = NewVerifyPaymentHandler(w.pipeline).Handle(w.ctx, VerifyPaymentCommand{
		Meta:      adminMeta(),
		ProjectID: p.ID(),
		Type:      domain.PaymentPart,
		Reference: "RCPT-9",
	})
	require.NoError(t, err)

	_, err = NewVerifyPaymentHandler(w.pipeline).Handle(w.ctx, VerifyPaymentCommand{
		Meta:      adminMeta(),
		ProjectID: p.ID(),
		Type:      domain.PaymentFull,
	})
	require.NoError(t, err)

	cleared := w.sender.OfType(notifDomain.TypePrerequisiteCleared)
	require.Len(t, cleared, 1)
	assert.Equal(t, leadID, cleared[0].RecipientID)

	result, err = transition.Handle(w.ctx, cmd)
	require.NoError(t, err)
	assert.Nil(t, result.Block)
	assert.Equal(t, domain.StatusPendingProduction, result.Project.Status())
	assert.Empty(t, result.Project.GateWatches())

	handoff := w.sender.OfType(notifDomain.TypeDepartmentActionRequired)
	require.Len(t, handoff, 1)
	assert.Equal(t, productionID, handoff[0].RecipientID)

	actions := w.actions(t, p.ID())
	assert.Contains(t, actions, activityDomain.ActionGateCleared)
	assert.Contains(t, actions, activityDomain.ActionPaymentVerified)
	assert.Equal(t, activityDomain.ActionStatusChanged, actions[len(actions)-1])
}

func TestScenarioC_HoldReleaseRestoresStatus(t *testing.T) {
	w := newWorld(t)
	p := w.create(t, domain.ProjectTypeStandard)
	w.force(t, p.ID(), domain.StatusPendingPackaging)
	hold := NewSetHoldHandler(w.pipeline)

	res, err := hold.Handle(w.ctx, SetHoldCommand{Meta: adminMeta(), ProjectID: p.ID(), OnHold: true, Reason: "awaiting artwork"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnHold, res.Project.Status())
	assert.Equal(t, domain.StatusPendingPackaging, res.Project.Hold().PreviousStatus)

	_, err = NewTransitionStatusHandler(w.pipeline).Handle(w.ctx, TransitionStatusCommand{
		Meta: adminMeta(), ProjectID: p.ID(), Status: domain.StatusPackagingCompleted,
	})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	res, err = hold.Handle(w.ctx, SetHoldCommand{Meta: adminMeta(), ProjectID: p.ID(), OnHold: false})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPackaging, res.Project.Status())
	assert.False(t, res.Project.IsOnHold())

	staff := staffMeta(domain.DepartmentStores)
	_, err = hold.Handle(w.ctx, SetHoldCommand{Meta: staff, ProjectID: p.ID(), OnHold: true, Reason: "x"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.Len(t, w.sender.OfType(notifDomain.TypeProjectOnHold), 1)
	assert.Len(t, w.sender.OfType(notifDomain.TypeProjectReleased), 1)
}

func TestScenarioD_ReopenAndDeleteKeepOneLatest(t *testing.T) {
	w := newWorld(t)
	v1 := w.create(t, domain.ProjectTypeStandard)
	w.force(t, v1.ID(), domain.StatusFinished)
	reopen := NewReopenProjectHandler(w.pipeline)

	res, err := reopen.Handle(w.ctx, ReopenProjectCommand{Meta: adminMeta(), ProjectID: v1.ID(), Reason: "reprint"})
	require.NoError(t, err)
	v2 := res.Project
	assert.Equal(t, 2, v2.VersionNumber())
	assert.Equal(t, v1.ID(), v2.LineageID())
	assert.Equal(t, domain.StatusPendingScopeApproval, v2.Status())
	assert.Len(t, w.sender.OfType(notifDomain.TypeProjectReopened), 1)

	_, err = reopen.Handle(w.ctx, ReopenProjectCommand{Meta: adminMeta(), ProjectID: v1.ID()})
	require.ErrorIs(t, err, domain.ErrLineageConflict)

	lineage, err := w.projects.FindLineage(w.ctx, v1.ID())
	require.NoError(t, err)
	require.Len(t, lineage, 2)
	assert.False(t, lineage[0].IsLatestVersion())
	assert.Equal(t, domain.VersionSuperseded, lineage[0].VersionState())
	assert.True(t, lineage[1].IsLatestVersion())

	deleted, err := NewDeleteProjectHandler(w.pipeline).Handle(w.ctx, DeleteProjectCommand{Meta: adminMeta(), ProjectID: v2.ID()})
	require.NoError(t, err)
	require.NotNil(t, deleted.Promoted)
	assert.Equal(t, v1.ID(), deleted.Promoted.ID())

	n, err := w.projects.CountLatest(w.ctx, v1.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	promoted, err := w.projects.FindByID(w.ctx, v1.ID())
	require.NoError(t, err)
	assert.True(t, promoted.IsLatestVersion())
	assert.Equal(t, domain.VersionActive, promoted.VersionState())
	assert.Contains(t, w.actions(t, v1.ID()), activityDomain.ActionPromoted)

	_, err = w.projects.FindByID(w.ctx, v2.ID())
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestCancelAndReactivate_RoundTrip(t *testing.T) {
	w := newWorld(t)
	p := w.create(t, domain.ProjectTypeStandard)
	w.force(t, p.ID(), domain.StatusPendingProduction)

	_, err := NewSetHoldHandler(w.pipeline).Handle(w.ctx, SetHoldCommand{Meta: adminMeta(), ProjectID: p.ID(), OnHold: true, Reason: "supplier"})
	require.NoError(t, err)

	res, err := NewCancelProjectHandler(w.pipeline).Handle(w.ctx, CancelProjectCommand{Meta: adminMeta(), ProjectID: p.ID(), Reason: "client withdrew"})
	require.NoError(t, err)
	assert.True(t, res.Project.IsCancelled())

	_, err = NewCancelProjectHandler(w.pipeline).Handle(w.ctx, CancelProjectCommand{Meta: adminMeta(), ProjectID: p.ID()})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	res, err = NewReactivateProjectHandler(w.pipeline).Handle(w.ctx, ReactivateProjectCommand{Meta: adminMeta(), ProjectID: p.ID()})
	require.NoError(t, err)
	assert.False(t, res.Project.IsCancelled())
	assert.Equal(t, domain.StatusOnHold, res.Project.Status())
	assert.True(t, res.Project.IsOnHold())
	assert.Equal(t, "supplier", res.Project.Hold().Reason)
}

func TestOutboxReceivesEveryEvent(t *testing.T) {
	w := newWorld(t)
	p := w.create(t, domain.ProjectTypeQuote)

	_, err := NewTransitionStatusHandler(w.pipeline).Handle(w.ctx, TransitionStatusCommand{
		Meta: adminMeta(), ProjectID: p.ID(), Status: domain.StatusPendingQuoteRequest,
	})
	require.NoError(t, err)

	msgs, err := w.outbox.GetUnpublished(w.ctx, 10)
	require.NoError(t, err)
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = m.RoutingKey
	}
	assert.Equal(t, []string{domain.RoutingKeyCreated, domain.RoutingKeyStatusChanged}, keys)
}
