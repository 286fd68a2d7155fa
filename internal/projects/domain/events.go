package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Project"

// Routing keys published through the outbox.
const (
	RoutingKeyCreated             = "projects.project.created"
	RoutingKeyStatusChanged       = "projects.project.status_changed"
	RoutingKeyTransitionBlocked   = "projects.project.transition_blocked"
	RoutingKeyGateCleared         = "projects.project.gate_cleared"
	RoutingKeyBillingOverrideUsed = "projects.project.billing_override_used"
	RoutingKeyHeld                = "projects.project.held"
	RoutingKeyReleased            = "projects.project.released"
	RoutingKeyCancelled           = "projects.project.cancelled"
	RoutingKeyReactivated         = "projects.project.reactivated"
	RoutingKeyReopened            = "projects.project.reopened"
	RoutingKeySuperseded          = "projects.project.superseded"
	RoutingKeyPromoted            = "projects.project.promoted"
	RoutingKeyDeleted             = "projects.project.deleted"
	RoutingKeyUpdated             = "projects.project.updated"
)

func baseEvent(p *Project, routingKey string, now time.Time) sharedDomain.BaseEvent {
	return sharedDomain.NewBaseEventAt(p.ID(), aggregateType, routingKey, now)
}

// ProjectCreated is emitted when a project is taken in.
type ProjectCreated struct {
	sharedDomain.BaseEvent
	ProjectID   uuid.UUID   `json:"project_id"`
	OrderNumber string      `json:"order_number"`
	Name        string      `json:"name"`
	Type        ProjectType `json:"type"`
	Status      Status      `json:"status"`
	CreatedBy   uuid.UUID   `json:"created_by"`
}

// NewProjectCreated creates a ProjectCreated event.
func NewProjectCreated(p *Project, actorID uuid.UUID, now time.Time) *ProjectCreated {
	return &ProjectCreated{
		BaseEvent:   baseEvent(p, RoutingKeyCreated, now),
		ProjectID:   p.ID(),
		OrderNumber: p.orderNumber,
		Name:        p.name,
		Type:        p.projectType,
		Status:      p.status,
		CreatedBy:   actorID,
	}
}

// StatusChanged is emitted after a successful transition.
type StatusChanged struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID `json:"project_id"`
	From      Status    `json:"from"`
	Requested Status    `json:"requested"`
	To        Status    `json:"to"`
	ChangedBy uuid.UUID `json:"changed_by"`
}

// NewStatusChanged creates a StatusChanged event.
func NewStatusChanged(p *Project, actorID uuid.UUID, from, requested, to Status, now time.Time) *StatusChanged {
	return &StatusChanged{
		BaseEvent: baseEvent(p, RoutingKeyStatusChanged, now),
		ProjectID: p.ID(),
		From:      from,
		Requested: requested,
		To:        to,
		ChangedBy: actorID,
	}
}

// TransitionBlocked is emitted when a gate starts blocking a target or
// its missing set changes.
type TransitionBlocked struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID     `json:"project_id"`
	Requested    Status        `json:"requested"`
	Gate         Gate          `json:"gate"`
	TargetStatus Status        `json:"target_status"`
	Missing      []Requirement `json:"missing"`
	Message      string        `json:"message"`
	RequestedBy  uuid.UUID     `json:"requested_by"`
}

// NewTransitionBlocked creates a TransitionBlocked event.
func NewTransitionBlocked(p *Project, actorID uuid.UUID, requested Status, block *GateBlock, now time.Time) *TransitionBlocked {
	return &TransitionBlocked{
		BaseEvent:    baseEvent(p, RoutingKeyTransitionBlocked, now),
		ProjectID:    p.ID(),
		Requested:    requested,
		Gate:         block.Code,
		TargetStatus: block.TargetStatus,
		Missing:      block.Missing,
		Message:      block.Message,
		RequestedBy:  actorID,
	}
}

// GateCleared is emitted once when a previously blocking gate is satisfied.
type GateCleared struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID `json:"project_id"`
	Gate         Gate      `json:"gate"`
	TargetStatus Status    `json:"target_status"`
	BlockedAt    time.Time `json:"blocked_at"`
	ClearedBy    uuid.UUID `json:"cleared_by"`
}

// NewGateCleared creates a GateCleared event.
func NewGateCleared(p *Project, actorID uuid.UUID, w GateWatch, now time.Time) *GateCleared {
	return &GateCleared{
		BaseEvent:    baseEvent(p, RoutingKeyGateCleared, now),
		ProjectID:    p.ID(),
		Gate:         w.Gate,
		TargetStatus: w.TargetStatus,
		BlockedAt:    w.BlockedAt,
		ClearedBy:    actorID,
	}
}

// BillingOverrideUsed is emitted when an admin bypasses the billing gate.
type BillingOverrideUsed struct {
	sharedDomain.BaseEvent
	ProjectID  uuid.UUID     `json:"project_id"`
	Requested  Status        `json:"requested"`
	Overridden []Requirement `json:"overridden"`
	AdminID    uuid.UUID     `json:"admin_id"`
}

// NewBillingOverrideUsed creates a BillingOverrideUsed event.
func NewBillingOverrideUsed(p *Project, actorID uuid.UUID, requested Status, overridden []Requirement, now time.Time) *BillingOverrideUsed {
	return &BillingOverrideUsed{
		BaseEvent:  baseEvent(p, RoutingKeyBillingOverrideUsed, now),
		ProjectID:  p.ID(),
		Requested:  requested,
		Overridden: overridden,
		AdminID:    actorID,
	}
}

// ProjectHeld is emitted when a project is put on hold or its hold reason changes.
type ProjectHeld struct {
	sharedDomain.BaseEvent
	ProjectID      uuid.UUID `json:"project_id"`
	Reason         string    `json:"reason"`
	PreviousStatus Status    `json:"previous_status"`
	ReasonOnly     bool      `json:"reason_only"`
	HeldBy         uuid.UUID `json:"held_by"`
}

// NewProjectHeld creates a ProjectHeld event.
func NewProjectHeld(p *Project, actorID uuid.UUID, reasonOnly bool, now time.Time) *ProjectHeld {
	return &ProjectHeld{
		BaseEvent:      baseEvent(p, RoutingKeyHeld, now),
		ProjectID:      p.ID(),
		Reason:         p.hold.Reason,
		PreviousStatus: p.hold.PreviousStatus,
		ReasonOnly:     reasonOnly,
		HeldBy:         actorID,
	}
}

// ProjectReleased is emitted when a hold is lifted.
type ProjectReleased struct {
	sharedDomain.BaseEvent
	ProjectID  uuid.UUID `json:"project_id"`
	Status     Status    `json:"status"`
	ReleasedBy uuid.UUID `json:"released_by"`
}

// NewProjectReleased creates a ProjectReleased event.
func NewProjectReleased(p *Project, actorID uuid.UUID, now time.Time) *ProjectReleased {
	return &ProjectReleased{
		BaseEvent:  baseEvent(p, RoutingKeyReleased, now),
		ProjectID:  p.ID(),
		Status:     p.status,
		ReleasedBy: actorID,
	}
}

// ProjectCancelled is emitted when a project is cancelled.
type ProjectCancelled struct {
	sharedDomain.BaseEvent
	ProjectID   uuid.UUID `json:"project_id"`
	Reason      string    `json:"reason"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
}

// NewProjectCancelled creates a ProjectCancelled event.
func NewProjectCancelled(p *Project, actorID uuid.UUID, now time.Time) *ProjectCancelled {
	return &ProjectCancelled{
		BaseEvent:   baseEvent(p, RoutingKeyCancelled, now),
		ProjectID:   p.ID(),
		Reason:      p.cancellation.Reason,
		CancelledBy: actorID,
	}
}

// ProjectReactivated is emitted when a cancellation is lifted.
type ProjectReactivated struct {
	sharedDomain.BaseEvent
	ProjectID     uuid.UUID `json:"project_id"`
	Status        Status    `json:"status"`
	ReactivatedBy uuid.UUID `json:"reactivated_by"`
}

// NewProjectReactivated creates a ProjectReactivated event.
func NewProjectReactivated(p *Project, actorID uuid.UUID, now time.Time) *ProjectReactivated {
	return &ProjectReactivated{
		BaseEvent:     baseEvent(p, RoutingKeyReactivated, now),
		ProjectID:     p.ID(),
		Status:        p.status,
		ReactivatedBy: actorID,
	}
}

// ProjectReopened is emitted on the new revision created by a reopen.
type ProjectReopened struct {
	sharedDomain.BaseEvent
	ProjectID       uuid.UUID `json:"project_id"`
	LineageID       uuid.UUID `json:"lineage_id"`
	ParentProjectID uuid.UUID `json:"parent_project_id"`
	VersionNumber   int       `json:"version_number"`
	Status          Status    `json:"status"`
	Reason          string    `json:"reason"`
	ReopenedBy      uuid.UUID `json:"reopened_by"`
}

// NewProjectReopened creates a ProjectReopened event.
func NewProjectReopened(p *Project, actorID uuid.UUID, now time.Time) *ProjectReopened {
	return &ProjectReopened{
		BaseEvent:       baseEvent(p, RoutingKeyReopened, now),
		ProjectID:       p.ID(),
		LineageID:       p.lineageID,
		ParentProjectID: p.parentProjectID,
		VersionNumber:   p.versionNumber,
		Status:          p.status,
		Reason:          p.reopenReason,
		ReopenedBy:      actorID,
	}
}

// ProjectSuperseded is emitted on the source revision of a reopen.
type ProjectSuperseded struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID `json:"project_id"`
	LineageID    uuid.UUID `json:"lineage_id"`
	SupersededBy uuid.UUID `json:"superseded_by"`
	ActorID      uuid.UUID `json:"actor_id"`
}

// NewProjectSuperseded creates a ProjectSuperseded event.
func NewProjectSuperseded(p *Project, actorID, successorID uuid.UUID, now time.Time) *ProjectSuperseded {
	return &ProjectSuperseded{
		BaseEvent:    baseEvent(p, RoutingKeySuperseded, now),
		ProjectID:    p.ID(),
		LineageID:    p.lineageID,
		SupersededBy: successorID,
		ActorID:      actorID,
	}
}

// ProjectPromoted is emitted when a revision becomes latest after a delete.
type ProjectPromoted struct {
	sharedDomain.BaseEvent
	ProjectID     uuid.UUID `json:"project_id"`
	LineageID     uuid.UUID `json:"lineage_id"`
	VersionNumber int       `json:"version_number"`
	PromotedBy    uuid.UUID `json:"promoted_by"`
}

// NewProjectPromoted creates a ProjectPromoted event.
func NewProjectPromoted(p *Project, actorID uuid.UUID, now time.Time) *ProjectPromoted {
	return &ProjectPromoted{
		BaseEvent:     baseEvent(p, RoutingKeyPromoted, now),
		ProjectID:     p.ID(),
		LineageID:     p.lineageID,
		VersionNumber: p.versionNumber,
		PromotedBy:    actorID,
	}
}

// ProjectDeleted is emitted when an admin deletes a revision.
type ProjectDeleted struct {
	sharedDomain.BaseEvent
	ProjectID     uuid.UUID `json:"project_id"`
	LineageID     uuid.UUID `json:"lineage_id"`
	VersionNumber int       `json:"version_number"`
	WasLatest     bool      `json:"was_latest"`
	DeletedBy     uuid.UUID `json:"deleted_by"`
}

// NewProjectDeleted creates a ProjectDeleted event.
func NewProjectDeleted(p *Project, actorID uuid.UUID, now time.Time) *ProjectDeleted {
	return &ProjectDeleted{
		BaseEvent:     baseEvent(p, RoutingKeyDeleted, now),
		ProjectID:     p.ID(),
		LineageID:     p.lineageID,
		VersionNumber: p.versionNumber,
		WasLatest:     p.isLatest,
		DeletedBy:     actorID,
	}
}

// ProjectUpdated is emitted for billing, mockup, sample, engagement and
// feedback changes.
type ProjectUpdated struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID      `json:"project_id"`
	Change    Change         `json:"change"`
	Details   map[string]any `json:"details,omitempty"`
	UpdatedBy uuid.UUID      `json:"updated_by"`
}

// NewProjectUpdated creates a ProjectUpdated event.
func NewProjectUpdated(p *Project, actorID uuid.UUID, change Change, details map[string]any, now time.Time) *ProjectUpdated {
	return &ProjectUpdated{
		BaseEvent: baseEvent(p, RoutingKeyUpdated, now),
		ProjectID: p.ID(),
		Change:    change,
		Details:   details,
		UpdatedBy: actorID,
	}
}
