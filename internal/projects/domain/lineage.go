package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
)

// Reopen forks the next revision of a closed project. The receiver is
// demoted to superseded; the returned project is the new latest revision
// with fresh workflow sub-documents.
func (p *Project) Reopen(actor Actor, reason string, now time.Time) (*Project, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can reopen projects", ErrUnauthorized)
	}
	if p.cancellation.IsCancelled {
		return nil, ErrProjectFrozen
	}
	if !p.isLatest {
		return nil, fmt.Errorf("%w: version %d is not the latest, reopen the latest version instead", ErrLineageConflict, p.versionNumber)
	}
	if !p.status.IsTerminal() {
		return nil, fmt.Errorf("%w: only closed projects can be reopened, project is %s", ErrInvalidStateTransition, p.status)
	}

	lineageID := p.lineageID
	if lineageID == uuid.Nil {
		lineageID = p.ID()
	}
	next := &Project{
		BaseAggregateRoot:  sharedDomain.NewBaseAggregateRootAt(uuid.New(), now),
		orderNumber:        p.orderNumber,
		name:               p.name,
		projectType:        p.projectType,
		leadID:             p.leadID,
		assistantID:        p.assistantID,
		status:             ReopenStatus(p.projectType),
		departments:        slices.Clone(p.departments),
		mockup:             Mockup{ClientApproval: ClientApproval{Status: ApprovalPending}},
		sampleRequired:     p.sampleRequired,
		sampleApproval:     SampleApproval{Status: ApprovalPending},
		corporateEmergency: p.corporateEmergency,
		lineageID:          lineageID,
		parentProjectID:    p.ID(),
		versionNumber:      p.versionNumber + 1,
		isLatest:           true,
		versionState:       VersionActive,
		reopenReason:       strings.TrimSpace(reason),
	}

	p.lineageID = lineageID
	p.isLatest = false
	p.versionState = VersionSuperseded
	p.touch(now)

	p.AddDomainEvent(NewProjectSuperseded(p, actor.ID, next.ID(), now))
	next.AddDomainEvent(NewProjectReopened(next, actor.ID, now))
	return next, nil
}

// PromoteToLatest makes this revision the latest of its lineage again.
func (p *Project) PromoteToLatest(actorID uuid.UUID, now time.Time) {
	if p.isLatest {
		return
	}
	p.isLatest = true
	p.versionState = VersionActive
	p.touch(now)
	p.AddDomainEvent(NewProjectPromoted(p, actorID, now))
}

// MarkDeleted authorizes deletion and records the event.
func (p *Project) MarkDeleted(actor Actor, now time.Time) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete projects", ErrUnauthorized)
	}
	p.AddDomainEvent(NewProjectDeleted(p, actor.ID, now))
	return nil
}
