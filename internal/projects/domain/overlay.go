package domain

import (
	"fmt"
	"time"
)

// HoldChange reports what SetHold did.
type HoldChange string

const (
	HoldEntered       HoldChange = "entered"
	HoldReasonUpdated HoldChange = "reason_updated"
	HoldReleased      HoldChange = "released"
)

func authorizeOverlay(actor Actor) error {
	if !actor.viaAdminPortal() {
		return fmt.Errorf("%w: hold and cancel are admin portal actions", ErrUnauthorized)
	}
	return nil
}

// SetHold enters, updates or releases the hold overlay. On release the
// project returns to releaseStatus when it is valid for the project type,
// to In Progress when an invalid releaseStatus was supplied, and to the
// status held before otherwise.
func (p *Project) SetHold(actor Actor, onHold bool, reason, releaseStatus string, now time.Time) (HoldChange, error) {
	if err := authorizeOverlay(actor); err != nil {
		return "", err
	}
	if p.cancellation.IsCancelled {
		return "", ErrProjectFrozen
	}
	at := now.UTC()

	switch {
	case onHold && p.hold.IsOnHold:
		p.hold.Reason = reason
		p.touch(now)
		p.AddDomainEvent(NewProjectHeld(p, actor.ID, true, now))
		return HoldReasonUpdated, nil

	case onHold:
		p.hold = Hold{
			IsOnHold:       true,
			Reason:         reason,
			HeldAt:         &at,
			HeldBy:         actor.ID,
			PreviousStatus: p.status,
		}
		p.status = StatusOnHold
		p.touch(now)
		p.AddDomainEvent(NewProjectHeld(p, actor.ID, false, now))
		return HoldEntered, nil

	case !p.hold.IsOnHold:
		return "", fmt.Errorf("%w: project is not on hold", ErrInvalidStateTransition)
	}

	p.status = p.releaseTarget(releaseStatus)
	p.hold.IsOnHold = false
	p.hold.ReleasedAt = &at
	p.hold.ReleasedBy = actor.ID
	p.touch(now)
	p.AddDomainEvent(NewProjectReleased(p, actor.ID, now))
	return HoldReleased, nil
}

func (p *Project) releaseTarget(releaseStatus string) Status {
	if releaseStatus != "" {
		s := Status(releaseStatus)
		if s.ValidFor(p.projectType) && s != StatusOnHold {
			return s
		}
		return StatusInProgress
	}
	if p.hold.PreviousStatus != "" && p.hold.PreviousStatus != StatusOnHold {
		return p.hold.PreviousStatus
	}
	return StatusInProgress
}

// Cancel freezes the project, remembering its status and hold document.
func (p *Project) Cancel(actor Actor, reason string, now time.Time) error {
	if err := authorizeOverlay(actor); err != nil {
		return err
	}
	if p.cancellation.IsCancelled {
		return fmt.Errorf("%w: project is already cancelled", ErrInvalidStateTransition)
	}
	at := now.UTC()
	p.cancellation = Cancellation{
		IsCancelled:      true,
		Reason:           reason,
		CancelledAt:      &at,
		CancelledBy:      actor.ID,
		ResumedStatus:    p.status,
		ResumedHoldState: p.hold,
	}
	p.touch(now)
	p.AddDomainEvent(NewProjectCancelled(p, actor.ID, now))
	return nil
}

// Reactivate lifts a cancellation and restores status and hold verbatim.
func (p *Project) Reactivate(actor Actor, now time.Time) error {
	if err := authorizeOverlay(actor); err != nil {
		return err
	}
	if !p.cancellation.IsCancelled {
		return fmt.Errorf("%w: project is not cancelled", ErrInvalidStateTransition)
	}
	at := now.UTC()
	if p.cancellation.ResumedStatus != "" {
		p.status = p.cancellation.ResumedStatus
	}
	p.hold = p.cancellation.ResumedHoldState
	p.cancellation.IsCancelled = false
	p.cancellation.ReactivatedAt = &at
	p.cancellation.ReactivatedBy = actor.ID
	p.touch(now)
	p.AddDomainEvent(NewProjectReactivated(p, actor.ID, now))
	return nil
}
