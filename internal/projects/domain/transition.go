package domain

import (
	"fmt"
	"time"
)

// departmentRule grants one department the completion of one stage.
type departmentRule struct {
	department Department
	from       Status
	to         Status
}

var departmentRules = []departmentRule{
	{DepartmentGraphics, StatusPendingMockup, StatusMockupCompleted},
	{DepartmentProduction, StatusPendingProduction, StatusProductionCompleted},
	{DepartmentPhotography, StatusPendingPhotography, StatusPhotographyCompleted},
	{DepartmentStores, StatusPendingPackaging, StatusPackagingCompleted},
	{DepartmentFrontDesk, StatusPendingDeliveryPickup, StatusDelivered},
	{DepartmentFrontDesk, StatusPendingFeedback, StatusFeedbackCompleted},
	{DepartmentFrontDesk, StatusPendingSendResponse, StatusResponseSent},
}

// qualityGates maps admin-portal-only completions to their required predecessor.
var qualityGates = map[Status]Status{
	StatusProofReadingCompleted:   StatusPendingProofReading,
	StatusQualityControlCompleted: StatusPendingQualityControl,
}

// TransitionOptions tunes a transition request.
type TransitionOptions struct {
	// AllowBillingOverride skips the billing gate. Honoured for admins only.
	AllowBillingOverride bool
}

// TransitionOutcome describes what a transition did. Exactly one of
// Block or To is meaningful: a blocked request leaves the status unchanged.
type TransitionOutcome struct {
	From       Status
	Requested  Status
	To         Status
	Block      *GateBlock
	NewBlock   bool
	Overridden []Requirement
}

// Applied reports whether the status changed.
func (o TransitionOutcome) Applied() bool { return o.Block == nil }

// Transition moves the project to requested, applying authorization, gates,
// the billing override and auto-advancement.
func (p *Project) Transition(actor Actor, requested Status, opts TransitionOptions, now time.Time) (TransitionOutcome, error) {
	outcome := TransitionOutcome{From: p.status, Requested: requested}

	if p.cancellation.IsCancelled {
		return outcome, ErrProjectFrozen
	}
	if p.hold.IsOnHold {
		return outcome, ErrProjectOnHold
	}
	if err := p.authorizeTransition(actor, requested); err != nil {
		return outcome, err
	}
	if !requested.ValidFor(p.projectType) {
		return outcome, fmt.Errorf("%w: %q is not a %s status", ErrInvalidStateTransition, requested, p.projectType)
	}
	if requested == StatusOnHold {
		return outcome, fmt.Errorf("%w: use the hold overlay to put a project on hold", ErrInvalidStateTransition)
	}
	if requested == p.status {
		return outcome, fmt.Errorf("%w: project is already %s", ErrInvalidStateTransition, requested)
	}

	override := opts.AllowBillingOverride && actor.IsAdmin()
	if block := evaluateGates(p, requested, override); block != nil {
		outcome.Block = block
		outcome.NewBlock = p.watchBlock(block, actor, requested, now)
		if outcome.NewBlock {
			p.touch(now)
		}
		return outcome, nil
	}
	if override {
		if target, ok := billingTarget(requested); ok {
			outcome.Overridden = BillingRequirements(p, target)
		}
	}

	to := AutoAdvance(requested)
	p.status = to
	p.dropWatches(requested, to)
	p.touch(now)

	outcome.To = to
	p.AddDomainEvent(NewStatusChanged(p, actor.ID, outcome.From, requested, to, now))
	if len(outcome.Overridden) > 0 {
		p.AddDomainEvent(NewBillingOverrideUsed(p, actor.ID, requested, outcome.Overridden, now))
	}
	return outcome, nil
}

// authorizeTransition applies the permission rules in order; the first
// matching rule decides.
func (p *Project) authorizeTransition(actor Actor, requested Status) error {
	if predecessor, ok := qualityGates[requested]; ok {
		if !actor.viaAdminPortal() {
			return fmt.Errorf("%w: %s requires an admin on the admin portal", ErrUnauthorized, requested)
		}
		if actor.ID == p.leadID {
			return fmt.Errorf("%w: the project lead cannot sign off %s", ErrUnauthorized, requested)
		}
		if p.status != predecessor {
			return fmt.Errorf("%w: %s requires %s, project is %s", ErrInvalidStateTransition, requested, predecessor, p.status)
		}
		return nil
	}

	if actor.IsAdmin() {
		if actor.ID == p.leadID && actor.Origin == OriginAdminPortal {
			return fmt.Errorf("%w: the project lead cannot change status from the admin portal", ErrUnauthorized)
		}
		return nil
	}

	var mismatched *departmentRule
	for i, rule := range departmentRules {
		if rule.to != requested || !actor.InDepartment(rule.department) {
			continue
		}
		if p.status == rule.from {
			return nil
		}
		mismatched = &departmentRules[i]
	}
	if mismatched != nil {
		return fmt.Errorf("%w: %s requires %s, project is %s", ErrInvalidStateTransition, requested, mismatched.from, p.status)
	}

	if actor.ID == p.leadID && p.status == StatusCompleted && requested == StatusFinished {
		return nil
	}
	return fmt.Errorf("%w: %s may not move project to %s", ErrUnauthorized, actor.Role, requested)
}
