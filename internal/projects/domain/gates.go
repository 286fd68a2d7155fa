package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Requirement is a named prerequisite a gate found missing.
type Requirement string

const (
	RequirementInvoice                 Requirement = "invoice"
	RequirementPaymentAny              Requirement = "payment_verification_any"
	RequirementPaymentFullOrAuthorized Requirement = "payment_full_or_authorized"
	RequirementMockupUploaded          Requirement = "mockup_uploaded"
	RequirementMockupApproval          Requirement = "mockup_client_approval"
	RequirementSampleApproval          Requirement = "sample_approval"
)

// AcknowledgementRequirement names the missing acknowledgement of d.
func AcknowledgementRequirement(d Department) Requirement {
	return Requirement("acknowledgement:" + string(d))
}

// Gate identifies one gate evaluator.
type Gate string

const (
	GateBilling         Gate = "billing_gate"
	GateMockup          Gate = "mockup_gate"
	GateSample          Gate = "sample_gate"
	GateAcknowledgement Gate = "acknowledgement_gate"
)

// GateBlock is the structured refusal of a transition. It is a result,
// not an error.
type GateBlock struct {
	Code         Gate          `json:"code"`
	TargetStatus Status        `json:"target_status"`
	Missing      []Requirement `json:"missing"`
	Message      string        `json:"message"`
}

// GateWatch remembers a block so that its clearing can be announced once.
type GateWatch struct {
	Gate         Gate          `json:"gate"`
	TargetStatus Status        `json:"target_status"`
	Missing      []Requirement `json:"missing"`
	BlockedAt    time.Time     `json:"blocked_at"`
}

// BillingRequirements returns what target still needs from billing.
// Quote projects are never billing gated.
func BillingRequirements(p *Project, target Status) []Requirement {
	if p.projectType.IsQuote() {
		return nil
	}
	var missing []Requirement
	switch target {
	case StatusPendingProduction:
		if !p.invoice.Sent {
			missing = append(missing, RequirementInvoice)
		}
		if len(p.payments) == 0 {
			missing = append(missing, RequirementPaymentAny)
		}
	case StatusPendingDeliveryPickup:
		if !p.hasPayment(PaymentFull) && !p.hasPayment(PaymentAuthorized) {
			missing = append(missing, RequirementPaymentFullOrAuthorized)
		}
	}
	return missing
}

// MockupRequirements returns what Mockup Completed still needs.
func MockupRequirements(p *Project) []Requirement {
	latest := p.mockup.Latest()
	if latest == nil {
		return []Requirement{RequirementMockupUploaded, RequirementMockupApproval}
	}
	if latest.ClientApproval.Status != ApprovalApproved {
		return []Requirement{RequirementMockupApproval}
	}
	return nil
}

// SampleRequirements returns what Production Completed still needs.
func SampleRequirements(p *Project) []Requirement {
	if p.sampleRequired && p.sampleApproval.Status != ApprovalApproved {
		return []Requirement{RequirementSampleApproval}
	}
	return nil
}

// AcknowledgementRequirements lists engaged departments that have not
// acknowledged, in engagement order.
func AcknowledgementRequirements(p *Project) []Requirement {
	var missing []Requirement
	for _, d := range p.departments {
		if !p.acknowledged(d) {
			missing = append(missing, AcknowledgementRequirement(d))
		}
	}
	return missing
}

func gateRequirements(p *Project, gate Gate, target Status) []Requirement {
	switch gate {
	case GateBilling:
		return BillingRequirements(p, target)
	case GateMockup:
		return MockupRequirements(p)
	case GateSample:
		return SampleRequirements(p)
	case GateAcknowledgement:
		return AcknowledgementRequirements(p)
	}
	return nil
}

// billingTarget reports whether the landing status of requested is billing gated.
func billingTarget(requested Status) (Status, bool) {
	target := AutoAdvance(requested)
	return target, target == StatusPendingProduction || target == StatusPendingDeliveryPickup
}

// EvaluateGates runs the gates for requested in order and returns the first
// block, or nil when the transition may proceed.
func EvaluateGates(p *Project, requested Status) *GateBlock {
	return evaluateGates(p, requested, false)
}

func evaluateGates(p *Project, requested Status, skipBilling bool) *GateBlock {
	switch requested {
	case StatusMockupCompleted:
		if missing := MockupRequirements(p); len(missing) > 0 {
			return p.newBlock(GateMockup, requested, missing)
		}
	case StatusProductionCompleted:
		if missing := SampleRequirements(p); len(missing) > 0 {
			return p.newBlock(GateSample, requested, missing)
		}
	case StatusDepartmentalEngagementCompleted:
		if missing := AcknowledgementRequirements(p); len(missing) > 0 {
			return p.newBlock(GateAcknowledgement, requested, missing)
		}
	}
	if skipBilling {
		return nil
	}
	if target, ok := billingTarget(requested); ok {
		if missing := BillingRequirements(p, target); len(missing) > 0 {
			return p.newBlock(GateBilling, target, missing)
		}
	}
	return nil
}

// MissingRequirements flattens every requirement still missing for
// requested. It is the read-only pre-flight used before offering a transition.
func MissingRequirements(p *Project, requested Status) []Requirement {
	var missing []Requirement
	switch requested {
	case StatusMockupCompleted:
		missing = append(missing, MockupRequirements(p)...)
	case StatusProductionCompleted:
		missing = append(missing, SampleRequirements(p)...)
	case StatusDepartmentalEngagementCompleted:
		missing = append(missing, AcknowledgementRequirements(p)...)
	}
	if target, ok := billingTarget(requested); ok {
		missing = append(missing, BillingRequirements(p, target)...)
	}
	return missing
}

func (p *Project) newBlock(gate Gate, target Status, missing []Requirement) *GateBlock {
	return &GateBlock{
		Code:         gate,
		TargetStatus: target,
		Missing:      missing,
		Message:      p.blockMessage(gate, target, missing),
	}
}

func (p *Project) blockMessage(gate Gate, target Status, missing []Requirement) string {
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = string(m)
	}
	msg := fmt.Sprintf("cannot move to %s: missing %s", target, strings.Join(names, ", "))
	if gate == GateMockup {
		if latest := p.mockup.Latest(); latest != nil && latest.ClientApproval.Status == ApprovalRejected {
			msg += fmt.Sprintf(" (client rejected mockup v%d", latest.Version)
			if reason := latest.ClientApproval.RejectionReason; reason != "" {
				msg += ": " + reason
			}
			msg += ")"
		}
	}
	return msg
}

// watchBlock records block and emits TransitionBlocked when the watch is
// new or its missing set changed.
func (p *Project) watchBlock(block *GateBlock, actor Actor, requested Status, now time.Time) bool {
	for i, w := range p.gateWatches {
		if w.Gate == block.Code && w.TargetStatus == block.TargetStatus {
			if slices.Equal(w.Missing, block.Missing) {
				return false
			}
			p.gateWatches[i].Missing = slices.Clone(block.Missing)
			p.AddDomainEvent(NewTransitionBlocked(p, actor.ID, requested, block, now))
			return true
		}
	}
	p.gateWatches = append(p.gateWatches, GateWatch{
		Gate:         block.Code,
		TargetStatus: block.TargetStatus,
		Missing:      slices.Clone(block.Missing),
		BlockedAt:    now.UTC(),
	})
	p.AddDomainEvent(NewTransitionBlocked(p, actor.ID, requested, block, now))
	return true
}

// refreshWatches re-evaluates every watch; a watch whose requirements are
// all satisfied emits GateCleared and is dropped.
func (p *Project) refreshWatches(actorID uuid.UUID, now time.Time) []GateWatch {
	var cleared []GateWatch
	kept := p.gateWatches[:0]
	for _, w := range p.gateWatches {
		missing := gateRequirements(p, w.Gate, w.TargetStatus)
		if len(missing) == 0 {
			cleared = append(cleared, w)
			continue
		}
		w.Missing = missing
		kept = append(kept, w)
	}
	p.gateWatches = kept
	for _, w := range cleared {
		p.AddDomainEvent(NewGateCleared(p, actorID, w, now))
	}
	return cleared
}

// dropWatches silently forgets watches for statuses just reached.
func (p *Project) dropWatches(reached ...Status) {
	p.gateWatches = slices.DeleteFunc(p.gateWatches, func(w GateWatch) bool {
		return slices.Contains(reached, w.TargetStatus)
	})
}
