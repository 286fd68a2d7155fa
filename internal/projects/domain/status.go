package domain

import (
	"fmt"
	"slices"
)

// Status is the pipeline stage of a project.
type Status string

// Standard, Emergency and Corporate Job workflow.
const (
	StatusOrderConfirmed                  Status = "Order Confirmed"
	StatusPendingScopeApproval            Status = "Pending Scope Approval"
	StatusScopeApprovalCompleted          Status = "Scope Approval Completed"
	StatusPendingDepartmentalEngagement   Status = "Pending Departmental Engagement"
	StatusDepartmentalEngagementCompleted Status = "Departmental Engagement Completed"
	StatusPendingMockup                   Status = "Pending Mockup"
	StatusMockupCompleted                 Status = "Mockup Completed"
	StatusPendingProofReading             Status = "Pending Proof Reading"
	StatusProofReadingCompleted           Status = "Proof Reading Completed"
	StatusPendingProduction               Status = "Pending Production"
	StatusProductionCompleted             Status = "Production Completed"
	StatusPendingQualityControl           Status = "Pending Quality Control"
	StatusQualityControlCompleted         Status = "Quality Control Completed"
	StatusPendingPhotography              Status = "Pending Photography"
	StatusPhotographyCompleted            Status = "Photography Completed"
	StatusPendingPackaging                Status = "Pending Packaging"
	StatusPackagingCompleted              Status = "Packaging Completed"
	StatusPendingDeliveryPickup           Status = "Pending Delivery/Pickup"
	StatusDelivered                       Status = "Delivered"
	StatusPendingFeedback                 Status = "Pending Feedback"
	StatusFeedbackCompleted               Status = "Feedback Completed"
)

// Quote workflow.
const (
	StatusQuoteCreated          Status = "Quote Created"
	StatusPendingQuoteRequest   Status = "Pending Quote Request"
	StatusQuoteRequestCompleted Status = "Quote Request Completed"
	StatusPendingSendResponse   Status = "Pending Send Response"
	StatusResponseSent          Status = "Response Sent"
)

// Shared by both workflows.
const (
	StatusCompleted  Status = "Completed"
	StatusFinished   Status = "Finished"
	StatusOnHold     Status = "On Hold"
	StatusInProgress Status = "In Progress"
)

var (
	standardWorkflow = []Status{
		StatusOrderConfirmed,
		StatusPendingScopeApproval,
		StatusScopeApprovalCompleted,
		StatusPendingDepartmentalEngagement,
		StatusDepartmentalEngagementCompleted,
		StatusPendingMockup,
		StatusMockupCompleted,
		StatusPendingProofReading,
		StatusProofReadingCompleted,
		StatusPendingProduction,
		StatusProductionCompleted,
		StatusPendingQualityControl,
		StatusQualityControlCompleted,
		StatusPendingPhotography,
		StatusPhotographyCompleted,
		StatusPendingPackaging,
		StatusPackagingCompleted,
		StatusPendingDeliveryPickup,
		StatusDelivered,
		StatusPendingFeedback,
		StatusFeedbackCompleted,
	}
	quoteWorkflow = []Status{
		StatusQuoteCreated,
		StatusPendingQuoteRequest,
		StatusQuoteRequestCompleted,
		StatusPendingSendResponse,
		StatusResponseSent,
	}
	commonStatuses = []Status{StatusCompleted, StatusFinished, StatusOnHold, StatusInProgress}

	// autoAdvance maps a completed stage to the queue it feeds.
	autoAdvance = map[Status]Status{
		StatusScopeApprovalCompleted:          StatusPendingDepartmentalEngagement,
		StatusDepartmentalEngagementCompleted: StatusPendingMockup,
		StatusMockupCompleted:                 StatusPendingProofReading,
		StatusProofReadingCompleted:           StatusPendingProduction,
		StatusProductionCompleted:             StatusPendingQualityControl,
		StatusQualityControlCompleted:         StatusPendingPhotography,
		StatusPhotographyCompleted:            StatusPendingPackaging,
		StatusPackagingCompleted:              StatusPendingDeliveryPickup,
		StatusDelivered:                       StatusPendingFeedback,
		StatusFeedbackCompleted:               StatusCompleted,
		StatusQuoteRequestCompleted:           StatusPendingSendResponse,
		StatusResponseSent:                    StatusCompleted,
	}

	workflowOf = map[Status]workflow{}
)

type workflow int

const (
	workflowCommon workflow = iota
	workflowStandard
	workflowQuote
)

func init() {
	for _, s := range standardWorkflow {
		workflowOf[s] = workflowStandard
	}
	for _, s := range quoteWorkflow {
		workflowOf[s] = workflowQuote
	}
	for _, s := range commonStatuses {
		workflowOf[s] = workflowCommon
	}
	for from, to := range autoAdvance {
		if _, ok := workflowOf[from]; !ok {
			panic(fmt.Sprintf("auto-advance source %q is not a status", from))
		}
		if _, ok := workflowOf[to]; !ok {
			panic(fmt.Sprintf("auto-advance target %q is not a status", to))
		}
	}
}

// String returns the display form of the status.
func (s Status) String() string { return string(s) }

// IsValid reports whether s is a known status of any workflow.
func (s Status) IsValid() bool {
	_, ok := workflowOf[s]
	return ok
}

// ValidFor reports whether s belongs to the workflow of projectType.
func (s Status) ValidFor(projectType ProjectType) bool {
	wf, ok := workflowOf[s]
	if !ok {
		return false
	}
	switch wf {
	case workflowQuote:
		return projectType.IsQuote()
	case workflowStandard:
		return !projectType.IsQuote()
	default:
		return true
	}
}

// IsTerminal reports whether a project in s may be reopened.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusDelivered, StatusFeedbackCompleted, StatusFinished:
		return true
	}
	return false
}

// AutoAdvance returns the stage a completion lands on, or s itself.
func AutoAdvance(s Status) Status {
	if next, ok := autoAdvance[s]; ok {
		return next
	}
	return s
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStateTransition, raw)
	}
	return s, nil
}

// Statuses lists every status of the workflow used by projectType, in order.
func Statuses(projectType ProjectType) []Status {
	flow := standardWorkflow
	if projectType.IsQuote() {
		flow = quoteWorkflow
	}
	return append(slices.Clone(flow), commonStatuses...)
}

// AllStatuses lists the statuses of every workflow.
func AllStatuses() []Status {
	return slices.Concat(standardWorkflow, quoteWorkflow, commonStatuses)
}

// ProjectType selects the workflow a project follows.
type ProjectType string

const (
	ProjectTypeStandard     ProjectType = "Standard"
	ProjectTypeEmergency    ProjectType = "Emergency"
	ProjectTypeQuote        ProjectType = "Quote"
	ProjectTypeCorporateJob ProjectType = "Corporate Job"
)

// IsValid reports whether t is a known project type.
func (t ProjectType) IsValid() bool {
	switch t {
	case ProjectTypeStandard, ProjectTypeEmergency, ProjectTypeQuote, ProjectTypeCorporateJob:
		return true
	}
	return false
}

// IsQuote reports whether t follows the quote workflow.
func (t ProjectType) IsQuote() bool { return t == ProjectTypeQuote }

// InitialStatus is the status a freshly created project starts in.
func InitialStatus(t ProjectType) Status {
	if t.IsQuote() {
		return StatusQuoteCreated
	}
	return StatusOrderConfirmed
}

// ReopenStatus is the first post-intake stage a reopened revision starts in.
func ReopenStatus(t ProjectType) Status {
	if t.IsQuote() {
		return StatusPendingQuoteRequest
	}
	return StatusPendingScopeApproval
}
