package services

import (
	"fmt"
	"time"

	activityDomain "github.com/felixgeelhaar/jobflow/internal/activity/domain"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
)

// ActivityEntries maps project events to audit entries. Events without an
// audit meaning are skipped.
func ActivityEntries(actorID uuid.UUID, events []sharedDomain.DomainEvent, now time.Time) []*activityDomain.Entry {
	var entries []*activityDomain.Entry
	add := func(projectID uuid.UUID, action activityDomain.Action, desc string, details map[string]any) {
		entries = append(entries, activityDomain.NewEntry(projectID, actorID, action, desc, details, now))
	}

	for _, event := range events {
		switch e := event.(type) {
		case *domain.ProjectCreated:
			add(e.ProjectID, activityDomain.ActionCreated,
				fmt.Sprintf("Project %s created in %s", e.OrderNumber, e.Status),
				map[string]any{"type": string(e.Type), "status": string(e.Status)})
		case *domain.StatusChanged:
			details := map[string]any{"from": string(e.From), "to": string(e.To)}
			if e.Requested != e.To {
				details["requested"] = string(e.Requested)
			}
			add(e.ProjectID, activityDomain.ActionStatusChanged,
				fmt.Sprintf("Status changed from %s to %s", e.From, e.To), details)
		case *domain.TransitionBlocked:
			add(e.ProjectID, activityDomain.ActionTransitionBlocked, e.Message, map[string]any{
				"gate":          string(e.Gate),
				"target_status": string(e.TargetStatus),
				"missing":       requirementStrings(e.Missing),
			})
		case *domain.GateCleared:
			add(e.ProjectID, activityDomain.ActionGateCleared,
				fmt.Sprintf("%s cleared for %s", e.Gate, e.TargetStatus),
				map[string]any{"gate": string(e.Gate), "target_status": string(e.TargetStatus)})
		case *domain.BillingOverrideUsed:
			add(e.ProjectID, activityDomain.ActionBillingOverride,
				fmt.Sprintf("Billing requirements overridden for %s", e.Requested),
				map[string]any{"requested": string(e.Requested), "overridden": requirementStrings(e.Overridden)})
		case *domain.ProjectHeld:
			desc := "Project put on hold"
			if e.ReasonOnly {
				desc = "Hold reason updated"
			}
			add(e.ProjectID, activityDomain.ActionHoldSet, desc, map[string]any{
				"reason":          e.Reason,
				"previous_status": string(e.PreviousStatus),
			})
		case *domain.ProjectReleased:
			add(e.ProjectID, activityDomain.ActionHoldReleased,
				fmt.Sprintf("Hold released to %s", e.Status), map[string]any{"status": string(e.Status)})
		case *domain.ProjectCancelled:
			add(e.ProjectID, activityDomain.ActionCancelled, "Project cancelled", map[string]any{"reason": e.Reason})
		case *domain.ProjectReactivated:
			add(e.ProjectID, activityDomain.ActionReactivated,
				fmt.Sprintf("Project reactivated in %s", e.Status), map[string]any{"status": string(e.Status)})
		case *domain.ProjectReopened:
			add(e.ProjectID, activityDomain.ActionReopened,
				fmt.Sprintf("Reopened as version %d", e.VersionNumber), map[string]any{
					"parent_project_id": e.ParentProjectID.String(),
					"version_number":    e.VersionNumber,
					"reason":            e.Reason,
				})
		case *domain.ProjectSuperseded:
			add(e.ProjectID, activityDomain.ActionSuperseded, "Superseded by a newer version",
				map[string]any{"superseded_by": e.SupersededBy.String()})
		case *domain.ProjectPromoted:
			add(e.ProjectID, activityDomain.ActionPromoted,
				fmt.Sprintf("Version %d promoted to latest", e.VersionNumber),
				map[string]any{"version_number": e.VersionNumber})
		case *domain.ProjectDeleted:
			add(e.ProjectID, activityDomain.ActionDeleted,
				fmt.Sprintf("Version %d deleted", e.VersionNumber),
				map[string]any{"version_number": e.VersionNumber, "was_latest": e.WasLatest})
		case *domain.ProjectUpdated:
			add(e.ProjectID, activityDomain.Action(e.Change), changeDescription(e.Change), e.Details)
		}
	}
	return entries
}

func changeDescription(c domain.Change) string {
	switch c {
	case domain.ChangeInvoiceSent:
		return "Invoice sent"
	case domain.ChangePaymentVerified:
		return "Payment verified"
	case domain.ChangeMockupUploaded:
		return "Mockup uploaded"
	case domain.ChangeMockupApproved:
		return "Mockup approved"
	case domain.ChangeMockupRejected:
		return "Mockup rejected"
	case domain.ChangeSampleRequirementSet:
		return "Sample requirement changed"
	case domain.ChangeSampleApproved:
		return "Sample approved"
	case domain.ChangeDepartmentsSet:
		return "Engaged departments changed"
	case domain.ChangeDepartmentAcknowledged:
		return "Department acknowledged"
	case domain.ChangeFeedbackAdded:
		return "Feedback recorded"
	case domain.ChangeCorporateEmergencySet:
		return "Corporate emergency flag changed"
	}
	return string(c)
}

func requirementStrings(reqs []domain.Requirement) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = string(r)
	}
	return out
}
