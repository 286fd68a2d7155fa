package project

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/jobflow/adapter/cli"
	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errNotInitialized = errors.New("application not initialized - database connection required")

// Cmd is the project command group
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Manage print jobs",
	Long:  `Create jobs, move them through the workflow, and manage billing, approvals and revisions.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(lineageCmd)
	Cmd.AddCommand(activityCmd)
	Cmd.AddCommand(gatesCmd)
	Cmd.AddCommand(transitionCmd)
	Cmd.AddCommand(holdCmd)
	Cmd.AddCommand(releaseCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(reactivateCmd)
	Cmd.AddCommand(reopenCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(invoiceCmd)
	Cmd.AddCommand(paymentCmd)
	Cmd.AddCommand(mockupCmd)
	Cmd.AddCommand(sampleCmd)
	Cmd.AddCommand(departmentsCmd)
	Cmd.AddCommand(feedbackCmd)
	Cmd.AddCommand(emergencyCmd)
}

func parseProjectID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project ID: %w", err)
	}
	return id, nil
}

func parseOptionalID(raw, flag string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return id, nil
}

func printProject(out io.Writer, p queries.ProjectDTO) {
	fmt.Fprintf(out, "%s  %s\n", p.OrderNumber, p.Name)
	fmt.Fprintf(out, "   ID:       %s\n", p.ID)
	fmt.Fprintf(out, "   Type:     %s\n", p.Type)
	status := p.Status
	if p.OnHold {
		status += " (on hold"
		if p.HoldReason != "" {
			status += ": " + p.HoldReason
		}
		status += ")"
	}
	if p.Cancelled {
		status += " (cancelled)"
	}
	fmt.Fprintf(out, "   Status:   %s\n", status)
	fmt.Fprintf(out, "   Revision: v%d (%s)\n", p.VersionNumber, p.VersionState)
	if len(p.Departments) > 0 {
		fmt.Fprintf(out, "   Departments: %s\n", strings.Join(p.Departments, ", "))
	}
	if len(p.Acknowledged) > 0 {
		fmt.Fprintf(out, "   Acknowledged: %s\n", strings.Join(p.Acknowledged, ", "))
	}
	if p.MockupVersion > 0 {
		fmt.Fprintf(out, "   Mockup:   v%d %s\n", p.MockupVersion, p.MockupApproval)
	}
	if p.SampleRequired {
		fmt.Fprintf(out, "   Sample:   required, approved=%t\n", p.SampleApproved)
	}
	fmt.Fprintf(out, "   Invoice sent: %t\n", p.InvoiceSent)
	if len(p.Payments) > 0 {
		fmt.Fprintf(out, "   Payments: %s\n", strings.Join(p.Payments, ", "))
	}
	if p.CorporateEmergency {
		fmt.Fprintln(out, "   Corporate emergency")
	}
}

func printBlock(out io.Writer, block *domain.GateBlock) {
	fmt.Fprintf(out, "Blocked by %s before %s\n", block.Code, block.TargetStatus)
	fmt.Fprintf(out, "   %s\n", block.Message)
	for _, m := range block.Missing {
		fmt.Fprintf(out, "   missing: %s\n", m)
	}
}

// printDispatch reports notification failures. They never undo the
// committed change.
func printDispatch(out io.Writer, report notifApp.Report) {
	if report.Sent > 0 {
		fmt.Fprintf(out, "Notified %d recipient(s).\n", report.Sent)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(out, "Warning: %s notification to %s failed: %v\n", f.Notification.Type, f.Notification.RecipientID, f.Err)
	}
}

func getApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil {
		return nil, errNotInitialized
	}
	return app, nil
}
