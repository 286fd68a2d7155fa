package project

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/jobflow/internal/projects/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/spf13/cobra"
)

var (
	activityLimit int
	gatesStatus   string
)

var showCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.GetProjectHandler == nil {
			return errNotInitialized
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}

		project, err := app.GetProjectHandler.Handle(cmd.Context(), queries.GetProjectQuery{ProjectID: projectID})
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		out := cmd.OutOrStdout()
		printProject(out, *project)
		for _, w := range project.Watches {
			fmt.Fprintf(out, "   Waiting on %s for %s: %s\n", w.Gate, w.TargetStatus, joinRequirements(w.Missing))
		}
		return nil
	},
}

var lineageCmd = &cobra.Command{
	Use:   "lineage [project-id]",
	Short: "List every revision of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ListLineageHandler == nil {
			return errNotInitialized
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}

		revisions, err := app.ListLineageHandler.Handle(cmd.Context(), queries.ListLineageQuery{ProjectID: projectID})
		if err != nil {
			return fmt.Errorf("failed to list revisions: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, r := range revisions {
			marker := " "
			if r.IsLatestVersion {
				marker = "*"
			}
			fmt.Fprintf(out, "%s v%d  %-10s [%s]  %s\n", marker, r.VersionNumber, r.VersionState, r.Status, r.ID)
		}
		return nil
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity [project-id]",
	Short: "Show a job's audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ListActivityHandler == nil {
			return errNotInitialized
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}

		entries, err := app.ListActivityHandler.Handle(cmd.Context(), queries.ListActivityQuery{
			ProjectID: projectID,
			Limit:     activityLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list activity: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No activity recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-22s %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Action, e.Description)
		}
		return nil
	},
}

var gatesCmd = &cobra.Command{
	Use:   "gates [project-id]",
	Short: "Check what would block a transition",
	Long: `Evaluate the billing and approval gates for a target status without
changing the job.

Examples:
  jobflow project gates <id> --status "Pending Production"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.EvaluateGatesHandler == nil {
			return errNotInitialized
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}
		status, err := domain.ParseStatus(gatesStatus)
		if err != nil {
			return err
		}

		report, err := app.EvaluateGatesHandler.Handle(cmd.Context(), queries.EvaluateGatesQuery{
			ProjectID: projectID,
			Status:    status,
		})
		if err != nil {
			return fmt.Errorf("failed to evaluate gates: %w", err)
		}

		out := cmd.OutOrStdout()
		if report.Block == nil {
			fmt.Fprintf(out, "Clear to move to %s.\n", report.Target)
			return nil
		}
		printBlock(out, report.Block)
		return nil
	},
}

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 50, "maximum entries to show")
	gatesCmd.Flags().StringVarP(&gatesStatus, "status", "s", "", "target status (required)")
	_ = gatesCmd.MarkFlagRequired("status")
}

func joinRequirements(reqs []domain.Requirement) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
