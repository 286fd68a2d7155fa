package project

import (
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/projects/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/spf13/cobra"
)

var listStatuses []string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	Long: `List the latest revision of every job, optionally filtered by status.

Examples:
  jobflow project list
  jobflow project list --status "Pending Production" --status "Pending Mockup"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ListProjectsHandler == nil {
			return errNotInitialized
		}

		query := queries.ListProjectsQuery{}
		for _, raw := range listStatuses {
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return err
			}
			query.Statuses = append(query.Statuses, status)
		}

		projects, err := app.ListProjectsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d project(s):\n\n", len(projects))
		for _, p := range projects {
			flags := ""
			if p.OnHold {
				flags += " [hold]"
			}
			if p.Cancelled {
				flags += " [cancelled]"
			}
			fmt.Fprintf(out, "%-12s %s (v%d) [%s]%s\n", p.OrderNumber, p.Name, p.VersionNumber, p.Status, flags)
			fmt.Fprintf(out, "   ID: %s\n", p.ID)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringArrayVarP(&listStatuses, "status", "s", nil, "filter by status (repeatable)")
}
