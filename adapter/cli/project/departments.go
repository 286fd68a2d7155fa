package project

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/jobflow/internal/projects/application/commands"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/spf13/cobra"
)

var (
	feedbackType     string
	feedbackNotes    string
	emergencyEnabled bool
)

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "Manage engaged departments",
}

var departmentsSetCmd = &cobra.Command{
	Use:   "set [project-id] [department...]",
	Short: "Replace the engaged departments",
	Long: `Replace the departments engaged on a job. Aliases such as "Graphic
Design" or "Front Office" are accepted.

Examples:
  jobflow project departments set <id> graphics production "front desk"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.SetDepartmentsHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ProjectMeta(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}
		departments, err := app.CanonicalDepartments(args[1:])
		if err != nil {
			return err
		}

		result, err := app.SetDepartmentsHandler.Handle(cmd.Context(), commands.SetDepartmentsCommand{
			Meta:        meta,
			ProjectID:   projectID,
			Departments: departments,
		})
		if err != nil {
			return fmt.Errorf("failed to set departments: %w", err)
		}

		out := cmd.OutOrStdout()
		names := make([]string, len(departments))
		for i, d := range departments {
			names[i] = string(d)
		}
		fmt.Fprintf(out, "Departments: %s\n", strings.Join(names, ", "))
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var departmentsAckCmd = &cobra.Command{
	Use:   "ack [project-id] [department]",
	Short: "Acknowledge engagement on behalf of a department",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.AcknowledgeDepartmentHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ProjectMeta(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}
		departments, err := app.CanonicalDepartments(args[1:])
		if err != nil {
			return err
		}

		result, err := app.AcknowledgeDepartmentHandler.Handle(cmd.Context(), commands.AcknowledgeDepartmentCommand{
			Meta:       meta,
			ProjectID:  projectID,
			Department: departments[0],
		})
		if err != nil {
			return fmt.Errorf("failed to acknowledge: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s acknowledged. Status: %s\n", departments[0], result.Project.Status())
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback [project-id]",
	Short: "Record client feedback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.AddFeedbackHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ProjectMeta(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}

		result, err := app.AddFeedbackHandler.Handle(cmd.Context(), commands.AddFeedbackCommand{
			Meta:      meta,
			ProjectID: projectID,
			Type:      domain.FeedbackType(feedbackType),
			Notes:     feedbackNotes,
		})
		if err != nil {
			return fmt.Errorf("failed to record feedback: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Feedback recorded. Status: %s\n", result.Project.Status())
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var emergencyCmd = &cobra.Command{
	Use:   "emergency [project-id]",
	Short: "Toggle the corporate emergency flag",
	Long: `Admin only. A corporate job flagged as an emergency may enter
production before billing is complete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.SetCorporateEmergencyHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ProjectMeta(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}

		result, err := app.SetCorporateEmergencyHandler.Handle(cmd.Context(), commands.SetCorporateEmergencyCommand{
			Meta:      meta,
			ProjectID: projectID,
			Enabled:   emergencyEnabled,
		})
		if err != nil {
			return fmt.Errorf("failed to update emergency flag: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Corporate emergency: %t\n", emergencyEnabled)
		printDispatch(out, result.Dispatch)
		return nil
	},
}

func init() {
	departmentsCmd.AddCommand(departmentsSetCmd)
	departmentsCmd.AddCommand(departmentsAckCmd)

	feedbackCmd.Flags().StringVarP(&feedbackType, "type", "t", string(domain.FeedbackPositive), "positive or negative")
	feedbackCmd.Flags().StringVar(&feedbackNotes, "notes", "", "feedback notes")
	emergencyCmd.Flags().BoolVar(&emergencyEnabled, "enabled", true, "set or clear the flag")
}
