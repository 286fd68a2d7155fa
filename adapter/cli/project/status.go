package project

import (
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/projects/application/commands"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/spf13/cobra"
)

var (
	transitionOverride bool
	holdReason         string
	releaseStatus      string
	cancelReason       string
	reopenReason       string
)

var transitionCmd = &cobra.Command{
	Use:   "transition [project-id] [status]",
	Short: "Move a job to another status",
	Long: `Request a status change. A blocked gate is reported, not treated as an
error: the job stays where it is and the team is told what is missing.

Examples:
  jobflow project transition <id> "Pending Mockup"
  jobflow project transition <id> "Pending Production" --override-billing`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.TransitionStatusHandler == nil {
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
		status, err := domain.ParseStatus(args[1])
		if err != nil {
			return err
		}

		result, err := app.TransitionStatusHandler.Handle(cmd.Context(), commands.TransitionStatusCommand{
			Meta:                 meta,
			ProjectID:            projectID,
			Status:               status,
			AllowBillingOverride: transitionOverride,
		})
		if err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}

		out := cmd.OutOrStdout()
		if result.Block != nil {
			printBlock(out, result.Block)
		} else {
			fmt.Fprintf(out, "Moved from %s to %s.\n", result.Outcome.From, result.Outcome.To)
			for _, r := range result.Outcome.Overridden {
				fmt.Fprintf(out, "   billing override: %s\n", r)
			}
		}
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var holdCmd = &cobra.Command{
	Use:   "hold [project-id]",
	Short: "Put a job on hold",
	Long: `Put a job on hold, or update the reason of an existing hold.

Examples:
  jobflow project hold <id> --reason "waiting on client artwork"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetHold(cmd, args[0], true)
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release [project-id]",
	Short: "Release a job from hold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetHold(cmd, args[0], false)
	},
}

func runSetHold(cmd *cobra.Command, rawID string, onHold bool) error {
	app, err := getApp()
	if err != nil || app.SetHoldHandler == nil {
		return errNotInitialized
	}
	meta, err := app.ProjectMeta(cmd)
	if err != nil {
		return err
	}
	projectID, err := parseProjectID(rawID)
	if err != nil {
		return err
	}

	command := commands.SetHoldCommand{Meta: meta, ProjectID: projectID, OnHold: onHold}
	if onHold {
		command.Reason = holdReason
	} else {
		command.ReleaseStatus = releaseStatus
	}
	result, err := app.SetHoldHandler.Handle(cmd.Context(), command)
	if err != nil {
		return fmt.Errorf("failed to update hold: %w", err)
	}

	out := cmd.OutOrStdout()
	switch result.Change {
	case domain.HoldEntered:
		fmt.Fprintln(out, "Project placed on hold.")
	case domain.HoldReasonUpdated:
		fmt.Fprintln(out, "Hold reason updated.")
	case domain.HoldReleased:
		fmt.Fprintf(out, "Project released at %s.\n", result.Project.Status())
	default:
		fmt.Fprintln(out, "No change.")
	}
	printDispatch(out, result.Dispatch)
	return nil
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [project-id]",
	Short: "Cancel a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.CancelProjectHandler == nil {
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

		result, err := app.CancelProjectHandler.Handle(cmd.Context(), commands.CancelProjectCommand{
			Meta:      meta,
			ProjectID: projectID,
			Reason:    cancelReason,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel project: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Project cancelled.")
		printDispatch(cmd.OutOrStdout(), result.Dispatch)
		return nil
	},
}

var reactivateCmd = &cobra.Command{
	Use:   "reactivate [project-id]",
	Short: "Reactivate a cancelled job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ReactivateProjectHandler == nil {
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

		result, err := app.ReactivateProjectHandler.Handle(cmd.Context(), commands.ReactivateProjectCommand{
			Meta:      meta,
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to reactivate project: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Project reactivated at %s.\n", result.Project.Status())
		printDispatch(cmd.OutOrStdout(), result.Dispatch)
		return nil
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen [project-id]",
	Short: "Open a new revision of a closed job",
	Long: `Create the next revision of a job. The source revision is frozen and
the new one restarts at the first post-intake stage.

Examples:
  jobflow project reopen <id> --reason "client requested a reprint"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ReopenProjectHandler == nil {
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

		result, err := app.ReopenProjectHandler.Handle(cmd.Context(), commands.ReopenProjectCommand{
			Meta:      meta,
			ProjectID: projectID,
			Reason:    reopenReason,
		})
		if err != nil {
			return fmt.Errorf("failed to reopen project: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Revision v%d opened.\n", result.Project.VersionNumber())
		printProject(out, queries.NewProjectDTO(result.Project))
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a job revision",
	Long: `Permanently delete a revision. Deleting the latest revision promotes
the previous one back to latest.

Examples:
  jobflow project delete <id>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.DeleteProjectHandler == nil {
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

		result, err := app.DeleteProjectHandler.Handle(cmd.Context(), commands.DeleteProjectCommand{
			Meta:      meta,
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Project deleted successfully.")
		if result.Promoted != nil {
			fmt.Fprintf(out, "Revision v%d is now the latest (%s).\n", result.Promoted.VersionNumber(), result.Promoted.ID())
		}
		return nil
	},
}

func init() {
	transitionCmd.Flags().BoolVar(&transitionOverride, "override-billing", false, "admin only: bypass the billing gate")
	holdCmd.Flags().StringVarP(&holdReason, "reason", "r", "", "why the job is on hold")
	releaseCmd.Flags().StringVar(&releaseStatus, "status", "", "status to release into (defaults to the status before the hold)")
	cancelCmd.Flags().StringVarP(&cancelReason, "reason", "r", "", "cancellation reason")
	reopenCmd.Flags().StringVarP(&reopenReason, "reason", "r", "", "why the job is being reopened")
}
