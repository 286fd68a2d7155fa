package reminder

import (
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/reminders/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var completeFor string

var cancelCmd = &cobra.Command{
	Use:   "cancel [reminder-id]",
	Short: "Cancel a reminder",
	Long:  `Cancel a scheduled reminder. Only its creator or an admin may cancel it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.CancelReminderHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ReminderMeta(cmd)
		if err != nil {
			return err
		}
		id, err := parseReminderID(args[0])
		if err != nil {
			return err
		}

		if _, err := app.CancelReminderHandler.Handle(cmd.Context(), commands.CancelReminderCommand{
			Meta:       meta,
			ReminderID: id,
		}); err != nil {
			return fmt.Errorf("failed to cancel reminder: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Reminder cancelled.")
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [reminder-id]",
	Short: "Mark a reminder done",
	Long: `Mark a reminder done for the acting user. Admins may complete it on
behalf of another recipient with --for.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.CompleteReminderHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ReminderMeta(cmd)
		if err != nil {
			return err
		}
		id, err := parseReminderID(args[0])
		if err != nil {
			return err
		}
		command := commands.CompleteReminderCommand{Meta: meta, ReminderID: id}
		if completeFor != "" {
			if command.RecipientID, err = uuid.Parse(completeFor); err != nil {
				return fmt.Errorf("invalid --for: %w", err)
			}
		}

		r, err := app.CompleteReminderHandler.Handle(cmd.Context(), command)
		if err != nil {
			return fmt.Errorf("failed to complete reminder: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Marked done.")
		if pending := len(r.PendingRecipients()); pending > 0 {
			fmt.Fprintf(out, "%d recipient(s) still pending.\n", pending)
		} else {
			fmt.Fprintf(out, "Reminder is %s.\n", r.Status())
		}
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one scheduler pass now",
	Long: `Activate stage-based reminders whose status was reached, fire every due
reminder and release expired claims, then exit. Useful from cron when the
worker is not running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.Scheduler == nil {
			return errNotInitialized
		}

		result, err := app.Scheduler.SweepOnce(cmd.Context())
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Activated %d, fired %d, errored %d, reclaimed %d.\n",
			result.Activated, result.Fired, result.Errored, result.Reclaimed)
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVar(&completeFor, "for", "", "admin only: recipient to complete for")
}
