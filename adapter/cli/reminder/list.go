package reminder

import (
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/reminders/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	listProject string
	listUser    string
	listAll     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminders",
	Long: `List reminders addressed to a user (the acting user by default) or
attached to a project.

Examples:
  jobflow reminder list
  jobflow reminder list --all
  jobflow reminder list --project <id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ListRemindersHandler == nil {
			return errNotInitialized
		}

		query := queries.ListRemindersQuery{
			RecipientID:     app.CurrentActor.ID,
			IncludeFinished: listAll,
		}
		if listUser != "" {
			if query.RecipientID, err = uuid.Parse(listUser); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}
		if listProject != "" {
			if query.ProjectID, err = uuid.Parse(listProject); err != nil {
				return fmt.Errorf("invalid --project: %w", err)
			}
		}
		if query.RecipientID == uuid.Nil && query.ProjectID == uuid.Nil {
			return fmt.Errorf("pass --user, --project or --actor")
		}

		reminders, err := app.ListRemindersHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list reminders: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(reminders) == 0 {
			fmt.Fprintln(out, "No reminders found.")
			return nil
		}
		fmt.Fprintf(out, "Found %d reminder(s):\n\n", len(reminders))
		for _, r := range reminders {
			printReminder(out, r)
			fmt.Fprintln(out)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [reminder-id]",
	Short: "Show a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.GetReminderHandler == nil {
			return errNotInitialized
		}
		id, err := parseReminderID(args[0])
		if err != nil {
			return err
		}

		r, err := app.GetReminderHandler.Handle(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get reminder: %w", err)
		}
		printReminder(cmd.OutOrStdout(), r)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listProject, "project", "p", "", "list reminders attached to a project")
	listCmd.Flags().StringVar(&listUser, "user", "", "list reminders addressed to this user")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed and cancelled reminders")
}
