package reminder

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/reminders/application/commands"
	"github.com/felixgeelhaar/jobflow/internal/reminders/application/queries"
	reminderDomain "github.com/felixgeelhaar/jobflow/internal/reminders/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	createMessage    string
	createProject    string
	createAt         string
	createIn         time.Duration
	createWatch      string
	createDelay      int
	createRepeat     string
	createChannel    string
	createRecipients []string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Schedule a reminder",
	Long: `Schedule a reminder. Give --at or --in for a fixed time, or --watch
with --project to fire a delay after the job reaches a status.

Examples:
  jobflow reminder create "Call client about proof" --in 2h
  jobflow reminder create "Weekly billing review" --at 2026-11-02T09:00:00Z --repeat weekly
  jobflow reminder create "Chase QC" --project <id> --watch "Pending Quality Control" --delay 120`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.CreateReminderHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ReminderMeta(cmd)
		if err != nil {
			return err
		}

		command := commands.CreateReminderCommand{
			Meta:         meta,
			Title:        args[0],
			Message:      createMessage,
			Repeat:       reminderDomain.Repeat(createRepeat),
			Channel:      domain.Channel(createChannel),
			DelayMinutes: createDelay,
		}
		if createProject != "" {
			if command.ProjectID, err = uuid.Parse(createProject); err != nil {
				return fmt.Errorf("invalid --project: %w", err)
			}
		}

		switch {
		case createWatch != "":
			command.TriggerMode = reminderDomain.TriggerStage
			command.WatchStatus = createWatch
		case createAt != "":
			at, err := time.Parse(time.RFC3339, createAt)
			if err != nil {
				return fmt.Errorf("invalid --at, expected RFC 3339: %w", err)
			}
			command.TriggerMode = reminderDomain.TriggerAbsolute
			command.RemindAt = at
		case createIn > 0:
			command.TriggerMode = reminderDomain.TriggerAbsolute
			command.RemindAt = time.Now().Add(createIn)
		default:
			return fmt.Errorf("one of --at, --in or --watch is required")
		}

		for _, raw := range createRecipients {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid recipient %q: %w", raw, err)
			}
			command.Recipients = append(command.Recipients, id)
		}
		if len(command.Recipients) == 0 {
			command.Recipients = []uuid.UUID{meta.ActorID}
		}

		r, err := app.CreateReminderHandler.Handle(cmd.Context(), command)
		if err != nil {
			return fmt.Errorf("failed to create reminder: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Reminder scheduled.")
		printReminder(out, queries.NewReminderDTO(r))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createMessage, "message", "m", "", "reminder body")
	createCmd.Flags().StringVarP(&createProject, "project", "p", "", "related project ID")
	createCmd.Flags().StringVar(&createAt, "at", "", "fire time (RFC 3339)")
	createCmd.Flags().DurationVar(&createIn, "in", 0, "fire after this long")
	createCmd.Flags().StringVar(&createWatch, "watch", "", "fire after the project reaches this status")
	createCmd.Flags().IntVar(&createDelay, "delay", 0, "minutes to wait after the watched status is reached")
	createCmd.Flags().StringVar(&createRepeat, "repeat", string(reminderDomain.RepeatNone), "none, daily, weekly or monthly")
	createCmd.Flags().StringVar(&createChannel, "channel", string(domain.ChannelInApp), "in_app or email")
	createCmd.Flags().StringSliceVarP(&createRecipients, "to", "r", nil, "recipient user IDs (defaults to the acting user)")
}
