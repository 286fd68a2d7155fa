package reminder

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/jobflow/adapter/cli"
	"github.com/felixgeelhaar/jobflow/internal/reminders/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errNotInitialized = errors.New("application not initialized - database connection required")

// Cmd is the reminder command group
var Cmd = &cobra.Command{
	Use:   "reminder",
	Short: "Schedule and manage reminders",
	Long: `Schedule reminders at a fixed time or relative to a job reaching a
status, and mark them done per recipient.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(sweepCmd)
}

func getApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil {
		return nil, errNotInitialized
	}
	return app, nil
}

func parseReminderID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid reminder ID: %w", err)
	}
	return id, nil
}

func printReminder(out io.Writer, r queries.ReminderDTO) {
	fmt.Fprintf(out, "%s  [%s]\n", r.Title, r.Status)
	fmt.Fprintf(out, "   ID:      %s\n", r.ID)
	if r.Message != "" {
		fmt.Fprintf(out, "   Message: %s\n", r.Message)
	}
	if r.ProjectID != nil {
		fmt.Fprintf(out, "   Project: %s\n", *r.ProjectID)
	}
	switch {
	case r.WatchStatus != "" && r.NextTriggerAt == nil:
		fmt.Fprintf(out, "   Trigger: %d min after %q\n", r.DelayMinutes, r.WatchStatus)
	case r.NextTriggerAt != nil:
		fmt.Fprintf(out, "   Next:    %s\n", r.NextTriggerAt.Local().Format(time.RFC1123))
	}
	if r.Repeat != "none" {
		fmt.Fprintf(out, "   Repeat:  %s\n", r.Repeat)
	}
	fmt.Fprintf(out, "   Channel: %s, fired %d time(s)\n", r.Channel, r.FireCount)
	if r.LastError != "" {
		fmt.Fprintf(out, "   Last error: %s\n", r.LastError)
	}
	for _, rc := range r.Recipients {
		done := "pending"
		if rc.CompletedAt != nil {
			done = "done"
		}
		fmt.Fprintf(out, "   - %s %s\n", rc.UserID, done)
	}
}
