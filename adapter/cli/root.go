package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	actorID     string
	actorRole   string
	actorOrigin string
	actorDepts  []string
	logger      *slog.Logger
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jobflow",
	Short: "Jobflow - print shop project lifecycle engine",
	Long: `Jobflow tracks print shop jobs from order confirmation to delivery.

It enforces the stage workflow, billing and approval gates, department
hand-offs and project revisions, and schedules reminders for the team.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.Info("command start",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
		)

		if app := GetApp(); app != nil && actorID != "" {
			id, err := uuid.Parse(actorID)
			if err != nil {
				return fmt.Errorf("invalid --actor: %w", err)
			}
			actor, err := app.ResolveActor(id, actorRole, actorOrigin, actorDepts)
			if err != nil {
				return err
			}
			app.SetCurrentActor(actor)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Info("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", os.Getenv("JOBFLOW_ACTOR_ID"), "acting user ID (defaults to $JOBFLOW_ACTOR_ID)")
	rootCmd.PersistentFlags().StringVar(&actorRole, "role", "", "acting role: admin or staff (defaults from the directory)")
	rootCmd.PersistentFlags().StringVar(&actorOrigin, "origin", "", "request origin: admin_portal, engaged_portal or lead_portal")
	rootCmd.PersistentFlags().StringSliceVar(&actorDepts, "department", nil, "acting departments (defaults from the directory)")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// CorrelationID returns the ID assigned to the running command, or an
// empty string outside a command invocation.
func CorrelationID(cmd *cobra.Command) string {
	if cmd.Context() == nil {
		return ""
	}
	info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
	if !ok {
		return ""
	}
	return info.correlationID.String()
}
