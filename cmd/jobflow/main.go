package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/jobflow/adapter/cli"
	"github.com/felixgeelhaar/jobflow/adapter/cli/project"
	"github.com/felixgeelhaar/jobflow/adapter/cli/reminder"
	"github.com/felixgeelhaar/jobflow/internal/app"
	"github.com/felixgeelhaar/jobflow/pkg/config"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{AppEnv: "development", DatabaseDriver: "sqlite", LocalMode: true}
	}

	// The CLI logs to stderr and stays quiet unless asked.
	logCfg := observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, "jobflow-cli")
	logCfg.Output = os.Stderr
	if os.Getenv("LOG_LEVEL") == "" {
		logCfg.Level = "warn"
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// version and help still work without a database
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		if cfg.OutboxProcessorEnabled {
			_ = container.OutboxProcessor.Start(ctx)
		}
		cliApp = cli.NewApp(container)
	}
	cli.SetApp(cliApp)

	cli.AddCommand(project.Cmd)
	cli.AddCommand(reminder.Cmd)

	cli.Execute(ctx)
}
