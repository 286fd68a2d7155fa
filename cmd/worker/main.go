package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/app"
	"github.com/felixgeelhaar/jobflow/internal/reminders/infrastructure/wake"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/jobflow/pkg/config"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

// wakeQueueName is one durable queue shared by every worker. The broker
// hands each status event to a single worker, and that worker's sweep
// covers every due reminder, so one wake per event is enough.
const wakeQueueName = "jobflow.reminders.wake"

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.DefaultLogConfig()).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, "jobflow-worker"))
	logger.Info("starting jobflow worker")

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if cfg.OutboxProcessorEnabled {
		if err := container.OutboxProcessor.Start(ctx); err != nil {
			logger.Error("failed to start outbox processor", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("outbox processor disabled")
	}

	if cfg.ReminderSchedulerEnabled {
		if err := container.Scheduler.Start(ctx); err != nil {
			logger.Error("failed to start reminder scheduler", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("reminder scheduler disabled")
	}

	if container.WakeListener != nil {
		go func() {
			if err := container.WakeListener.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("wake listener stopped", "error", err)
			}
		}()
	}

	// Status changes made by other processes reach one worker through the
	// shared queue, which sweeps early instead of waiting for its poll.
	if cfg.RabbitMQURL != "" {
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:       cfg.RabbitMQURL,
			QueueName: wakeQueueName,
			Logger:    logger,
		})
		if err != nil {
			if cfg.IsProduction() {
				logger.Error("failed to connect RabbitMQ consumer", "error", err)
				os.Exit(1)
			}
			logger.Warn("RabbitMQ consumer unavailable, relying on polling", "error", err)
		} else {
			defer consumer.Close()
			consumer.RegisterConsumer(wake.NewStatusConsumer(container.Scheduler))
			go func() {
				if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
					logger.Error("RabbitMQ consumer stopped", "error", err)
				}
			}()
		}
	}

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/healthz", container.Health.Handler(2*time.Second))
		mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"outbox":    container.OutboxProcessor.GetStats(),
				"scheduler": container.Scheduler.GetStats(),
				"counters":  container.Metrics.Snapshot(),
			})
		})

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	statsInterval := cfg.StatsInterval
	if statsInterval <= 0 {
		statsInterval = 30 * time.Second
	}
	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-statsTicker.C:
				outboxStats := container.OutboxProcessor.GetStats()
				logger.Info("outbox stats",
					"running", outboxStats.IsRunning,
					"published", outboxStats.PublishedCount,
					"failed", outboxStats.FailedCount,
					"dead", outboxStats.DeadCount,
					"lag_seconds", outboxStats.LagSeconds,
				)
				schedStats := container.Scheduler.GetStats()
				logger.Info("reminder scheduler stats",
					"running", schedStats.IsRunning,
					"sweeps", schedStats.Sweeps,
					"fired", schedStats.Fired,
					"errored", schedStats.Errored,
					"reclaimed", schedStats.Reclaimed,
					"next_wake_at", schedStats.NextWakeAt,
					"last_error", schedStats.LastError,
				)
			}
		}
	}()

	<-ctx.Done()
	logger.Info("worker stopped")
}
