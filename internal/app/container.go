// Package app wires jobflow's repositories, handlers and background
// workers from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	activityPersistence "github.com/felixgeelhaar/jobflow/internal/activity/infrastructure/persistence"
	notifApp "github.com/felixgeelhaar/jobflow/internal/notifications/application"
	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/notifications/infrastructure/senders"
	projectCommands "github.com/felixgeelhaar/jobflow/internal/projects/application/commands"
	projectQueries "github.com/felixgeelhaar/jobflow/internal/projects/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/services"
	"github.com/felixgeelhaar/jobflow/internal/projects/infrastructure/directory"
	projectPersistence "github.com/felixgeelhaar/jobflow/internal/projects/infrastructure/persistence"
	reminderCommands "github.com/felixgeelhaar/jobflow/internal/reminders/application/commands"
	reminderQueries "github.com/felixgeelhaar/jobflow/internal/reminders/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/reminders/application/scheduler"
	reminderPersistence "github.com/felixgeelhaar/jobflow/internal/reminders/infrastructure/persistence"
	"github.com/felixgeelhaar/jobflow/internal/reminders/infrastructure/wake"
	sharedApplication "github.com/felixgeelhaar/jobflow/internal/shared/application"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/locking"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/jobflow/pkg/config"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	ProjectRepo  *projectPersistence.SQLProjectRepository
	ReminderRepo *reminderPersistence.SQLReminderRepository
	ActivityRepo *activityPersistence.SQLActivityRepository
	OutboxRepo   outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Infrastructure
	Locker         locking.Locker
	Directory      *directory.Static
	EventPublisher eventbus.Publisher
	// LocalBus is set when events are delivered in process instead of
	// through RabbitMQ.
	LocalBus   *eventbus.InProcessBus
	Sender     notifDomain.Sender
	Dispatcher *notifApp.Dispatcher
	Health     *observability.HealthRegistry

	// Project Command Handlers
	Pipeline                     *projectCommands.Pipeline
	CreateProjectHandler         *projectCommands.CreateProjectHandler
	TransitionStatusHandler      *projectCommands.TransitionStatusHandler
	SetHoldHandler               *projectCommands.SetHoldHandler
	CancelProjectHandler         *projectCommands.CancelProjectHandler
	ReactivateProjectHandler     *projectCommands.ReactivateProjectHandler
	ReopenProjectHandler         *projectCommands.ReopenProjectHandler
	DeleteProjectHandler         *projectCommands.DeleteProjectHandler
	MarkInvoiceSentHandler       *projectCommands.MarkInvoiceSentHandler
	VerifyPaymentHandler         *projectCommands.VerifyPaymentHandler
	UploadMockupHandler          *projectCommands.UploadMockupHandler
	ApproveMockupHandler         *projectCommands.ApproveMockupHandler
	RejectMockupHandler          *projectCommands.RejectMockupHandler
	SetSampleRequirementHandler  *projectCommands.SetSampleRequirementHandler
	ApproveSampleHandler         *projectCommands.ApproveSampleHandler
	SetDepartmentsHandler        *projectCommands.SetDepartmentsHandler
	AcknowledgeDepartmentHandler *projectCommands.AcknowledgeDepartmentHandler
	AddFeedbackHandler           *projectCommands.AddFeedbackHandler
	SetCorporateEmergencyHandler *projectCommands.SetCorporateEmergencyHandler

	// Project Query Handlers
	GetProjectHandler    *projectQueries.GetProjectHandler
	ListProjectsHandler  *projectQueries.ListProjectsHandler
	ListLineageHandler   *projectQueries.ListLineageHandler
	EvaluateGatesHandler *projectQueries.EvaluateGatesHandler
	ListActivityHandler  *projectQueries.ListActivityHandler

	// Reminder Handlers
	CreateReminderHandler   *reminderCommands.CreateReminderHandler
	CancelReminderHandler   *reminderCommands.CancelReminderHandler
	CompleteReminderHandler *reminderCommands.CompleteReminderHandler
	ListRemindersHandler    *reminderQueries.ListRemindersHandler
	GetReminderHandler      *reminderQueries.GetReminderHandler

	// Workers
	Scheduler       *scheduler.Scheduler
	OutboxProcessor *outbox.Processor
	WakeListener    *wake.PostgresListener
}

// NewContainer connects to the configured database and brokers and wires
// every handler. Without a DATABASE_URL it runs in local mode on SQLite.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.connectBroker(); err != nil {
		c.Close()
		return nil, err
	}

	var catalog *config.DepartmentCatalog
	if cfg.DepartmentsFile != "" {
		if catalog, err = config.LoadDepartmentCatalog(cfg.DepartmentsFile); err != nil {
			c.Close()
			return nil, err
		}
	}
	if c.Directory, err = directory.NewStatic(cfg.AdminIDs, catalog); err != nil {
		c.Close()
		return nil, err
	}

	c.wire()
	c.registerHealthChecks()
	return c, nil
}

// NewLocalContainer creates a container for local mode with SQLite.
// This provides zero-config operation without PostgreSQL, Redis, or RabbitMQ.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	local := *cfg
	local.DatabaseDriver = string(database.DriverSQLite)
	local.DatabaseURL = ""
	local.LocalMode = true
	local.RedisURL = ""
	local.RabbitMQURL = ""
	return NewContainer(ctx, &local, logger)
}

func (c *Container) connectRedis(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger
	if cfg.RedisURL == "" {
		c.Locker = locking.NewLocalLocker()
		return nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		if cfg.IsProduction() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		logger.Warn("invalid Redis URL, using in-process locks", "error", err)
		c.Locker = locking.NewLocalLocker()
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if cfg.IsProduction() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Warn("Redis not available, using in-process locks", "error", err)
		c.Locker = locking.NewLocalLocker()
		return nil
	}
	c.RedisClient = client
	c.Locker = locking.NewRedisLocker(client, cfg.LockTTL)
	logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectBroker() error {
	cfg, logger := c.Config, c.Logger
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(eventbus.RabbitMQPublisherConfig{URL: cfg.RabbitMQURL, Logger: logger})
		if err == nil {
			c.EventPublisher = publisher
			return nil
		}
		if cfg.IsProduction() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		logger.Warn("RabbitMQ not available, delivering events in process", "error", err)
	}
	c.LocalBus = eventbus.NewInProcessBus(logger)
	c.EventPublisher = c.LocalBus
	return nil
}

// notificationSender routes in-app notifications to Redis and email
// notifications to the broker, each behind a circuit breaker. Anything
// without a real transport goes to the log.
func (c *Container) notificationSender() notifDomain.Sender {
	cfg := c.Config
	breaker := func(name string, next notifDomain.Sender) notifDomain.Sender {
		bc := senders.DefaultBreakerConfig(name)
		bc.FailureThreshold = uint32(max(cfg.NotifyBreakerFailures, 1))
		bc.MaxRequests = uint32(max(cfg.NotifyBreakerMaxRequests, 1))
		bc.Timeout = cfg.NotifyBreakerTimeout
		bc.Interval = cfg.NotifyBreakerInterval
		return senders.NewBreakerSender(next, bc, c.Logger, c.Metrics)
	}

	router := senders.NewChannelRouter(senders.NewLogSender(c.Logger))
	if c.RedisClient != nil {
		router.Route(notifDomain.ChannelInApp, breaker("notify-redis", senders.NewRedisSender(c.RedisClient, cfg.RedisNotifyPrefix)))
	}
	if c.LocalBus == nil && c.EventPublisher != nil {
		router.Route(notifDomain.ChannelEmail, breaker("notify-broker", senders.NewBrokerSender(c.EventPublisher)))
	}
	return router
}

func (c *Container) wire() {
	cfg, logger := c.Config, c.Logger
	factory := NewRepositoryFactory(c.DBConn)

	c.ProjectRepo = factory.ProjectRepository()
	c.ReminderRepo = factory.ReminderRepository()
	c.ActivityRepo = factory.ActivityRepository()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = factory.UnitOfWork()

	c.Sender = c.notificationSender()
	c.Dispatcher = notifApp.NewDispatcher(c.Sender, logger, c.Metrics)
	notifier := services.NewNotifier(c.Directory, c.Dispatcher, logger)

	c.Pipeline = projectCommands.NewPipeline(c.ProjectRepo, c.OutboxRepo, c.ActivityRepo, c.UnitOfWork, c.Locker, notifier,
		projectCommands.WithLogger(logger),
		projectCommands.WithMetrics(c.Metrics),
	)

	// Create project command handlers
	c.CreateProjectHandler = projectCommands.NewCreateProjectHandler(c.Pipeline)
	c.TransitionStatusHandler = projectCommands.NewTransitionStatusHandler(c.Pipeline)
	c.SetHoldHandler = projectCommands.NewSetHoldHandler(c.Pipeline)
	c.CancelProjectHandler = projectCommands.NewCancelProjectHandler(c.Pipeline)
	c.ReactivateProjectHandler = projectCommands.NewReactivateProjectHandler(c.Pipeline)
	c.ReopenProjectHandler = projectCommands.NewReopenProjectHandler(c.Pipeline)
	c.DeleteProjectHandler = projectCommands.NewDeleteProjectHandler(c.Pipeline)
	c.MarkInvoiceSentHandler = projectCommands.NewMarkInvoiceSentHandler(c.Pipeline)
	c.VerifyPaymentHandler = projectCommands.NewVerifyPaymentHandler(c.Pipeline)
	c.UploadMockupHandler = projectCommands.NewUploadMockupHandler(c.Pipeline)
	c.ApproveMockupHandler = projectCommands.NewApproveMockupHandler(c.Pipeline)
	c.RejectMockupHandler = projectCommands.NewRejectMockupHandler(c.Pipeline)
	c.SetSampleRequirementHandler = projectCommands.NewSetSampleRequirementHandler(c.Pipeline)
	c.ApproveSampleHandler = projectCommands.NewApproveSampleHandler(c.Pipeline)
	c.SetDepartmentsHandler = projectCommands.NewSetDepartmentsHandler(c.Pipeline)
	c.AcknowledgeDepartmentHandler = projectCommands.NewAcknowledgeDepartmentHandler(c.Pipeline)
	c.AddFeedbackHandler = projectCommands.NewAddFeedbackHandler(c.Pipeline)
	c.SetCorporateEmergencyHandler = projectCommands.NewSetCorporateEmergencyHandler(c.Pipeline)

	// Create project query handlers
	c.GetProjectHandler = projectQueries.NewGetProjectHandler(c.ProjectRepo)
	c.ListProjectsHandler = projectQueries.NewListProjectsHandler(c.ProjectRepo)
	c.ListLineageHandler = projectQueries.NewListLineageHandler(c.ProjectRepo)
	c.EvaluateGatesHandler = projectQueries.NewEvaluateGatesHandler(c.ProjectRepo)
	c.ListActivityHandler = projectQueries.NewListActivityHandler(c.ActivityRepo)

	// Reminder scheduler and handlers
	c.Scheduler = scheduler.NewScheduler(c.ReminderRepo, c.ProjectRepo, c.Dispatcher, c.OutboxRepo, c.UnitOfWork,
		scheduler.Config{
			MinInterval:  cfg.ReminderMinInterval,
			MaxInterval:  cfg.ReminderMaxInterval,
			LeaseTimeout: cfg.ReminderLeaseTimeout,
			BatchSize:    cfg.ReminderBatchSize,
		},
		logger,
		scheduler.WithMetrics(c.Metrics),
	)
	store := reminderCommands.NewStore(c.ReminderRepo, c.OutboxRepo, c.UnitOfWork, reminderCommands.WithWaker(c.Scheduler))
	c.CreateReminderHandler = reminderCommands.NewCreateReminderHandler(store, c.ProjectRepo)
	c.CancelReminderHandler = reminderCommands.NewCancelReminderHandler(store)
	c.CompleteReminderHandler = reminderCommands.NewCompleteReminderHandler(store)
	c.ListRemindersHandler = reminderQueries.NewListRemindersHandler(c.ReminderRepo)
	c.GetReminderHandler = reminderQueries.NewGetReminderHandler(c.ReminderRepo)

	if c.LocalBus != nil {
		c.LocalBus.RegisterConsumer(wake.NewStatusConsumer(c.Scheduler))
	}
	if lc, ok := c.DBConn.(interface{ ConnString() string }); ok && cfg.ReminderListenEnabled {
		c.WakeListener = wake.NewPostgresListener(lc.ConnString(), c.Scheduler, wake.DefaultListenerConfig(), logger)
	}

	processorConfig := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		processorConfig.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		processorConfig.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		processorConfig.MaxRetries = cfg.OutboxMaxRetries
	}
	if cfg.OutboxCleanupInterval > 0 {
		processorConfig.CleanupInterval = cfg.OutboxCleanupInterval
	}
	processorConfig.RetentionDays = cfg.OutboxRetentionDays
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", func(ctx context.Context) observability.HealthCheckResult {
		return checkResult(c.DBConn.Ping(ctx), "database unreachable")
	})
	if c.RedisClient != nil {
		c.Health.Register("redis", func(ctx context.Context) observability.HealthCheckResult {
			return checkResult(c.RedisClient.Ping(ctx).Err(), "redis unreachable")
		})
	}
	c.Health.Register("reminder_scheduler", func(context.Context) observability.HealthCheckResult {
		stats := c.Scheduler.GetStats()
		result := observability.HealthCheckResult{
			Status:    observability.HealthStatusHealthy,
			Timestamp: time.Now(),
			Details: map[string]any{
				"running": stats.IsRunning,
				"sweeps":  stats.Sweeps,
				"fired":   stats.Fired,
				"errored": stats.Errored,
			},
		}
		if c.Config.ReminderSchedulerEnabled && !stats.IsRunning {
			result.Status = observability.HealthStatusDegraded
			result.Message = "scheduler not running"
		}
		return result
	})
	c.Health.Register("outbox", func(context.Context) observability.HealthCheckResult {
		stats := c.OutboxProcessor.GetStats()
		result := observability.HealthCheckResult{
			Status:    observability.HealthStatusHealthy,
			Timestamp: time.Now(),
			Details: map[string]any{
				"running":   stats.IsRunning,
				"published": stats.PublishedCount,
				"dead":      stats.DeadCount,
			},
		}
		if stats.DeadCount > 0 {
			result.Status = observability.HealthStatusDegraded
			result.Message = "outbox has dead messages"
		}
		return result
	})
}

func checkResult(err error, message string) observability.HealthCheckResult {
	if err != nil {
		return observability.HealthCheckResult{
			Status:    observability.HealthStatusUnhealthy,
			Message:   message + ": " + err.Error(),
			Timestamp: time.Now(),
		}
	}
	return observability.HealthCheckResult{Status: observability.HealthStatusHealthy, Timestamp: time.Now()}
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
