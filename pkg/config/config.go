// Package config loads jobflow configuration from the environment (optionally
// seeded by a .env file) and the department catalog from YAML.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Database. An empty DatabaseURL selects local mode on SQLite.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Redis backs distributed locks and the in-app notification channel.
	RedisURL          string
	RedisNotifyPrefix string
	LockTTL           time.Duration

	// RabbitMQ carries domain events and broker notifications.
	RabbitMQURL string

	// Directory
	AdminIDs        []string
	DepartmentsFile string

	// Reminder scheduler
	ReminderSchedulerEnabled bool
	ReminderMinInterval      time.Duration
	ReminderMaxInterval      time.Duration
	ReminderLeaseTimeout     time.Duration
	ReminderBatchSize        int
	ReminderListenEnabled    bool

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Notification circuit breaker
	NotifyBreakerFailures    int
	NotifyBreakerTimeout     time.Duration
	NotifyBreakerInterval    time.Duration
	NotifyBreakerMaxRequests int

	// Worker
	WorkerHealthAddr string
	StatsInterval    time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	driver := getEnv("DATABASE_DRIVER", "")
	if driver == "" {
		driver = "postgres"
		if databaseURL == "" || isSQLiteURL(databaseURL) {
			driver = "sqlite"
		}
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL:    databaseURL,
		DatabaseDriver: driver,
		SQLitePath:     getEnv("SQLITE_PATH", ""),
		LocalMode:      driver == "sqlite",

		RedisURL:          getEnv("REDIS_URL", ""),
		RedisNotifyPrefix: getEnv("REDIS_NOTIFY_PREFIX", "jobflow:notifications"),
		LockTTL:           getDurationEnv("LOCK_TTL", 30*time.Second),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		AdminIDs:        getListEnv("JOBFLOW_ADMIN_IDS"),
		DepartmentsFile: getEnv("JOBFLOW_DEPARTMENTS_FILE", ""),

		ReminderSchedulerEnabled: getBoolEnv("REMINDER_SCHEDULER_ENABLED", true),
		ReminderMinInterval:      getDurationEnv("REMINDER_MIN_INTERVAL", time.Second),
		ReminderMaxInterval:      getDurationEnv("REMINDER_MAX_INTERVAL", 5*time.Minute),
		ReminderLeaseTimeout:     getDurationEnv("REMINDER_LEASE_TIMEOUT", 10*time.Minute),
		ReminderBatchSize:        getIntEnv("REMINDER_BATCH_SIZE", 100),
		ReminderListenEnabled:    getBoolEnv("REMINDER_LISTEN_ENABLED", true),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 7),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		NotifyBreakerFailures:    getIntEnv("NOTIFY_BREAKER_FAILURES", 5),
		NotifyBreakerTimeout:     getDurationEnv("NOTIFY_BREAKER_TIMEOUT", 30*time.Second),
		NotifyBreakerInterval:    getDurationEnv("NOTIFY_BREAKER_INTERVAL", time.Minute),
		NotifyBreakerMaxRequests: getIntEnv("NOTIFY_BREAKER_MAX_REQUESTS", 1),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
		StatsInterval:    getDurationEnv("STATS_INTERVAL", 30*time.Second),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func isSQLiteURL(url string) bool {
	return strings.HasPrefix(url, "sqlite://") ||
		strings.HasPrefix(url, "file:") ||
		strings.HasSuffix(url, ".db") ||
		strings.HasSuffix(url, ".sqlite")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping blanks.
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
