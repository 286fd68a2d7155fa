package wake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Channel is the NOTIFY channel the reminder and project triggers signal on.
const Channel = "jobflow_reminders_wake"

// ListenerConfig tunes the reconnect behaviour of the LISTEN session.
type ListenerConfig struct {
	MinReconnect time.Duration
	MaxReconnect time.Duration
	PingInterval time.Duration
}

// DefaultListenerConfig returns the worker defaults.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		MinReconnect: 10 * time.Second,
		MaxReconnect: time.Minute,
		PingInterval: 90 * time.Second,
	}
}

// PostgresListener holds a dedicated LISTEN session and calls Wake for
// every notification. After a reconnect it wakes once as well, since
// notifications sent while disconnected are lost.
type PostgresListener struct {
	connString string
	waker      Waker
	config     ListenerConfig
	logger     *slog.Logger
}

// NewPostgresListener creates a listener for connString.
func NewPostgresListener(connString string, waker Waker, config ListenerConfig, logger *slog.Logger) *PostgresListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresListener{
		connString: connString,
		waker:      waker,
		config:     config,
		logger:     logger.With("component", "reminder_listener"),
	}
}

// Run listens until ctx is cancelled.
func (l *PostgresListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.connString, l.config.MinReconnect, l.config.MaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			switch ev {
			case pq.ListenerEventDisconnected:
				l.logger.Warn("wake listener disconnected", "error", err)
			case pq.ListenerEventReconnected:
				l.logger.Info("wake listener reconnected")
			case pq.ListenerEventConnectionAttemptFailed:
				l.logger.Warn("wake listener connect failed", "error", err)
			}
		})
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	l.logger.Info("wake listener started", "channel", Channel)

	ping := time.NewTicker(l.config.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n != nil {
				l.logger.Debug("wake notification", "payload", n.Extra)
			}
			l.waker.Wake()
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				l.logger.Warn("wake listener ping failed", "error", err)
			}
		}
	}
}
