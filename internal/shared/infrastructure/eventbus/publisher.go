// Package eventbus moves committed domain events between processes. The
// outbox relay publishes through a Publisher; workers subscribe through a
// Consumer. RabbitMQ backs both in server mode and an in-process bus backs
// them in local mode.
package eventbus

import (
	"context"
	"log/slog"
)

// ExchangeName is the topic exchange carrying domain events.
const ExchangeName = "jobflow.domain.events"

// Publisher sends an encoded event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that only logs.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

// Publish logs the event at debug level.
func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("event dropped", "routing_key", routingKey, "size", len(payload))
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error { return nil }
