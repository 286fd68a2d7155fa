package senders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/eventbus"
)

// NotificationExchange is the topic exchange email and other out-of-process
// deliverers consume from.
const NotificationExchange = "jobflow.notifications"

// BrokerSender hands notifications to a message broker under
// "notifications.<channel>.<type>".
type BrokerSender struct {
	publisher eventbus.Publisher
}

// NewBrokerSender creates a BrokerSender on publisher.
func NewBrokerSender(publisher eventbus.Publisher) *BrokerSender {
	return &BrokerSender{publisher: publisher}
}

// RoutingKey returns the routing key n is published under.
func RoutingKey(n domain.Notification) string {
	return fmt.Sprintf("notifications.%s.%s", n.Channel, n.Type)
}

// Notify publishes n as JSON.
func (s *BrokerSender) Notify(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return s.publisher.Publish(ctx, RoutingKey(n), payload)
}
