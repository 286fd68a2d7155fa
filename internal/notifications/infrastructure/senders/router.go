package senders

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
)

// ChannelRouter picks a sender by notification channel.
type ChannelRouter struct {
	routes   map[domain.Channel]domain.Sender
	fallback domain.Sender
}

// NewChannelRouter creates a router. fallback may be nil, in which case
// unrouted channels fail.
func NewChannelRouter(fallback domain.Sender) *ChannelRouter {
	return &ChannelRouter{routes: make(map[domain.Channel]domain.Sender), fallback: fallback}
}

// Route sends channel through sender.
func (r *ChannelRouter) Route(channel domain.Channel, sender domain.Sender) *ChannelRouter {
	r.routes[channel] = sender
	return r
}

// Notify forwards n to the sender for its channel.
func (r *ChannelRouter) Notify(ctx context.Context, n domain.Notification) error {
	if s, ok := r.routes[n.Channel]; ok {
		return s.Notify(ctx, n)
	}
	if r.fallback != nil {
		return r.fallback.Notify(ctx, n)
	}
	return fmt.Errorf("no sender for channel %q", n.Channel)
}

var (
	_ domain.Sender = (*ChannelRouter)(nil)
	_ domain.Sender = (*BreakerSender)(nil)
	_ domain.Sender = (*BrokerSender)(nil)
	_ domain.Sender = (*RedisSender)(nil)
	_ domain.Sender = (*LogSender)(nil)
	_ domain.Sender = (*MemorySender)(nil)
)
