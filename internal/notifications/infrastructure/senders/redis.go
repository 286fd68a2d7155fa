package senders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
)

// DefaultInboxSize caps each recipient's stored inbox.
const DefaultInboxSize = 200

// RedisSender publishes in-app notifications on a per-recipient channel
// and keeps a capped inbox list so clients that were offline can catch up.
//
//	PUBLISH <prefix>:<recipient>        {json}
//	LPUSH   <prefix>:<recipient>:inbox  {json}
type RedisSender struct {
	client    redis.UniversalClient
	prefix    string
	inboxSize int64
}

// NewRedisSender creates a RedisSender. An empty prefix defaults to
// "jobflow:notifications".
func NewRedisSender(client redis.UniversalClient, prefix string) *RedisSender {
	if prefix == "" {
		prefix = "jobflow:notifications"
	}
	return &RedisSender{client: client, prefix: prefix, inboxSize: DefaultInboxSize}
}

// Channel returns the pub/sub channel for recipient.
func (s *RedisSender) Channel(recipient string) string {
	return s.prefix + ":" + recipient
}

// InboxKey returns the list key holding recipient's recent notifications.
func (s *RedisSender) InboxKey(recipient string) string {
	return s.Channel(recipient) + ":inbox"
}

// Notify publishes n and appends it to the recipient inbox atomically.
func (s *RedisSender) Notify(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	recipient := n.RecipientID.String()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.InboxKey(recipient), payload)
		pipe.LTrim(ctx, s.InboxKey(recipient), 0, s.inboxSize-1)
		pipe.Publish(ctx, s.Channel(recipient), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis notify %s: %w", recipient, err)
	}
	return nil
}

// Inbox returns up to limit recent notifications for recipient, newest first.
func (s *RedisSender) Inbox(ctx context.Context, recipient string, limit int64) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = s.inboxSize
	}
	raw, err := s.client.LRange(ctx, s.InboxKey(recipient), 0, limit-1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read inbox %s: %w", recipient, err)
	}
	out := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("decode inbox item: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
