package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
)

type registration struct {
	pattern  string
	consumer EventConsumer
}

// ConsumerRegistry routes events to every consumer whose pattern matches.
type ConsumerRegistry struct {
	mu     sync.RWMutex
	regs   []registration
	logger *slog.Logger
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register adds consumer under each of its patterns.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pattern := range consumer.EventTypes() {
		r.regs = append(r.regs, registration{pattern: pattern, consumer: consumer})
		r.logger.Debug("consumer registered", "pattern", pattern)
	}
}

// Match returns the consumers for routingKey. A consumer registered under
// several matching patterns is returned once.
func (r *ConsumerRegistry) Match(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EventConsumer
	seen := make(map[EventConsumer]bool)
	for _, reg := range r.regs {
		if seen[reg.consumer] || !MatchTopic(reg.pattern, routingKey) {
			continue
		}
		seen[reg.consumer] = true
		out = append(out, reg.consumer)
	}
	return out
}

// Patterns returns the distinct registered patterns in sorted order.
func (r *ConsumerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]struct{}, len(r.regs))
	for _, reg := range r.regs {
		set[reg.pattern] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Dispatch hands event to every matching consumer. A failing consumer does
// not stop the others; the joined error is returned.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.Match(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConsumerCount returns the number of distinct consumers.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[EventConsumer]bool)
	for _, reg := range r.regs {
		seen[reg.consumer] = true
	}
	return len(seen)
}
