// Package senders delivers notifications over Redis, RabbitMQ or the
// process log, with a circuit breaker and per-channel routing on top.
package senders

import (
	"context"
	"slices"
	"sync"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/google/uuid"
)

// MemorySender keeps notifications in memory. Used in local mode and tests.
type MemorySender struct {
	mu      sync.Mutex
	sent    []domain.Notification
	failFor map[uuid.UUID]error
}

// NewMemorySender creates an empty MemorySender.
func NewMemorySender() *MemorySender {
	return &MemorySender{failFor: make(map[uuid.UUID]error)}
}

// Notify records n, or returns the error registered for its recipient.
func (s *MemorySender) Notify(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[n.RecipientID]; err != nil {
		return err
	}
	s.sent = append(s.sent, n)
	return nil
}

// FailFor makes deliveries to recipient fail with err; nil clears it.
func (s *MemorySender) FailFor(recipient uuid.UUID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failFor, recipient)
		return
	}
	s.failFor[recipient] = err
}

// Sent returns a copy of everything delivered so far.
func (s *MemorySender) Sent() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

// OfType returns delivered notifications of type t.
func (s *MemorySender) OfType(t domain.Type) []domain.Notification {
	var out []domain.Notification
	for _, n := range s.Sent() {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Reset forgets delivered notifications.
func (s *MemorySender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
