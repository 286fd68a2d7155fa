// Package wake wakes a sleeping reminder scheduler when project state or
// the reminders table changes, so stage reminders are picked up without
// waiting for the next timed sweep.
package wake

import (
	"context"

	projectsDomain "github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/eventbus"
)

// Waker cuts a scheduler's sleep short.
type Waker interface {
	Wake()
}

// StatusConsumer wakes the scheduler on project events that may satisfy a
// stage reminder.
type StatusConsumer struct {
	waker Waker
}

// NewStatusConsumer creates a StatusConsumer.
func NewStatusConsumer(waker Waker) *StatusConsumer {
	return &StatusConsumer{waker: waker}
}

// EventTypes implements eventbus.EventConsumer.
func (c *StatusConsumer) EventTypes() []string {
	return []string{
		projectsDomain.RoutingKeyStatusChanged,
		projectsDomain.RoutingKeyReopened,
		projectsDomain.RoutingKeyPromoted,
	}
}

// Handle implements eventbus.EventConsumer.
func (c *StatusConsumer) Handle(_ context.Context, _ *eventbus.ConsumedEvent) error {
	c.waker.Wake()
	return nil
}

var _ eventbus.EventConsumer = (*StatusConsumer)(nil)
