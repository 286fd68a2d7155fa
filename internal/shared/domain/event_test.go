package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	before := time.Now().UTC()

	event := domain.NewBaseEvent(aggregateID, "TestAggregate", "test.event.created")

	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.Equal(t, "test.event.created", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
}

func TestNewBaseEventAt(t *testing.T) {
	at := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

	event := domain.NewBaseEventAt(uuid.New(), "Project", "projects.project.created", at)

	assert.Equal(t, at, event.OccurredAt())
}

func TestBaseEvent_WithMetadata(t *testing.T) {
	event := domain.NewBaseEvent(uuid.New(), "TestAggregate", "test.event.created")
	event.SetMetadata(domain.EventMetadata{
		CorrelationID: "corr-1",
		CausationID:   "cause-1",
		ActorID:       "user-7",
	})

	metadata := event.Metadata()
	assert.Equal(t, "corr-1", metadata.CorrelationID)
	assert.Equal(t, "cause-1", metadata.CausationID)
	assert.Equal(t, "user-7", metadata.ActorID)
}
