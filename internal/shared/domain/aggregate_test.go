package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testAggregate struct {
	domain.BaseAggregateRoot
	Name string
}

func newTestAggregate(name string) *testAggregate {
	return &testAggregate{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		Name:              name,
	}
}

type testAggregateEvent struct {
	domain.BaseEvent
}

func newTestAggregateEvent(aggregateID uuid.UUID) *testAggregateEvent {
	return &testAggregateEvent{
		BaseEvent: domain.NewBaseEvent(aggregateID, "TestAggregate", "test.aggregate.created"),
	}
}

func TestNewBaseAggregateRoot(t *testing.T) {
	agg := domain.NewBaseAggregateRoot()

	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Equal(t, 0, agg.Version())
	assert.True(t, agg.IsNew())
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseAggregateRoot_AddAndClearDomainEvents(t *testing.T) {
	agg := newTestAggregate("Test")
	agg.AddDomainEvent(newTestAggregateEvent(agg.ID()))
	agg.AddDomainEvent(newTestAggregateEvent(agg.ID()))

	assert.Len(t, agg.DomainEvents(), 2)
	for _, event := range agg.DomainEvents() {
		assert.Equal(t, agg.ID(), event.AggregateID())
	}

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseAggregateRoot_SetVersion(t *testing.T) {
	agg := newTestAggregate("Test")

	agg.SetVersion(3)

	assert.Equal(t, 3, agg.Version())
	assert.False(t, agg.IsNew())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	entity := domain.RehydrateBaseEntity(id, created, created.Add(time.Minute))

	agg := domain.RehydrateBaseAggregateRoot(entity, 7)

	assert.Equal(t, id, agg.ID())
	assert.Equal(t, 7, agg.Version())
	assert.Equal(t, created.Add(time.Minute), agg.UpdatedAt())
	assert.Empty(t, agg.DomainEvents())
}
