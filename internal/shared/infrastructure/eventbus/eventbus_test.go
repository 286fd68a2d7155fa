package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/eventbus"
)

type recordingConsumer struct {
	mu       sync.Mutex
	patterns []string
	events   []*eventbus.ConsumedEvent
	err      error
}

func (c *recordingConsumer) EventTypes() []string { return c.patterns }

func (c *recordingConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func (c *recordingConsumer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func envelope(t *testing.T, routingKey string) []byte {
	t.Helper()
	payload, err := json.Marshal(eventbus.ConsumedEvent{
		EventID:       uuid.New(),
		AggregateID:   uuid.New(),
		AggregateType: "Project",
		RoutingKey:    routingKey,
		OccurredAt:    time.Now(),
		Payload:       json.RawMessage(`{"to":"Design"}`),
		Metadata:      eventbus.EventMetadata{ActorID: "user-1"},
	})
	require.NoError(t, err)
	return payload
}

func TestMatchTopic(t *testing.T) {
	cases := []struct {
		pattern, key string
		want         bool
	}{
		{"projects.project.status_changed", "projects.project.status_changed", true},
		{"projects.project.*", "projects.project.status_changed", true},
		{"projects.*", "projects.project.status_changed", false},
		{"projects.#", "projects.project.status_changed", true},
		{"projects.#", "projects", true},
		{"#", "reminders.reminder.fired", true},
		{"#.fired", "reminders.reminder.fired", true},
		{"*.reminder.*", "reminders.reminder.fired", true},
		{"reminders.*.fired", "projects.project.fired", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, eventbus.MatchTopic(tc.pattern, tc.key), "%s vs %s", tc.pattern, tc.key)
	}
}

func TestConsumerRegistry_DispatchMatchesPatterns(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	statusWatcher := &recordingConsumer{patterns: []string{"projects.project.status_changed"}}
	everything := &recordingConsumer{patterns: []string{"projects.#", "#"}}
	registry.Register(statusWatcher)
	registry.Register(everything)

	err := registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{RoutingKey: "projects.project.status_changed"})
	require.NoError(t, err)
	err = registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{RoutingKey: "projects.project.reopened"})
	require.NoError(t, err)

	assert.Equal(t, 1, statusWatcher.count())
	assert.Equal(t, 2, everything.count(), "a consumer with two matching patterns is called once per event")
	assert.Equal(t, 2, registry.ConsumerCount())
	assert.Equal(t, []string{"#", "projects.#", "projects.project.status_changed"}, registry.Patterns())
}

func TestConsumerRegistry_DispatchContinuesAfterFailure(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	failing := &recordingConsumer{patterns: []string{"a.b"}, err: errors.New("boom")}
	ok := &recordingConsumer{patterns: []string{"a.b"}}
	registry.Register(failing)
	registry.Register(ok)

	err := registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{RoutingKey: "a.b"})

	require.Error(t, err)
	assert.Equal(t, 1, ok.count())
}

func TestInProcessBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	consumer := &recordingConsumer{patterns: []string{"projects.project.*"}}
	bus.RegisterConsumer(consumer)

	require.NoError(t, bus.Publish(context.Background(), "projects.project.status_changed", envelope(t, "projects.project.status_changed")))

	require.Equal(t, 1, consumer.count())
	got := consumer.events[0]
	assert.Equal(t, "user-1", got.Metadata.ActorID)
	var body struct{ To string }
	require.NoError(t, got.Decode(&body))
	assert.Equal(t, "Design", body.To)
}

func TestInProcessBus_SwallowsConsumerAndDecodeErrors(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	bus.RegisterConsumer(&recordingConsumer{patterns: []string{"#"}, err: errors.New("boom")})

	assert.NoError(t, bus.Publish(context.Background(), "x.y", envelope(t, "x.y")))
	assert.NoError(t, bus.Publish(context.Background(), "x.y", []byte("not json")))
}

func TestInProcessBus_StartBlocksUntilCancelled(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bus.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
