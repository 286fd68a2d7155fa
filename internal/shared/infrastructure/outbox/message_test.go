package outbox

import (
	"testing"

	"github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusChanged struct {
	domain.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

func newStatusChanged(projectID uuid.UUID) *statusChanged {
	return &statusChanged{
		BaseEvent: domain.NewBaseEvent(projectID, "Project", "projects.project.status_changed"),
		From:      "Order Confirmed",
		To:        "Design",
	}
}

func TestNewMessage(t *testing.T) {
	t.Run("copies event identity", func(t *testing.T) {
		projectID := uuid.New()
		event := newStatusChanged(projectID)

		msg, err := NewMessage(event)

		require.NoError(t, err)
		assert.Equal(t, event.EventID(), msg.EventID)
		assert.Equal(t, "Project", msg.AggregateType)
		assert.Equal(t, projectID, msg.AggregateID)
		assert.Equal(t, "projects.project.status_changed", msg.RoutingKey)
		assert.Equal(t, msg.RoutingKey, msg.EventType)
		assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
		assert.Equal(t, int64(0), msg.ID)
		assert.False(t, msg.IsPublished())
	})

	t.Run("wraps the body in an envelope", func(t *testing.T) {
		event := newStatusChanged(uuid.New())
		event.SetMetadata(domain.EventMetadata{CorrelationID: "corr-1", ActorID: "user-7"})

		msg, err := NewMessage(event)
		require.NoError(t, err)

		env, err := DecodeEnvelope(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, event.EventID(), env.EventID)
		assert.Equal(t, "projects.project.status_changed", env.RoutingKey)
		assert.Equal(t, "user-7", env.Metadata.ActorID)
		assert.JSONEq(t, `{"from":"Order Confirmed","to":"Design"}`, string(env.Payload))
		assert.Contains(t, string(msg.Metadata), "corr-1")
	})
}

func TestNewMessages(t *testing.T) {
	events := []domain.DomainEvent{newStatusChanged(uuid.New()), newStatusChanged(uuid.New())}

	msgs, err := NewMessages(events)

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, events[1].EventID(), msgs[1].EventID)
}

func TestMessage_CanRetry(t *testing.T) {
	cases := []struct {
		name       string
		retryCount int
		max        int
		want       bool
	}{
		{"below max", 2, 5, true},
		{"at max", 5, 5, false},
		{"above max", 10, 5, false},
		{"zero max", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := &Message{RetryCount: tc.retryCount}
			assert.Equal(t, tc.want, msg.CanRetry(tc.max))
		})
	}
}
