package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

func TestDispatcher_ContinuesAfterFailure(t *testing.T) {
	bad := uuid.New()
	var delivered []uuid.UUID
	sender := domain.SenderFunc(func(_ context.Context, n domain.Notification) error {
		if n.RecipientID == bad {
			return errors.New("mailbox full")
		}
		delivered = append(delivered, n.RecipientID)
		return nil
	})
	metrics := observability.NewInMemoryMetrics()
	d := NewDispatcher(sender, observability.DiscardLogger(), metrics)

	now := time.Now()
	good1, good2 := uuid.New(), uuid.New()
	report := d.Dispatch(context.Background(), []domain.Notification{
		domain.New(good1, uuid.Nil, uuid.Nil, domain.TypeReminder, "t", "m", now),
		domain.New(bad, uuid.Nil, uuid.Nil, domain.TypeReminder, "t", "m", now),
		domain.New(uuid.Nil, uuid.Nil, uuid.Nil, domain.TypeReminder, "t", "m", now),
		domain.New(good2, uuid.Nil, uuid.Nil, domain.TypeReminder, "t", "m", now),
	})

	assert.Equal(t, 2, report.Sent)
	assert.True(t, report.Failed())
	assert.Len(t, report.Failures, 2)
	assert.ErrorIs(t, report.Failures[1].Err, domain.ErrNoRecipient)
	assert.ErrorContains(t, report.Err(), "mailbox full")
	assert.Equal(t, []uuid.UUID{good1, good2}, delivered)
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricNotificationsSent, observability.T("type", "reminder")))
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricNotificationsFailed, observability.T("type", "reminder")))
}

func TestReport_Merge(t *testing.T) {
	r := Report{Sent: 1}
	r.Merge(Report{Sent: 2, Failures: []Failure{{Err: errors.New("x")}}})
	assert.Equal(t, 3, r.Sent)
	assert.Len(t, r.Failures, 1)
	assert.NoError(t, Report{}.Err())
}
