package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_ValidFor(t *testing.T) {
	tests := []struct {
		status   Status
		standard bool
		quote    bool
	}{
		{StatusOrderConfirmed, true, false},
		{StatusPendingProduction, true, false},
		{StatusDelivered, true, false},
		{StatusQuoteCreated, false, true},
		{StatusPendingSendResponse, false, true},
		{StatusCompleted, true, true},
		{StatusFinished, true, true},
		{StatusOnHold, true, true},
		{StatusInProgress, true, true},
		{Status("Shipping"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.standard, tt.status.ValidFor(ProjectTypeStandard))
			assert.Equal(t, tt.standard, tt.status.ValidFor(ProjectTypeCorporateJob))
			assert.Equal(t, tt.quote, tt.status.ValidFor(ProjectTypeQuote))
		})
	}
}

func TestAutoAdvance(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusScopeApprovalCompleted, StatusPendingDepartmentalEngagement},
		{StatusMockupCompleted, StatusPendingProofReading},
		{StatusProofReadingCompleted, StatusPendingProduction},
		{StatusPackagingCompleted, StatusPendingDeliveryPickup},
		{StatusDelivered, StatusPendingFeedback},
		{StatusFeedbackCompleted, StatusCompleted},
		{StatusResponseSent, StatusCompleted},
		{StatusPendingMockup, StatusPendingMockup},
		{StatusCompleted, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.to, AutoAdvance(tt.from))
		})
	}
}

func TestAutoAdvance_StaysInsideWorkflow(t *testing.T) {
	for from, to := range autoAdvance {
		for _, pt := range []ProjectType{ProjectTypeStandard, ProjectTypeQuote} {
			if from.ValidFor(pt) {
				assert.True(t, to.ValidFor(pt), "%s -> %s leaves the %s workflow", from, to, pt)
			}
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusDelivered, StatusFeedbackCompleted, StatusFinished} {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range []Status{StatusOnHold, StatusPendingFeedback, StatusInProgress, StatusResponseSent} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestInitialAndReopenStatus(t *testing.T) {
	assert.Equal(t, StatusOrderConfirmed, InitialStatus(ProjectTypeEmergency))
	assert.Equal(t, StatusQuoteCreated, InitialStatus(ProjectTypeQuote))
	assert.Equal(t, StatusPendingScopeApproval, ReopenStatus(ProjectTypeStandard))
	assert.Equal(t, StatusPendingQuoteRequest, ReopenStatus(ProjectTypeQuote))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Pending Delivery/Pickup")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingDeliveryPickup, s)

	_, err = ParseStatus("pending production")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestStatuses(t *testing.T) {
	quote := Statuses(ProjectTypeQuote)
	assert.Equal(t, StatusQuoteCreated, quote[0])
	assert.Contains(t, quote, StatusFinished)
	assert.NotContains(t, quote, StatusPendingMockup)
	assert.Len(t, Statuses(ProjectTypeStandard), len(standardWorkflow)+len(commonStatuses))
}

func TestProjectType(t *testing.T) {
	assert.True(t, ProjectTypeCorporateJob.IsValid())
	assert.False(t, ProjectType("Retail").IsValid())
	assert.True(t, ProjectTypeQuote.IsQuote())
	assert.False(t, ProjectTypeEmergency.IsQuote())
}
