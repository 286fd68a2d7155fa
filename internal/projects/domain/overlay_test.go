package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHold_EnterReenterRelease(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingPackaging)

	change, err := p.SetHold(admin(), true, "awaiting artwork", "", t0)
	require.NoError(t, err)
	assert.Equal(t, HoldEntered, change)
	assert.Equal(t, StatusOnHold, p.Status())
	assert.Equal(t, StatusPendingPackaging, p.Hold().PreviousStatus)
	assertHoldInvariant(t, p)

	change, err = p.SetHold(admin(), true, "awaiting artwork v2", "", t0)
	require.NoError(t, err)
	assert.Equal(t, HoldReasonUpdated, change)
	assert.Equal(t, "awaiting artwork v2", p.Hold().Reason)
	assert.Equal(t, StatusPendingPackaging, p.Hold().PreviousStatus)

	// Scenario C: release without a status restores the snapshot.
	change, err = p.SetHold(admin(), false, "", "", t0)
	require.NoError(t, err)
	assert.Equal(t, HoldReleased, change)
	assert.Equal(t, StatusPendingPackaging, p.Status())
	assert.NotNil(t, p.Hold().ReleasedAt)
	assertHoldInvariant(t, p)

	assert.Len(t, eventsOf[*ProjectHeld](p), 2)
	assert.Len(t, eventsOf[*ProjectReleased](p), 1)
}

func TestSetHold_ReleaseStatusSelection(t *testing.T) {
	tests := []struct {
		name          string
		projectType   ProjectType
		releaseStatus string
		want          Status
	}{
		{"valid override", ProjectTypeStandard, "Pending Photography", StatusPendingPhotography},
		{"quote status on standard falls back", ProjectTypeStandard, "Pending Quote Request", StatusInProgress},
		{"garbage falls back", ProjectTypeStandard, "Nonsense", StatusInProgress},
		{"on hold is not a release target", ProjectTypeStandard, "On Hold", StatusInProgress},
		{"empty restores previous", ProjectTypeStandard, "", StatusPendingMockup},
		{"quote override", ProjectTypeQuote, "Pending Send Response", StatusPendingSendResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := StatusPendingMockup
			if tt.projectType.IsQuote() {
				initial = StatusPendingQuoteRequest
			}
			p := projectAt(t, tt.projectType, initial)
			_, err := p.SetHold(admin(), true, "", "", t0)
			require.NoError(t, err)
			_, err = p.SetHold(admin(), false, "", tt.releaseStatus, t0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Status())
			assertHoldInvariant(t, p)
		})
	}
}

func TestSetHold_Rules(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingMockup)

	_, err := p.SetHold(Actor{ID: adminID, Role: RoleAdmin, Origin: OriginEngagedPortal}, true, "", "", t0)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = p.SetHold(staff(DepartmentGraphics), true, "", "", t0)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = p.SetHold(admin(), false, "", "", t0)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestHold_BlocksOtherMutations(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingMockup)
	_, err := p.SetHold(admin(), true, "", "", t0)
	require.NoError(t, err)

	assert.ErrorIs(t, p.MarkInvoiceSent(admin(), t0), ErrProjectOnHold)
	_, err = p.UploadMockup(admin(), "file://x", t0)
	assert.ErrorIs(t, err, ErrProjectOnHold)
	assert.ErrorIs(t, p.SetDepartments(admin(), nil, t0), ErrProjectOnHold)
}

func TestCancel_FreezesAndReactivateRestoresHold(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingPackaging)
	_, err := p.SetHold(admin(), true, "client travelling", "", t0)
	require.NoError(t, err)
	heldState := p.Hold()

	require.NoError(t, p.Cancel(admin(), "client withdrew", t0))
	assert.True(t, p.IsCancelled())
	assert.Equal(t, StatusOnHold, p.Cancellation().ResumedStatus)
	assert.Equal(t, heldState, p.Cancellation().ResumedHoldState)
	assertHoldInvariant(t, p)

	assert.ErrorIs(t, p.Cancel(admin(), "again", t0), ErrInvalidStateTransition)
	assert.ErrorIs(t, p.MarkInvoiceSent(admin(), t0), ErrProjectFrozen)
	_, err = p.SetHold(admin(), false, "", "", t0)
	assert.ErrorIs(t, err, ErrProjectFrozen)
	_, err = p.Reopen(admin(), "", t0)
	assert.ErrorIs(t, err, ErrProjectFrozen)

	require.NoError(t, p.Reactivate(admin(), t0))
	assert.False(t, p.IsCancelled())
	assert.Equal(t, StatusOnHold, p.Status())
	assert.Equal(t, heldState, p.Hold())
	assertHoldInvariant(t, p)

	_, err = p.SetHold(admin(), false, "", "", t0)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPackaging, p.Status())

	assert.ErrorIs(t, p.Reactivate(admin(), t0), ErrInvalidStateTransition)
}
