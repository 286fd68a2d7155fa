package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_Authorization(t *testing.T) {
	leadAdmin := Actor{ID: leadID, Role: RoleAdmin, Origin: OriginAdminPortal}
	leadAdminElsewhere := Actor{ID: leadID, Role: RoleAdmin, Origin: OriginLeadPortal}
	engagedAdmin := Actor{ID: adminID, Role: RoleAdmin, Origin: OriginEngagedPortal}

	tests := []struct {
		name    string
		status  Status
		actor   Actor
		request Status
		wantErr error
		wantTo  Status
	}{
		{"admin any stage", StatusPendingScopeApproval, admin(), StatusScopeApprovalCompleted, nil, StatusPendingDepartmentalEngagement},
		{"lead admin on admin portal", StatusPendingScopeApproval, leadAdmin, StatusScopeApprovalCompleted, ErrUnauthorized, ""},
		{"lead admin elsewhere", StatusPendingScopeApproval, leadAdminElsewhere, StatusScopeApprovalCompleted, nil, StatusPendingDepartmentalEngagement},
		{"graphics completes mockup", StatusPendingMockup, staff(DepartmentGraphics), StatusMockupCompleted, nil, StatusPendingProofReading},
		{"graphics wrong predecessor", StatusPendingPhotography, staff(DepartmentGraphics), StatusMockupCompleted, ErrInvalidStateTransition, ""},
		{"production completes production", StatusPendingProduction, staff(DepartmentProduction), StatusProductionCompleted, nil, StatusPendingQualityControl},
		{"photography", StatusPendingPhotography, staff(DepartmentPhotography), StatusPhotographyCompleted, nil, StatusPendingPackaging},
		{"front desk feedback", StatusPendingFeedback, staff(DepartmentFrontDesk), StatusFeedbackCompleted, nil, StatusCompleted},
		{"stores cannot deliver", StatusPendingDeliveryPickup, staff(DepartmentStores), StatusDelivered, ErrUnauthorized, ""},
		{"quality gate admin portal", StatusPendingQualityControl, admin(), StatusQualityControlCompleted, nil, StatusPendingPhotography},
		{"quality gate wrong origin", StatusPendingQualityControl, engagedAdmin, StatusQualityControlCompleted, ErrUnauthorized, ""},
		{"quality gate wrong predecessor", StatusPendingPhotography, admin(), StatusQualityControlCompleted, ErrInvalidStateTransition, ""},
		{"quality gate staff", StatusPendingProofReading, staff(DepartmentGraphics), StatusProofReadingCompleted, ErrUnauthorized, ""},
		{"lead finishes", StatusCompleted, lead(), StatusFinished, nil, StatusFinished},
		{"lead cannot skip", StatusPendingMockup, lead(), StatusMockupCompleted, ErrUnauthorized, ""},
		{"staff other move", StatusPendingMockup, staff(DepartmentOutsourcing), StatusMockupCompleted, ErrUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := projectAt(t, ProjectTypeStandard, tt.status)
			require.NoError(t, p.MarkInvoiceSent(admin(), t0))
			require.NoError(t, p.VerifyPayment(admin(), PaymentFull, "", t0))
			_, _ = p.UploadMockup(admin(), "file://m.pdf", t0)
			require.NoError(t, p.ApproveMockup(admin(), 1, t0))
			p.ClearDomainEvents()

			outcome, err := p.Transition(tt.actor, tt.request, TransitionOptions{}, t0)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, p.Status())
				assert.Empty(t, p.DomainEvents())
				return
			}
			require.NoError(t, err)
			require.True(t, outcome.Applied())
			assert.Equal(t, tt.wantTo, p.Status())
			assert.Equal(t, tt.wantTo, outcome.To)

			changed := eventsOf[*StatusChanged](p)
			require.Len(t, changed, 1)
			assert.Equal(t, tt.status, changed[0].From)
			assert.Equal(t, tt.request, changed[0].Requested)
			assert.Equal(t, tt.wantTo, changed[0].To)
		})
	}
}

func TestTransition_RejectsInvalidRequests(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingMockup)

	_, err := p.Transition(admin(), StatusPendingQuoteRequest, TransitionOptions{}, t0)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = p.Transition(admin(), StatusOnHold, TransitionOptions{}, t0)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = p.Transition(admin(), StatusPendingMockup, TransitionOptions{}, t0)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	assertHoldInvariant(t, p)
}

func TestTransition_QuoteWorkflow(t *testing.T) {
	p := projectAt(t, ProjectTypeQuote, StatusPendingSendResponse)
	outcome, err := p.Transition(staff(DepartmentFrontDesk), StatusResponseSent, TransitionOptions{}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, outcome.To)
}

func TestTransition_ScenarioA_BillingBlocksAutoAdvance(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingProofReading)

	outcome, err := p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{}, t0)
	require.NoError(t, err)
	require.NotNil(t, outcome.Block)
	assert.False(t, outcome.Applied())
	assert.True(t, outcome.NewBlock)
	assert.Equal(t, GateBilling, outcome.Block.Code)
	assert.Equal(t, StatusPendingProduction, outcome.Block.TargetStatus)
	assert.Equal(t, []Requirement{RequirementInvoice, RequirementPaymentAny}, outcome.Block.Missing)
	assert.Equal(t, StatusPendingProofReading, p.Status())

	blocked := eventsOf[*TransitionBlocked](p)
	require.Len(t, blocked, 1)
	assert.Len(t, p.GateWatches(), 1)

	// The same block again is not re-announced.
	p.ClearDomainEvents()
	outcome, err = p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{}, t0)
	require.NoError(t, err)
	assert.False(t, outcome.NewBlock)
	assert.Empty(t, p.DomainEvents())
}

func TestTransition_ScenarioB_ClearedOnceThenSucceeds(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingProofReading)
	_, err := p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{}, t0)
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.MarkInvoiceSent(admin(), t0))
	assert.Empty(t, eventsOf[*GateCleared](p), "payment still missing")
	assert.Equal(t, []Requirement{RequirementPaymentAny}, p.GateWatches()[0].Missing)

	require.NoError(t, p.VerifyPayment(admin(), PaymentFull, "RCPT-7", t0))
	cleared := eventsOf[*GateCleared](p)
	require.Len(t, cleared, 1)
	assert.Equal(t, GateBilling, cleared[0].Gate)
	assert.Empty(t, p.GateWatches())

	outcome, err := p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{}, t0)
	require.NoError(t, err)
	assert.True(t, outcome.Applied())
	assert.Equal(t, StatusPendingProduction, p.Status())
	assert.Len(t, eventsOf[*GateCleared](p), 1)
}

func TestTransition_BillingOverride(t *testing.T) {
	t.Run("admin bypasses billing", func(t *testing.T) {
		p := projectAt(t, ProjectTypeStandard, StatusPendingProofReading)
		outcome, err := p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{AllowBillingOverride: true}, t0)
		require.NoError(t, err)
		assert.True(t, outcome.Applied())
		assert.Equal(t, StatusPendingProduction, p.Status())
		assert.Equal(t, []Requirement{RequirementInvoice, RequirementPaymentAny}, outcome.Overridden)

		used := eventsOf[*BillingOverrideUsed](p)
		require.Len(t, used, 1)
		assert.Equal(t, adminID, used[0].AdminID)
	})

	t.Run("non-admin flag is ignored", func(t *testing.T) {
		p := projectAt(t, ProjectTypeStandard, StatusPendingPackaging)
		outcome, err := p.Transition(staff(DepartmentStores), StatusPackagingCompleted, TransitionOptions{AllowBillingOverride: true}, t0)
		require.NoError(t, err)
		require.NotNil(t, outcome.Block)
		assert.Equal(t, []Requirement{RequirementPaymentFullOrAuthorized}, outcome.Block.Missing)
		assert.Equal(t, StatusPendingPackaging, p.Status())
		assert.Empty(t, eventsOf[*BillingOverrideUsed](p))
	})

	t.Run("override does not skip other gates", func(t *testing.T) {
		p := projectAt(t, ProjectTypeStandard, StatusPendingMockup)
		outcome, err := p.Transition(admin(), StatusMockupCompleted, TransitionOptions{AllowBillingOverride: true}, t0)
		require.NoError(t, err)
		require.NotNil(t, outcome.Block)
		assert.Equal(t, GateMockup, outcome.Block.Code)
	})

	t.Run("no event when nothing was missing", func(t *testing.T) {
		p := projectAt(t, ProjectTypeStandard, StatusPendingProofReading)
		require.NoError(t, p.MarkInvoiceSent(admin(), t0))
		require.NoError(t, p.VerifyPayment(admin(), PaymentPO, "", t0))
		p.ClearDomainEvents()
		outcome, err := p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{AllowBillingOverride: true}, t0)
		require.NoError(t, err)
		assert.Empty(t, outcome.Overridden)
		assert.Empty(t, eventsOf[*BillingOverrideUsed](p))
	})
}

func TestTransition_SuccessDropsWatchesSilently(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingProofReading)
	_, err := p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{}, t0)
	require.NoError(t, err)
	require.Len(t, p.GateWatches(), 1)
	p.ClearDomainEvents()

	_, err = p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{AllowBillingOverride: true}, t0)
	require.NoError(t, err)
	assert.Empty(t, p.GateWatches())
	assert.Empty(t, eventsOf[*GateCleared](p))
}

func TestTransition_OverlaysBlock(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingMockup)
	_, err := p.SetHold(admin(), true, "client away", "", t0)
	require.NoError(t, err)

	_, err = p.Transition(admin(), StatusMockupCompleted, TransitionOptions{}, t0)
	assert.ErrorIs(t, err, ErrProjectOnHold)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	require.NoError(t, p.Cancel(admin(), "client withdrew", t0))
	_, err = p.Transition(admin(), StatusMockupCompleted, TransitionOptions{}, t0)
	assert.ErrorIs(t, err, ErrProjectFrozen)
}
