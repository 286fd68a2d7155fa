package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// MarkInvoiceSentCommand records that the invoice went out.
type MarkInvoiceSentCommand struct {
	Meta
	ProjectID uuid.UUID
}

// MarkInvoiceSentHandler handles the MarkInvoiceSentCommand.
type MarkInvoiceSentHandler struct {
	pipeline *Pipeline
}

// NewMarkInvoiceSentHandler creates a new MarkInvoiceSentHandler.
func NewMarkInvoiceSentHandler(pipeline *Pipeline) *MarkInvoiceSentHandler {
	return &MarkInvoiceSentHandler{pipeline: pipeline}
}

// Handle executes the MarkInvoiceSentCommand.
func (h *MarkInvoiceSentHandler) Handle(ctx context.Context, cmd MarkInvoiceSentCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.MarkInvoiceSent(cmd.Actor, now)
	})
}

// VerifyPaymentCommand records a verified payment.
type VerifyPaymentCommand struct {
	Meta
	ProjectID uuid.UUID
	Type      domain.PaymentType
	Reference string
}

// VerifyPaymentHandler handles the VerifyPaymentCommand.
type VerifyPaymentHandler struct {
	pipeline *Pipeline
}

// NewVerifyPaymentHandler creates a new VerifyPaymentHandler.
func NewVerifyPaymentHandler(pipeline *Pipeline) *VerifyPaymentHandler {
	return &VerifyPaymentHandler{pipeline: pipeline}
}

// Handle executes the VerifyPaymentCommand.
func (h *VerifyPaymentHandler) Handle(ctx context.Context, cmd VerifyPaymentCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.VerifyPayment(cmd.Actor, cmd.Type, cmd.Reference, now)
	})
}
