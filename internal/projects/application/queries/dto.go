package queries

import (
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// ProjectDTO is a read-only view of a project revision.
type ProjectDTO struct {
	ID                 uuid.UUID          `json:"id"`
	OrderNumber        string             `json:"order_number"`
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	Status             string             `json:"status"`
	LeadID             uuid.UUID          `json:"lead_id"`
	AssistantID        uuid.UUID          `json:"assistant_id,omitempty"`
	OnHold             bool               `json:"on_hold"`
	HoldReason         string             `json:"hold_reason,omitempty"`
	Cancelled          bool               `json:"cancelled"`
	Departments        []string           `json:"departments"`
	Acknowledged       []string           `json:"acknowledged"`
	MockupVersion      int                `json:"mockup_version"`
	MockupApproval     string             `json:"mockup_approval,omitempty"`
	SampleRequired     bool               `json:"sample_required"`
	SampleApproved     bool               `json:"sample_approved"`
	InvoiceSent        bool               `json:"invoice_sent"`
	Payments           []string           `json:"payments"`
	CorporateEmergency bool               `json:"corporate_emergency"`
	Watches            []domain.GateWatch `json:"gate_watches,omitempty"`
	LineageID          uuid.UUID          `json:"lineage_id"`
	ParentProjectID    uuid.UUID          `json:"parent_project_id,omitempty"`
	VersionNumber      int                `json:"version_number"`
	IsLatestVersion    bool               `json:"is_latest_version"`
	VersionState       string             `json:"version_state"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewProjectDTO maps a project to its view.
func NewProjectDTO(p *domain.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:                 p.ID(),
		OrderNumber:        p.OrderNumber(),
		Name:               p.Name(),
		Type:               string(p.Type()),
		Status:             string(p.Status()),
		LeadID:             p.LeadID(),
		AssistantID:        p.AssistantID(),
		OnHold:             p.IsOnHold(),
		HoldReason:         p.Hold().Reason,
		Cancelled:          p.IsCancelled(),
		SampleRequired:     p.SampleRequired(),
		SampleApproved:     p.SampleApproval().Status == domain.ApprovalApproved,
		InvoiceSent:        p.Invoice().Sent,
		CorporateEmergency: p.CorporateEmergency(),
		Watches:            p.GateWatches(),
		LineageID:          p.LineageID(),
		ParentProjectID:    p.ParentProjectID(),
		VersionNumber:      p.VersionNumber(),
		IsLatestVersion:    p.IsLatestVersion(),
		VersionState:       string(p.VersionState()),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
	for _, d := range p.Departments() {
		dto.Departments = append(dto.Departments, string(d))
	}
	for _, a := range p.Acknowledgements() {
		dto.Acknowledged = append(dto.Acknowledged, string(a.Department))
	}
	for _, pay := range p.Payments() {
		dto.Payments = append(dto.Payments, string(pay.Type))
	}
	if latest := p.Mockup().Latest(); latest != nil {
		dto.MockupVersion = latest.Version
		dto.MockupApproval = string(latest.ClientApproval.Status)
	}
	return dto
}
