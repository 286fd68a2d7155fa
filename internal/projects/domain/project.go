package domain

import (
	"slices"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/jobflow/internal/shared/domain"
	"github.com/google/uuid"
)

// Project is a production job moving through the shop pipeline. It is the
// aggregate root for status, overlays, approval sub-documents and lineage.
type Project struct {
	sharedDomain.BaseAggregateRoot
	orderNumber string
	name        string
	projectType ProjectType
	leadID      uuid.UUID
	assistantID uuid.UUID
	status      Status

	hold         Hold
	cancellation Cancellation

	departments      []Department
	acknowledgements []Acknowledgement

	mockup         Mockup
	sampleRequired bool
	sampleApproval SampleApproval
	invoice        Invoice
	payments       []PaymentVerification
	feedbacks      []Feedback
	gateWatches    []GateWatch

	corporateEmergency bool

	lineageID       uuid.UUID
	parentProjectID uuid.UUID
	versionNumber   int
	isLatest        bool
	versionState    VersionState
	reopenReason    string
}

// NewProjectParams describes a project at intake. Departments must already
// be canonical.
type NewProjectParams struct {
	OrderNumber        string
	Name               string
	Type               ProjectType
	LeadID             uuid.UUID
	AssistantID        uuid.UUID
	Departments        []Department
	SampleRequired     bool
	CorporateEmergency bool
	CreatedBy          uuid.UUID
}

// NewProject creates version 1 of a new lineage in the workflow's initial status.
func NewProject(params NewProjectParams, now time.Time) (*Project, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !params.Type.IsValid() {
		return nil, ErrInvalidProjectType
	}
	if params.CorporateEmergency && params.Type != ProjectTypeCorporateJob {
		return nil, ErrCorporateEmergencyNotAllowed
	}
	depts, err := uniqueDepartments(params.Departments)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	p := &Project{
		BaseAggregateRoot:  sharedDomain.NewBaseAggregateRootAt(id, now),
		orderNumber:        strings.TrimSpace(params.OrderNumber),
		name:               name,
		projectType:        params.Type,
		leadID:             params.LeadID,
		assistantID:        params.AssistantID,
		status:             InitialStatus(params.Type),
		departments:        depts,
		sampleRequired:     params.SampleRequired,
		sampleApproval:     SampleApproval{Status: ApprovalPending},
		mockup:             Mockup{ClientApproval: ClientApproval{Status: ApprovalPending}},
		corporateEmergency: params.CorporateEmergency,
		lineageID:          id,
		versionNumber:      1,
		isLatest:           true,
		versionState:       VersionActive,
	}
	p.AddDomainEvent(NewProjectCreated(p, params.CreatedBy, now))
	return p, nil
}

func uniqueDepartments(in []Department) ([]Department, error) {
	out := make([]Department, 0, len(in))
	for _, d := range in {
		if !d.IsValid() {
			return nil, ErrUnknownDepartment
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Getters
func (p *Project) OrderNumber() string            { return p.orderNumber }
func (p *Project) Name() string                   { return p.name }
func (p *Project) Type() ProjectType              { return p.projectType }
func (p *Project) LeadID() uuid.UUID              { return p.leadID }
func (p *Project) AssistantID() uuid.UUID         { return p.assistantID }
func (p *Project) Status() Status                 { return p.status }
func (p *Project) Hold() Hold                     { return p.hold }
func (p *Project) Cancellation() Cancellation     { return p.cancellation }
func (p *Project) IsOnHold() bool                 { return p.hold.IsOnHold }
func (p *Project) IsCancelled() bool              { return p.cancellation.IsCancelled }
func (p *Project) Mockup() Mockup                 { return p.mockup.clone() }
func (p *Project) SampleRequired() bool           { return p.sampleRequired }
func (p *Project) SampleApproval() SampleApproval { return p.sampleApproval }
func (p *Project) Invoice() Invoice               { return p.invoice }
func (p *Project) CorporateEmergency() bool       { return p.corporateEmergency }
func (p *Project) LineageID() uuid.UUID           { return p.lineageID }
func (p *Project) ParentProjectID() uuid.UUID     { return p.parentProjectID }
func (p *Project) VersionNumber() int             { return p.versionNumber }
func (p *Project) IsLatestVersion() bool          { return p.isLatest }
func (p *Project) VersionState() VersionState     { return p.versionState }
func (p *Project) ReopenReason() string           { return p.reopenReason }

func (p *Project) Departments() []Department { return slices.Clone(p.departments) }
func (p *Project) Acknowledgements() []Acknowledgement {
	return slices.Clone(p.acknowledgements)
}
func (p *Project) Payments() []PaymentVerification { return slices.Clone(p.payments) }
func (p *Project) Feedbacks() []Feedback           { return slices.Clone(p.feedbacks) }
func (p *Project) GateWatches() []GateWatch        { return slices.Clone(p.gateWatches) }

// Stakeholders returns the lead and assistant, skipping unset ids.
func (p *Project) Stakeholders() []uuid.UUID {
	var ids []uuid.UUID
	for _, id := range []uuid.UUID{p.leadID, p.assistantID} {
		if id != uuid.Nil && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (p *Project) hasPayment(t PaymentType) bool {
	return slices.ContainsFunc(p.payments, func(v PaymentVerification) bool { return v.Type == t })
}

func (p *Project) acknowledged(d Department) bool {
	return slices.ContainsFunc(p.acknowledgements, func(a Acknowledgement) bool { return a.Department == d })
}

// guardMutable rejects mutations while an overlay freezes the project.
func (p *Project) guardMutable() error {
	if p.cancellation.IsCancelled {
		return ErrProjectFrozen
	}
	if p.hold.IsOnHold {
		return ErrProjectOnHold
	}
	return nil
}

func (p *Project) touch(now time.Time) {
	p.Touch(now)
}

// Snapshot is the flat persisted form of a Project.
type Snapshot struct {
	ID                 uuid.UUID
	OrderNumber        string
	Name               string
	Type               ProjectType
	LeadID             uuid.UUID
	AssistantID        uuid.UUID
	Status             Status
	Hold               Hold
	Cancellation       Cancellation
	Departments        []Department
	Acknowledgements   []Acknowledgement
	Mockup             Mockup
	SampleRequired     bool
	SampleApproval     SampleApproval
	Invoice            Invoice
	Payments           []PaymentVerification
	Feedbacks          []Feedback
	GateWatches        []GateWatch
	CorporateEmergency bool
	LineageID          uuid.UUID
	ParentProjectID    uuid.UUID
	VersionNumber      int
	IsLatestVersion    bool
	VersionState       VersionState
	ReopenReason       string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Snapshot captures the current state.
func (p *Project) Snapshot() Snapshot {
	return Snapshot{
		ID:                 p.ID(),
		OrderNumber:        p.orderNumber,
		Name:               p.name,
		Type:               p.projectType,
		LeadID:             p.leadID,
		AssistantID:        p.assistantID,
		Status:             p.status,
		Hold:               p.hold,
		Cancellation:       p.cancellation,
		Departments:        p.Departments(),
		Acknowledgements:   p.Acknowledgements(),
		Mockup:             p.mockup.clone(),
		SampleRequired:     p.sampleRequired,
		SampleApproval:     p.sampleApproval,
		Invoice:            p.invoice,
		Payments:           p.Payments(),
		Feedbacks:          p.Feedbacks(),
		GateWatches:        p.GateWatches(),
		CorporateEmergency: p.corporateEmergency,
		LineageID:          p.lineageID,
		ParentProjectID:    p.parentProjectID,
		VersionNumber:      p.versionNumber,
		IsLatestVersion:    p.isLatest,
		VersionState:       p.versionState,
		ReopenReason:       p.reopenReason,
		Version:            p.Version(),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
}

// RehydrateProject recreates a project from persisted state. Records
// written before lineage tracking default to a lineage of their own.
func RehydrateProject(s Snapshot) *Project {
	lineageID := s.LineageID
	if lineageID == uuid.Nil {
		lineageID = s.ID
	}
	versionNumber := s.VersionNumber
	if versionNumber < 1 {
		versionNumber = 1
	}
	versionState := s.VersionState
	if versionState == "" {
		versionState = VersionActive
	}
	if s.Mockup.ClientApproval.Status == "" {
		s.Mockup.ClientApproval.Status = ApprovalPending
	}
	if s.SampleApproval.Status == "" {
		s.SampleApproval.Status = ApprovalPending
	}
	entity := sharedDomain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt)
	return &Project{
		BaseAggregateRoot:  sharedDomain.RehydrateBaseAggregateRoot(entity, s.Version),
		orderNumber:        s.OrderNumber,
		name:               s.Name,
		projectType:        s.Type,
		leadID:             s.LeadID,
		assistantID:        s.AssistantID,
		status:             s.Status,
		hold:               s.Hold,
		cancellation:       s.Cancellation,
		departments:        slices.Clone(s.Departments),
		acknowledgements:   slices.Clone(s.Acknowledgements),
		mockup:             s.Mockup.clone(),
		sampleRequired:     s.SampleRequired,
		sampleApproval:     s.SampleApproval,
		invoice:            s.Invoice,
		payments:           slices.Clone(s.Payments),
		feedbacks:          slices.Clone(s.Feedbacks),
		gateWatches:        slices.Clone(s.GateWatches),
		corporateEmergency: s.CorporateEmergency,
		lineageID:          lineageID,
		parentProjectID:    s.ParentProjectID,
		versionNumber:      versionNumber,
		isLatest:           s.IsLatestVersion,
		versionState:       versionState,
		reopenReason:       s.ReopenReason,
	}
}
