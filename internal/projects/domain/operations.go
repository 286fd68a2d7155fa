package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Change names a sub-document mutation for events and the activity log.
type Change string

const (
	ChangeInvoiceSent            Change = "invoice_sent"
	ChangePaymentVerified        Change = "payment_verified"
	ChangeMockupUploaded         Change = "mockup_uploaded"
	ChangeMockupApproved         Change = "mockup_approved"
	ChangeMockupRejected         Change = "mockup_rejected"
	ChangeSampleRequirementSet   Change = "sample_requirement_set"
	ChangeSampleApproved         Change = "sample_approved"
	ChangeDepartmentsSet         Change = "departments_set"
	ChangeDepartmentAcknowledged Change = "department_acknowledged"
	ChangeFeedbackAdded          Change = "feedback_added"
	ChangeCorporateEmergencySet  Change = "corporate_emergency_set"
)

// updated stamps the project, re-evaluates gate watches and records the change.
func (p *Project) updated(actor Actor, change Change, details map[string]any, now time.Time) {
	p.touch(now)
	p.AddDomainEvent(NewProjectUpdated(p, actor.ID, change, details, now))
	p.refreshWatches(actor.ID, now)
}

// MarkInvoiceSent records that the client was invoiced. Repeating it is a no-op.
func (p *Project) MarkInvoiceSent(actor Actor, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	if p.invoice.Sent {
		return nil
	}
	at := now.UTC()
	p.invoice = Invoice{Sent: true, SentAt: &at, SentBy: actor.ID}
	p.updated(actor, ChangeInvoiceSent, nil, now)
	return nil
}

// VerifyPayment records a payment; each type may be verified once.
func (p *Project) VerifyPayment(actor Actor, paymentType PaymentType, reference string, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	if !paymentType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentType, paymentType)
	}
	if p.hasPayment(paymentType) {
		return fmt.Errorf("%w: %s", ErrDuplicatePayment, paymentType)
	}
	p.payments = append(p.payments, PaymentVerification{
		Type:       paymentType,
		Reference:  strings.TrimSpace(reference),
		VerifiedAt: now.UTC(),
		VerifiedBy: actor.ID,
	})
	p.updated(actor, ChangePaymentVerified, map[string]any{"type": paymentType}, now)
	return nil
}

// UploadMockup adds a new pending mockup version and returns its number.
func (p *Project) UploadMockup(actor Actor, fileURL string, now time.Time) (int, error) {
	if err := p.guardMutable(); err != nil {
		return 0, err
	}
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return 0, ErrEmptyMockupURL
	}
	version := 1
	if latest := p.mockup.Latest(); latest != nil {
		version = latest.Version + 1
	}
	approval := ClientApproval{Status: ApprovalPending}
	p.mockup.Versions = append(p.mockup.Versions, MockupVersion{
		Version:        version,
		FileURL:        fileURL,
		UploadedAt:     now.UTC(),
		UploadedBy:     actor.ID,
		ClientApproval: approval,
	})
	p.mockup.FileURL = fileURL
	p.mockup.Version = version
	p.mockup.ClientApproval = approval
	p.updated(actor, ChangeMockupUploaded, map[string]any{"version": version}, now)
	return version, nil
}

func (p *Project) latestMockupIndex(version int) (int, error) {
	if len(p.mockup.Versions) == 0 {
		return 0, ErrMockupNotFound
	}
	last := len(p.mockup.Versions) - 1
	if p.mockup.Versions[last].Version == version {
		return last, nil
	}
	for _, v := range p.mockup.Versions {
		if v.Version == version {
			return 0, fmt.Errorf("%w: v%d, latest is v%d", ErrMockupVersionNotLatest, version, p.mockup.Versions[last].Version)
		}
	}
	return 0, fmt.Errorf("%w: v%d", ErrMockupNotFound, version)
}

// ApproveMockup records client approval of the latest version.
func (p *Project) ApproveMockup(actor Actor, version int, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	i, err := p.latestMockupIndex(version)
	if err != nil {
		return err
	}
	at := now.UTC()
	p.mockup.Versions[i].ClientApproval = ClientApproval{
		Status:     ApprovalApproved,
		ApprovedAt: &at,
		ApprovedBy: actor.ID,
	}
	p.mockup.ClientApproval = p.mockup.Versions[i].ClientApproval
	p.updated(actor, ChangeMockupApproved, map[string]any{"version": version}, now)
	return nil
}

// RejectMockup records client rejection of the latest version.
func (p *Project) RejectMockup(actor Actor, version int, reason string, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	i, err := p.latestMockupIndex(version)
	if err != nil {
		return err
	}
	at := now.UTC()
	p.mockup.Versions[i].ClientApproval = ClientApproval{
		Status:          ApprovalRejected,
		RejectedAt:      &at,
		RejectedBy:      actor.ID,
		RejectionReason: strings.TrimSpace(reason),
	}
	p.mockup.ClientApproval = p.mockup.Versions[i].ClientApproval
	p.updated(actor, ChangeMockupRejected, map[string]any{"version": version, "reason": reason}, now)
	return nil
}

// SetSampleRequirement toggles the sample gate. Disabling resets the approval.
func (p *Project) SetSampleRequirement(actor Actor, required bool, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	p.sampleRequired = required
	if !required {
		p.sampleApproval = SampleApproval{Status: ApprovalPending}
	}
	p.updated(actor, ChangeSampleRequirementSet, map[string]any{"required": required}, now)
	return nil
}

// ApproveSample signs off the sample.
func (p *Project) ApproveSample(actor Actor, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	if !p.sampleRequired {
		return ErrSampleNotRequired
	}
	at := now.UTC()
	p.sampleApproval = SampleApproval{Status: ApprovalApproved, ApprovedAt: &at, ApprovedBy: actor.ID}
	p.updated(actor, ChangeSampleApproved, nil, now)
	return nil
}

// SetDepartments replaces the engaged departments. Acknowledgements of
// departments no longer engaged are dropped.
func (p *Project) SetDepartments(actor Actor, departments []Department, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	depts, err := uniqueDepartments(departments)
	if err != nil {
		return err
	}
	p.departments = depts
	p.acknowledgements = slices.DeleteFunc(p.acknowledgements, func(a Acknowledgement) bool {
		return !slices.Contains(depts, a.Department)
	})
	p.updated(actor, ChangeDepartmentsSet, map[string]any{"departments": depts}, now)
	return nil
}

// AcknowledgeDepartment records that an engaged department accepted the job.
func (p *Project) AcknowledgeDepartment(actor Actor, department Department, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	if !slices.Contains(p.departments, department) {
		return fmt.Errorf("%w: %s", ErrDepartmentNotEngaged, department)
	}
	if p.acknowledged(department) {
		return nil
	}
	p.acknowledgements = append(p.acknowledgements, Acknowledgement{
		Department: department,
		UserID:     actor.ID,
		At:         now.UTC(),
	})
	p.updated(actor, ChangeDepartmentAcknowledged, map[string]any{"department": department}, now)
	return nil
}

// AddFeedback appends a client feedback note.
func (p *Project) AddFeedback(actor Actor, feedbackType FeedbackType, notes string, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	if feedbackType != FeedbackPositive && feedbackType != FeedbackNegative {
		return fmt.Errorf("%w: %q", ErrInvalidFeedbackType, feedbackType)
	}
	p.feedbacks = append(p.feedbacks, Feedback{
		Type:  feedbackType,
		Notes: strings.TrimSpace(notes),
		By:    actor.ID,
		At:    now.UTC(),
	})
	p.updated(actor, ChangeFeedbackAdded, map[string]any{"type": feedbackType}, now)
	return nil
}

// SetCorporateEmergency toggles the corporate emergency flag.
func (p *Project) SetCorporateEmergency(actor Actor, enabled bool, now time.Time) error {
	if err := p.guardMutable(); err != nil {
		return err
	}
	if enabled && p.projectType != ProjectTypeCorporateJob {
		return ErrCorporateEmergencyNotAllowed
	}
	p.corporateEmergency = enabled
	p.updated(actor, ChangeCorporateEmergencySet, map[string]any{"enabled": enabled}, now)
	return nil
}
