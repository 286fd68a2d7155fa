package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Hold is the on-hold overlay.
type Hold struct {
	IsOnHold       bool       `json:"is_on_hold"`
	Reason         string     `json:"reason,omitempty"`
	HeldAt         *time.Time `json:"held_at,omitempty"`
	HeldBy         uuid.UUID  `json:"held_by,omitempty"`
	PreviousStatus Status     `json:"previous_status,omitempty"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
	ReleasedBy     uuid.UUID  `json:"released_by,omitempty"`
}

// Cancellation is the cancel overlay. ResumedHoldState keeps the hold
// document exactly as it was when the project was cancelled.
type Cancellation struct {
	IsCancelled      bool       `json:"is_cancelled"`
	Reason           string     `json:"reason,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy      uuid.UUID  `json:"cancelled_by,omitempty"`
	ResumedStatus    Status     `json:"resumed_status,omitempty"`
	ResumedHoldState Hold       `json:"resumed_hold_state"`
	ReactivatedAt    *time.Time `json:"reactivated_at,omitempty"`
	ReactivatedBy    uuid.UUID  `json:"reactivated_by,omitempty"`
}

// Acknowledgement records a department confirming its engagement.
type Acknowledgement struct {
	Department Department `json:"department"`
	UserID     uuid.UUID  `json:"user_id"`
	At         time.Time  `json:"at"`
}

// ApprovalStatus is the client verdict on a mockup version.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ClientApproval is the client review of one mockup version.
type ClientApproval struct {
	Status          ApprovalStatus `json:"status"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy      uuid.UUID      `json:"approved_by,omitempty"`
	RejectedAt      *time.Time     `json:"rejected_at,omitempty"`
	RejectedBy      uuid.UUID      `json:"rejected_by,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
}

// MockupVersion is one uploaded mockup.
type MockupVersion struct {
	Version        int            `json:"version"`
	FileURL        string         `json:"file_url"`
	UploadedAt     time.Time      `json:"uploaded_at"`
	UploadedBy     uuid.UUID      `json:"uploaded_by"`
	ClientApproval ClientApproval `json:"client_approval"`
}

// Mockup holds every uploaded version; FileURL, Version and ClientApproval
// mirror the latest one.
type Mockup struct {
	FileURL        string          `json:"file_url,omitempty"`
	Version        int             `json:"version"`
	Versions       []MockupVersion `json:"versions,omitempty"`
	ClientApproval ClientApproval  `json:"client_approval"`
}

// Latest returns the highest-numbered version, or nil.
func (m Mockup) Latest() *MockupVersion {
	if len(m.Versions) == 0 {
		return nil
	}
	latest := m.Versions[len(m.Versions)-1]
	return &latest
}

func (m Mockup) clone() Mockup {
	m.Versions = slices.Clone(m.Versions)
	return m
}

// SampleApproval is the sample sign-off.
type SampleApproval struct {
	Status     ApprovalStatus `json:"status"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy uuid.UUID      `json:"approved_by,omitempty"`
}

// Invoice tracks whether the client was invoiced.
type Invoice struct {
	Sent   bool       `json:"sent"`
	SentAt *time.Time `json:"sent_at,omitempty"`
	SentBy uuid.UUID  `json:"sent_by,omitempty"`
}

// PaymentType classifies a payment verification.
type PaymentType string

const (
	PaymentPart       PaymentType = "part_payment"
	PaymentFull       PaymentType = "full_payment"
	PaymentPO         PaymentType = "po"
	PaymentAuthorized PaymentType = "authorized"
)

// IsValid reports whether t is a known payment type.
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentPart, PaymentFull, PaymentPO, PaymentAuthorized:
		return true
	}
	return false
}

// PaymentVerification records one verified payment.
type PaymentVerification struct {
	Type       PaymentType `json:"type"`
	Reference  string      `json:"reference,omitempty"`
	VerifiedAt time.Time   `json:"verified_at"`
	VerifiedBy uuid.UUID   `json:"verified_by"`
}

// FeedbackType is the client sentiment.
type FeedbackType string

const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNegative FeedbackType = "negative"
)

// Feedback is one client feedback note.
type Feedback struct {
	Type  FeedbackType `json:"type"`
	Notes string       `json:"notes,omitempty"`
	By    uuid.UUID    `json:"by"`
	At    time.Time    `json:"at"`
}

// VersionState is the lifecycle of one revision within its lineage.
type VersionState string

const (
	VersionActive     VersionState = "active"
	VersionSuperseded VersionState = "superseded"
	VersionArchived   VersionState = "archived"
)
