package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound indicates the requested project was not found.
	ErrProjectNotFound = errors.New("project not found")

	// ErrUnauthorized indicates the actor may not perform the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidStateTransition indicates the project is not in a state that
	// allows the operation.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrProjectOnHold indicates a mutation was attempted while on hold.
	ErrProjectOnHold = fmt.Errorf("%w: project is on hold", ErrInvalidStateTransition)

	// ErrProjectFrozen indicates the project is cancelled; only reactivate is allowed.
	ErrProjectFrozen = errors.New("project is cancelled")

	// ErrLineageConflict indicates a reopen targeted a non-latest revision
	// or lost a race against another lineage write.
	ErrLineageConflict = errors.New("lineage conflict")

	// ErrStaleProject indicates the stored revision moved since it was read.
	ErrStaleProject = errors.New("project was modified concurrently")

	// ErrEmptyName indicates the name cannot be empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidProjectType indicates an unknown project type.
	ErrInvalidProjectType = errors.New("invalid project type")

	// ErrCorporateEmergencyNotAllowed indicates the flag was set on a non-corporate job.
	ErrCorporateEmergencyNotAllowed = errors.New("corporate emergency requires a Corporate Job")

	ErrUnknownDepartment      = errors.New("unknown department")
	ErrDepartmentNotEngaged   = errors.New("department is not engaged on this project")
	ErrInvalidPaymentType     = errors.New("invalid payment type")
	ErrDuplicatePayment       = errors.New("payment type already verified")
	ErrEmptyMockupURL         = errors.New("mockup file url cannot be empty")
	ErrMockupNotFound         = errors.New("mockup version not found")
	ErrMockupVersionNotLatest = errors.New("only the latest mockup version can be reviewed")
	ErrSampleNotRequired      = errors.New("sample approval is not required")
	ErrInvalidFeedbackType    = errors.New("invalid feedback type")
)
