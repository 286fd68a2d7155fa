package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	p, err := NewProject(NewProjectParams{
		OrderNumber: " ORD-7 ",
		Name:        "Banner",
		Type:        ProjectTypeStandard,
		LeadID:      leadID,
		AssistantID: staffID,
		Departments: []Department{DepartmentGraphics, DepartmentGraphics, DepartmentStores},
	}, t0)
	require.NoError(t, err)

	assert.Equal(t, "ORD-7", p.OrderNumber())
	assert.Equal(t, StatusOrderConfirmed, p.Status())
	assert.Equal(t, p.ID(), p.LineageID())
	assert.Equal(t, 1, p.VersionNumber())
	assert.True(t, p.IsLatestVersion())
	assert.Equal(t, VersionActive, p.VersionState())
	assert.Equal(t, []Department{DepartmentGraphics, DepartmentStores}, p.Departments())
	assert.Equal(t, t0, p.CreatedAt())
	assert.True(t, p.IsNew())
	assertHoldInvariant(t, p)

	created := eventsOf[*ProjectCreated](p)
	require.Len(t, created, 1)
	assert.Equal(t, "projects.project.created", created[0].RoutingKey())
}

func TestNewProject_Validation(t *testing.T) {
	_, err := NewProject(NewProjectParams{Name: " ", Type: ProjectTypeStandard}, t0)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewProject(NewProjectParams{Name: "x", Type: "Retail"}, t0)
	assert.ErrorIs(t, err, ErrInvalidProjectType)

	_, err = NewProject(NewProjectParams{Name: "x", Type: ProjectTypeStandard, CorporateEmergency: true}, t0)
	assert.ErrorIs(t, err, ErrCorporateEmergencyNotAllowed)

	_, err = NewProject(NewProjectParams{Name: "x", Type: ProjectTypeStandard, Departments: []Department{"accounts"}}, t0)
	assert.ErrorIs(t, err, ErrUnknownDepartment)

	p, err := NewProject(NewProjectParams{Name: "x", Type: ProjectTypeCorporateJob, CorporateEmergency: true}, t0)
	require.NoError(t, err)
	assert.True(t, p.CorporateEmergency())
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := projectAt(t, ProjectTypeStandard, StatusPendingProofReading)
	require.NoError(t, p.MarkInvoiceSent(admin(), t0))
	_, err := p.Transition(admin(), StatusProofReadingCompleted, TransitionOptions{}, t0)
	require.NoError(t, err)
	p.SetVersion(4)

	restored := RehydrateProject(p.Snapshot())
	assert.Equal(t, p.Snapshot(), restored.Snapshot())
	assert.Equal(t, 4, restored.Version())
	assert.Empty(t, restored.DomainEvents())
}

func TestStakeholders(t *testing.T) {
	p := newTestProject(t, ProjectTypeStandard)
	assert.Equal(t, []uuid.UUID{leadID}, p.Stakeholders())
}
