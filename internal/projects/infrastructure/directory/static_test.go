package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/pkg/config"
)

func TestNewStatic(t *testing.T) {
	owner := uuid.New()
	anna := uuid.New()
	carl := uuid.New()

	catalog, err := config.ParseDepartmentCatalog([]byte(`
admins: [` + owner.String() + `]
departments:
  - name: graphics
    aliases: ["Art Room"]
    members: [` + anna.String() + `]
  - name: Front Desk
    members: [` + carl.String() + `, ` + anna.String() + `]
`))
	require.NoError(t, err)

	extraAdmin := uuid.New()
	d, err := NewStatic([]string{extraAdmin.String(), " ", owner.String()}, catalog)
	require.NoError(t, err)
	ctx := context.Background()

	admins, err := d.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{extraAdmin, owner}, admins)
	assert.True(t, d.IsAdmin(owner))
	assert.False(t, d.IsAdmin(anna))

	members, err := d.DepartmentMembers(ctx, domain.DepartmentFrontDesk)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{carl, anna}, members)

	dept, err := d.Registry().Canonicalize("art   room")
	require.NoError(t, err)
	assert.Equal(t, domain.DepartmentGraphics, dept)

	assert.ElementsMatch(t, []domain.Department{domain.DepartmentGraphics, domain.DepartmentFrontDesk}, d.DepartmentsOf(anna))
}

func TestNewStatic_Errors(t *testing.T) {
	t.Run("bad admin id", func(t *testing.T) {
		_, err := NewStatic([]string{"u-1"}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown department", func(t *testing.T) {
		_, err := NewStatic(nil, &config.DepartmentCatalog{
			Departments: []config.DepartmentEntry{{Name: "Accounts"}},
		})
		assert.ErrorIs(t, err, domain.ErrUnknownDepartment)
	})

	t.Run("bad member id", func(t *testing.T) {
		_, err := NewStatic(nil, &config.DepartmentCatalog{
			Departments: []config.DepartmentEntry{{Name: "stores", Members: []string{"nope"}}},
		})
		assert.Error(t, err)
	})
}
