package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Role is the coarse permission level of an actor.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Origin identifies the entry point a request came through.
type Origin string

const (
	OriginAdminPortal   Origin = "admin_portal"
	OriginEngagedPortal Origin = "engaged_portal"
	OriginLeadPortal    Origin = "lead_portal"
)

// Actor is the authenticated caller of a project operation. Departments
// are canonical.
type Actor struct {
	ID          uuid.UUID
	Role        Role
	Departments []Department
	Origin      Origin
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// InDepartment reports whether the actor belongs to d.
func (a Actor) InDepartment(d Department) bool {
	return slices.Contains(a.Departments, d)
}

// viaAdminPortal reports whether an admin is acting through the admin portal.
func (a Actor) viaAdminPortal() bool {
	return a.IsAdmin() && a.Origin == OriginAdminPortal
}
