package domain

import (
	"fmt"
	"strings"
)

// Department is a canonical department key.
type Department string

const (
	DepartmentGraphics    Department = "graphics"
	DepartmentProduction  Department = "production"
	DepartmentStores      Department = "stores"
	DepartmentPhotography Department = "photography"
	DepartmentFrontDesk   Department = "front_desk"
	DepartmentOutsourcing Department = "outsourcing"
)

// Departments lists every canonical department.
func Departments() []Department {
	return []Department{
		DepartmentGraphics,
		DepartmentProduction,
		DepartmentStores,
		DepartmentPhotography,
		DepartmentFrontDesk,
		DepartmentOutsourcing,
	}
}

// IsValid reports whether d is a canonical department.
func (d Department) IsValid() bool {
	switch d {
	case DepartmentGraphics, DepartmentProduction, DepartmentStores,
		DepartmentPhotography, DepartmentFrontDesk, DepartmentOutsourcing:
		return true
	}
	return false
}

var builtinAliases = map[string]Department{
	"graphics":        DepartmentGraphics,
	"graphics/design": DepartmentGraphics,
	"graphic design":  DepartmentGraphics,
	"design":          DepartmentGraphics,
	"production":      DepartmentProduction,
	"stores":          DepartmentStores,
	"store":           DepartmentStores,
	"photography":     DepartmentPhotography,
	"photo":           DepartmentPhotography,
	"front desk":      DepartmentFrontDesk,
	"front_desk":      DepartmentFrontDesk,
	"frontdesk":       DepartmentFrontDesk,
	"front office":    DepartmentFrontDesk,
	"outsourcing":     DepartmentOutsourcing,
	"outsourced":      DepartmentOutsourcing,
}

// DepartmentRegistry maps free-form department names onto canonical keys.
// It is immutable once built.
type DepartmentRegistry struct {
	aliases map[string]Department
}

func aliasKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NewDepartmentRegistry builds a registry from the built-in aliases plus
// extra, which maps alias to a canonical name or an existing alias.
func NewDepartmentRegistry(extra map[string]string) (*DepartmentRegistry, error) {
	aliases := make(map[string]Department, len(builtinAliases)+len(extra))
	for k, v := range builtinAliases {
		aliases[k] = v
	}
	for alias, target := range extra {
		dept, ok := aliases[aliasKey(target)]
		if !ok {
			return nil, fmt.Errorf("%w: alias %q points at unknown department %q", ErrUnknownDepartment, alias, target)
		}
		key := aliasKey(alias)
		if existing, ok := aliases[key]; ok && existing != dept {
			return nil, fmt.Errorf("alias %q already maps to %s", alias, existing)
		}
		aliases[key] = dept
	}
	return &DepartmentRegistry{aliases: aliases}, nil
}

// DefaultDepartmentRegistry returns a registry with built-in aliases only.
func DefaultDepartmentRegistry() *DepartmentRegistry {
	r, _ := NewDepartmentRegistry(nil)
	return r
}

// Canonicalize resolves a department name or alias.
func (r *DepartmentRegistry) Canonicalize(name string) (Department, error) {
	if dept, ok := r.aliases[aliasKey(name)]; ok {
		return dept, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDepartment, name)
}

// CanonicalizeAll resolves names, dropping duplicates while keeping order.
func (r *DepartmentRegistry) CanonicalizeAll(names []string) ([]Department, error) {
	out := make([]Department, 0, len(names))
	seen := make(map[Department]bool, len(names))
	for _, name := range names {
		dept, err := r.Canonicalize(name)
		if err != nil {
			return nil, err
		}
		if !seen[dept] {
			seen[dept] = true
			out = append(out, dept)
		}
	}
	return out, nil
}
