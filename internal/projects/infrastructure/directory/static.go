// Package directory resolves admins and department members from the
// operator's configuration.
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/pkg/config"
	"github.com/google/uuid"
)

// Static is an in-memory directory loaded once at startup.
type Static struct {
	registry *domain.DepartmentRegistry
	admins   []uuid.UUID
	members  map[domain.Department][]uuid.UUID
}

// NewStatic builds a directory from the configured admin IDs and the
// department catalog. Catalog aliases extend the built-in alias table.
func NewStatic(adminIDs []string, catalog *config.DepartmentCatalog) (*Static, error) {
	if catalog == nil {
		catalog = &config.DepartmentCatalog{}
	}

	extra := make(map[string]string)
	for _, entry := range catalog.Departments {
		for _, alias := range entry.Aliases {
			extra[alias] = entry.Name
		}
	}
	registry, err := domain.NewDepartmentRegistry(extra)
	if err != nil {
		return nil, fmt.Errorf("department catalog: %w", err)
	}

	d := &Static{
		registry: registry,
		members:  make(map[domain.Department][]uuid.UUID),
	}
	if d.admins, err = parseIDs(append(append([]string(nil), adminIDs...), catalog.Admins...)); err != nil {
		return nil, fmt.Errorf("admin ids: %w", err)
	}
	for _, entry := range catalog.Departments {
		dept, err := registry.Canonicalize(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("department catalog: %w", err)
		}
		ids, err := parseIDs(entry.Members)
		if err != nil {
			return nil, fmt.Errorf("department %s: %w", dept, err)
		}
		d.members[dept] = appendUnique(d.members[dept], ids...)
	}
	return d, nil
}

// Registry returns the alias registry the directory was built with.
func (d *Static) Registry() *domain.DepartmentRegistry {
	return d.registry
}

// Admins returns the configured admin IDs.
func (d *Static) Admins(context.Context) ([]uuid.UUID, error) {
	return append([]uuid.UUID(nil), d.admins...), nil
}

// DepartmentMembers returns the members of dept.
func (d *Static) DepartmentMembers(_ context.Context, dept domain.Department) ([]uuid.UUID, error) {
	return append([]uuid.UUID(nil), d.members[dept]...), nil
}

// IsAdmin reports whether id is a configured admin.
func (d *Static) IsAdmin(id uuid.UUID) bool {
	for _, a := range d.admins {
		if a == id {
			return true
		}
	}
	return false
}

// DepartmentsOf returns the departments id belongs to.
func (d *Static) DepartmentsOf(id uuid.UUID) []domain.Department {
	var out []domain.Department
	for _, dept := range domain.Departments() {
		for _, m := range d.members[dept] {
			if m == id {
				out = append(out, dept)
				break
			}
		}
	}
	return out
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		ids = appendUnique(ids, id)
	}
	return ids, nil
}

func appendUnique(ids []uuid.UUID, add ...uuid.UUID) []uuid.UUID {
	for _, id := range add {
		dup := false
		for _, existing := range ids {
			if existing == id {
				dup = true
				break
			}
		}
		if !dup {
			ids = append(ids, id)
		}
	}
	return ids
}
