package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/security"
)

// DepartmentCatalog is the operator-maintained list of departments, their
// extra name aliases and members, plus additional admin ids.
//
//	admins: [6f1c0a52-3d1e-4c7a-9a43-52f0c1d2e001]
//	departments:
//	  - name: graphics
//	    aliases: ["Art Room"]
//	    members: [6f1c0a52-3d1e-4c7a-9a43-52f0c1d2e101]
type DepartmentCatalog struct {
	Admins      []string          `yaml:"admins"`
	Departments []DepartmentEntry `yaml:"departments"`
}

// DepartmentEntry describes one department in the catalog.
type DepartmentEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Members []string `yaml:"members"`
}

// LoadDepartmentCatalog reads and validates a catalog file. An empty path
// yields an empty catalog.
func LoadDepartmentCatalog(path string) (*DepartmentCatalog, error) {
	if path == "" {
		return &DepartmentCatalog{}, nil
	}
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read department catalog: %w", err)
	}
	return ParseDepartmentCatalog(data)
}

// ParseDepartmentCatalog decodes catalog YAML.
func ParseDepartmentCatalog(data []byte) (*DepartmentCatalog, error) {
	var catalog DepartmentCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse department catalog: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Departments))
	for i, entry := range catalog.Departments {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("department catalog: entry %d has no name", i)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("department catalog: %q listed twice", name)
		}
		seen[key] = true
		catalog.Departments[i].Name = name
	}
	return &catalog, nil
}
