package domain

import (
	"fmt"
	"strings"
)

// Manager enumerates the supported package managers.
type Manager string

const (
	ManagerWinget Manager = "winget"
	ManagerApt    Manager = "apt"
	ManagerPip    Manager = "pip"
	ManagerNpm    Manager = "npm"
)

// AllManagers lists every supported manager in canonical order.
var AllManagers = []Manager{ManagerWinget, ManagerApt, ManagerPip, ManagerNpm}

// ParseManager validates a manager name.
func ParseManager(value string) (Manager, error) {
	m := Manager(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range AllManagers {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown package manager %q", value)
}

// DefaultManagers returns the managers that make sense on the given OS.
func DefaultManagers(os OSContext) []Manager {
	if os == OSWindows {
		return []Manager{ManagerWinget, ManagerPip, ManagerNpm}
	}
	return []Manager{ManagerApt, ManagerPip, ManagerNpm}
}

// OutdatedPackage is one installed package behind its latest version.
type OutdatedPackage struct {
	Manager        Manager `json:"manager" yaml:"manager" toml:"manager"`
	Name           string  `json:"name" yaml:"name" toml:"name"`
	DisplayName    string  `json:"display_name,omitempty" yaml:"display_name,omitempty" toml:"display_name,omitempty"`
	CurrentVersion string  `json:"current_version" yaml:"current_version" toml:"current_version"`
	LatestVersion  string  `json:"latest_version" yaml:"latest_version" toml:"latest_version"`
}

// Key is the uniqueness key (manager, name).
func (p OutdatedPackage) Key() string {
	return string(p.Manager) + "/" + p.Name
}

// Label returns the display name when known, otherwise the name.
func (p OutdatedPackage) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// ManagerState is the outcome of scanning one manager.
type ManagerState string

const (
	ManagerScanned ManagerState = "scanned"
	ManagerAbsent  ManagerState = "absent"
	ManagerFailed  ManagerState = "failed"
)

// ManagerStatus records how a single manager's scan went.
type ManagerStatus struct {
	Manager      Manager      `json:"manager" yaml:"manager" toml:"manager"`
	State        ManagerState `json:"state" yaml:"state" toml:"state"`
	ExitCode     int          `json:"exit_code" yaml:"exit_code" toml:"exit_code"`
	Found        int          `json:"found" yaml:"found" toml:"found"`
	SkippedLines int          `json:"skipped_lines" yaml:"skipped_lines" toml:"skipped_lines"`
	Detail       string       `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
}

// ScanReport is the result of one full scan.
type ScanReport struct {
	Packages []OutdatedPackage `json:"packages" yaml:"packages" toml:"packages"`
	Managers []ManagerStatus   `json:"managers" yaml:"managers" toml:"managers"`
}

// ByManager filters the report's packages to a single manager.
func (r ScanReport) ByManager(m Manager) []OutdatedPackage {
	var out []OutdatedPackage
	for _, pkg := range r.Packages {
		if pkg.Manager == m {
			out = append(out, pkg)
		}
	}
	return out
}
