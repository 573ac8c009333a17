package packages

import (
	"encoding/json"
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
)

// NpmStrategy scans the packages npm resolves from the working directory.
// `npm outdated` exits 1 whenever it has something to report, so that code
// is accepted.
type NpmStrategy struct{}

type npmEntry struct {
	Current string `json:"current"`
	Wanted  string `json:"wanted"`
	Latest  string `json:"latest"`
}

func (NpmStrategy) Manager() domain.Manager { return domain.ManagerNpm }

func (NpmStrategy) ListInvocation() domain.Invocation {
	return domain.Invocation{Program: "npm", Args: []string{"outdated", "--json"}}
}

func (NpmStrategy) AcceptsExit(code int) bool { return code == 0 || code == 1 }

// Parse accepts the --json object, keeping the key order npm printed, and
// falls back to the plain table when the output is not JSON.
func (s NpmStrategy) Parse(raw string) ([]domain.OutdatedPackage, int) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, 0
	}
	if !strings.HasPrefix(trimmed, "{") {
		return s.parseTable(trimmed)
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, 1
	}
	var pkgs []domain.OutdatedPackage
	skipped := 0
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return pkgs, skipped + 1
		}
		name, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return pkgs, skipped + 1
		}
		entry, ok := decodeNpmEntry(value)
		// Packages that are not installed have no current version.
		if !ok || name == "" || entry.Current == "" || entry.Latest == "" {
			skipped++
			continue
		}
		if entry.Current == entry.Latest {
			continue
		}
		pkgs = append(pkgs, domain.OutdatedPackage{
			Manager:        domain.ManagerNpm,
			Name:           name,
			CurrentVersion: entry.Current,
			LatestVersion:  entry.Latest,
		})
	}
	return pkgs, skipped
}

// decodeNpmEntry handles both the single-object form and the array form npm
// emits when a package is installed in several locations.
func decodeNpmEntry(value json.RawMessage) (npmEntry, bool) {
	var entry npmEntry
	if err := json.Unmarshal(value, &entry); err == nil {
		return entry, true
	}
	var entries []npmEntry
	if err := json.Unmarshal(value, &entries); err != nil || len(entries) == 0 {
		return npmEntry{}, false
	}
	return entries[0], true
}

// parseTable reads "Package Current Wanted Latest Location" rows.
func (NpmStrategy) parseTable(raw string) ([]domain.OutdatedPackage, int) {
	var pkgs []domain.OutdatedPackage
	skipped := 0
	for _, line := range splitLines(raw) {
		if strings.HasPrefix(line, "Package ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[1] == "MISSING" {
			skipped++
			continue
		}
		if fields[1] == fields[3] {
			continue
		}
		pkgs = append(pkgs, domain.OutdatedPackage{
			Manager:        domain.ManagerNpm,
			Name:           fields[0],
			CurrentVersion: fields[1],
			LatestVersion:  fields[3],
		})
	}
	return pkgs, skipped
}

// UpdateInvocations installs every package at @latest in one run.
func (NpmStrategy) UpdateInvocations(pkgs []domain.OutdatedPackage) []domain.Invocation {
	if len(pkgs) == 0 {
		return nil
	}
	names := packageNames(pkgs)
	args := []string{"install"}
	for _, name := range names {
		args = append(args, name+"@latest")
	}
	return []domain.Invocation{{
		Target:  bulkTarget(domain.ManagerNpm, names),
		Program: "npm",
		Args:    args,
	}}
}
