package packages

import (
	"regexp"
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
)

// aptRow matches "name/suite latest arch [upgradable from: current]".
var aptRow = regexp.MustCompile(`^([^/\s]+)/(\S+)\s+(\S+)\s+(\S+)\s+\[upgradable from:\s*([^\]\s]+)\s*\]`)

// AptStrategy scans with `apt list --upgradable` and upgrades in bulk.
type AptStrategy struct{}

func (AptStrategy) Manager() domain.Manager { return domain.ManagerApt }

func (AptStrategy) ListInvocation() domain.Invocation {
	return domain.Invocation{Program: "apt", Args: []string{"list", "--upgradable"}}
}

func (AptStrategy) AcceptsExit(code int) bool { return code == 0 }

// Parse reads the upgradable listing. Rows whose versions do not follow the
// Debian grammar are skipped; rows that are not actually newer are dropped.
func (AptStrategy) Parse(raw string) ([]domain.OutdatedPackage, int) {
	var pkgs []domain.OutdatedPackage
	skipped := 0
	for _, line := range splitLines(raw) {
		if isAptNoise(line) {
			continue
		}
		m := aptRow.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}
		name, latest, current := m[1], m[3], m[5]
		cmp, err := compareDeb(latest, current)
		if err != nil {
			skipped++
			continue
		}
		if cmp <= 0 {
			continue
		}
		pkgs = append(pkgs, domain.OutdatedPackage{
			Manager:        domain.ManagerApt,
			Name:           name,
			CurrentVersion: current,
			LatestVersion:  latest,
		})
	}
	return pkgs, skipped
}

// UpdateInvocations upgrades every listed package in one elevated apt-get run.
func (AptStrategy) UpdateInvocations(pkgs []domain.OutdatedPackage) []domain.Invocation {
	if len(pkgs) == 0 {
		return nil
	}
	names := packageNames(pkgs)
	args := append([]string{"install", "--only-upgrade", "-y"}, names...)
	return []domain.Invocation{{
		Target:  bulkTarget(domain.ManagerApt, names),
		Program: "apt-get",
		Args:    args,
		Elevate: true,
	}}
}

func isAptNoise(line string) bool {
	return strings.HasPrefix(line, "Listing...") ||
		strings.HasPrefix(line, "WARNING:") ||
		strings.HasPrefix(line, "N: ")
}
