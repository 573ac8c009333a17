package packages

import (
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
)

// PipStrategy drives pip through the configured interpreter.
type PipStrategy struct {
	Python string
}

func (PipStrategy) Manager() domain.Manager { return domain.ManagerPip }

func (s PipStrategy) ListInvocation() domain.Invocation {
	return domain.Invocation{
		Program: s.python(),
		Args:    []string{"-m", "pip", "list", "--outdated", "--format=columns"},
	}
}

func (PipStrategy) AcceptsExit(code int) bool { return code == 0 }

// Parse reads the columns format:
//
//	Package    Version Latest Type
//	---------- ------- ------ -----
//	requests   2.28.0  2.31.0 wheel
func (PipStrategy) Parse(raw string) ([]domain.OutdatedPackage, int) {
	var pkgs []domain.OutdatedPackage
	skipped := 0
	for _, line := range splitLines(raw) {
		if isPipNoise(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			skipped++
			continue
		}
		name, current, latest := fields[0], fields[1], fields[2]
		cmp, err := comparePep(latest, current)
		if err != nil {
			skipped++
			continue
		}
		if cmp <= 0 {
			continue
		}
		pkgs = append(pkgs, domain.OutdatedPackage{
			Manager:        domain.ManagerPip,
			Name:           name,
			CurrentVersion: current,
			LatestVersion:  latest,
		})
	}
	return pkgs, skipped
}

// UpdateInvocations upgrades packages one at a time.
func (s PipStrategy) UpdateInvocations(pkgs []domain.OutdatedPackage) []domain.Invocation {
	invs := make([]domain.Invocation, 0, len(pkgs))
	for _, pkg := range pkgs {
		invs = append(invs, domain.Invocation{
			Target:  pkg.Name,
			Program: s.python(),
			Args:    []string{"-m", "pip", "install", "--upgrade", pkg.Name},
		})
	}
	return invs
}

func (s PipStrategy) python() string {
	if s.Python == "" {
		return domain.DefaultPythonUnix
	}
	return s.Python
}

func isPipNoise(line string) bool {
	return strings.HasPrefix(line, "Package ") ||
		strings.HasPrefix(line, "---") ||
		strings.HasPrefix(line, "WARNING:") ||
		strings.HasPrefix(line, "[notice]")
}
