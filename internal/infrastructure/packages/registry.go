// Package packages holds the per package manager strategies: how to list
// outdated packages, how to parse that output and how to upgrade them.
package packages

import (
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

// Registry maps managers to their strategies.
type Registry struct {
	strategies map[domain.Manager]ports.ManagerStrategy
}

// NewRegistry registers the four built-in strategies. python is the
// interpreter used for pip.
func NewRegistry(python string) *Registry {
	r := &Registry{strategies: make(map[domain.Manager]ports.ManagerStrategy)}
	r.Register(WingetStrategy{})
	r.Register(AptStrategy{})
	r.Register(PipStrategy{Python: python})
	r.Register(NpmStrategy{})
	return r
}

// Register adds or replaces the strategy for its manager.
func (r *Registry) Register(s ports.ManagerStrategy) {
	r.strategies[s.Manager()] = s
}

// For implements ports.StrategyRegistry.
func (r *Registry) For(m domain.Manager) (ports.ManagerStrategy, bool) {
	s, ok := r.strategies[m]
	return s, ok
}

var _ ports.StrategyRegistry = (*Registry)(nil)

// splitLines normalizes line endings and drops blank lines. Progress
// spinners redraw with a bare carriage return, so only the text after the
// last one is kept.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if i := strings.LastIndex(line, "\r"); i >= 0 {
			line = line[i+1:]
		}
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func packageNames(pkgs []domain.OutdatedPackage) []string {
	names := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		names = append(names, pkg.Name)
	}
	return names
}

func bulkTarget(m domain.Manager, names []string) string {
	return string(m) + ":" + strings.Join(names, ",")
}
