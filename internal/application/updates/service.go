package updates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

// Service scans package managers for outdated packages and applies updates.
type Service struct {
	Registry ports.StrategyRegistry
	Runner   ports.ProcessRunner
	Host     ports.ContextCollector
	// Summarize condenses an update run for display; optional.
	Summarize func(domain.ExecutionResult) string
	Logger    ports.Logger
}

// Scan lists outdated packages for the given managers, or the host's
// defaults when none are given. Managers run concurrently; the report is
// merged in request order so repeated scans of unchanged hosts are equal.
func (s *Service) Scan(ctx context.Context, managers []domain.Manager) (domain.ScanReport, error) {
	if s.Registry == nil || s.Runner == nil || s.Logger == nil {
		return domain.ScanReport{}, errors.New("updates.Service dependencies not satisfied")
	}
	managers = uniqueManagers(managers)
	if len(managers) == 0 {
		managers = domain.DefaultManagers(s.hostOS())
	}

	type slot struct {
		pkgs   []domain.OutdatedPackage
		status domain.ManagerStatus
	}
	slots := make([]slot, len(managers))

	var wg sync.WaitGroup
	for i, manager := range managers {
		wg.Add(1)
		go func(i int, manager domain.Manager) {
			defer wg.Done()
			pkgs, status := s.scanOne(ctx, manager)
			slots[i] = slot{pkgs: pkgs, status: status}
		}(i, manager)
	}
	wg.Wait()

	report := domain.ScanReport{Packages: []domain.OutdatedPackage{}}
	seen := make(map[string]bool)
	for _, sl := range slots {
		found := 0
		for _, pkg := range sl.pkgs {
			if seen[pkg.Key()] {
				continue
			}
			seen[pkg.Key()] = true
			report.Packages = append(report.Packages, pkg)
			found++
		}
		sl.status.Found = found
		report.Managers = append(report.Managers, sl.status)
	}
	return report, nil
}

func (s *Service) scanOne(ctx context.Context, manager domain.Manager) ([]domain.OutdatedPackage, domain.ManagerStatus) {
	status := domain.ManagerStatus{Manager: manager}
	strategy, ok := s.Registry.For(manager)
	if !ok {
		status.State = domain.ManagerFailed
		status.Detail = fmt.Sprintf("no strategy registered for %s", manager)
		return nil, status
	}

	inv := strategy.ListInvocation()
	result := s.Runner.Run(ctx, inv)
	status.ExitCode = result.ExitCode
	fields := map[string]interface{}{
		"manager":   string(manager),
		"exit_code": result.ExitCode,
	}

	switch {
	case result.Failure == domain.FailureSpawn:
		status.State = domain.ManagerAbsent
		status.Detail = firstLine(result.Stderr)
		s.Logger.Debug("package manager not present", fields)
		return nil, status
	case result.Failure == domain.FailureTimeout || !strategy.AcceptsExit(result.ExitCode):
		status.State = domain.ManagerFailed
		status.Detail = firstLine(result.Output())
		s.Logger.Warn("package manager scan failed", fields)
		return nil, status
	}

	pkgs, skipped := strategy.Parse(result.Stdout)
	status.State = domain.ManagerScanned
	status.SkippedLines = skipped
	fields["found"] = len(pkgs)
	fields["skipped_lines"] = skipped
	s.Logger.Info("package manager scanned", fields)
	return pkgs, status
}

// UpdateAll upgrades the packages, grouped by manager in first-seen order.
// Each manager's strategy decides between one bulk invocation and one per
// package. Every invocation yields one result; failures never stop the rest.
func (s *Service) UpdateAll(ctx context.Context, pkgs []domain.OutdatedPackage) []domain.ExecutionResult {
	var order []domain.Manager
	groups := make(map[domain.Manager][]domain.OutdatedPackage)
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		if seen[pkg.Key()] {
			continue
		}
		seen[pkg.Key()] = true
		if _, ok := groups[pkg.Manager]; !ok {
			order = append(order, pkg.Manager)
		}
		groups[pkg.Manager] = append(groups[pkg.Manager], pkg)
	}

	var results []domain.ExecutionResult
	for _, manager := range order {
		strategy, ok := s.Registry.For(manager)
		if !ok {
			for _, pkg := range groups[manager] {
				results = append(results, domain.NewSpawnFailure(pkg.Name, fmt.Errorf("unsupported package manager %q", manager)))
			}
			continue
		}
		for _, inv := range strategy.UpdateInvocations(groups[manager]) {
			assert.NotEmpty(ctx, inv.Program, "update invocation without program")
			assert.NotEmpty(ctx, inv.Target, "update invocation without target")

			result := s.Runner.Run(ctx, inv)
			if s.Summarize != nil {
				result.Summary = s.Summarize(result)
			}
			s.Logger.Info("package update finished", map[string]interface{}{
				"manager":   string(manager),
				"target":    result.Target,
				"success":   result.Success,
				"exit_code": result.ExitCode,
			})
			results = append(results, result)
		}
	}
	return results
}

func (s *Service) hostOS() domain.OSContext {
	if s.Host == nil {
		return domain.OSLinux
	}
	return s.Host.OS()
}

func uniqueManagers(managers []domain.Manager) []domain.Manager {
	seen := make(map[domain.Manager]bool)
	var out []domain.Manager
	for _, m := range managers {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}
