package updates

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/infrastructure/packages"
	"github.com/doeshing/termhelper/internal/pkg/logger"
)

const aptOutput = `Listing... Done
curl/jammy-updates 7.81.0-1ubuntu1.16 amd64 [upgradable from: 7.81.0-1ubuntu1.15]
git/jammy-updates 1:2.34.1-1ubuntu1.11 amd64 [upgradable from: 1:2.34.1-1ubuntu1.10]
`

const pipOutput = `Package  Version Latest Type
-------- ------- ------ -----
requests 2.28.0  2.31.0 wheel
`

const npmOutput = `{"typescript":{"current":"5.1.6","wanted":"5.1.6","latest":"5.4.5"}}`

// scriptedRunner answers by program name and records every invocation.
type scriptedRunner struct {
	mu      sync.Mutex
	results map[string]domain.ExecutionResult
	calls   []domain.Invocation
}

func (r *scriptedRunner) Run(_ context.Context, inv domain.Invocation) domain.ExecutionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, inv)
	key := inv.CommandLine()
	for prefix, result := range r.results {
		if strings.HasPrefix(key, prefix) {
			result.Target = inv.Target
			if result.Target == "" {
				result.Target = key
			}
			return result
		}
	}
	return domain.NewSpawnFailure(key, errors.New("exec: \""+inv.Program+"\": executable file not found in $PATH"))
}

func (r *scriptedRunner) RunCommand(ctx context.Context, command string, elevate bool) domain.ExecutionResult {
	return r.Run(ctx, domain.Invocation{Program: command, Elevate: elevate})
}

type fixedHost struct{ os domain.OSContext }

func (h fixedHost) OS() domain.OSContext { return h.os }
func (fixedHost) Available(string) bool  { return true }

func newService(runner *scriptedRunner) *Service {
	return &Service{
		Registry:  packages.NewRegistry("python3"),
		Runner:    runner,
		Host:      fixedHost{os: domain.OSLinux},
		Summarize: packages.Summarize,
		Logger:    logger.Nop(),
	}
}

func TestScanDefaultsSkipAbsentAndMergeInOrder(t *testing.T) {
	runner := &scriptedRunner{results: map[string]domain.ExecutionResult{
		"apt list":       domain.NewExitResult("", 0, aptOutput, ""),
		"python3 -m pip": domain.NewExitResult("", 0, pipOutput, ""),
		"npm outdated":   domain.NewExitResult("", 1, npmOutput, ""),
	}}
	svc := newService(runner)

	report, err := svc.Scan(context.Background(), nil)
	require.NoError(t, err)

	want := []domain.OutdatedPackage{
		{Manager: domain.ManagerApt, Name: "curl", CurrentVersion: "7.81.0-1ubuntu1.15", LatestVersion: "7.81.0-1ubuntu1.16"},
		{Manager: domain.ManagerApt, Name: "git", CurrentVersion: "1:2.34.1-1ubuntu1.10", LatestVersion: "1:2.34.1-1ubuntu1.11"},
		{Manager: domain.ManagerPip, Name: "requests", CurrentVersion: "2.28.0", LatestVersion: "2.31.0"},
		{Manager: domain.ManagerNpm, Name: "typescript", CurrentVersion: "5.1.6", LatestVersion: "5.4.5"},
	}
	if diff := cmp.Diff(want, report.Packages); diff != "" {
		t.Errorf("packages mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, report.Managers, 3)
	assert.Equal(t, domain.ManagerApt, report.Managers[0].Manager)
	assert.Equal(t, 2, report.Managers[0].Found)
	assert.Equal(t, domain.ManagerNpm, report.Managers[2].Manager)
	assert.Equal(t, domain.ManagerScanned, report.Managers[2].State)
	assert.Equal(t, 1, report.Managers[2].ExitCode)
}

func TestScanAbsentManagerIsExcluded(t *testing.T) {
	runner := &scriptedRunner{results: map[string]domain.ExecutionResult{
		"python3 -m pip": domain.NewExitResult("", 0, pipOutput, ""),
	}}
	svc := newService(runner)

	report, err := svc.Scan(context.Background(), []domain.Manager{domain.ManagerWinget, domain.ManagerPip})
	require.NoError(t, err)

	require.Len(t, report.Packages, 1)
	assert.Equal(t, domain.ManagerPip, report.Packages[0].Manager)
	assert.Equal(t, domain.ManagerAbsent, report.Managers[0].State)
	assert.Empty(t, report.ByManager(domain.ManagerWinget))
}

func TestScanRejectedExitIsFailure(t *testing.T) {
	runner := &scriptedRunner{results: map[string]domain.ExecutionResult{
		"apt list": domain.NewExitResult("", 100, "", "E: Could not open lock file\nmore detail"),
	}}
	svc := newService(runner)

	report, err := svc.Scan(context.Background(), []domain.Manager{domain.ManagerApt})
	require.NoError(t, err)
	assert.Empty(t, report.Packages)
	require.Len(t, report.Managers, 1)
	assert.Equal(t, domain.ManagerFailed, report.Managers[0].State)
	assert.Equal(t, "E: Could not open lock file", report.Managers[0].Detail)
}

func TestScanIsIdempotent(t *testing.T) {
	runner := &scriptedRunner{results: map[string]domain.ExecutionResult{
		"apt list":       domain.NewExitResult("", 0, aptOutput, ""),
		"python3 -m pip": domain.NewExitResult("", 0, pipOutput, ""),
		"npm outdated":   domain.NewExitResult("", 1, npmOutput, ""),
	}}
	svc := newService(runner)

	first, err := svc.Scan(context.Background(), nil)
	require.NoError(t, err)
	second, err := svc.Scan(context.Background(), nil)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second scan differs (-first +second):\n%s", diff)
	}
}

func TestScanDeduplicatesManagersAndPackages(t *testing.T) {
	dup := "Package Version Latest Type\nrequests 2.28.0 2.31.0 wheel\nrequests 2.28.0 2.31.0 wheel\n"
	runner := &scriptedRunner{results: map[string]domain.ExecutionResult{
		"python3 -m pip": domain.NewExitResult("", 0, dup, ""),
	}}
	svc := newService(runner)

	report, err := svc.Scan(context.Background(), []domain.Manager{domain.ManagerPip, domain.ManagerPip})
	require.NoError(t, err)
	assert.Len(t, report.Packages, 1)
	assert.Len(t, report.Managers, 1)
	assert.Len(t, runner.calls, 1)
}

func TestUpdateAllIndependentResults(t *testing.T) {
	runner := &scriptedRunner{results: map[string]domain.ExecutionResult{
		"python3 -m pip install --upgrade broken":   domain.NewExitResult("", 1, "", "ERROR: No matching distribution found for broken"),
		"python3 -m pip install --upgrade requests": domain.NewExitResult("", 0, "Successfully installed requests-2.31.0", ""),
	}}
	svc := newService(runner)

	results := svc.UpdateAll(context.Background(), []domain.OutdatedPackage{
		{Manager: domain.ManagerPip, Name: "broken"},
		{Manager: domain.ManagerPip, Name: "requests"},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, "broken", results[0].Target)
	assert.Contains(t, results[0].Summary, "No matching distribution")
	assert.True(t, results[1].Success)
	assert.Equal(t, "requests", results[1].Target)
	assert.Equal(t, "Installed successfully", results[1].Summary)
}

func TestUpdateAllGroupsByCapability(t *testing.T) {
	runner := &scriptedRunner{results: map[string]domain.ExecutionResult{
		"npm install":     domain.NewExitResult("", 0, "changed 2 packages", ""),
		"apt-get install": domain.NewExitResult("", 0, "", ""),
		"python3 -m pip":  domain.NewExitResult("", 0, "Requirement already satisfied: six", ""),
	}}
	svc := newService(runner)

	results := svc.UpdateAll(context.Background(), []domain.OutdatedPackage{
		{Manager: domain.ManagerNpm, Name: "typescript"},
		{Manager: domain.ManagerApt, Name: "curl"},
		{Manager: domain.ManagerPip, Name: "six"},
		{Manager: domain.ManagerNpm, Name: "eslint"},
		{Manager: domain.ManagerApt, Name: "git"},
		{Manager: domain.ManagerApt, Name: "git"},
	})

	targets := make([]string, 0, len(results))
	for _, r := range results {
		targets = append(targets, r.Target)
	}
	assert.Equal(t, []string{"npm:typescript,eslint", "apt:curl,git", "six"}, targets)
	assert.Equal(t, "Already up to date", results[2].Summary)

	require.Len(t, runner.calls, 3)
	assert.True(t, runner.calls[1].Elevate, "apt runs elevated")
	assert.False(t, runner.calls[0].Elevate)
}

func TestUpdateAllUnknownManager(t *testing.T) {
	svc := newService(&scriptedRunner{})

	results := svc.UpdateAll(context.Background(), []domain.OutdatedPackage{{Manager: "brew", Name: "wget"}})
	require.Len(t, results, 1)
	assert.Equal(t, domain.FailureSpawn, results[0].Failure)
	assert.Equal(t, "wget", results[0].Target)
}

func TestUpdateAllNothingToDo(t *testing.T) {
	runner := &scriptedRunner{}
	results := newService(runner).UpdateAll(context.Background(), nil)
	assert.Empty(t, results)
	assert.Empty(t, runner.calls)
}
