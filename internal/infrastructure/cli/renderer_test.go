package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/termhelper/internal/domain"
)

func sampleReport() domain.ScanReport {
	return domain.ScanReport{
		Packages: []domain.OutdatedPackage{
			{Manager: domain.ManagerApt, Name: "curl", CurrentVersion: "7.81.0-1ubuntu1.15", LatestVersion: "7.81.0-1ubuntu1.16"},
			{Manager: domain.ManagerWinget, Name: "Git.Git", DisplayName: "Git", CurrentVersion: "2.43.0", LatestVersion: "2.44.0"},
		},
		Managers: []domain.ManagerStatus{
			{Manager: domain.ManagerApt, State: domain.ManagerScanned, Found: 1, SkippedLines: 2},
			{Manager: domain.ManagerNpm, State: domain.ManagerAbsent, ExitCode: domain.SpawnFailureExitCode},
			{Manager: domain.ManagerPip, State: domain.ManagerFailed, ExitCode: 2, Detail: "boom"},
		},
	}
}

func TestScanReportTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).ScanReport(sampleReport(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "MANAGER  PACKAGE  CURRENT")
	assert.Contains(t, out, "curl")
	assert.Contains(t, out, "Git ", "display name is preferred")
	assert.NotContains(t, out, "Git.Git")
	assert.Contains(t, out, "apt: 1 outdated, 2 unparsed line(s) skipped")
	assert.Contains(t, out, "npm: not installed")
	assert.Contains(t, out, "pip: scan failed (exit 2) boom")
}

func TestScanReportEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).ScanReport(domain.ScanReport{}, FormatTable))
	assert.Contains(t, buf.String(), "No outdated packages found.")
}

func TestScanReportJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).ScanReport(sampleReport(), FormatJSON))

	var decoded domain.ScanReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(sampleReport(), decoded); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestScanReportEmptyJSONHasLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).ScanReport(domain.ScanReport{}, FormatJSON))
	assert.Contains(t, buf.String(), `"packages": []`)
	assert.Contains(t, buf.String(), `"managers": []`)
}

func TestScanReportYAMLAndTOML(t *testing.T) {
	var yamlOut bytes.Buffer
	require.NoError(t, NewRenderer(&yamlOut).ScanReport(sampleReport(), FormatYAML))
	assert.Contains(t, yamlOut.String(), "name: curl")
	assert.Contains(t, yamlOut.String(), "display_name: Git")

	var tomlOut bytes.Buffer
	require.NoError(t, NewRenderer(&tomlOut).ScanReport(sampleReport(), FormatTOML))
	assert.Contains(t, tomlOut.String(), "[[packages]]")
	assert.Contains(t, tomlOut.String(), `name = "curl"`)
	assert.Contains(t, tomlOut.String(), `state = "absent"`)
}

func TestScanReportRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(&buf).ScanReport(sampleReport(), "xml")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, exitCodeForError(err))
}

func TestAdviceRendering(t *testing.T) {
	advice := domain.Advice{
		Request: "delete old logs",
		OS:      domain.OSLinux,
		State:   domain.StateParsed,
		Reply:   domain.AdvisorReply{Kind: domain.ReplyParsedSuggestions},
		Suggestions: []domain.CommandSuggestion{
			{Command: "find /var/log -name '*.gz' -delete", Description: "Remove rotated logs", Prerequisites: []string{"findutils"}},
			{Command: "ls /var/log", Description: "Inspect first", Prerequisites: []string{}},
		},
		Risks: []domain.RiskAssessment{
			{Level: domain.RiskHigh, Action: domain.ActionExplicitConfirm, Reasons: []string{"Deletes files"}},
			{Level: domain.RiskSafe, Action: domain.ActionAllow},
		},
	}

	var buf bytes.Buffer
	NewRenderer(&buf).Advice(advice)
	out := buf.String()
	assert.Contains(t, out, "Suggestions for Linux/Mac Bash")
	assert.Contains(t, out, " 1. find /var/log -name '*.gz' -delete")
	assert.Contains(t, out, "Remove rotated logs")
	assert.Contains(t, out, "Prerequisites: findutils")
	assert.Contains(t, out, "Risk: HIGH (explicit_confirm)")
	assert.Contains(t, out, "- Deletes files")
	assert.Contains(t, out, " 2. ls /var/log")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Risk:")), "safe commands carry no risk line")
}

func TestAdviceRawText(t *testing.T) {
	reply := domain.AdvisorReply{Kind: domain.ReplyRawText, Text: "Use the Disk Cleanup utility."}
	var buf bytes.Buffer
	NewRenderer(&buf).Advice(domain.Advice{OS: domain.OSWindows, Reply: reply, Suggestions: reply.Normalize()})

	assert.Contains(t, buf.String(), "Suggestions for Windows PowerShell")
	assert.Contains(t, buf.String(), "did not return structured commands")
	assert.Contains(t, buf.String(), "Use the Disk Cleanup utility.")
}

func TestExecutionsRendering(t *testing.T) {
	results := []domain.ExecutionResult{
		domain.NewExitResult("echo hi", 0, "hi\n", ""),
		domain.NewExitResult("false", 1, "", "failed\n"),
		domain.NewRefusal("rm -rf /", domain.FailureBlocked, "blocked by guardrail: Recursive deletion of root"),
	}
	var buf bytes.Buffer
	NewRenderer(&buf).Executions(results)
	out := buf.String()
	assert.Contains(t, out, "✓ echo hi\n  hi")
	assert.Contains(t, out, "✗ false (exit 1)\n  failed")
	assert.Contains(t, out, "- rm -rf / (blocked)\n  blocked by guardrail")
}

func TestUpdateResultsRendering(t *testing.T) {
	ok := domain.NewExitResult("apt:curl,git", 0, "", "")
	ok.Summary = "Updated"
	failed := domain.NewExitResult("requests", 1, "", "ERROR: network unreachable")
	var buf bytes.Buffer
	NewRenderer(&buf).UpdateResults([]domain.ExecutionResult{ok, failed})

	assert.Contains(t, buf.String(), "✓ apt:curl,git: Updated\n")
	assert.Contains(t, buf.String(), "✗ requests: ERROR: network unreachable\n")
}

func TestHealthRendering(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Health(domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Config", Status: domain.HealthOK, Details: "loaded"},
		{Name: "Model", Status: domain.HealthWarn, Details: "OPENAI_MODEL not set"},
	}})
	assert.Equal(t, "[OK] Config - loaded\n[WARN] Model - OPENAI_MODEL not set\n", buf.String())
}
