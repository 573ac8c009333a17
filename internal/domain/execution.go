package domain

import (
	"strings"
	"time"
)

// FailureKind classifies why an execution did not succeed.
type FailureKind string

const (
	FailureNone     FailureKind = ""
	FailureSpawn    FailureKind = "spawn"
	FailureExit     FailureKind = "exit"
	FailureTimeout  FailureKind = "timeout"
	FailureBlocked  FailureKind = "blocked"
	FailureDeclined FailureKind = "declined" // the user refused a risk confirmation
)

// Invocation describes a process to start.
type Invocation struct {
	Target  string
	Program string
	Args    []string
	Elevate bool
}

// CommandLine renders the invocation for display.
func (i Invocation) CommandLine() string {
	parts := append([]string{i.Program}, i.Args...)
	return strings.Join(parts, " ")
}

// ExecutionResult wraps details from one process run.
type ExecutionResult struct {
	Target   string        `json:"target"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Success  bool          `json:"success"`
	Failure  FailureKind   `json:"failure,omitempty"`
	Duration time.Duration `json:"duration"`
	Summary  string        `json:"summary,omitempty"`
}

// Output returns stdout on success and stderr (or stdout if empty) otherwise.
func (r ExecutionResult) Output() string {
	if r.Success {
		return r.Stdout
	}
	if strings.TrimSpace(r.Stderr) != "" {
		return r.Stderr
	}
	return r.Stdout
}

// NewExitResult builds a result from an exit code, keeping Success == (ExitCode == 0).
func NewExitResult(target string, exitCode int, stdout, stderr string) ExecutionResult {
	result := ExecutionResult{
		Target:   target,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		Success:  exitCode == 0,
	}
	if exitCode != 0 {
		result.Failure = FailureExit
	}
	return result
}

// NewRefusal builds the result for a command that was never started.
func NewRefusal(target string, kind FailureKind, reason string) ExecutionResult {
	return ExecutionResult{
		Target:   target,
		ExitCode: SpawnFailureExitCode,
		Stderr:   reason,
		Failure:  kind,
	}
}

// NewSpawnFailure builds the result reported when a process could not start.
func NewSpawnFailure(target string, err error) ExecutionResult {
	return ExecutionResult{
		Target:   target,
		ExitCode: SpawnFailureExitCode,
		Stderr:   err.Error(),
		Failure:  FailureSpawn,
	}
}
