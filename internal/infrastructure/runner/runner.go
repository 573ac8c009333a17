package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

const cancelWaitDelay = 2 * time.Second

// LocalRunner runs processes on the host with the invoking user's environment.
// It never imposes a timeout of its own; callers that want one pass a context
// with a deadline.
type LocalRunner struct {
	shell     string
	elevation string
	goos      string
	stdin     io.Reader
	logger    ports.Logger
}

// Option customizes a LocalRunner.
type Option func(*LocalRunner)

// WithShell overrides the POSIX shell used by RunCommand.
func WithShell(shell string) Option {
	return func(r *LocalRunner) {
		if shell != "" {
			r.shell = shell
		}
	}
}

// WithElevation sets the privilege escalation wrapper (sudo, doas, ...).
func WithElevation(wrapper string) Option {
	return func(r *LocalRunner) {
		if wrapper != "" {
			r.elevation = wrapper
		}
	}
}

// WithGOOS pretends to run on another OS; used to test invocation building.
func WithGOOS(goos string) Option {
	return func(r *LocalRunner) { r.goos = goos }
}

// WithStdin sets the reader attached to elevated processes.
func WithStdin(in io.Reader) Option {
	return func(r *LocalRunner) { r.stdin = in }
}

// NewLocalRunner builds a runner; shell defaults to $SHELL, then /bin/sh.
func NewLocalRunner(logger ports.Logger, opts ...Option) *LocalRunner {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = domain.DefaultPosixShell
	}
	r := &LocalRunner{
		shell:     shell,
		elevation: domain.DefaultElevation,
		goos:      runtime.GOOS,
		stdin:     os.Stdin,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunCommand runs free-form command text through the platform shell.
func (r *LocalRunner) RunCommand(ctx context.Context, command string, elevate bool) domain.ExecutionResult {
	return r.Run(ctx, r.ShellInvocation(command, elevate))
}

// ShellInvocation wraps command text for the platform shell.
func (r *LocalRunner) ShellInvocation(command string, elevate bool) domain.Invocation {
	if r.goos == "windows" {
		return domain.Invocation{
			Target:  command,
			Program: "powershell",
			Args:    []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", command},
			Elevate: elevate,
		}
	}
	return domain.Invocation{
		Target:  command,
		Program: r.shell,
		Args:    []string{"-c", command},
		Elevate: elevate,
	}
}

// Prepare applies the elevation wrapper. Elevation only exists off Windows;
// there the flag is ignored and the process runs with the caller's rights.
func (r *LocalRunner) Prepare(inv domain.Invocation) (string, []string) {
	if inv.Elevate && r.goos != "windows" {
		return r.elevation, append([]string{inv.Program}, inv.Args...)
	}
	return inv.Program, inv.Args
}

// Run implements ports.ProcessRunner.
func (r *LocalRunner) Run(ctx context.Context, inv domain.Invocation) domain.ExecutionResult {
	if ctx == nil {
		ctx = context.Background()
	}
	target := inv.Target
	if target == "" {
		target = inv.CommandLine()
	}

	program, args := r.Prepare(inv)
	c := exec.CommandContext(ctx, program, args...)
	// Orphaned grandchildren may keep the output pipes open after cancellation.
	c.WaitDelay = cancelWaitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if inv.Elevate && r.stdin != nil {
		c.Stdin = r.stdin
	}

	r.logger.Debug("spawning process", map[string]interface{}{
		"program": program,
		"args":    args,
		"elevate": inv.Elevate,
	})

	start := time.Now()
	err := c.Run()
	duration := time.Since(start)

	var result domain.ExecutionResult
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result = domain.NewExitResult(target, 0, stdout.String(), stderr.String())
	case ctx.Err() != nil:
		result = domain.NewExitResult(target, domain.SpawnFailureExitCode, stdout.String(), stderr.String())
		result.Failure = domain.FailureTimeout
		result.Stderr = appendLine(result.Stderr, ctx.Err().Error())
	case errors.As(err, &exitErr):
		// ExitCode is -1 when the process was killed by a signal.
		result = domain.NewExitResult(target, exitErr.ExitCode(), stdout.String(), stderr.String())
	default:
		result = domain.NewSpawnFailure(target, err)
	}
	result.Duration = duration

	fields := map[string]interface{}{
		"target":    target,
		"exit_code": result.ExitCode,
		"duration":  duration.String(),
	}
	if result.Success {
		r.logger.Debug("process finished", fields)
	} else {
		fields["failure"] = string(result.Failure)
		r.logger.Info("process failed", fields)
	}
	return result
}

func appendLine(existing, line string) string {
	if existing == "" {
		return line
	}
	if existing[len(existing)-1] != '\n' {
		existing += "\n"
	}
	return existing + line
}

var _ ports.ProcessRunner = (*LocalRunner)(nil)
