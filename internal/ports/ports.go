// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application services in internal/application depend only on these
// interfaces; the concrete adapters live under internal/infrastructure:
//   - ProcessRunner: spawns OS processes (package managers, suggested commands)
//   - ChatClient / SuggestionProvider: talk to the chat-completion endpoint
//   - OutputParser / ManagerStrategy: per package manager parsing and update planning
//   - SecurityService: guardrail evaluation of suggested commands
package ports

import (
	"context"

	"github.com/doeshing/termhelper/internal/domain"
)

// ConfigProvider returns the configuration loaded at startup.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ProcessRunner executes external commands and never fails with a Go error:
// spawn failures come back as an ExecutionResult.
type ProcessRunner interface {
	Run(ctx context.Context, inv domain.Invocation) domain.ExecutionResult
	RunCommand(ctx context.Context, command string, elevate bool) domain.ExecutionResult
}

// ChatMessage is a role/content pair sent to the chat endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient sends one stateless chat-completion request and returns the
// assistant message content. Failures are *domain.AdvisorError values.
type ChatClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// SuggestionProvider asks the model for commands and parses its reply.
type SuggestionProvider interface {
	Suggest(ctx context.Context, request string, os domain.OSContext) (domain.AdvisorReply, error)
}

// OutputParser turns a manager's "list outdated" output into packages.
// The second return value counts skipped (unparseable) lines.
type OutputParser interface {
	Parse(raw string) ([]domain.OutdatedPackage, int)
}

// ManagerStrategy bundles everything that differs between package managers.
type ManagerStrategy interface {
	OutputParser
	Manager() domain.Manager
	ListInvocation() domain.Invocation
	// AcceptsExit reports whether output from a run with this exit code is still meaningful.
	AcceptsExit(code int) bool
	// UpdateInvocations returns one invocation per package, or a single bulk
	// invocation when the manager can update a group at once.
	UpdateInvocations(pkgs []domain.OutdatedPackage) []domain.Invocation
}

// StrategyRegistry selects the strategy for a manager.
type StrategyRegistry interface {
	For(domain.Manager) (ManagerStrategy, bool)
}

// SecurityService evaluates commands against guardrail rules.
type SecurityService interface {
	Evaluate(command string) (domain.RiskAssessment, error)
}

// ContextCollector describes the host the tool runs on.
type ContextCollector interface {
	OS() domain.OSContext
	Available(program string) bool
}

// ConfirmationPrompter handles interactive user confirmations.
type ConfirmationPrompter interface {
	Confirm(question string) (bool, error)
	ConfirmRisk(risk domain.RiskAssessment) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
