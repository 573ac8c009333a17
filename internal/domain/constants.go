package domain

import "time"

// Environment variables read at startup.
const (
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvOpenAIModel      = "OPENAI_MODEL"
	EnvOpenAIBaseURL    = "OPENAI_BASE_URL"

	// EnvPrefix prefixes the tool's own settings (TERMHELPER_LOG_LEVEL, ...).
	EnvPrefix = "TERMHELPER"
)

// LLM defaults
const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultTemperature keeps command suggestions focused.
	DefaultTemperature = 0.3
	// DefaultRequestTimeout bounds a single chat-completion request.
	DefaultRequestTimeout = 60 * time.Second
)

// Execution defaults
const (
	DefaultElevation     = "sudo"
	DefaultPythonUnix    = "python3"
	DefaultPythonWindows = "python"
	DefaultPosixShell    = "/bin/sh"
)

// SpawnFailureExitCode is the synthetic exit code reported when a process
// could not be started at all.
const SpawnFailureExitCode = -1

// SummaryMaxLength caps the failure summary kept from update output.
const SummaryMaxLength = 300

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)
