package domain

import "time"

// Config is the process-wide configuration, read once at startup.
// Components receive it by value; nothing mutates it after loading.
type Config struct {
	LLM       LLMSettings       `yaml:"llm"`
	Execution ExecutionSettings `yaml:"execution"`
	Security  SecuritySettings  `yaml:"security"`
	LogLevel  string            `yaml:"log_level"`
}

// LLMSettings describes the chat-completion endpoint used by the advisor.
type LLMSettings struct {
	APIKey         string        `yaml:"-"`
	APIKeySource   string        `yaml:"api_key_source"`
	Model          string        `yaml:"model"`
	BaseURL        string        `yaml:"base_url"`
	Temperature    float64       `yaml:"temperature"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ExecutionSettings controls how subprocesses are spawned.
type ExecutionSettings struct {
	Shell     string `yaml:"shell"`
	Elevation string `yaml:"elevation"`
	Python    string `yaml:"python"`
}

// SecuritySettings defines guardrail behavior.
type SecuritySettings struct {
	Enabled   bool   `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}

// HasAPIKey reports whether any usable API key was configured.
func (c Config) HasAPIKey() bool {
	return c.LLM.APIKey != ""
}

// ChatCompletionsURL returns the full endpoint for chat completions.
func (c Config) ChatCompletionsURL() string {
	base := c.LLM.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/chat/completions"
}

// ElevationWrapper returns the privilege escalation program, "sudo" when unset.
func (c Config) ElevationWrapper() string {
	if c.Execution.Elevation == "" {
		return DefaultElevation
	}
	return c.Execution.Elevation
}
