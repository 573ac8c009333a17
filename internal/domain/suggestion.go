package domain

import "strings"

// OSContext selects which shell dialect the advisor asks for.
type OSContext string

const (
	OSWindows OSContext = "windows"
	OSLinux   OSContext = "linux"
)

// ShellDialect is the human label used in prompts.
func (o OSContext) ShellDialect() string {
	if o == OSWindows {
		return "Windows PowerShell"
	}
	return "Linux/Mac Bash"
}

// ParseOSContext maps a GOOS-style name to an OSContext. Anything that is
// not Windows is treated as a POSIX shell host.
func ParseOSContext(value string) OSContext {
	if strings.EqualFold(strings.TrimSpace(value), "windows") {
		return OSWindows
	}
	return OSLinux
}

// CommandSuggestion is a single LLM-proposed command.
type CommandSuggestion struct {
	Command       string   `json:"command" yaml:"command"`
	Description   string   `json:"description" yaml:"description"`
	Prerequisites []string `json:"prerequisites" yaml:"prerequisites"`
	// Raw marks the descriptive entry built from unstructured reply text.
	Raw bool `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Executable reports whether the suggestion carries a runnable command.
func (s CommandSuggestion) Executable() bool {
	return !s.Raw && strings.TrimSpace(s.Command) != ""
}

// ReplyKind tags the shape the model answered with.
type ReplyKind string

const (
	ReplyParsedSuggestions ReplyKind = "parsed_suggestions"
	ReplyRawText           ReplyKind = "raw_text"
)

// AdvisorReply is either a parsed suggestion list or the verbatim reply text.
type AdvisorReply struct {
	Kind        ReplyKind
	Suggestions []CommandSuggestion
	Text        string
}

// Normalize converts either variant into the uniform suggestion sequence.
func (r AdvisorReply) Normalize() []CommandSuggestion {
	switch r.Kind {
	case ReplyParsedSuggestions:
		out := make([]CommandSuggestion, len(r.Suggestions))
		copy(out, r.Suggestions)
		return out
	case ReplyRawText:
		return []CommandSuggestion{{Description: r.Text, Raw: true}}
	default:
		return nil
	}
}

// RequestState tracks a single advisor request.
type RequestState string

const (
	StateIdle       RequestState = "idle"
	StateRequesting RequestState = "requesting"
	StateParsed     RequestState = "parsed"
	StateFailed     RequestState = "failed"
)

// Terminal reports whether no further transition can happen.
func (s RequestState) Terminal() bool {
	return s == StateParsed || s == StateFailed
}

// Advice is what the advisor use case hands back to the presentation layer.
type Advice struct {
	Request     string
	OS          OSContext
	State       RequestState
	Reply       AdvisorReply
	Suggestions []CommandSuggestion
	Risks       []RiskAssessment
	Err         error
}
