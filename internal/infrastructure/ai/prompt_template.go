package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

const systemPromptTemplate = `You are a terminal expert on {{.Dialect}}. The user asks in natural language.
Respond with valid JSON only, no other text. Use this exact structure:
[
  {"command": "the command", "description": "Plain-language summary", "prerequisites": ["What the user needs first"]}
]
- command: one command for {{.Dialect}}.{{if .Windows}} Use PowerShell only.{{end}}
- description: short, simple words. No jargon. E.g. "Lists files in folder".
- prerequisites: simple items, e.g. "Internet" or "Admin rights". Use [] if none.
- Use one array entry per command, in the order they should run.
Output ONLY the JSON array, no markdown code blocks, no explanations.`

var systemPrompt = template.Must(template.New("system").Parse(systemPromptTemplate))

type templateData struct {
	Dialect string
	Windows bool
}

// BuildMessages renders the system instruction for the OS context followed
// by the user's literal request. No earlier turns are included.
func BuildMessages(request string, host domain.OSContext) ([]ports.ChatMessage, error) {
	var buf bytes.Buffer
	data := templateData{Dialect: host.ShellDialect(), Windows: host == domain.OSWindows}
	if err := systemPrompt.Execute(&buf, data); err != nil {
		return nil, err
	}
	return []ports.ChatMessage{
		{Role: "system", Content: strings.TrimSpace(buf.String())},
		{Role: "user", Content: request},
	}, nil
}
