package ai

import (
	"encoding/json"
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
)

type suggestionJSON struct {
	Command       string          `json:"command"`
	Description   string          `json:"description"`
	Prerequisites json.RawMessage `json:"prerequisites"`
	Commands      []string        `json:"commands"`
}

// ParseReply turns message content into an AdvisorReply. Content that does
// not match any known shape becomes a RawText reply holding it verbatim.
func ParseReply(content string) domain.AdvisorReply {
	raw := domain.AdvisorReply{Kind: domain.ReplyRawText, Text: content}

	candidates := []string{stripFences(content)}
	if block := extractCodeBlock(content); block != "" && block != candidates[0] {
		candidates = append(candidates, block)
	}
	for _, candidate := range candidates {
		if suggestions, ok := parseSuggestions(candidate); ok {
			return domain.AdvisorReply{Kind: domain.ReplyParsedSuggestions, Suggestions: suggestions}
		}
	}
	return raw
}

func parseSuggestions(text string) ([]domain.CommandSuggestion, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	switch text[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return nil, false
		}
		out := make([]domain.CommandSuggestion, 0, len(items))
		for _, item := range items {
			parsed, ok := parseItem(item)
			if !ok {
				return nil, false
			}
			out = append(out, parsed...)
		}
		return out, true
	case '{':
		return parseItem(json.RawMessage(text))
	case '"':
		var command string
		if err := json.Unmarshal([]byte(text), &command); err != nil || strings.TrimSpace(command) == "" {
			return nil, false
		}
		return []domain.CommandSuggestion{{Command: strings.TrimSpace(command), Prerequisites: []string{}}}, true
	default:
		return nil, false
	}
}

// parseItem accepts a suggestion object, a {description, prerequisites,
// commands[]} object, or a bare command string.
func parseItem(item json.RawMessage) ([]domain.CommandSuggestion, bool) {
	var command string
	if err := json.Unmarshal(item, &command); err == nil {
		if strings.TrimSpace(command) == "" {
			return nil, false
		}
		return []domain.CommandSuggestion{{Command: strings.TrimSpace(command), Prerequisites: []string{}}}, true
	}

	var obj suggestionJSON
	if err := json.Unmarshal(item, &obj); err != nil {
		return nil, false
	}
	prereqs := parsePrerequisites(obj.Prerequisites)
	description := strings.TrimSpace(obj.Description)

	if strings.TrimSpace(obj.Command) != "" {
		return []domain.CommandSuggestion{{
			Command:       strings.TrimSpace(obj.Command),
			Description:   description,
			Prerequisites: prereqs,
		}}, true
	}
	if obj.Commands != nil {
		out := make([]domain.CommandSuggestion, 0, len(obj.Commands))
		for _, cmd := range obj.Commands {
			if strings.TrimSpace(cmd) == "" {
				continue
			}
			out = append(out, domain.CommandSuggestion{
				Command:       strings.TrimSpace(cmd),
				Description:   description,
				Prerequisites: append([]string(nil), prereqs...),
			})
		}
		return out, true
	}
	return nil, false
}

// parsePrerequisites accepts a list of strings or a single string.
func parsePrerequisites(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		out = append(out, strings.TrimSpace(single))
	}
	return out
}

// stripFences removes a Markdown fence wrapping the whole content.
func stripFences(content string) string {
	text := strings.TrimSpace(content)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// Drop the info string ("json", "sh", ...).
		if info := strings.TrimSpace(text[:nl]); !strings.ContainsAny(info, "[{\"") {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractCodeBlock returns the body of the first fenced block found
// anywhere in the content.
func extractCodeBlock(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		return ""
	}
	block := suffix[:end]
	lines := strings.Split(block, "\n")
	if len(lines) > 1 && !strings.ContainsAny(lines[0], "[{\"") {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
