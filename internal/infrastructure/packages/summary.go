package packages

import (
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
)

// Summarize condenses an update run into a one-line status for display.
func Summarize(result domain.ExecutionResult) string {
	output := strings.TrimSpace(result.Stdout + "\n" + result.Stderr)
	if !result.Success {
		if output == "" {
			return "Failed"
		}
		return truncate(output, domain.SummaryMaxLength)
	}
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "requirement already satisfied"),
		strings.Contains(lower, "already up-to-date"),
		strings.Contains(lower, "already the newest version"),
		strings.Contains(lower, "no applicable upgrade found"):
		return "Already up to date"
	case strings.Contains(lower, "successfully installed"):
		return "Installed successfully"
	case strings.Contains(lower, "defaulting to user installation"):
		return "Updated (user install)"
	default:
		return "Success"
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
