package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/termhelper/internal/domain"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
	headerColor  = color.New(color.FgWhite, color.Bold)
	commandColor = color.New(color.FgBlue, color.Bold)
)

// Output formats accepted by `updates scan --format`.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTOML  = "toml"
)

var scanFormats = []string{FormatTable, FormatJSON, FormatYAML, FormatTOML}

func validateFormat(format string) error {
	for _, known := range scanFormats {
		if format == known {
			return nil
		}
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown format %q (expected one of %s)", format, strings.Join(scanFormats, ", ")))
}

func levelColor(level domain.RiskLevel) *color.Color {
	switch level {
	case domain.RiskCritical, domain.RiskHigh:
		return errorColor
	case domain.RiskMedium, domain.RiskLow:
		return warnColor
	default:
		return successColor
	}
}

// Renderer prints the suggestion and update views.
type Renderer struct {
	out io.Writer
}

// NewRenderer builds a renderer on out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Advice prints the suggestion list with prerequisites and guardrail verdicts.
func (r *Renderer) Advice(advice domain.Advice) {
	headerColor.Fprintf(r.out, "Suggestions for %s\n", advice.OS.ShellDialect())
	dimColor.Fprintf(r.out, "> %s\n\n", advice.Request)

	if advice.Reply.Kind == domain.ReplyRawText {
		warnColor.Fprintln(r.out, "The model did not return structured commands:")
		fmt.Fprintln(r.out, strings.TrimSpace(advice.Reply.Text))
		return
	}
	if len(advice.Suggestions) == 0 {
		fmt.Fprintln(r.out, "No commands suggested.")
		return
	}

	for i, suggestion := range advice.Suggestions {
		fmt.Fprintf(r.out, "%2d. ", i+1)
		commandColor.Fprintln(r.out, suggestion.Command)
		if suggestion.Description != "" {
			fmt.Fprintf(r.out, "    %s\n", suggestion.Description)
		}
		if len(suggestion.Prerequisites) > 0 {
			dimColor.Fprintf(r.out, "    Prerequisites: %s\n", strings.Join(suggestion.Prerequisites, ", "))
		}
		if i < len(advice.Risks) {
			r.risk(advice.Risks[i])
		}
	}
}

func (r *Renderer) risk(risk domain.RiskAssessment) {
	if risk.Level == "" || risk.Level == domain.RiskSafe {
		return
	}
	levelColor(risk.Level).Fprintf(r.out, "    Risk: %s (%s)\n", strings.ToUpper(string(risk.Level)), risk.Action)
	for _, reason := range risk.Reasons {
		fmt.Fprintf(r.out, "     - %s\n", reason)
	}
}

// Executions prints one block per executed suggestion.
func (r *Renderer) Executions(results []domain.ExecutionResult) {
	for _, result := range results {
		fmt.Fprintln(r.out)
		switch {
		case result.Success:
			successColor.Fprintf(r.out, "✓ %s\n", result.Target)
		case result.Failure == domain.FailureBlocked || result.Failure == domain.FailureDeclined:
			warnColor.Fprintf(r.out, "- %s (%s)\n", result.Target, result.Failure)
		default:
			errorColor.Fprintf(r.out, "✗ %s (exit %d)\n", result.Target, result.ExitCode)
		}
		if output := strings.TrimRight(result.Output(), "\n"); output != "" {
			fmt.Fprintln(r.out, indent(output, "  "))
		}
	}
}

// ScanReport prints the update view list in the requested format.
func (r *Renderer) ScanReport(report domain.ScanReport, format string) error {
	if report.Packages == nil {
		report.Packages = []domain.OutdatedPackage{}
	}
	if report.Managers == nil {
		report.Managers = []domain.ManagerStatus{}
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, string(data))
		return nil
	case FormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprint(r.out, string(data))
		return nil
	case FormatTOML:
		return toml.NewEncoder(r.out).Encode(report)
	case FormatTable, "":
		r.scanTable(report)
		return nil
	default:
		return validateFormat(format)
	}
}

func (r *Renderer) scanTable(report domain.ScanReport) {
	if len(report.Packages) == 0 {
		successColor.Fprintln(r.out, "No outdated packages found.")
	} else {
		tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MANAGER\tPACKAGE\tCURRENT\tLATEST")
		for _, pkg := range report.Packages {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", pkg.Manager, pkg.Label(), pkg.CurrentVersion, pkg.LatestVersion)
		}
		tw.Flush()
	}

	fmt.Fprintln(r.out)
	for _, status := range report.Managers {
		switch status.State {
		case domain.ManagerScanned:
			line := fmt.Sprintf("%s: %d outdated", status.Manager, status.Found)
			if status.SkippedLines > 0 {
				line += fmt.Sprintf(", %d unparsed line(s) skipped", status.SkippedLines)
			}
			dimColor.Fprintln(r.out, line)
		case domain.ManagerAbsent:
			dimColor.Fprintf(r.out, "%s: not installed\n", status.Manager)
		case domain.ManagerFailed:
			warnColor.Fprintf(r.out, "%s: scan failed (exit %d) %s\n", status.Manager, status.ExitCode, status.Detail)
		}
	}
}

// UpdateResults prints the per target outcome of an update run.
func (r *Renderer) UpdateResults(results []domain.ExecutionResult) {
	for _, result := range results {
		summary := result.Summary
		if summary == "" {
			summary = strings.TrimSpace(result.Output())
		}
		if result.Success {
			successColor.Fprintf(r.out, "✓ %s", result.Target)
		} else {
			errorColor.Fprintf(r.out, "✗ %s", result.Target)
		}
		fmt.Fprintf(r.out, ": %s\n", summary)
	}
}

// Health prints doctor checks in the [STATUS] name - details layout.
func (r *Renderer) Health(report domain.HealthReport) {
	for _, check := range report.Checks {
		c := successColor
		switch check.Status {
		case domain.HealthWarn:
			c = warnColor
		case domain.HealthError:
			c = errorColor
		}
		c.Fprintf(r.out, "[%s]", strings.ToUpper(string(check.Status)))
		fmt.Fprintf(r.out, " %s - %s\n", check.Name, check.Details)
	}
}

// Config prints the effective configuration; the API key itself never appears.
func (r *Renderer) Config(cfg domain.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(r.out, string(data))
	return nil
}

// Info prints a highlighted informational line.
func (r *Renderer) Info(format string, args ...interface{}) {
	infoColor.Fprintf(r.out, format+"\n", args...)
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
