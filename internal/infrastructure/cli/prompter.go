package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter. Without an interactive input every
// confirmation is refused.
func NewPrompter(in io.Reader, out io.Writer, interactive bool) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled indicates the prompter can ask the user.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm asks a yes/no question; the default is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.interactive {
		return false, nil
	}
	return p.ask(question + " [y/N]: ")
}

// ConfirmRisk asks for approval of a command the guardrail flagged.
func (p *Prompter) ConfirmRisk(risk domain.RiskAssessment) (bool, error) {
	if !p.interactive {
		return false, nil
	}
	levelColor(risk.Level).Fprintf(p.out, "\n%s risk detected (%s)\n", strings.ToUpper(string(risk.Level)), risk.Action)
	for _, reason := range risk.Reasons {
		fmt.Fprintf(p.out, " - %s\n", reason)
	}
	fmt.Fprintf(p.out, "Command:\n  %s\n", risk.Command)

	switch risk.Action {
	case domain.ActionSimpleConfirm, domain.ActionConfirm:
		return p.ask("Continue? [y/N]: ")
	case domain.ActionExplicitConfirm:
		return p.askExplicit()
	default:
		return false, nil
	}
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to confirm (or anything else to cancel): ")
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	return line == "yes", nil
}

// readLine treats end of input as an empty answer.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
