package cli

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/infrastructure/config"
)

func newAskCommand(s *session) *cobra.Command {
	var (
		execute bool
		yes     bool
		osName  string
	)

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Suggest shell commands for a natural language request",
		Example: `  termhelper ask "find files larger than 100MB in my home directory"
  termhelper ask --os windows "list listening TCP ports"
  termhelper ask --execute "show disk usage per mounted filesystem"`,
		Args: minimumArgs(1, "a request"),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseOSFlag(osName)
			if err != nil {
				return err
			}
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := config.RequireAdvisor(container.Config); err != nil {
				return err
			}
			if target == "" {
				target = container.Host.OS()
			}

			prompter := NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), s.interactive())
			svc := container.AdvisorService
			svc.Prompter = prompter

			spinner := NewSpinner(cmd.ErrOrStderr(), s.interactive())
			spinner.Start("Asking " + container.Config.LLM.Model + "...")
			advice, err := svc.Suggest(cmd.Context(), strings.Join(args, " "), target)
			spinner.Stop()
			if err != nil {
				return err
			}

			renderer := NewRenderer(cmd.OutOrStdout())
			renderer.Advice(advice)
			if !execute {
				return nil
			}

			runnable := 0
			for _, suggestion := range advice.Suggestions {
				if suggestion.Executable() {
					runnable++
				}
			}
			if runnable == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nNothing to execute.")
				return nil
			}
			if !yes {
				if !prompter.Enabled() {
					return confirmationRequired()
				}
				fmt.Fprintln(cmd.OutOrStdout())
				approved, err := prompter.Confirm(fmt.Sprintf("Execute %d command(s)?", runnable))
				if err != nil {
					return err
				}
				if !approved {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			results := svc.Execute(cmd.Context(), advice.Suggestions)
			renderer.Executions(results)
			return failedResults(results, "command")
		},
	}

	cmd.Flags().BoolVarP(&execute, "execute", "x", false, "Offer to run the suggested commands")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the overall confirmation (guardrail prompts still apply)")
	cmd.Flags().StringVar(&osName, "os", "", "Target shell: windows or linux (default: this host)")
	return cmd
}

// parseOSFlag maps --os to an OSContext; empty means the host.
func parseOSFlag(value string) (domain.OSContext, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case "windows", "win", "powershell":
		return domain.OSWindows, nil
	case "linux", "mac", "macos", "darwin", "bash":
		return domain.OSLinux, nil
	default:
		return "", invalidArgument(fmt.Sprintf("unknown --os %q (expected windows or linux)", value))
	}
}

func confirmationRequired() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("confirmation required but input is not a terminal; rerun with --yes")
}

// failedResults turns failed runs into an error for the exit code.
func failedResults(results []domain.ExecutionResult, noun string) error {
	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d %s(s) did not succeed", failed, len(results), noun)
}
