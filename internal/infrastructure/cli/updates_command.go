package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/termhelper/internal/domain"
)

func newUpdatesCommand(s *session) *cobra.Command {
	updatesCmd := &cobra.Command{
		Use:   "updates",
		Short: "Scan package managers and apply updates",
	}
	updatesCmd.AddCommand(newUpdatesScanCommand(s), newUpdatesApplyCommand(s))
	return updatesCmd
}

func newUpdatesScanCommand(s *session) *cobra.Command {
	var (
		managers []string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List outdated packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseManagers(managers)
			if err != nil {
				return err
			}
			if err := validateFormat(format); err != nil {
				return err
			}
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}

			spinner := NewSpinner(cmd.ErrOrStderr(), s.interactive() && format == FormatTable)
			spinner.Start("Scanning package managers...")
			report, err := container.UpdateService.Scan(cmd.Context(), selected)
			spinner.Stop()
			if err != nil {
				return err
			}
			return NewRenderer(cmd.OutOrStdout()).ScanReport(report, format)
		},
	}
	cmd.Flags().StringSliceVarP(&managers, "manager", "m", nil, "Package manager to scan (winget, apt, pip, npm); repeatable")
	cmd.Flags().StringVarP(&format, "format", "f", FormatTable, "Output format: table, json, yaml or toml")
	return cmd
}

func newUpdatesApplyCommand(s *session) *cobra.Command {
	var (
		managers []string
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Scan, then update every outdated package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseManagers(managers)
			if err != nil {
				return err
			}
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderer := NewRenderer(out)

			spinner := NewSpinner(cmd.ErrOrStderr(), s.interactive())
			spinner.Start("Scanning package managers...")
			report, err := container.UpdateService.Scan(cmd.Context(), selected)
			spinner.Stop()
			if err != nil {
				return err
			}
			if err := renderer.ScanReport(report, FormatTable); err != nil {
				return err
			}
			if len(report.Packages) == 0 {
				return nil
			}

			if !yes {
				prompter := NewPrompter(cmd.InOrStdin(), out, s.interactive())
				if !prompter.Enabled() {
					return confirmationRequired()
				}
				approved, err := prompter.Confirm(fmt.Sprintf("Update %d package(s)?", len(report.Packages)))
				if err != nil {
					return err
				}
				if !approved {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			renderer.Info("Updating %d package(s)...", len(report.Packages))
			results := container.UpdateService.UpdateAll(cmd.Context(), report.Packages)
			renderer.UpdateResults(results)
			return failedResults(results, "update")
		},
	}
	cmd.Flags().StringSliceVarP(&managers, "manager", "m", nil, "Package manager to update (winget, apt, pip, npm); repeatable")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Update without asking")
	return cmd
}

func parseManagers(values []string) ([]domain.Manager, error) {
	var out []domain.Manager
	for _, value := range values {
		m, err := domain.ParseManager(value)
		if err != nil {
			return nil, invalidArgument(err.Error())
		}
		out = append(out, m)
	}
	return out, nil
}
