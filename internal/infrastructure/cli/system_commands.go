package cli

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/termhelper/internal/infrastructure/config"
	"github.com/doeshing/termhelper/internal/version"
)

func newDoctorCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			report, err := container.DoctorService.Run(cmd.Context())
			// the report is shown even when a check failed
			NewRenderer(cmd.OutOrStdout()).Health(report)
			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if report.HasErrors() {
				return errors.New("diagnostics reported errors")
			}
			return nil
		},
	}
}

func newConfigCommand(s *session) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialize configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (API keys are never printed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := s.load(cmd.Context())
			if err != nil {
				return err
			}
			return NewRenderer(cmd.OutOrStdout()).Config(container.Config)
		},
	}

	var (
		force bool
		path  string
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .env template",
		Long: `Write a dotenv template with every setting termhelper reads.

After initialization:
  1. Set OPENROUTER_API_KEY (or OPENAI_API_KEY) and OPENAI_MODEL
  2. Run 'termhelper doctor' to verify your setup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultEnvFile
			}
			if err := config.WriteEnvTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	initCmd.Flags().StringVar(&path, "path", "", "Destination (default ./.env)")

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return displayVersionInformation(cmd.OutOrStdout())
		},
	}
}

func displayVersionInformation(out io.Writer) error {
	fmt.Fprintf(out, "termhelper version %s\n", version.Version)

	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}

	if version.BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
	}

	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	return nil
}
