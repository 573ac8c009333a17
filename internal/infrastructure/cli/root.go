package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doeshing/termhelper/internal/app"
	"github.com/doeshing/termhelper/internal/domain"
	"github.com/doeshing/termhelper/internal/version"
)

// Exit codes reported by Execute.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitPrecondition = 3
	ExitAdvisor      = 4
)

// Options holds CLI-level configuration.
type Options struct {
	EnvFile string
	Debug   bool
	NoColor bool
}

// session builds the container once, on the first command that needs it.
type session struct {
	opts      Options
	in        io.Reader
	container *app.Container
}

func (s *session) load(ctx context.Context) (*app.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	container, err := app.BuildContainer(ctx, app.Options{EnvFile: s.opts.EnvFile, Debug: s.opts.Debug})
	if err != nil {
		return nil, err
	}
	s.container = container
	return container, nil
}

// interactive reports whether confirmations can be read from the user.
func (s *session) interactive() bool {
	f, ok := s.in.(*os.File)
	return ok && isTerminal(f)
}

// NewRootCmd wires the cobra root command. Input is read from in, which is
// only treated as interactive when it is a terminal.
func NewRootCmd(in io.Reader) *cobra.Command {
	if in == nil {
		in = os.Stdin
	}
	s := &session{in: in}

	root := &cobra.Command{
		Use:     "termhelper",
		Short:   "Terminal helper: command suggestions and package updates",
		Long:    "termhelper asks an LLM for shell commands that accomplish a request and keeps winget, apt, pip and npm packages up to date.",
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if s.opts.NoColor {
				color.NoColor = true
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return invalidArgument(err.Error())
	})

	root.PersistentFlags().StringVar(&s.opts.EnvFile, "env-file", "", "Path to a dotenv file (default ./.env when present)")
	root.PersistentFlags().BoolVar(&s.opts.Debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&s.opts.NoColor, "no-color", false, "Disable colored output")

	root.AddCommand(newAskCommand(s))
	root.AddCommand(newUpdatesCommand(s))
	root.AddCommand(newDoctorCommand(s))
	root.AddCommand(newConfigCommand(s))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd(os.Stdin)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		errorColor.Fprintln(os.Stderr, "error:", errorMessage(err))
		return exitCodeForError(err)
	}
	return ExitOK
}

func exitCodeForError(err error) int {
	if err == nil {
		return ExitOK
	}
	if _, ok := domain.AsAdvisorError(err); ok {
		return ExitAdvisor
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return ExitInvalidInput
	case errbuilder.CodePermissionDenied, errbuilder.CodeFailedPrecondition:
		return ExitPrecondition
	default:
		return ExitFailure
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		if cause := errors.Unwrap(builder); cause != nil {
			return fmt.Sprintf("%s: %v", builder.Msg, cause)
		}
		return builder.Msg
	}
	return err.Error()
}

func invalidArgument(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

// minimumArgs is cobra.MinimumNArgs with a coded error.
func minimumArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return invalidArgument(fmt.Sprintf("%s requires %s", cmd.CommandPath(), what))
		}
		return nil
	}
}
