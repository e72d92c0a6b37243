package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/localeroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if fd := os.Stderr.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		errors.DisableColors()
	}

	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and prints any failure in the requested error format.
// It returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		output, _ := cmd.PersistentFlags().GetString("error-format")
		errors.Fprint(stderr, err, output)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		configPath  string
		errorFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "localeroute",
		Short: "Multilingual route resolution for single-page apps",
		Long: `localeroute resolves language-prefixed paths such as /fr/blogue/bonjour
to views declared in a localized route tree, and serves them over HTTP.

Routes are declared once per page with one path template per language.
The same tree translates links between languages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch errorFormat {
			case errors.OutputText, errors.OutputJSON:
				return nil
			}
			return errors.New(errors.CodeInvalidArgs).
				WithDetail(fmt.Sprintf("--error-format must be %q or %q, got %q", errors.OutputText, errors.OutputJSON, errorFormat))
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.New(errors.CodeInvalidArgs).Wrap(err).
			WithSuggestion("Run '" + cmd.CommandPath() + " --help' for usage.")
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to localeroute.yaml (default ./localeroute.yaml)")
	rootCmd.PersistentFlags().StringVar(&errorFormat, "error-format", errors.OutputText,
		"How failures are printed: text or json")

	cfgPath := func() string { return configPath }
	rootCmd.AddCommand(
		serveCmd(cfgPath),
		matchCmd(cfgPath),
		translateCmd(cfgPath),
		routesCmd(cfgPath),
		viewsCmd(cfgPath),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// checkArgs wraps a positional argument validator so that violations carry the
// invalid-arguments code.
func checkArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.New(errors.CodeInvalidArgs).Wrap(err).
				WithSuggestion("Run '" + cmd.CommandPath() + " --help' for usage.")
		}
		return nil
	}
}
