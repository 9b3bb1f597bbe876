// Package commands implements the wrapgen subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	// exitGenerate is returned when a header or template cannot be turned
	// into output.
	exitGenerate = 2
)

// ExitError carries a process exit code. Its message is printed verbatim.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	metricsFile string
	verbose     bool
	quiet       bool
	logJSON     bool
	debugTrace  bool
}

// NewRootCommand builds the wrapgen command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "wrapgen",
		Short: "Generate C wrapper code from header signatures and templates",
		Long: `wrapgen extracts function signatures from a C header and renders
them through Go text/template templates.

Commands:
  render    Render one template against one header
  funcs     Print the extracted signatures
  generate  Run every job in the config file
  check     Report generated files that are out of date
  missing   Report header functions absent from a dispatch table`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default wrapgen.yaml in . or ./config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&opts.logJSON, "log-json", false, "log in JSON format")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	flags.BoolVar(&opts.debugTrace, "debug-trace", false, "sample every trace")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(
		newRenderCommand(opts),
		newFuncsCommand(opts),
		newGenerateCommand(opts),
		newCheckCommand(opts),
		newMissingCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(stderr, exitErr.Error())

		return exitErr.Code
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	return exitFailure
}
