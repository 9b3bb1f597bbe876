package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/wrapgen/pkg/generator"
)

// ErrStale is returned by check when at least one output is out of date.
var ErrStale = errors.New("generated files are out of date")

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report configured outputs that differ from a fresh render",
		Long: `Render every configured job without writing anything and compare the
result with the file on disk. Exits with status 1 when any output is stale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return runCheck(ctx, s, opts.quiet, cmd.OutOrStdout())
			})
		},
	}
}

func runCheck(ctx context.Context, s *session, quiet bool, w io.Writer) error {
	err := s.cfg.RequireJobs()
	if err != nil {
		return err
	}

	stale := 0

	for _, job := range s.cfg.Jobs {
		res, checkErr := s.gen.Check(ctx, job)
		if checkErr != nil {
			return &ExitError{Code: exitGenerate, Err: fmt.Errorf("error generating: %w", checkErr)}
		}

		if !res.Stale() {
			if !quiet {
				color.New(color.FgGreen).Fprintf(w, "ok      %s\n", job.Output)
			}

			continue
		}

		stale++

		printStale(w, res, quiet)
	}

	if stale > 0 {
		return &ExitError{
			Code: exitFailure,
			Err:  fmt.Errorf("%w: %d of %d", ErrStale, stale, len(s.cfg.Jobs)),
		}
	}

	return nil
}

func printStale(w io.Writer, res generator.CheckResult, quiet bool) {
	label := "stale"
	if res.Missing {
		label = "missing"
	}

	color.New(color.FgRed, color.Bold).Fprintf(w, "%-7s %s\n", label, res.Job.Output)

	if quiet {
		return
	}

	for _, line := range res.Diff {
		switch line.Op {
		case generator.LineDelete:
			color.New(color.FgRed).Fprintf(w, "  -%s\n", line.Text)
		case generator.LineInsert:
			color.New(color.FgGreen).Fprintf(w, "  +%s\n", line.Text)
		case generator.LineEqual:
		}
	}
}
