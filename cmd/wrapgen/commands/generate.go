package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/wrapgen/pkg/generator"
)

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Render every job listed in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return runGenerate(ctx, s, opts.quiet, cmd.OutOrStdout())
			})
		},
	}
}

func runGenerate(ctx context.Context, s *session, quiet bool, w io.Writer) error {
	err := s.cfg.RequireJobs()
	if err != nil {
		return err
	}

	results, err := s.gen.RunJobs(ctx, s.cfg.Jobs)
	if err != nil {
		return &ExitError{Code: exitGenerate, Err: fmt.Errorf("error generating: %w", err)}
	}

	if quiet {
		return nil
	}

	_, err = fmt.Fprintln(w, resultsTable(results))

	return err
}

func resultsTable(results []generator.Result) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Job", "Output", "Size", "Status"})

	written := 0

	for _, res := range results {
		status := "unchanged"
		if res.Changed {
			status = "written"
			written++
		}

		tbl.AppendRow(table.Row{res.Job.Label(), res.Job.Output, res.Size(), status})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d jobs", len(results)), "", "", fmt.Sprintf("%d written", written)})

	return tbl.Render()
}
