package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/wrapgen/pkg/dispatch"
)

// ErrMissingInput is returned when the header or wrappers path is unset.
var ErrMissingInput = errors.New("both --header and --wrappers are required (flag or dispatch config)")

type missingOptions struct {
	header   string
	wrappers string
	prefix   string
	format   string
}

// missingReport is the JSON shape of the missing command.
type missingReport struct {
	dispatch.Report

	Groups []dispatch.Group `json:"groups"`
}

func newMissingCommand(opts *rootOptions) *cobra.Command {
	mopts := &missingOptions{}

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "Report header functions that have no entry in the dispatch table",
		Example: `  wrapgen missing --header /usr/include/newt.h --wrappers src/newt_wrappers.cpp
  wrapgen missing --prefix gtk --header gtk.h --wrappers src/gtk_wrappers.c -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch mopts.format {
			case formatText, formatJSON:
			default:
				return fmt.Errorf("%w: %q (want text or json)", ErrUnknownFormat, mopts.format)
			}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return runMissing(ctx, s, mopts, cmd.OutOrStdout())
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&mopts.header, "header", "", "C header declaring the API")
	flags.StringVar(&mopts.wrappers, "wrappers", "", "source file holding the dispatch table")
	flags.StringVar(&mopts.prefix, "prefix", "", "API name prefix (default from config, \"newt\")")
	flags.StringVarP(&mopts.format, "format", "f", formatText, "output format: text or json")

	return cmd
}

func runMissing(ctx context.Context, s *session, mopts *missingOptions, w io.Writer) error {
	headerPath := firstNonEmpty(mopts.header, s.cfg.Dispatch.Header)
	wrappersPath := firstNonEmpty(mopts.wrappers, s.cfg.Dispatch.Wrappers)
	prefix := firstNonEmpty(mopts.prefix, s.cfg.Dispatch.Prefix)

	if headerPath == "" || wrappersPath == "" {
		return ErrMissingInput
	}

	header, err := os.ReadFile(headerPath)
	if err != nil {
		return fmt.Errorf("header not found: %w", err)
	}

	wrappers, err := os.ReadFile(wrappersPath)
	if err != nil {
		return fmt.Errorf("wrappers file not found: %w", err)
	}

	funcs, err := s.gen.Functions(ctx, headerPath, header)
	if err != nil {
		return &ExitError{Code: exitGenerate, Err: fmt.Errorf("error reading %s: %w", headerPath, err)}
	}

	report := dispatch.Compare(dispatch.HeaderNames(funcs, prefix), dispatch.TableNames(string(wrappers)))
	groups := dispatch.GroupByPrefix(report.Missing)

	if mopts.format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(missingReport{Report: report, Groups: groups})
	}

	printMissing(w, report, groups, prefix)

	return nil
}

func printMissing(w io.Writer, report dispatch.Report, groups []dispatch.Group, prefix string) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendRow(table.Row{"Header functions", len(report.Header)})
	tbl.AppendRow(table.Row{"Wrapped", len(report.Wrapped)})
	tbl.AppendRow(table.Row{"Missing wrappers", len(report.Missing)})

	if len(report.Extra) > 0 {
		tbl.AppendRow(table.Row{"Wrapped but not in header", len(report.Extra)})
	}

	fmt.Fprintln(w, tbl.Render())

	for _, group := range groups {
		color.New(color.FgCyan).Fprintf(w, "  %s\n", group.Prefix)

		for _, name := range group.Names {
			fmt.Fprintf(w, "    %s%s\n", prefix, name)
		}
	}

	if len(report.Extra) == 0 {
		return
	}

	color.New(color.FgYellow).Fprintln(w, "\nIn wrappers but NOT in header:")

	for _, name := range report.Extra {
		fmt.Fprintf(w, "  %s%s\n", prefix, name)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
