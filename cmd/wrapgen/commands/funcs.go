package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
	"github.com/Sumatoshi-tech/wrapgen/pkg/render"
)

// Output formats of the funcs command.
const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
	formatText  = "text"
)

const yamlIndent = 2

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

func newFuncsCommand(opts *rootOptions) *cobra.Command {
	var (
		format     string
		noVariadic bool
	)

	cmd := &cobra.Command{
		Use:   "funcs HEADER",
		Short: "Print the function signatures extracted from a C header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatJSON, formatYAML, formatTable:
			default:
				return fmt.Errorf("%w: %q (want json, yaml or table)", ErrUnknownFormat, format)
			}

			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return runFuncs(ctx, s, args[0], format, noVariadic, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: json, yaml or table")
	cmd.Flags().BoolVar(&noVariadic, "no-variadic", false, "omit variadic functions")

	return cmd
}

func runFuncs(ctx context.Context, s *session, headerPath, format string, noVariadic bool, w io.Writer) error {
	header, err := os.ReadFile(headerPath)
	if err != nil {
		return &ExitError{Code: exitGenerate, Err: fmt.Errorf("error reading %s: %w", headerPath, err)}
	}

	funcs, err := s.gen.Functions(ctx, headerPath, header)
	if err != nil {
		return &ExitError{Code: exitGenerate, Err: fmt.Errorf("error reading %s: %w", headerPath, err)}
	}

	if noVariadic {
		funcs = render.WithoutVariadic(funcs)
	}

	return writeFuncs(w, funcs, format)
}

func writeFuncs(w io.Writer, funcs []cheader.Function, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(funcs)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(funcs)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, funcsTable(funcs))

		return err
	}
}

func funcsTable(funcs []cheader.Function) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Return", "Name", "Arguments"})

	for idx, fn := range funcs {
		tbl.AppendRow(table.Row{strconv.Itoa(idx + 1), fn.ReturnType, fn.Name, formatArgs(fn.Args)})
	}

	tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("Total: %d functions", len(funcs)), ""})

	return tbl.Render()
}

func formatArgs(args []cheader.Param) string {
	if len(args) == 0 {
		return "void"
	}

	parts := make([]string, 0, len(args))

	for _, arg := range args {
		if arg.IsEllipsis() {
			parts = append(parts, arg.Name)

			continue
		}

		parts = append(parts, arg.Type+" "+arg.Name)
	}

	return strings.Join(parts, ", ")
}
