package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/wrapgen/pkg/generator"
)

const (
	renderCmdUse   = "render HEADER TEMPLATE"
	renderCmdShort = "Render a template against the functions of a C header"
	renderArgCount = 2
)

func newRenderCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Long: `Render TEMPLATE with the functions declared in HEADER bound to .funcs.

The result is printed to stdout, or written atomically to --output.`,
		Example: `  wrapgen render /usr/include/newt.h templates/wrappers.tmpl > src/newt_wrappers.cpp`,
		Args:    cobra.ExactArgs(renderArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return runRender(ctx, s, args[0], args[1], output, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to this file instead of stdout")

	return cmd
}

func runRender(ctx context.Context, s *session, headerPath, templatePath, output string, stdout io.Writer) error {
	out, err := renderFiles(ctx, s.gen, headerPath, templatePath)
	if err != nil {
		return &ExitError{Code: exitGenerate, Err: fmt.Errorf("error generating %s: %w", templatePath, err)}
	}

	if output != "" {
		err = generator.WriteFileAtomic(output, []byte(out))
		if err != nil {
			return &ExitError{Code: exitGenerate, Err: fmt.Errorf("error generating %s: %w", templatePath, err)}
		}

		return nil
	}

	_, err = io.WriteString(stdout, out)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func renderFiles(ctx context.Context, gen *generator.Generator, headerPath, templatePath string) (string, error) {
	header, err := os.ReadFile(headerPath)
	if err != nil {
		return "", fmt.Errorf("read header: %w", err)
	}

	text, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}

	return gen.Generate(ctx, generator.Input{
		HeaderName:   headerPath,
		TemplateName: filepath.Base(templatePath),
		Header:       header,
		Template:     string(text),
	})
}
