// Package render executes text/template templates against a C signature
// collection.
//
// The collection is bound under the single name "funcs", so templates
// iterate it with {{range .funcs}}. Block tags such as range, if and end
// swallow the indentation in front of them, which keeps generated code
// tidy without a trim marker on every line.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"text/template"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
)

// FuncsKey is the name the signature collection is bound to.
const FuncsKey = "funcs"

// ErrTemplate is matched by every [TemplateError].
var ErrTemplate = errors.New("template error")

// TemplateError wraps a parse or execution failure reported by
// text/template. The message is the engine's own diagnostic.
type TemplateError struct {
	Err  error
	Name string
}

func (e *TemplateError) Error() string {
	return e.Err.Error()
}

func (e *TemplateError) Unwrap() []error {
	return []error{ErrTemplate, e.Err}
}

// Template is a parsed template ready to be executed any number of times.
type Template struct {
	tmpl *template.Template
}

// Parse parses text with the given filters. Undefined filters and syntax
// errors are reported here.
func Parse(name, text string, filters FilterMap) (*Template, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap(filters)).
		Parse(text)
	if err != nil {
		return nil, &TemplateError{Name: name, Err: err}
	}

	for _, t := range tmpl.Templates() {
		if t.Tree == nil {
			continue
		}

		lstripBlocks(t.Tree, t.Name() != name)
	}

	return &Template{tmpl: tmpl}, nil
}

// Execute renders the template with funcs bound to FuncsKey. Nothing is
// written to w when execution fails.
func (t *Template) Execute(w io.Writer, funcs []cheader.Function) error {
	var buf bytes.Buffer

	err := t.tmpl.Execute(&buf, map[string]any{FuncsKey: funcs})
	if err != nil {
		return &TemplateError{Name: t.tmpl.Name(), Err: err}
	}

	_, err = buf.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write rendered %s: %w", t.tmpl.Name(), err)
	}

	return nil
}

// Render parses and executes text in one step.
func Render(funcs []cheader.Function, text string, filters FilterMap) (string, error) {
	tmpl, err := Parse("template", text, filters)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	err = tmpl.Execute(&buf, funcs)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}
