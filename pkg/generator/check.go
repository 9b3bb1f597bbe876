package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/wrapgen/pkg/config"
)

// LineOp tags one line of a diff.
type LineOp int

// Line operations.
const (
	LineEqual LineOp = iota
	LineDelete
	LineInsert
)

// DiffLine is one line of a line-level diff, without its trailing newline.
type DiffLine struct {
	Text string
	Op   LineOp
}

// CheckResult reports whether a job's output is up to date.
type CheckResult struct {
	Job config.Job
	// Diff holds the line diff from the current file to the rendered text.
	// It is empty when the output is up to date.
	Diff []DiffLine
	// Missing is set when the output file does not exist yet.
	Missing bool
}

// Stale reports whether the output differs from what would be generated.
func (r CheckResult) Stale() bool {
	return r.Missing || len(r.Diff) > 0
}

// Check renders a job and compares the result with its existing output
// without writing anything.
func (g *Generator) Check(ctx context.Context, job config.Job) (CheckResult, error) {
	want, err := g.generateJob(ctx, job, nil)
	if err != nil {
		return CheckResult{}, fmt.Errorf("job %s: %w", job.Label(), err)
	}

	res := CheckResult{Job: job}

	current, err := os.ReadFile(job.Output)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return CheckResult{}, fmt.Errorf("job %s: read output: %w", job.Label(), err)
		}

		res.Missing = true
	}

	if string(current) != want {
		res.Diff = LineDiff(string(current), want)
	}

	return res, nil
}

// LineDiff computes a line-level diff from old to new. Equal lines are kept
// so callers can print context.
func LineDiff(oldText, newText string) []DiffLine {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []DiffLine

	for _, d := range diffs {
		op := LineEqual

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = LineDelete
		case diffmatchpatch.DiffInsert:
			op = LineInsert
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range splitLines(d.Text) {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}

	return out
}

// splitLines splits text into lines, dropping the empty tail after a final
// newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
