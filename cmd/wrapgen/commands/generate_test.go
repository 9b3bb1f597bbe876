package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T) (dir, cfgPath string) {
	t.Helper()

	dir = t.TempDir()
	writeFile(t, dir, "include/newt.h", newtHeader)
	writeFile(t, dir, "templates/wrappers.tmpl", wrappersTemplate)
	writeFile(t, dir, "templates/count.tmpl", "{{len .funcs}}\n")

	cfgPath = writeFile(t, dir, "wrapgen.yaml", `generate:
  workers: 2
jobs:
  - name: wrappers
    header: include/newt.h
    template: templates/wrappers.tmpl
    output: src/wrappers.c
  - name: count
    header: include/newt.h
    template: templates/count.tmpl
    output: src/count.txt
`)

	return dir, cfgPath
}

func TestGenerate_RunsAllJobs(t *testing.T) {
	t.Parallel()

	dir, cfgPath := writeProject(t)

	res := runCLI(t, "--config", cfgPath, "generate")
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "wrappers")
	assert.Contains(t, res.stdout, "written")
	assert.Contains(t, res.stdout, "Total: 2 jobs")

	count, err := os.ReadFile(filepath.Join(dir, "src", "count.txt"))
	require.NoError(t, err)
	assert.Equal(t, "3\n", string(count))

	again := runCLI(t, "--config", cfgPath, "generate")
	require.Equal(t, 0, again.code, again.stderr)
	assert.Contains(t, again.stdout, "unchanged")
	assert.Contains(t, again.stdout, "0 written")
}

func TestGenerate_QuietPrintsNothing(t *testing.T) {
	t.Parallel()

	_, cfgPath := writeProject(t)

	res := runCLI(t, "-q", "--config", cfgPath, "generate")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.Empty(t, res.stderr)
}

func TestGenerate_NoJobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	res := runCLI(t, "--config", emptyConfig(t, dir), "generate")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "no jobs configured")
}

func TestGenerate_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "wrapgen.yaml", "jobs:\n  - header: a.h\n")

	res := runCLI(t, "--config", cfgPath, "generate")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "config does not match schema")
}

func TestGenerate_JobFailureExitsTwo(t *testing.T) {
	t.Parallel()

	dir, cfgPath := writeProject(t)
	writeFile(t, dir, "templates/count.tmpl", "{{.nope}}")

	res := runCLI(t, "--config", cfgPath, "generate")

	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "job count")
}

func TestGenerate_MetricsFile(t *testing.T) {
	t.Parallel()

	dir, cfgPath := writeProject(t)
	metrics := filepath.Join(dir, "metrics", "wrapgen.prom")

	res := runCLI(t, "--config", cfgPath, "--metrics-file", metrics, "generate")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wrapgen_renders")
}
