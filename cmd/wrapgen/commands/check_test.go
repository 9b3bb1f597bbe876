package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_MissingOutputsAreStale(t *testing.T) {
	t.Parallel()

	_, cfgPath := writeProject(t)

	res := runCLI(t, "--config", cfgPath, "check")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "missing")
	assert.Contains(t, res.stdout, "+int bash_newtInit(WORD_LIST *args);")
	assert.Contains(t, res.stderr, "generated files are out of date: 2 of 2")
}

func TestCheck_UpToDateAfterGenerate(t *testing.T) {
	t.Parallel()

	_, cfgPath := writeProject(t)

	require.Equal(t, 0, runCLI(t, "--config", cfgPath, "generate").code)

	res := runCLI(t, "--config", cfgPath, "check")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ok")
	assert.NotContains(t, res.stdout, "stale")
}

func TestCheck_ReportsDiff(t *testing.T) {
	t.Parallel()

	dir, cfgPath := writeProject(t)

	require.Equal(t, 0, runCLI(t, "--config", cfgPath, "generate").code)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "count.txt"), []byte("41\n"), 0o600))

	res := runCLI(t, "--config", cfgPath, "check")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "stale")
	assert.Contains(t, res.stdout, "-41")
	assert.Contains(t, res.stdout, "+3")
	assert.Contains(t, res.stderr, "1 of 2")

	data, err := os.ReadFile(filepath.Join(dir, "src", "count.txt"))
	require.NoError(t, err)
	assert.Equal(t, "41\n", string(data))
}
