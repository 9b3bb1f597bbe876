package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wrapgen/cmd/wrapgen/commands"
)

const newtHeader = `#ifndef H_NEWT
#define H_NEWT

int newtInit(void);
void newtDrawRootText(int col, int row, const char * text);
void newtFormAddComponents(newtComponent form, ...);

#endif
`

const wrappersTemplate = `{{range without_variadic .funcs -}}
int bash_{{.Name}}(WORD_LIST *args);
{{end}}`

type cliResult struct {
	stdout string
	stderr string
	code   int
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer

	code := commands.Execute(context.Background(), args, &stdout, &stderr)

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// emptyConfig returns a config file path so tests never pick up a
// wrapgen.yaml from the working directory.
func emptyConfig(t *testing.T, dir string) string {
	t.Helper()

	return writeFile(t, dir, "empty.yaml", "")
}
