package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/typeguard/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--log-level", "off"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "typeguard version "))
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "[1, 2]", "validate", "--type", "list[int]", "--format", "text", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "conforms")

	out, err = execute(t, `{"a": "x"}`, "validate", "--type", "dict[str, int]", "--format", "json", "-")
	require.ErrorIs(t, err, cli.ErrViolations)
	assert.Contains(t, out, `"violations"`)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	sig := filepath.Join(dir, "inc.yaml")
	require.NoError(t, os.WriteFile(sig, []byte("name: inc\nparams:\n  - {name: x, type: int}\nreturn: int\n"), 0o644))

	out, err := execute(t, "args: [1]\nreturn: 2\n", "check", "--format", "markdown", sig, "-")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "no violations")

	_, err = execute(t, "args: [1]\nreturn: two\n", "check", "--format", "text", sig, "-")
	assert.ErrorIs(t, err, cli.ErrViolations)
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "", "graph", "list[int | str]")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "{{\"union\"}}")
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "1", "validate", "--type", "int", "--format", "xml", "-")
	assert.ErrorContains(t, err, "unknown format")
}
