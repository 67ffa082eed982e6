// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("CLI tests need POSIX tools")
	}

	var stdout, stderr bytes.Buffer

	root := newRootCmd()
	root.Writer = &stdout
	root.ErrWriter = &stderr
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)
	err := root.Run(ctx, append([]string{"runps"}, args...))

	return stdout.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	var ec cli.ExitCoder
	require.ErrorAs(t, err, &ec)

	return ec.ExitCode()
}

func TestWhich(t *testing.T) {
	out, err := runCLI(t, "which", "sh")
	require.NoError(t, err)
	assert.Equal(t, "sh", filepath.Base(strings.TrimSpace(out)))
}

func TestWhich_Missing(t *testing.T) {
	out, err := runCLI(t, "which", "sh", "definitely-not-a-real-command-xyz")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, err.Error(), "definitely-not-a-real-command-xyz")
	assert.NotEmpty(t, out, "names that resolve are still printed")
}

func TestArgv(t *testing.T) {
	out, err := runCLI(t, "argv", "echo", "-n", "two words")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "echo", filepath.Base(lines[0]))
	assert.Equal(t, []string{"-n", "two words"}, lines[1:])
}

func TestExec(t *testing.T) {
	out, err := runCLI(t, "exec", "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestExec_ExitCode(t *testing.T) {
	_, err := runCLI(t, "exec", "sh", "-c", "exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(t, err))
}

func TestExec_NoCommand(t *testing.T) {
	_, err := runCLI(t, "exec")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
}

func TestExec_NotFound(t *testing.T) {
	_, err := runCLI(t, "exec", "definitely-not-a-real-command-xyz")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, err.Error(), "command not found")
}

func TestEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("RUNPS_TEST_GREETING=from-env-file\n"), 0o644))

	out, err := runCLI(t, "--env-file", envFile, "exec", "sh", "-c", `echo "$RUNPS_TEST_GREETING"`)
	require.NoError(t, err)
	assert.Equal(t, "from-env-file\n", out)
}

func TestPipe(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pipe.yaml")

	require.NoError(t, os.WriteFile(file, []byte(`
name: test
env_file: vars.env
steps:
  - command: sh
    args: ["-c", 'printf "%s\n" "$WORDS"']
  - command: sort
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vars.env"), []byte("WORDS=\"b\na\"\n"), 0o644))

	out, err := runCLI(t, "pipe", file)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", out)
}

func TestPipe_FailingStep(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pipe.yaml")
	require.NoError(t, os.WriteFile(file, []byte("steps:\n  - command: sh\n    args: [\"-c\", \"exit 5\"]\n"), 0o644))

	_, err := runCLI(t, "pipe", file)
	require.Error(t, err)
	assert.Equal(t, 5, exitCode(t, err))
}
