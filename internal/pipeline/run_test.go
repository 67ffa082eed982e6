// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"runtime"
	"testing"

	"github.com/matt-FFFFFF/runps"
	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/matt-FFFFFF/runps/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func osEngine(t *testing.T) (context.Context, *runps.Engine) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("pipeline tests need POSIX tools")
	}

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	return ctx, runps.NewEngine(ctx)
}

func TestRun_Pipe(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, e := osEngine(t)

	def, err := Parse([]byte(`
name: sorted
steps:
  - command: printf
    args: ['c\na\nb\n']
  - command: sort
    options:
      r: true
  - command: head
    options:
      n: 2
`))
	require.NoError(t, err)

	p, err := Run(ctx, e, def)
	require.NoError(t, err)

	out, err := p.Output()
	require.NoError(t, err)
	assert.Equal(t, "c\nb\n", out)
}

func TestRun_BackgroundStreams(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, e := osEngine(t)

	def, err := Parse([]byte(`
steps:
  - command: sh
    args: ["-c", "echo one; sleep 0.1; echo two"]
    background: true
  - command: cat
`))
	require.NoError(t, err)

	p, err := Run(ctx, e, def)
	require.NoError(t, err)
	assert.Equal(t, runps.ModeBackground, p.Mode())

	out, err := p.Output()
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", out)
}

func TestRun_StdinEnvAndOkCodes(t *testing.T) {
	ctx, e := osEngine(t)

	def, err := Parse([]byte(`
env:
  SUFFIX: "!"
steps:
  - command: cat
    stdin: "hi"
  - command: sh
    args: ["-c", 'read line; echo "$line$SUFFIX$EXTRA"; exit 3']
    env:
      EXTRA: "?"
    ok_codes: [3]
`))
	require.NoError(t, err)

	p, err := Run(ctx, e, def)
	require.NoError(t, err)

	out, err := p.Output()
	require.NoError(t, err)
	assert.Equal(t, "hi!?\n", out)
}

func TestRun_FailingStep(t *testing.T) {
	ctx, e := osEngine(t)

	def, err := Parse([]byte(`
steps:
  - name: fails
    command: sh
    args: ["-c", "exit 4"]
  - command: cat
`))
	require.NoError(t, err)

	_, err = Run(ctx, e, def)
	require.ErrorIs(t, err, runps.ErrExitCode(4))
	assert.Contains(t, err.Error(), `step "fails"`)

	var exitErr *runps.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.ExitCode())
}

func TestRun_UnknownCommand(t *testing.T) {
	ctx, e := osEngine(t)

	def, err := Parse([]byte("steps:\n  - command: definitely-not-a-real-command-xyz\n"))
	require.NoError(t, err)

	_, err = Run(ctx, e, def)
	require.ErrorIs(t, err, runps.ErrCommandNotFound)
}

func collect(cr *progress.ChannelReporter) []progress.Event {
	cr.Close()

	var got []progress.Event
	for ev := range cr.Events() {
		got = append(got, ev)
	}

	return got
}

func names(events []progress.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Step+":"+ev.Type.String())
	}

	return out
}

func TestRun_ReportsProgress(t *testing.T) {
	ctx, e := osEngine(t)

	def, err := Parse([]byte(`
steps:
  - name: producer
    command: sh
    args: ["-c", "echo x"]
  - name: failing
    command: sh
    args: ["-c", "cat; exit 2"]
  - name: never
    command: cat
`))
	require.NoError(t, err)

	cr := progress.NewChannelReporter(16)

	_, err = Run(ctx, e, def, WithReporter(cr))
	require.ErrorIs(t, err, runps.ErrExitCode(2))

	events := collect(cr)
	assert.Equal(t, []string{
		"producer:started", "producer:completed",
		"failing:started", "failing:failed",
	}, names(events))

	failed := events[len(events)-1]
	assert.Equal(t, 2, failed.ExitCode)
	assert.Positive(t, failed.Pid)
	require.Error(t, failed.Err)
}

func TestRun_ReportsBackground(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, e := osEngine(t)

	def, err := Parse([]byte(`
steps:
  - name: producer
    command: sh
    args: ["-c", "echo x"]
    background: true
  - name: consumer
    command: cat
`))
	require.NoError(t, err)

	cr := progress.NewChannelReporter(16)

	p, err := Run(ctx, e, def, WithReporter(cr))
	require.NoError(t, err)

	_, err = p.Wait()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"producer:started", "producer:background",
		"consumer:started", "consumer:background",
	}, names(collect(cr)), "a step fed by a background step runs in the background too")
}
