// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/runps/internal/capture"
	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/matt-FFFFFF/runps/internal/lookpath"
	"github.com/spf13/afero"
)

const redirectFileMode = 0o644

// Engine resolves commands and spawns processes.
// It holds an explicit environment snapshot, the filesystem used for
// resolution and redirection, and the stdio used by foreground processes.
type Engine struct {
	fs     afero.Fs
	env    []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	hook   func(p *Process)
}

// EngineOption configures an Engine.
type EngineOption func(e *Engine)

// WithEnv sets the environment snapshot in "KEY=value" form.
// Without it the process environment is read on every call.
func WithEnv(env []string) EngineOption {
	return func(e *Engine) {
		e.env = slices.Clone(env)
		if e.env == nil {
			e.env = []string{}
		}
	}
}

// WithFs sets the filesystem used to resolve commands and open redirect files.
func WithFs(fs afero.Fs) EngineOption {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithStdio sets the streams inherited by foreground processes.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) EngineOption {
	return func(e *Engine) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// WithLogger overrides the logger taken from the context.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStartHook registers fn to be called with every process right after it
// starts and before it is waited on, in every mode but ModeContext.
func WithStartHook(fn func(p *Process)) EngineOption {
	return func(e *Engine) {
		e.hook = fn
	}
}

// NewEngine creates an Engine. The logger is taken from ctx, see ctxlog.
func NewEngine(ctx context.Context, opts ...EngineOption) *Engine {
	e := &Engine{
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: ctxlog.Logger(ctx),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

var defaultEngine = sync.OnceValue(func() *Engine {
	return NewEngine(context.Background())
})

// Default returns the engine used by New and Bind.
func Default() *Engine {
	return defaultEngine()
}

// Environ returns the environment snapshot used for the next call.
func (e *Engine) Environ() []string {
	if e.env != nil {
		return slices.Clone(e.env)
	}

	return os.Environ()
}

// Which resolves name on the search path of the environment snapshot.
func (e *Engine) Which(name string) (string, error) {
	path, ok := lookpath.New(e.fs, e.Environ()).Resolve(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}

	return path, nil
}

// Command resolves name and binds it to this engine.
func (e *Engine) Command(name string) (*Command, error) {
	path, err := e.Which(name)
	if err != nil {
		return nil, err
	}

	return e.Bind(path), nil
}

// Bind binds path to this engine without resolving it.
// A path without a directory is resolved when the command is called.
func (e *Engine) Bind(path string) *Command {
	return &Command{
		engine: e,
		path:   path,
	}
}

// locate checks the executable still exists at spawn time.
func (e *Engine) locate(path string, env []string) (string, error) {
	if !strings.ContainsRune(path, os.PathSeparator) && !strings.Contains(path, "/") {
		if p, ok := lookpath.New(e.fs, env).Resolve(path); ok {
			return p, nil
		}

		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, path)
	}

	if _, err := e.fs.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrCommandNotFound, path)
		}

		return "", errors.Join(ErrSpawn, err)
	}

	return path, nil
}

// spawn starts argv[0] with argv as its arguments.
// Unless the process runs in the background, spawn also waits for it.
func (e *Engine) spawn(argv []string, ctl *controls, upstream *Process) (*Process, error) {
	if ctl.bg && ctl.fg {
		return nil, fmt.Errorf("%w: %s and %s", ErrConflictingOptions, ctlBackground, ctlForeground)
	}

	logger := e.logger.With("runnableType", "Process").With("argv0", argv[0])

	p := &Process{
		argv:    argv,
		okCodes: ctl.okCodes,
		logger:  logger,
	}

	if p.okCodes == nil {
		p.okCodes = []int{0}
	}

	if ctl.with {
		p.mode = ModeContext
		logger.Debug("context process created", "argv", argv)

		return p, nil
	}

	env := e.Environ()
	for _, k := range slices.Sorted(maps.Keys(ctl.env)) {
		logger.Debug("adding environment variable", "key", k)
		env = append(env, k+"="+ctl.env[k])
	}

	path, err := e.locate(argv[0], env)
	if err != nil {
		return nil, err
	}

	cmd := &exec.Cmd{
		Path: path,
		Args: argv,
		Env:  env,
		Dir:  ctl.cwd,
	}

	switch {
	case ctl.fg:
		p.mode = ModeForeground
	case ctl.bg:
		p.mode = ModeBackground
	default:
		p.mode = ModePiped
	}

	if err := e.wireStdin(cmd, p, ctl, upstream); err != nil {
		p.release()
		return nil, err
	}

	if err := e.wireOutput(cmd, p, ctl); err != nil {
		p.release()
		return nil, err
	}

	logger.Debug("starting process", "path", path, "cwd", ctl.cwd, "args", argv[1:], "mode", p.mode.String())

	if err := cmd.Start(); err != nil {
		p.release()

		// ENOENT also comes from a missing working directory or interpreter.
		if errors.Is(err, fs.ErrNotExist) {
			if _, serr := e.fs.Stat(path); errors.Is(serr, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, path)
			}
		}

		return nil, errors.Join(ErrSpawn, err)
	}

	p.cmd = cmd
	p.startStreams()
	logger.Debug("process started", "pid", cmd.Process.Pid)

	if e.hook != nil {
		e.hook(p)
	}

	if p.mode == ModeBackground {
		return p, nil
	}

	if _, err := p.Wait(); err != nil {
		return p, err
	}

	return p, nil
}

func (e *Engine) wireStdin(cmd *exec.Cmd, p *Process, ctl *controls, upstream *Process) error {
	switch {
	case ctl.in != nil:
		cmd.Stdin = strings.NewReader(*ctl.in)
	case upstream != nil:
		return e.pipeFrom(cmd, p, upstream)
	case ctl.fg:
		cmd.Stdin = e.stdin
	}

	return nil
}

// pipeFrom connects upstream's stdout to the standard input of p.
// A background upstream is streamed: p reads its output as it is written
// and runs in the background too.
func (e *Engine) pipeFrom(cmd *exec.Cmd, p *Process, upstream *Process) error {
	if upstream.Mode() == ModeContext {
		return fmt.Errorf("piping from %s: %w", upstream.argv[0], ErrNotStarted)
	}

	if upstream.Mode() == ModeBackground && !upstream.Done() {
		p.upstream = upstream
		if p.mode != ModeForeground {
			p.mode = ModeBackground
		}

		if upstream.stdout == nil {
			return nil
		}

		in, err := newInStream()
		if err != nil {
			return err
		}

		cmd.Stdin = in.child
		p.inStream = in
		p.feedSrc = upstream.stdout

		return nil
	}

	data, err := upstream.Stdout()
	if err != nil {
		return fmt.Errorf("piping from %s: %w", upstream.argv[0], err)
	}

	cmd.Stdin = bytes.NewReader(data)

	return nil
}

func (e *Engine) wireOutput(cmd *exec.Cmd, p *Process, ctl *controls) error {
	if p.mode == ModeForeground {
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	} else {
		p.stdout = capture.New()
		p.stderr = capture.New()
		cmd.Stdout = p.stdout
		cmd.Stderr = p.stderr
	}

	if ctl.out != nil {
		w, dest, err := e.openTarget(p, ctl.out)
		if err != nil {
			return err
		}

		cmd.Stdout = w
		p.outDest = dest
		p.stdout = nil
	}

	if ctl.err != nil {
		w, dest, err := e.openTarget(p, ctl.err)
		if err != nil {
			return err
		}

		cmd.Stderr = w
		p.errDest = dest
		p.stderr = nil
	}

	if ctl.errToOut {
		cmd.Stderr = cmd.Stdout
		p.stderr = nil
		p.errDest = "stdout"
	}

	// Captured output of a background process may be streamed into another
	// process, so it goes through a real pipe that can break.
	if p.mode == ModeBackground && p.stdout != nil {
		out, err := newOutStream()
		if err != nil {
			return err
		}

		if ctl.errToOut {
			cmd.Stderr = out.child
		}

		cmd.Stdout = out.child
		p.outStream = out
	}

	return nil
}

func (e *Engine) openTarget(p *Process, target any) (io.Writer, string, error) {
	switch t := target.(type) {
	case string:
		f, err := e.fs.OpenFile(t, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, redirectFileMode)
		if err != nil {
			return nil, "", fmt.Errorf("opening redirect target %s: %w", t, err)
		}

		p.files = append(p.files, f)

		return f, t, nil
	case io.Writer:
		return t, fmt.Sprintf("%T", t), nil
	}

	return nil, "", fmt.Errorf("%w: redirect target %T", ErrInvalidControlOption, target)
}
