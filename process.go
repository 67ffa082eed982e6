// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runps

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/runps/internal/capture"
)

// ErrCloseRedirect is returned when a redirect file could not be closed after the process exited.
var ErrCloseRedirect = errors.New("failed to close redirect target")

// Process is a handle to a started (or, in ModeContext, never started) process.
//
// Wait is the single point of blocking. Output, Stdout, Stderr, Int, Float and
// Bool wait first, then return the result or the exit code error. A Process
// is waited at most once; later calls return the cached result.
type Process struct {
	argv     []string
	cmd      *exec.Cmd
	mode     Mode
	okCodes  []int
	stdout   *capture.Buffer // nil when redirected
	stderr   *capture.Buffer // nil when redirected or merged into stdout
	outDest  string
	errDest  string
	files    []io.Closer
	upstream *Process // background upstream of a streaming pipe
	logger   *slog.Logger

	outStream *stream           // stdout of a background process
	inStream  *stream           // stdin fed from a background upstream
	feedSrc   *capture.Buffer   // upstream capture feeding inStream
	feed      *capture.Follower // set once the process has started

	waitMu   sync.Mutex // serialises Wait
	mu       sync.Mutex // guards the fields below
	done     bool
	exitCode int
	err      error
}

// Argv returns the exact argument vector passed to the operating system.
func (p *Process) Argv() []string {
	return slices.Clone(p.argv)
}

// Mode returns the execution mode.
func (p *Process) Mode() Mode {
	return p.mode
}

// Pid returns the operating system process id, or 0 if the process was not started.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}

// Done reports whether the process has been waited on.
func (p *Process) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done
}

// ExitCode returns the exit code without blocking.
// The boolean is false while the process has not been waited on.
func (p *Process) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exitCode, p.done
}

// Wait waits for the process to exit and returns its exit code.
// The error is an *ExitError when the code is outside the ok set.
func (p *Process) Wait() (int, error) {
	if p.mode == ModeContext {
		return -1, ErrNotStarted
	}

	p.waitMu.Lock()
	defer p.waitMu.Unlock()

	if code, done, err := p.result(); done {
		return code, err
	}

	p.logger.Debug("waiting for process to finish", "pid", p.Pid())

	waitErr := p.cmd.Wait()
	code := p.cmd.ProcessState.ExitCode()

	// Nothing reads our stdin any more. Stop following the upstream so a
	// quiet upstream cannot hold us, and so a chatty one hits a broken pipe.
	cut := p.stopFeed()
	p.outStream.wait()

	if p.stdout != nil {
		_ = p.stdout.Close()
	}

	if p.stderr != nil {
		_ = p.stderr.Close()
	}

	p.logger.Debug("process finished", "pid", p.Pid(), "exitCode", code)

	var err error

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		err = fmt.Errorf("waiting for %s: %w", p.argv[0], waitErr)
	}

	if kind, failed := Classify(code, p.okCodes); failed {
		p.logger.Debug("process exit code indicates failure", "exitCode", code, "okCodes", p.okCodes)
		err = joinErr(err, p.exitError(kind, code))
	}

	if cerr := p.closeFiles(); cerr != nil {
		err = joinErr(err, cerr)
	}

	if uerr := p.waitUpstream(cut); uerr != nil {
		err = joinErr(err, uerr)
	}

	p.mu.Lock()
	p.done, p.exitCode, p.err = true, code, err
	p.mu.Unlock()

	return code, err
}

// startStreams starts the copy loops of a process that has just started.
func (p *Process) startStreams() {
	if p.outStream != nil {
		p.outStream.start(drainInto(p.outStream, p.stdout))
	}

	if p.inStream != nil {
		p.feed = p.feedSrc.Follow()
		p.inStream.start(feedFrom(p.inStream, p.feed))
	}
}

// release frees what spawn acquired for a process that never started.
func (p *Process) release() {
	_ = p.closeFiles()

	p.outStream.abort()
	p.inStream.abort()
}

// stopFeed stops copying the upstream into stdin and reports whether the
// upstream output was cut short.
func (p *Process) stopFeed() bool {
	if p.feed == nil {
		return false
	}

	_ = p.feed.Close()
	p.inStream.wait()

	return p.feed.Cut()
}

// waitUpstream waits for the background upstream of a pipe. Its failure is
// ours too, unless we stopped reading first: an upstream killed by the
// broken pipe is expected then.
func (p *Process) waitUpstream(cut bool) error {
	if p.upstream == nil {
		return nil
	}

	p.logger.Debug("waiting for upstream", "upstreamPid", p.upstream.Pid())

	_, err := p.upstream.Wait()
	if err == nil {
		return nil
	}

	if cut {
		p.logger.Debug("upstream ended after its reader stopped", "upstreamPid", p.upstream.Pid(), "error", err)
		return nil
	}

	return fmt.Errorf("upstream %s: %w", p.upstream.argv[0], err)
}

// joinErr keeps a lone error unwrapped so callers can type-assert it.
func joinErr(err, next error) error {
	if err == nil {
		return next
	}

	return errors.Join(err, next)
}

func (p *Process) result() (int, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exitCode, p.done, p.err
}

func (p *Process) exitError(kind ErrorKind, code int) *ExitError {
	e := &ExitError{
		Kind:     kind,
		Argv:     slices.Clone(p.argv),
		outDest:  p.outDest,
		errDest:  p.errDest,
		okCodes:  slices.Clone(p.okCodes),
		exitCode: code,
	}

	if p.stdout != nil {
		e.Stdout = p.stdout.Bytes()
	}

	if p.stderr != nil {
		e.Stderr = p.stderr.Bytes()
	}

	return e
}

func (p *Process) closeFiles() error {
	var merr *multierror.Error

	for _, f := range p.files {
		if err := f.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	p.files = nil

	if err := merr.ErrorOrNil(); err != nil {
		return errors.Join(ErrCloseRedirect, err)
	}

	return nil
}

// Output waits and returns captured stdout as text.
// Foreground processes and redirected stdout yield the empty string.
func (p *Process) Output() (string, error) {
	b, err := p.Stdout()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Stdout waits and returns the captured standard output.
func (p *Process) Stdout() ([]byte, error) {
	if _, err := p.Wait(); err != nil {
		return nil, err
	}

	if p.stdout == nil {
		return []byte{}, nil
	}

	return p.stdout.Bytes(), nil
}

// Stderr waits and returns the captured standard error.
func (p *Process) Stderr() ([]byte, error) {
	if _, err := p.Wait(); err != nil {
		return nil, err
	}

	if p.stderr == nil {
		return []byte{}, nil
	}

	return p.stderr.Bytes(), nil
}

// Int parses the trimmed output as an integer.
func (p *Process) Int() (int, error) {
	out, err := p.Output()
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(out))
}

// Float parses the trimmed output as a float.
func (p *Process) Float() (float64, error) {
	out, err := p.Output()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(strings.TrimSpace(out), 64)
}

// Bool reports whether the output is non-empty.
func (p *Process) Bool() (bool, error) {
	out, err := p.Output()
	if err != nil {
		return false, err
	}

	return len(out) > 0, nil
}

// Signal sends sig to the process.
func (p *Process) Signal(sig os.Signal) error {
	if p.cmd == nil || p.cmd.Process == nil {
		return ErrNotStarted
	}

	return p.cmd.Process.Signal(sig)
}

// Kill forcefully terminates the process. It does not wait for it.
func (p *Process) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return ErrNotStarted
	}

	return p.cmd.Process.Kill()
}

// Wrap returns cmd prefixed with this process's argv. It is meant for
// ModeContext processes, e.g. a sudo call made with WithContext.
func (p *Process) Wrap(cmd *Command) *Command {
	return wrap(p.argv, cmd)
}

// String describes the process without waiting for it.
func (p *Process) String() string {
	return fmt.Sprintf("<Process %q pid:%d mode:%s>", strings.Join(p.argv, " "), p.Pid(), p.mode)
}
