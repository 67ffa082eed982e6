// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/matt-FFFFFF/runps"
	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/matt-FFFFFF/runps/internal/progress"
)

// RunOption configures Run.
type RunOption func(o *runOptions)

type runOptions struct {
	reporter progress.Reporter
}

// WithReporter sends step lifecycle events to r.
func WithReporter(r progress.Reporter) RunOption {
	return func(o *runOptions) {
		o.reporter = r
	}
}

// Run starts every step of d on e and returns the process of the last step.
// Steps before a failing one are left as they are; a background step that
// has already been piped onward is waited on by its downstream.
func Run(ctx context.Context, e *runps.Engine, d *Definition, opts ...RunOption) (*runps.Process, error) {
	o := &runOptions{reporter: progress.NullReporter{}}
	for _, opt := range opts {
		opt(o)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	env, err := d.Environment()
	if err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "running pipeline", "name", d.Name, "steps", len(d.Steps))

	var prev *runps.Process

	for i, s := range d.Steps {
		args, err := s.callArgs(prev, env)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", s.DisplayName(), err)
		}

		cmd, err := e.Command(s.Command)
		if err != nil {
			report(o.reporter, s, i, progress.EventFailed, nil, err)
			return nil, fmt.Errorf("step %q: %w", s.DisplayName(), err)
		}

		ctxlog.Debug(ctx, "running step", "index", i, "name", s.DisplayName(), "background", s.Background)
		report(o.reporter, s, i, progress.EventStarted, nil, nil)

		p, err := cmd.Call(args...)
		if err != nil {
			report(o.reporter, s, i, progress.EventFailed, p, err)
			return p, fmt.Errorf("step %q: %w", s.DisplayName(), err)
		}

		if p.Mode() == runps.ModeBackground {
			report(o.reporter, s, i, progress.EventBackground, p, nil)
		} else {
			report(o.reporter, s, i, progress.EventCompleted, p, nil)
		}

		prev = p
	}

	return prev, nil
}

// callArgs renders the step as runps call arguments.
func (s Step) callArgs(prev *runps.Process, env map[string]string) ([]any, error) {
	args := make([]any, 0, len(s.Options)+6)

	if prev != nil {
		args = append(args, prev)
	}

	if len(s.Args) > 0 {
		args = append(args, s.Args)
	}

	for _, item := range s.Options {
		key, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: option key %v is not a string", ErrInvalidStep, item.Key)
		}

		args = append(args, runps.Opt(key, item.Value))
	}

	stepEnv := maps.Clone(env)
	if stepEnv == nil {
		stepEnv = make(map[string]string)
	}

	maps.Copy(stepEnv, s.Env)

	if len(stepEnv) > 0 {
		args = append(args, runps.Env(stepEnv))
	}

	if len(s.OkCodes) > 0 {
		args = append(args, runps.OkCode(s.OkCodes...))
	}

	if s.WorkingDirectory != "" {
		args = append(args, runps.Cwd(s.WorkingDirectory))
	}

	if s.Stdin != nil {
		args = append(args, runps.In(*s.Stdin))
	}

	if s.Background {
		args = append(args, runps.Bg())
	}

	return args, nil
}

func report(r progress.Reporter, s Step, index int, typ progress.EventType, p *runps.Process, err error) {
	ev := progress.Event{
		Step:      s.DisplayName(),
		Index:     index,
		Type:      typ,
		Timestamp: time.Now(),
		Err:       err,
	}

	if p != nil {
		ev.Pid = p.Pid()
		ev.ExitCode, _ = p.ExitCode()
	}

	var exitErr *runps.ExitError
	if errors.As(err, &exitErr) {
		ev.ExitCode = exitErr.ExitCode()
	}

	r.Report(ev)
}
