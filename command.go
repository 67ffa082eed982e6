// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runps

import (
	"fmt"
	"slices"
	"strings"
)

// Command is a reusable handle to an executable plus its baked arguments.
// A Command is immutable: Bake, Sub and Wrap return new values and never
// change the receiver, so commands derived from the same parent are independent.
type Command struct {
	engine *Engine
	path   string
	baked  []string
	prefix []string // argv of wrapping commands, see Wrap
	err    error    // deferred from Sub, reported by Bake, Call and Argv
}

// New resolves name with the default engine.
func New(name string) (*Command, error) {
	return Default().Command(name)
}

// Bind wraps path with the default engine without resolving it.
func Bind(path string) *Command {
	return Default().Bind(path)
}

// Path returns the executable path.
func (c *Command) Path() string {
	return c.path
}

// Baked returns a copy of the baked argument tokens.
func (c *Command) Baked() []string {
	return slices.Clone(c.baked)
}

// Err returns the error recorded by Sub, if any.
func (c *Command) Err() error {
	return c.err
}

func (c *Command) clone() *Command {
	return &Command{
		engine: c.engine,
		path:   c.path,
		baked:  slices.Clone(c.baked),
		prefix: slices.Clone(c.prefix),
		err:    c.err,
	}
}

// Bake returns a new Command with args rendered and appended to the baked
// arguments. Control options cannot be baked.
func (c *Command) Bake(args ...any) (*Command, error) {
	if c.err != nil {
		return nil, c.err
	}

	ca, err := parseArgs(args, false)
	if err != nil {
		return nil, err
	}

	if !ca.control.empty() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBakeArgument, strings.Join(ca.control.set, ", "))
	}

	tokens, err := ca.render()
	if err != nil {
		return nil, err
	}

	baked := c.clone()
	baked.baked = append(baked.baked, tokens...)

	return baked, nil
}

// Sub returns a Command with name baked as a sub-command, so that
// git.Sub("branch") runs "git branch". Control option names are reserved;
// using one records ErrReservedName, returned by the next Bake, Call or Argv.
func (c *Command) Sub(name string) *Command {
	sub := c.clone()
	if sub.err != nil {
		return sub
	}

	if IsReserved(name) {
		sub.err = fmt.Errorf("%w: %q", ErrReservedName, name)
		return sub
	}

	sub.baked = append(sub.baked, name)

	return sub
}

// Wrap returns inner prefixed with this command, so that sudo.Wrap(ls)
// runs "sudo ls". The result can be baked further like any Command.
func (c *Command) Wrap(inner *Command) *Command {
	w := wrap(c.head(), inner)
	if c.err != nil && w.err == nil {
		w.err = c.err
	}

	return w
}

func wrap(prefix []string, inner *Command) *Command {
	w := inner.clone()
	w.prefix = slices.Concat(prefix, inner.prefix)

	return w
}

// head is the argv before any call arguments.
func (c *Command) head() []string {
	return slices.Concat(c.prefix, []string{c.path}, c.baked)
}

// Argv renders the argument vector a call with args would run, without
// running anything. Control options are accepted and ignored.
func (c *Command) Argv(args ...any) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}

	ca, err := parseArgs(args, true)
	if err != nil {
		return nil, err
	}

	tokens, err := ca.render()
	if err != nil {
		return nil, err
	}

	return append(c.head(), tokens...), nil
}

// Call runs the command.
//
// Arguments are strings, string slices, numbers, fmt.Stringers, Opt named
// options, control options (Bg, Fg, Out, Err, ErrToOut, WithContext, OkCode,
// In, Cwd, Env) and *Process values. A *Process passed first is piped into
// standard input; anywhere else its output is substituted as arguments.
//
// Unless Bg is given, Call waits for the process. The returned error is then
// also the exit code error, if any, and the Process is returned alongside it.
func (c *Command) Call(args ...any) (*Process, error) {
	if c.err != nil {
		return nil, c.err
	}

	ca, err := parseArgs(args, true)
	if err != nil {
		return nil, err
	}

	tokens, err := ca.render()
	if err != nil {
		return nil, err
	}

	return c.engine.spawn(append(c.head(), tokens...), &ca.control, ca.upstream)
}

// String returns the path and baked arguments joined by spaces, for display.
func (c *Command) String() string {
	return strings.Join(c.head(), " ")
}
