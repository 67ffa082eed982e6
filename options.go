// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runps

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Mode is the execution mode of a Process.
type Mode int

const (
	// ModePiped captures stdout and stderr and blocks Call until the process exits. It is the default.
	ModePiped Mode = iota
	// ModeForeground inherits the engine's stdio and blocks Call until the process exits.
	ModeForeground
	// ModeBackground captures output and returns from Call immediately.
	ModeBackground
	// ModeContext never starts a process; the Process only wraps other commands.
	ModeContext
)

func (m Mode) String() string {
	switch m {
	case ModePiped:
		return "piped"
	case ModeForeground:
		return "foreground"
	case ModeBackground:
		return "background"
	case ModeContext:
		return "context"
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// Names of the control options. In an Opt key they are written with a leading
// underscore, e.g. Opt("_bg", true).
const (
	ctlBackground = "bg"
	ctlForeground = "fg"
	ctlStdout     = "out"
	ctlStderr     = "err"
	ctlErrToOut   = "err_to_out"
	ctlWith       = "with"
	ctlOkCode     = "ok_code"
	ctlStdin      = "in"
	ctlCwd        = "cwd"
	ctlEnv        = "env"
)

var reservedNames = []string{
	ctlBackground, ctlForeground, ctlStdout, ctlStderr, ctlErrToOut,
	ctlWith, ctlOkCode, ctlStdin, ctlCwd, ctlEnv,
}

// IsReserved reports whether name is the underscore form of a control option,
// such as "_bg" or "_env". Bare words like "env" are ordinary arguments.
func IsReserved(name string) bool {
	rest, ok := strings.CutPrefix(name, "_")

	return ok && slices.Contains(reservedNames, rest)
}

// Control is a call-time option that governs how a command is executed
// rather than being passed to the program.
type Control struct {
	name  string
	value any
}

// Bg runs the process in the background; Call returns without waiting.
func Bg() Control { return Control{name: ctlBackground, value: true} }

// Fg runs the process attached to the engine's stdin, stdout and stderr.
func Fg() Control { return Control{name: ctlForeground, value: true} }

// Out redirects stdout to a file path (created or truncated) or an io.Writer.
func Out(target any) Control { return Control{name: ctlStdout, value: target} }

// Err redirects stderr to a file path (created or truncated) or an io.Writer.
func Err(target any) Control { return Control{name: ctlStderr, value: target} }

// ErrToOut merges stderr into wherever stdout goes.
func ErrToOut() Control { return Control{name: ctlErrToOut, value: true} }

// WithContext makes Call return a Process that is never started and can
// wrap other commands with its argv, see Process.Wrap.
func WithContext() Control { return Control{name: ctlWith, value: true} }

// OkCode sets the exit codes treated as success. The default is 0.
func OkCode(codes ...int) Control { return Control{name: ctlOkCode, value: codes} }

// In feeds s to the process's standard input.
func In(s string) Control { return Control{name: ctlStdin, value: s} }

// Cwd sets the working directory of the process.
func Cwd(dir string) Control { return Control{name: ctlCwd, value: dir} }

// Env adds variables on top of the engine's environment snapshot.
func Env(vars map[string]string) Control { return Control{name: ctlEnv, value: vars} }

// Option is a named argument rendered as a flag.
type Option struct {
	Key   string
	Value any
}

// Opt creates a named argument. Keys are rendered in the order the options
// are passed. A key with a leading underscore names a control option.
func Opt(key string, value any) Option {
	return Option{Key: key, Value: value}
}

type controls struct {
	set      []string
	bg       bool
	fg       bool
	errToOut bool
	with     bool
	out      any
	err      any
	okCodes  []int
	in       *string
	cwd      string
	env      map[string]string
}

func (c *controls) empty() bool {
	return len(c.set) == 0
}

func (c *controls) apply(name string, value any) error {
	name = strings.TrimPrefix(name, "_")

	var err error

	switch name {
	case ctlBackground:
		c.bg, err = controlBool(name, value)
	case ctlForeground:
		c.fg, err = controlBool(name, value)
	case ctlErrToOut:
		c.errToOut, err = controlBool(name, value)
	case ctlWith:
		c.with, err = controlBool(name, value)
	case ctlStdout:
		c.out, err = controlTarget(name, value)
	case ctlStderr:
		c.err, err = controlTarget(name, value)
	case ctlOkCode:
		c.okCodes, err = controlCodes(value)
	case ctlStdin:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidControlOption, name, value)
		}

		c.in = &s
	case ctlCwd:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidControlOption, name, value)
		}

		c.cwd = s
	case ctlEnv:
		c.env, err = controlEnv(value)
	default:
		return fmt.Errorf("%w: unknown option %q", ErrInvalidControlOption, "_"+name)
	}

	if err != nil {
		return err
	}

	c.set = append(c.set, name)

	return nil
}

func controlBool(name string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a bool, got %T", ErrInvalidControlOption, name, value)
	}

	return b, nil
}

func controlTarget(name string, value any) (any, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%w: %s path is empty", ErrInvalidControlOption, name)
		}

		return v, nil
	case io.Writer:
		return v, nil
	}

	return nil, fmt.Errorf("%w: %s must be a path or an io.Writer, got %T", ErrInvalidControlOption, name, value)
}

// controlCodes accepts a single integer or a set of integers.
// Sets decoded from YAML arrive as []any of unsigned integers.
func controlCodes(value any) ([]int, error) {
	switch v := value.(type) {
	case []int:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: %s needs at least one code", ErrInvalidControlOption, ctlOkCode)
		}

		return slices.Clone(v), nil
	case []any:
		codes := make([]int, 0, len(v))

		for _, e := range v {
			c, err := controlCodes(e)
			if err != nil {
				return nil, err
			}

			codes = append(codes, c...)
		}

		return controlCodes(codes)
	}

	code, ok := toInt(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an integer or a set of integers, got %T", ErrInvalidControlOption, ctlOkCode, value)
	}

	return []int{code}, nil
}

func controlEnv(value any) (map[string]string, error) {
	switch v := value.(type) {
	case map[string]string:
		return maps.Clone(v), nil
	case map[string]any:
		env := make(map[string]string, len(v))
		for k, val := range v {
			env[k] = fmt.Sprint(val)
		}

		return env, nil
	}

	return nil, fmt.Errorf("%w: %s must be a map of strings, got %T", ErrInvalidControlOption, ctlEnv, value)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	}

	return 0, false
}
