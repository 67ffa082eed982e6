// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runps

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/runps/internal/argv"
)

const truncateCap = 200 // bytes of each stream shown in an ExitError message

var (
	// ErrCommandNotFound is returned when a name does not resolve to an executable,
	// including after the underscore to hyphen fallback.
	ErrCommandNotFound = errors.New("command not found")
	// ErrInvalidBakeArgument is returned when a control option is passed to Bake.
	ErrInvalidBakeArgument = errors.New("control options cannot be baked")
	// ErrUnsupportedType is returned when an argument value has a type that cannot be rendered.
	ErrUnsupportedType = argv.ErrUnsupportedType
	// ErrSpawn is returned when the operating system refuses to create the process.
	ErrSpawn = errors.New("could not start process")
	// ErrReservedName is returned when a control option name is used as a sub-command.
	ErrReservedName = errors.New("name is reserved for control options")
	// ErrConflictingOptions is returned when mutually exclusive control options are combined.
	ErrConflictingOptions = errors.New("conflicting control options")
	// ErrInvalidControlOption is returned for unknown control options or values of the wrong type.
	ErrInvalidControlOption = errors.New("invalid control option")
	// ErrNotStarted is returned when waiting on a with-context process, which never runs.
	ErrNotStarted = errors.New("process was not started")
	// ErrNonZeroExit is the generic kind matched by every exit code error.
	ErrNonZeroExit = ErrorKind{Generic: true}
)

// ErrorKind identifies a class of exit code failure.
// Kinds are comparable, so callers match them with errors.Is:
//
//	errors.Is(err, runps.ErrExitCode(2)) // exactly exit code 2
//	errors.Is(err, runps.ErrNonZeroExit) // any exit code outside the ok set
type ErrorKind struct {
	Code    int
	Generic bool
}

// ErrExitCode returns the kind for a specific exit code.
func ErrExitCode(code int) ErrorKind {
	return ErrorKind{Code: code}
}

func (k ErrorKind) Error() string {
	if k.Generic {
		return "non-zero exit code"
	}

	return fmt.Sprintf("exit code %d", k.Code)
}

// Classify maps an exit code to its kind.
// The boolean is false when code is a member of ok, meaning there is no error.
// A nil ok set means {0}.
func Classify(code int, ok []int) (ErrorKind, bool) {
	if ok == nil {
		ok = []int{0}
	}

	if slices.Contains(ok, code) {
		return ErrorKind{}, false
	}

	return ErrExitCode(code), true
}

// ExitError is returned when a process exits with a code outside its ok set.
type ExitError struct {
	Kind     ErrorKind
	Argv     []string // the exact vector passed to the operating system
	Stdout   []byte
	Stderr   []byte
	outDest  string // set when stdout was redirected and not captured
	errDest  string // set when stderr was redirected and not captured
	okCodes  []int
	exitCode int
}

// ExitCode returns the code the process exited with.
func (e *ExitError) ExitCode() int {
	return e.exitCode
}

// OkCodes returns the codes that would have been accepted.
func (e *ExitError) OkCodes() []int {
	return slices.Clone(e.okCodes)
}

// Is matches the exact kind and the generic non-zero kind.
func (e *ExitError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	if !ok {
		return false
	}

	return k.Generic || k == e.Kind
}

// Error renders the command line that ran and both captured streams.
// The argv is joined with spaces for display only.
func (e *ExitError) Error() string {
	out := describeStream(e.Stdout, e.outDest, "Stdout")
	errOut := describeStream(e.Stderr, e.errDest, "Stderr")

	return fmt.Sprintf("\n\nRan: %s\n\nSTDOUT:\n\n  %s\n\nSTDERR:\n\n  %s",
		strings.Join(e.Argv, " "), out, errOut)
}

func describeStream(b []byte, dest, name string) string {
	if dest != "" {
		return fmt.Sprintf("<redirected to '%s'>", dest)
	}

	if len(b) <= truncateCap {
		return string(b)
	}

	return fmt.Sprintf("%s... (%d more, please see e.%s)", b[:truncateCap], len(b)-truncateCap, name)
}
