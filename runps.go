// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runps runs external programs as if they were Go functions.
//
// A Command is resolved once and then called with positional arguments,
// named options rendered as flags, and control options that decide how the
// process runs:
//
//	ls, _ := runps.New("ls")
//	long, _ := ls.Bake(runps.Opt("l", true))
//	p, err := long.Call("/tmp")
//	out, _ := p.Output()
//
// Processes are captured and waited by default. Bg starts them in the
// background, Fg attaches them to the terminal, and passing a *Process as
// the first argument of another call pipes its output into standard input.
//
// Failures are reported as *ExitError values that match both their exact
// exit code and the generic kind:
//
//	if errors.Is(err, runps.ErrExitCode(2)) { ... }
//	if errors.Is(err, runps.ErrNonZeroExit) { ... }
package runps

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
