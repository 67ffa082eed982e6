// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI colour codes.
//
// Colour is on when FORCE_COLOR is set, or when stderr is a terminal and
// NO_COLOR is not set.
package color

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables colour output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces colour output.
	ForceColor = "FORCE_COLOR"

	escape = "\033["
	reset  = "\033[0m"
)

// Code is an ANSI SGR parameter.
type Code int

// Foreground colours used by this module.
const (
	FgRed    Code = 31
	FgGreen  Code = 32
	FgYellow Code = 33
	FgCyan   Code = 36
	FgWhite  Code = 37
	FgHiRed  Code = 91

	FgHiWhite Code = 97
)

// Bold text.
const Bold Code = 1

var enabled = detect(os.Getenv, func() bool { return term.IsTerminal(int(os.Stderr.Fd())) })

// Enabled reports whether colour output was detected at start-up.
func Enabled() bool {
	return enabled
}

// Colorize wraps s in the given codes followed by a reset.
// It does not check Enabled; callers decide.
func Colorize(s string, codes ...Code) string {
	if len(codes) == 0 {
		return s
	}

	b := make([]byte, 0, len(s)+len(escape)+len(reset)+4*len(codes))
	b = append(b, escape...)

	for i, c := range codes {
		if i > 0 {
			b = append(b, ';')
		}

		b = strconv.AppendInt(b, int64(c), 10)
	}

	b = append(b, 'm')
	b = append(b, s...)
	b = append(b, reset...)

	return string(b)
}

// Maybe colours s only when Enabled.
func Maybe(s string, codes ...Code) string {
	if !enabled {
		return s
	}

	return Colorize(s, codes...)
}

func detect(getenv func(string) string, isTerminal func() bool) bool {
	if getenv(NoColor) != "" {
		return false
	}

	if getenv(ForceColor) != "" {
		return true
	}

	return isTerminal()
}
