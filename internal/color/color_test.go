// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mred\033[0m", Colorize("red", FgRed))
	assert.Equal(t, "\033[1;97mloud\033[0m", Colorize("loud", Bold, FgHiWhite))
	assert.Equal(t, "plain", Colorize("plain"))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		terminal bool
		want     bool
	}{
		{name: "terminal", terminal: true, want: true},
		{name: "not a terminal", terminal: false, want: false},
		{name: "NO_COLOR wins over terminal", env: map[string]string{NoColor: "1"}, terminal: true, want: false},
		{name: "FORCE_COLOR without terminal", env: map[string]string{ForceColor: "1"}, want: true},
		{name: "NO_COLOR wins over FORCE_COLOR", env: map[string]string{NoColor: "1", ForceColor: "1"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			isTerminal := func() bool { return tt.terminal }

			assert.Equal(t, tt.want, detect(getenv, isTerminal))
		})
	}
}
