// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the runps command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/runps"
	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

// newRootCmd returns the root command for the CLI.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			newWhichCmd(),
			newArgvCmd(),
			newExecCmd(),
			newPipeCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      envFileFlag,
				Usage:     "Load a dotenv file on top of the environment before resolving or running anything",
				TakesFile: true,
				OnlyOnce:  true,
			},
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "runps",
		Description: `runps resolves programs on the search path and runs them with exactly
the arguments given, without a shell in between. It can also run YAML pipelines
where each step is piped into the next.`,
		Usage:     "runps exec ls -l /tmp",
		Version:   fmt.Sprintf("%s (commit: %s)", runps.Version, runps.Commit),
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	err := newRootCmd().Run(ctx, os.Args) // Exit codes are handled by the cli framework

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Debug("command completed successfully")
}
