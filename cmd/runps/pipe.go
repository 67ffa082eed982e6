// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"

	"github.com/matt-FFFFFF/runps/internal/pipeline"
	"github.com/matt-FFFFFF/runps/internal/progress"
	"github.com/urfave/cli/v3"
)

func newPipeCmd() *cli.Command {
	return &cli.Command{
		Name:      "pipe",
		Usage:     "Run a YAML pipeline and print the output of its last step",
		ArgsUsage: "FILE",
		Description: `Run the steps of a pipeline definition in order, piping the output of
each step into the next. The output of the last step is printed.
Step progress is logged at INFO level, see RUNPS_LOG_LEVEL.`,
		Action: pipeAction,
	}
}

func pipeAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return cli.Exit("Please provide exactly one pipeline file", exitCodeFailure)
	}

	def, err := pipeline.Load(ctx, cmd.Args().First())
	if err != nil {
		return exitWith(err)
	}

	e, err := newEngine(ctx, cmd)
	if err != nil {
		return exitWith(err)
	}

	p, err := pipeline.Run(ctx, e, def, pipeline.WithReporter(progress.NewLogReporter(ctx)))
	if err != nil {
		return exitWith(err)
	}

	out, err := p.Stdout()
	if err != nil {
		return exitWith(err)
	}

	if _, err := cmd.Root().Writer.Write(out); err != nil {
		return exitWith(err)
	}

	return nil
}
