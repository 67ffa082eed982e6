// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/matt-FFFFFF/runps"
	"github.com/matt-FFFFFF/runps/internal/pipeline"
	"github.com/urfave/cli/v3"
)

const envFileFlag = "env-file"

// exitCodeFailure is used when the failure did not come from a child process.
const exitCodeFailure = 1

// newEngine builds the engine shared by every subcommand, writing to the
// root command's streams.
func newEngine(ctx context.Context, cmd *cli.Command, opts ...runps.EngineOption) (*runps.Engine, error) {
	root := cmd.Root()

	base := []runps.EngineOption{
		runps.WithStdio(os.Stdin, root.Writer, root.ErrWriter),
	}

	if path := cmd.String(envFileFlag); path != "" {
		vars, err := pipeline.ReadEnvFile(path)
		if err != nil {
			return nil, err
		}

		env := os.Environ()
		for _, k := range slices.Sorted(maps.Keys(vars)) {
			env = append(env, k+"="+vars[k])
		}

		base = append(base, runps.WithEnv(env))
	}

	return runps.NewEngine(ctx, append(base, opts...)...), nil
}

// exitWith turns err into a cli exit error, keeping the child's exit code.
func exitWith(err error) error {
	var exitErr *runps.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code <= 0 {
			code = exitCodeFailure
		}

		return cli.Exit(err.Error(), code)
	}

	return cli.Exit(fmt.Sprintf("runps: %s", err), exitCodeFailure)
}

// commandArgs splits "NAME [ARGS...]".
func commandArgs(cmd *cli.Command) (string, []string, error) {
	if cmd.Args().Len() == 0 {
		return "", nil, cli.Exit("Please provide a command to run", exitCodeFailure)
	}

	return cmd.Args().First(), cmd.Args().Tail(), nil
}
