// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v3"
)

func newWhichCmd() *cli.Command {
	return &cli.Command{
		Name:      "which",
		Usage:     "Print the full path of each command",
		ArgsUsage: "NAME...",
		Description: `Resolve each NAME on the search path the way runps would when calling it,
including the fallback from underscores to hyphens. Exits 1 if any name is missing.`,
		Action: whichAction,
	}
}

func whichAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return cli.Exit("Please provide at least one command name", exitCodeFailure)
	}

	e, err := newEngine(ctx, cmd)
	if err != nil {
		return exitWith(err)
	}

	var missing error

	for _, name := range cmd.Args().Slice() {
		path, err := e.Which(name)
		if err != nil {
			missing = multierror.Append(missing, err)
			continue
		}

		fmt.Fprintln(cmd.Root().Writer, path) //nolint:errcheck
	}

	if missing != nil {
		return cli.Exit(missing.Error(), exitCodeFailure)
	}

	return nil
}
