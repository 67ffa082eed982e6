// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func newArgvCmd() *cli.Command {
	return &cli.Command{
		Name:            "argv",
		Usage:           "Print the argument vector a command would run with, one token per line",
		ArgsUsage:       "NAME [ARGS...]",
		SkipFlagParsing: true,
		Action:          argvAction,
	}
}

func argvAction(ctx context.Context, cmd *cli.Command) error {
	name, args, err := commandArgs(cmd)
	if err != nil {
		return err
	}

	e, err := newEngine(ctx, cmd)
	if err != nil {
		return exitWith(err)
	}

	c, err := e.Command(name)
	if err != nil {
		return exitWith(err)
	}

	argv, err := c.Argv(args)
	if err != nil {
		return exitWith(err)
	}

	for _, tok := range argv {
		fmt.Fprintln(cmd.Root().Writer, tok) //nolint:errcheck
	}

	return nil
}
