// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"sync"

	"github.com/matt-FFFFFF/runps"
	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/matt-FFFFFF/runps/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func newExecCmd() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run a command in the foreground and exit with its exit code",
		ArgsUsage: "NAME [ARGS...]",
		Description: `Run NAME attached to this terminal. SIGINT, SIGTERM and SIGQUIT are
forwarded to the child; a second signal of the same type kills it.`,
		SkipFlagParsing: true,
		Action:          execAction,
	}
}

func execAction(ctx context.Context, cmd *cli.Command) error {
	name, args, err := commandArgs(cmd)
	if err != nil {
		return err
	}

	started := make(chan *runps.Process, 1)

	e, err := newEngine(ctx, cmd, runps.WithStartHook(func(p *runps.Process) {
		started <- p
	}))
	if err != nil {
		return exitWith(err)
	}

	c, err := e.Command(name)
	if err != nil {
		return exitWith(err)
	}

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	fwdCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		select {
		case p := <-started:
			signalbroker.Forward(fwdCtx, sigCh, p)
		case <-fwdCtx.Done():
		}
	}()

	p, err := c.Call(args, runps.Fg())

	cancel()
	wg.Wait()

	if err != nil {
		return exitWith(err)
	}

	ctxlog.Debug(ctx, "command exited", "pid", p.Pid())

	return nil
}
