// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/runps/internal/ctxlog"
)

// Target is something signals can be relayed to, typically a *runps.Process.
type Target interface {
	Signal(sig os.Signal) error
	Kill() error
}

// Forward relays signals from sigCh to target until ctx is done or sigCh is closed.
// The second signal of a given type kills the target and returns.
func Forward(ctx context.Context, sigCh <-chan os.Signal, target Target) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, ok := seen[sig]; ok {
				ctxlog.Info(ctx, "signalbroker", "detail", "received second signal of type, killing process", "signal", sig.String())

				if err := target.Kill(); err != nil {
					ctxlog.Warn(ctx, "signalbroker", "detail", "failed to kill process", "error", err)
				}

				return
			}

			seen[sig] = struct{}{}

			ctxlog.Info(ctx, "signalbroker", "detail", "forwarding signal to process", "signal", sig.String())

			if err := target.Signal(sig); err != nil {
				ctxlog.Warn(ctx, "signalbroker", "detail", "failed to forward signal", "signal", sig.String(), "error", err)
			}
		}
	}
}
