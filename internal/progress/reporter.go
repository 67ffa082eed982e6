// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"

	"github.com/matt-FFFFFF/runps/internal/ctxlog"
)

// ChannelReporter implements Reporter using a Go channel.
type ChannelReporter struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

// NewChannelReporter creates a new ChannelReporter with the specified buffer size.
// A larger buffer size reduces the chance of dropping events.
func NewChannelReporter(bufferSize int) *ChannelReporter {
	return &ChannelReporter{
		ch: make(chan Event, bufferSize),
	}
}

// Report implements Reporter.Report.
// If the channel is full or closed, the event is dropped.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	default:
	}
}

// Close closes the event channel. It is safe to call more than once.
func (cr *ChannelReporter) Close() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.closed {
		return
	}

	cr.closed = true
	close(cr.ch)
}

// Events returns a read-only channel of progress events.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}

// LogReporter writes every event to the logger carried by its context.
type LogReporter struct {
	ctx context.Context //nolint:containedctx
}

// NewLogReporter creates a LogReporter logging through ctxlog.
func NewLogReporter(ctx context.Context) *LogReporter {
	return &LogReporter{ctx: ctx}
}

// Report implements Reporter.Report.
func (lr *LogReporter) Report(event Event) {
	args := []any{"step", event.Step, "index", event.Index, "event", event.Type.String()}

	switch event.Type {
	case EventStarted:
		ctxlog.Info(lr.ctx, "pipeline step", args...)
	case EventBackground:
		ctxlog.Info(lr.ctx, "pipeline step", append(args, "pid", event.Pid)...)
	case EventCompleted:
		ctxlog.Info(lr.ctx, "pipeline step", append(args, "pid", event.Pid, "exitCode", event.ExitCode)...)
	case EventFailed:
		ctxlog.Error(lr.ctx, "pipeline step", append(args, "exitCode", event.ExitCode, "error", event.Err)...)
	}
}
