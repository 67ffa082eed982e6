// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is emitted when a pipeline step changes state.
type Event struct {
	Step      string    // display name of the step
	Index     int       // position of the step in the pipeline
	Type      EventType // what happened
	Timestamp time.Time
	Pid       int   // set once the step has started
	ExitCode  int   // set for EventCompleted and EventFailed
	Err       error // set for EventFailed
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted indicates a step is about to be called.
	EventStarted EventType = iota
	// EventBackground indicates a step was started and left running.
	EventBackground
	// EventCompleted indicates the step exited with an accepted exit code.
	EventCompleted
	// EventFailed indicates the step could not be started or exited with an unaccepted code.
	EventFailed
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventBackground:
		return "background"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report sends an event. Implementations must not block.
	Report(event Event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (NullReporter) Report(Event) {}
