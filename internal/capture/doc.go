// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package capture provides an in-memory sink for process output.
//
// A Buffer records everything written to it and lets any number of readers
// follow the stream while it is still being written. Followers block until
// more data arrives or the buffer is closed, so a reader never observes bytes
// that have not been written yet.
//
// When the last follower stops reading before the end of the stream the
// buffer is broken: further writes fail with ErrBrokenPipe, so the writer can
// stop its producer the way a closed pipe would.
package capture
