// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runps

import (
	"errors"
	"io"
	"os"

	"github.com/matt-FFFFFF/runps/internal/capture"
)

// stream is an OS pipe between a child process and a copy loop in this process.
// The child end is closed in the parent once the child has started.
type stream struct {
	parent *os.File
	child  *os.File
	done   chan struct{}
}

// newOutStream returns a stream the child writes to and the parent reads from.
func newOutStream() (*stream, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	return &stream{parent: r, child: w}, nil
}

// newInStream returns a stream the parent writes to and the child reads from.
func newInStream() (*stream, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	return &stream{parent: w, child: r}, nil
}

func (s *stream) start(copyLoop func()) {
	if s == nil {
		return
	}

	_ = s.child.Close()
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		copyLoop()
	}()
}

// abort closes both ends of a stream whose child never started.
func (s *stream) abort() {
	if s == nil {
		return
	}

	_ = s.child.Close()
	_ = s.parent.Close()
}

func (s *stream) wait() {
	if s == nil || s.done == nil {
		return
	}

	<-s.done
}

// drainInto copies the child's output into buf and closes buf at EOF.
// Once every follower of buf has gone the copy fails, the read end is
// closed, and the child's next write fails with a broken pipe.
func drainInto(s *stream, buf *capture.Buffer) func() {
	return func() {
		_, _ = io.Copy(buf, s.parent)
		_ = s.parent.Close()
		_ = buf.Close()
	}
}

// feedFrom copies a follower into the child's standard input. When the
// child stops reading, the follower is closed so the upstream is cut off too.
func feedFrom(s *stream, f *capture.Follower) func() {
	return func() {
		_, err := io.Copy(s.parent, f)
		_ = s.parent.Close()

		if err != nil {
			_ = f.Close()
		}
	}
}
