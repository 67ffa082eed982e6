// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package capture

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

var (
	// ErrClosed is returned when writing to a closed Buffer.
	ErrClosed = errors.New("capture buffer closed")
	// ErrBrokenPipe is returned when writing to a Buffer whose readers all
	// stopped following it before the end of the stream.
	ErrBrokenPipe = errors.New("capture buffer has no readers left")
)

// Buffer captures written bytes and serves followers.
// It is safe for concurrent use.
type Buffer struct {
	buf       bytes.Buffer
	closed    bool
	broken    bool
	followers int // followers not yet closed
	mu        sync.Mutex
	cond      *sync.Cond
}

// New creates an empty, open Buffer.
func New() *Buffer {
	b := &Buffer{}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	if b.broken {
		return 0, ErrBrokenPipe
	}

	n, _ := b.buf.Write(p)
	b.cond.Broadcast()

	return n, nil
}

// Close marks the end of the stream and wakes all followers.
// Closing twice is a no-op.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()

	return nil
}

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// Bytes returns a copy of everything written so far.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bytes.Clone(b.buf.Bytes())
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Len()
}

// Follow returns a reader that starts at the beginning of the stream and
// returns io.EOF once it has consumed everything and the Buffer is closed.
//
// Closing the last open Follower before it reached the end breaks the
// Buffer: later writes fail with ErrBrokenPipe, the way writing to a pipe
// fails once its reader has gone.
func (b *Buffer) Follow() *Follower {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.followers++

	return &Follower{b: b}
}

// Follower reads a Buffer while it is being written.
type Follower struct {
	b      *Buffer
	off    int
	closed bool
	cut    bool
}

// Read implements io.Reader. It blocks until data is available, the
// Buffer is closed, or the Follower is closed.
func (f *Follower) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	f.b.mu.Lock()
	defer f.b.mu.Unlock()

	for f.off >= f.b.buf.Len() {
		if f.b.closed || f.closed {
			return 0, io.EOF
		}

		f.b.cond.Wait()
	}

	if f.closed {
		return 0, io.EOF
	}

	n := copy(p, f.b.buf.Bytes()[f.off:])
	f.off += n

	return n, nil
}

// Close stops following and wakes a blocked Read. Closing twice is a no-op.
func (f *Follower) Close() error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	f.cut = !f.b.closed || f.off < f.b.buf.Len()
	f.b.followers--

	if f.cut && f.b.followers == 0 {
		f.b.broken = true
	}

	f.b.cond.Broadcast()

	return nil
}

// Cut reports whether the Follower was closed before reaching the end of the stream.
func (f *Follower) Cut() bool {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()

	return f.cut
}
