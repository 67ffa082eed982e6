// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"

	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type fakeTarget struct {
	mu        sync.Mutex
	signals   []os.Signal
	killed    int
	signalErr error
}

func (f *fakeTarget) Signal(sig os.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.signals = append(f.signals, sig)

	return f.signalErr
}

func (f *fakeTarget) Kill() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.killed++

	return nil
}

func forward(ctx context.Context, sigCh chan os.Signal, target Target) *sync.WaitGroup {
	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Forward(ctx, sigCh, target)
	}()

	return &wg
}

func TestForward_FirstSignalIsRelayed(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)
	sigCh := make(chan os.Signal)
	target := &fakeTarget{}

	wg := forward(ctx, sigCh, target)
	sigCh <- os.Interrupt
	close(sigCh)
	wg.Wait()

	assert.Equal(t, []os.Signal{os.Interrupt}, target.signals)
	assert.Zero(t, target.killed)
}

func TestForward_SecondSignalKills(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)
	sigCh := make(chan os.Signal)
	target := &fakeTarget{}

	wg := forward(ctx, sigCh, target)
	sigCh <- syscall.SIGTERM
	sigCh <- syscall.SIGTERM
	wg.Wait()

	assert.Equal(t, []os.Signal{syscall.SIGTERM}, target.signals)
	assert.Equal(t, 1, target.killed)
}

func TestForward_DifferentSignalsAreRelayed(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)
	sigCh := make(chan os.Signal)
	target := &fakeTarget{signalErr: errors.New("gone")}

	wg := forward(ctx, sigCh, target)
	sigCh <- syscall.SIGINT
	sigCh <- syscall.SIGTERM
	close(sigCh)
	wg.Wait()

	assert.Equal(t, []os.Signal{syscall.SIGINT, syscall.SIGTERM}, target.signals, "errors from the target do not stop forwarding")
	assert.Zero(t, target.killed)
}

func TestForward_StopsOnContextDone(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(ctxlog.New(context.Background(), ctxlog.DefaultLogger))
	sigCh := make(chan os.Signal)

	wg := forward(ctx, sigCh, &fakeTarget{})
	cancel()
	wg.Wait()
}
