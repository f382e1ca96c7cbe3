// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package thread enforces the single-driver-thread rule the graph runner
// needs: every hal call a Schedule makes (resource create/destroy, command
// recording, submit, wait) must come from the one goroutine the device
// backend was created on, since most GPU APIs are not safe to call
// concurrently from arbitrary goroutines.
package thread

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Thread is a single goroutine, locked to its OS thread, that serializes
// every call made through CallVoid. Runner owns one for its own lifetime,
// across SetSchedule calls (spec.md §5's single-driver-thread invariant).
type Thread struct {
	funcs   chan func()
	done    chan struct{}
	running atomic.Bool
}

// New creates a new thread and starts it.
// The thread is locked to an OS thread (runtime.LockOSThread).
func New() *Thread {
	t := &Thread{
		funcs: make(chan func(), 16), // Buffered; CallVoid still waits for completion
		done:  make(chan struct{}),
	}
	t.running.Store(true)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		// Lock this goroutine to an OS thread.
		// Critical for Vulkan/OpenGL context operations.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		wg.Done() // Signal that thread is ready

		for {
			select {
			case f := <-t.funcs:
				f()
			case <-t.done:
				return
			}
		}
	}()

	wg.Wait() // Wait for thread to be ready
	return t
}

// CallVoid executes f on the thread and waits for completion.
func (t *Thread) CallVoid(f func()) {
	if !t.running.Load() {
		return
	}

	done := make(chan struct{})
	t.funcs <- func() {
		f()
		close(done)
	}
	<-done
}

// Stop stops the thread.
func (t *Thread) Stop() {
	if t.running.Swap(false) {
		close(t.done)
	}
}
