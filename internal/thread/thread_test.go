// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package thread

import (
	"sync/atomic"
	"testing"
)

func TestThread_CallVoid(t *testing.T) {
	th := New()
	defer th.Stop()

	var called atomic.Bool
	th.CallVoid(func() {
		called.Store(true)
	})

	if !called.Load() {
		t.Error("CallVoid did not execute function")
	}
}

func TestThread_StopThenCallVoidIsNoop(t *testing.T) {
	th := New()
	th.Stop()

	var called atomic.Bool
	th.CallVoid(func() {
		called.Store(true)
	})

	if called.Load() {
		t.Error("CallVoid ran its function on a stopped thread")
	}
}

func TestThread_StopIsIdempotent(t *testing.T) {
	th := New()
	th.Stop()
	th.Stop() // must not panic closing an already-closed channel
}
