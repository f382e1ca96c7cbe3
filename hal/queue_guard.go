// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import (
	"context"
	"sync"
)

// QueueGuard wraps a Queue with a mutex around every submit, matching
// spec.md §5's requirement that the device queue is guarded by a mutex
// around every submit/present — a node that submits from outside the
// runner's driver thread (an async upload, a present call an embedder
// issues directly) cannot race a ring-slot submission.
type QueueGuard struct {
	mu    sync.Mutex
	queue Queue
}

// NewQueueGuard wraps queue.
func NewQueueGuard(queue Queue) *QueueGuard {
	return &QueueGuard{queue: queue}
}

// Submit serializes calls to the underlying queue's Submit.
func (g *QueueGuard) Submit(ctx context.Context, info SubmitInfo) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queue.Submit(ctx, info)
}
