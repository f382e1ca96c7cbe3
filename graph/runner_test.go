// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"context"
	"testing"

	"github.com/gogpu/framegraph/alloc"
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/internal/fakehal"
	"github.com/gogpu/framegraph/types"
)

func newTestRunner(t *testing.T, sched *Schedule, device *fakehal.Device) *Runner {
	t.Helper()
	queue := hal.NewQueueGuard(device.Queue())
	r, err := NewRunner(device, queue, sched, NewEventBus(), nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestRunner_RunOnceSubmitsAndSignalsFence(t *testing.T) {
	device := fakehal.NewDevice()
	registry := NewRegistry()
	registry.Register("source", func(map[string]any) (Node, error) { return &sourceNode{desc: testImageDesc}, nil })

	b := NewBuilder(registry, device, alloc.NewPrimaryAllocator(device), alloc.NewAliasingAllocator(device), alloc.NewSamplerPool(device), nil)
	desc := NewGraphDescription()
	if _, err := desc.AddNode(NodeDesc{Identifier: "a", TypeTag: "source"}); err != nil {
		t.Fatal(err)
	}
	sched, err := b.Build(desc, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := newTestRunner(t, sched, device)
	if _, err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	submissions := device.Queue().(*fakehal.Queue).Submissions()
	if len(submissions) != 1 {
		t.Fatalf("Submissions() len = %d, want 1", len(submissions))
	}
	if r.iteration != 1 {
		t.Fatalf("iteration = %d, want 1", r.iteration)
	}
}

func TestRunner_RunOnceAdvancesRingSlot(t *testing.T) {
	device := fakehal.NewDevice()
	registry := NewRegistry()
	registry.Register("recorder", func(map[string]any) (Node, error) { return &recordingNode{}, nil })

	b := NewBuilder(registry, device, alloc.NewPrimaryAllocator(device), alloc.NewAliasingAllocator(device), alloc.NewSamplerPool(device), nil)
	desc := NewGraphDescription()
	if _, err := desc.AddNode(NodeDesc{Identifier: "a", TypeTag: "recorder"}); err != nil {
		t.Fatal(err)
	}
	sched, err := b.Build(desc, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := newTestRunner(t, sched, device)
	for i := 0; i < 3; i++ {
		if _, err := r.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce[%d]: %v", i, err)
		}
	}

	node, _ := sched.Node("a")
	rn := node.node.(*recordingNode)
	if len(rn.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(rn.calls))
	}
	wantSlots := []uint32{0, 1, 0}
	for i, c := range rn.calls {
		if c.RingSlot != wantSlots[i] {
			t.Errorf("calls[%d].RingSlot = %d, want %d", i, c.RingSlot, wantSlots[i])
		}
		if c.Iteration != uint64(i) {
			t.Errorf("calls[%d].Iteration = %d, want %d", i, c.Iteration, i)
		}
	}
}

func TestRunner_NeedsReconnectSetsDirty(t *testing.T) {
	device := fakehal.NewDevice()
	registry := NewRegistry()
	registry.Register("loop", func(map[string]any) (Node, error) {
		return &feedbackNode{desc: testImageDesc, status: types.StatusNeedsReconnect}, nil
	})

	b := NewBuilder(registry, device, alloc.NewPrimaryAllocator(device), alloc.NewAliasingAllocator(device), alloc.NewSamplerPool(device), nil)
	desc := NewGraphDescription()
	if _, err := desc.AddNode(NodeDesc{Identifier: "a", TypeTag: "loop"}); err != nil {
		t.Fatal(err)
	}
	if err := desc.AddConnection(EdgeDesc{SrcNode: "a", SrcOutput: "out", DstNode: "a", DstInput: "prev", Delay: 1}); err != nil {
		t.Fatal(err)
	}
	sched, err := b.Build(desc, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := newTestRunner(t, sched, device)
	if r.Dirty() {
		t.Fatal("Dirty() before any run should be false")
	}
	status, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !status.Has(types.StatusNeedsReconnect) {
		t.Fatal("expected combined status to carry StatusNeedsReconnect")
	}
	if !r.Dirty() {
		t.Fatal("Dirty() after a NeedsReconnect run should be true")
	}
}

func TestRunner_SetScheduleRecreatesFencesOnRingResize(t *testing.T) {
	device := fakehal.NewDevice()
	registry := NewRegistry()
	registry.Register("source", func(map[string]any) (Node, error) { return &sourceNode{desc: testImageDesc}, nil })

	b := NewBuilder(registry, device, alloc.NewPrimaryAllocator(device), alloc.NewAliasingAllocator(device), alloc.NewSamplerPool(device), nil)
	desc := NewGraphDescription()
	if _, err := desc.AddNode(NodeDesc{Identifier: "a", TypeTag: "source"}); err != nil {
		t.Fatal(err)
	}
	sched1, err := b.Build(desc, 1)
	if err != nil {
		t.Fatalf("Build(1): %v", err)
	}
	r := newTestRunner(t, sched1, device)
	if len(r.fences) != 1 {
		t.Fatalf("fences = %d, want 1", len(r.fences))
	}

	sched2, err := b.Build(desc, 3)
	if err != nil {
		t.Fatalf("Build(3): %v", err)
	}
	if err := r.SetSchedule(sched2); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if len(r.fences) != 3 {
		t.Fatalf("fences after resize = %d, want 3", len(r.fences))
	}
	if r.Dirty() {
		t.Fatal("Dirty() should be cleared by SetSchedule")
	}
}
