// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/gogpu/framegraph/alloc"
	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/internal/fakehal"
)

// demoEnv wires the allocators, registry, and device every scenario needs,
// against the in-memory fakehal backend — this command has no real
// Vulkan/GLES backend to drive (spec.md §1's "bootstrapping a concrete hal
// backend is out of scope").
type demoEnv struct {
	device   *fakehal.Device
	registry *graph.Registry
	builder  *graph.Builder
	metrics  *graph.Metrics
}

func newDemoEnv() *demoEnv {
	device := fakehal.NewDevice()
	registry := graph.NewRegistry()
	metrics := graph.NewMetrics("graphdemo")
	primary := alloc.NewPrimaryAllocator(device)
	aliasing := alloc.NewAliasingAllocator(device)
	samplers := alloc.NewSamplerPool(device)
	builder := graph.NewBuilder(registry, device, primary, aliasing, samplers, metrics)
	return &demoEnv{device: device, registry: registry, builder: builder, metrics: metrics}
}

// runScenario builds desc and drives iterations RunOnce calls against
// ringSize ring slots, rebuilding and installing a new schedule whenever the
// runner is marked dirty by a StatusNeedsReconnect (spec.md §4.5, §8).
func runScenario(env *demoEnv, desc *graph.GraphDescription, ringSize uint32, iterations int) error {
	schedule, err := env.builder.Build(desc, ringSize)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	queue := hal.NewQueueGuard(env.device.Queue())
	runner, err := graph.NewRunner(env.device, queue, schedule, graph.NewEventBus(), env.metrics)
	if err != nil {
		return fmt.Errorf("new runner: %w", err)
	}
	defer runner.Close()

	ctx := context.Background()
	for i := 0; i < iterations; i++ {
		if _, err := runner.RunOnce(ctx); err != nil {
			return fmt.Errorf("run iteration %d: %w", i, err)
		}
		if runner.Dirty() {
			schedule, err = env.builder.Build(desc, ringSize)
			if err != nil {
				return fmt.Errorf("rebuild after iteration %d: %w", i, err)
			}
			if err := runner.SetSchedule(schedule); err != nil {
				return fmt.Errorf("install rebuilt schedule: %w", err)
			}
		}
	}
	return nil
}
