// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"

	"github.com/gogpu/framegraph/graph"
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/types"
)

// sourceNode produces a single managed buffer output and otherwise does
// nothing; it stands in for a node whose real work is an upload or a
// procedural generator (spec.md §8's trivial pass-through scenario).
type sourceNode struct {
	graph.NodeBase
}

func (n *sourceNode) DescribeInputs() []*graph.Connector { return nil }

func (n *sourceNode) DescribeOutputs(graph.IOLayout) []*graph.Connector {
	return []*graph.Connector{
		graph.NewManagedBufferOutput("frame", 4, types.BufferUsageStorage, types.DescriptorKindStorageBuffer, types.PipelineStageComputeShader, types.AccessShaderWrite, false),
	}
}

func (n *sourceNode) Process(run graph.RunContext, _ hal.CommandEncoder, _ hal.DescriptorSet, _ graph.IO) (types.Status, error) {
	slog.Info("source", "iteration", run.Iteration, "ring_slot", run.RingSlot)
	return types.StatusOK, nil
}

// sinkNode consumes the upstream output produced in the same iteration
// (delay 0) and logs it, closing the trivial pass-through scenario.
type sinkNode struct {
	graph.NodeBase
}

func (n *sinkNode) DescribeInputs() []*graph.Connector {
	return []*graph.Connector{
		graph.NewInput("frame", graph.KindManagedBuffer, types.DescriptorKindStorageBuffer, 0, false, types.PipelineStageComputeShader, types.AccessShaderRead),
	}
}

func (n *sinkNode) DescribeOutputs(graph.IOLayout) []*graph.Connector { return nil }

func (n *sinkNode) Process(run graph.RunContext, _ hal.CommandEncoder, _ hal.DescriptorSet, _ graph.IO) (types.Status, error) {
	slog.Info("sink", "iteration", run.Iteration, "ring_slot", run.RingSlot)
	return types.StatusOK, nil
}

// accumulatorNode reads its own previous iteration's output through a
// delay-1 self-loop and republishes an incremented running total. Its
// actual state lives in the Go field below, not the GPU buffer — the
// buffer only stands in for the resource a real accumulating compute
// kernel would write its result into (spec.md §8's feedback accumulator
// scenario, and §3's self-loop idiom).
type accumulatorNode struct {
	graph.NodeBase
	total int
}

func (n *accumulatorNode) DescribeInputs() []*graph.Connector {
	return []*graph.Connector{
		graph.NewInput("prev", graph.KindManagedBuffer, types.DescriptorKindStorageBuffer, 1, true, types.PipelineStageComputeShader, types.AccessShaderRead),
	}
}

func (n *accumulatorNode) DescribeOutputs(graph.IOLayout) []*graph.Connector {
	return []*graph.Connector{
		graph.NewManagedBufferOutput("total", 4, types.BufferUsageStorage, types.DescriptorKindStorageBuffer, types.PipelineStageComputeShader, types.AccessShaderWrite, false),
	}
}

func (n *accumulatorNode) Process(run graph.RunContext, _ hal.CommandEncoder, _ hal.DescriptorSet, _ graph.IO) (types.Status, error) {
	n.total++
	slog.Info("accumulator", "iteration", run.Iteration, "ring_slot", run.RingSlot, "total", n.total)
	return types.StatusOK, nil
}
