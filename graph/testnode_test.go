// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/types"
)

// testImageDesc is a small image shape reused across tests so two separate
// outputs can land in the same aliasing bucket.
var testImageDesc = hal.ImageDesc{Width: 4, Height: 4, Depth: 1, MipLevels: 1, ArrayLayers: 1, Format: hal.ImageFormat(1)}

// sourceNode produces a single managed image output with no inputs.
type sourceNode struct {
	NodeBase
	desc hal.ImageDesc
}

func (n *sourceNode) DescribeInputs() []*Connector { return nil }

func (n *sourceNode) DescribeOutputs(IOLayout) []*Connector {
	return []*Connector{NewManagedImageOutput("out", n.desc, types.DescriptorKindStorageImage, types.PipelineStageComputeShader, types.AccessShaderWrite, false)}
}

func (n *sourceNode) Process(RunContext, hal.CommandEncoder, hal.DescriptorSet, IO) (types.Status, error) {
	return types.StatusOK, nil
}

// passThroughNode requires one managed image input and re-exposes a
// same-shaped managed image output.
type passThroughNode struct {
	NodeBase
	desc hal.ImageDesc
}

func (n *passThroughNode) DescribeInputs() []*Connector {
	return []*Connector{NewInput("in", KindManagedImage, types.DescriptorKindStorageImage, 0, false, types.PipelineStageComputeShader, types.AccessShaderRead)}
}

func (n *passThroughNode) DescribeOutputs(IOLayout) []*Connector {
	return []*Connector{NewManagedImageOutput("out", n.desc, types.DescriptorKindStorageImage, types.PipelineStageComputeShader, types.AccessShaderWrite, false)}
}

func (n *passThroughNode) Process(RunContext, hal.CommandEncoder, hal.DescriptorSet, IO) (types.Status, error) {
	return types.StatusOK, nil
}

// optionalInputNode declares a single optional input it never requires be
// connected, and no outputs.
type optionalInputNode struct {
	NodeBase
}

func (n *optionalInputNode) DescribeInputs() []*Connector {
	return []*Connector{NewInput("maybe", KindManagedImage, types.DescriptorKindStorageImage, 0, true, types.PipelineStageComputeShader, types.AccessShaderRead)}
}

func (n *optionalInputNode) DescribeOutputs(IOLayout) []*Connector { return nil }

func (n *optionalInputNode) Process(RunContext, hal.CommandEncoder, hal.DescriptorSet, IO) (types.Status, error) {
	return types.StatusOK, nil
}

// feedbackNode reads its own previous iteration's output one frame behind
// and republishes a fresh output each iteration (spec.md §3's feedback
// idiom).
type feedbackNode struct {
	NodeBase
	desc   hal.ImageDesc
	status types.Status
}

func (n *feedbackNode) DescribeInputs() []*Connector {
	return []*Connector{NewInput("prev", KindManagedImage, types.DescriptorKindStorageImage, 1, true, types.PipelineStageComputeShader, types.AccessShaderRead)}
}

func (n *feedbackNode) DescribeOutputs(IOLayout) []*Connector {
	return []*Connector{NewManagedImageOutput("out", n.desc, types.DescriptorKindStorageImage, types.PipelineStageComputeShader, types.AccessShaderWrite, false)}
}

func (n *feedbackNode) Process(RunContext, hal.CommandEncoder, hal.DescriptorSet, IO) (types.Status, error) {
	return n.status, nil
}

// recordingNode records the RunContext of every Process call, in call
// order, for runner-order and iteration assertions.
type recordingNode struct {
	NodeBase
	calls []RunContext
}

func (n *recordingNode) DescribeInputs() []*Connector  { return nil }
func (n *recordingNode) DescribeOutputs(IOLayout) []*Connector { return nil }

func (n *recordingNode) Process(run RunContext, encoder hal.CommandEncoder, set hal.DescriptorSet, io IO) (types.Status, error) {
	n.calls = append(n.calls, run)
	return types.StatusOK, nil
}
