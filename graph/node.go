// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/types"
)

// IOLayout is the resolved binding of every input connector to the output
// connector feeding it, handed to a node's DescribeOutputs so it can size
// outputs from its inputs (an upscaler sizing its output image from its
// input's extent, for instance).
type IOLayout struct {
	Inputs map[string]*Connector // by input name, resolved to the bound output
}

// IO is what a node's Process call receives: resolved resources for every
// input and output connector by name, for the current ring slot.
type IO struct {
	Inputs  map[string]*Resource
	Outputs map[string]*Resource
}

// RunContext carries per-iteration state a node's Process needs beyond its
// resolved IO: the ring slot it is recording into and the iteration count,
// used by nodes that branch behavior on the feedback history.
type RunContext struct {
	RingSlot  uint32
	Iteration uint64
}

// ConnectedContext is passed to OnConnected once every input is resolved and
// the node's descriptor set layout has been derived, letting a node cache
// pipeline objects built against that exact layout.
type ConnectedContext struct {
	Device hal.Device
	Layout hal.DescriptorSetLayout
}

// Node is the unit of work in the graph: it declares input and output
// connectors, is notified once connected, and is invoked once per ring slot
// per iteration to record its work (spec.md §2, §4).
type Node interface {
	// DescribeInputs returns the node's input connectors, in declaration
	// order; that order fixes descriptor binding indices.
	DescribeInputs() []*Connector

	// DescribeOutputs returns the node's output connectors given the
	// resolved input layout, in declaration order, continuing the binding
	// index sequence DescribeInputs started.
	DescribeOutputs(io IOLayout) []*Connector

	// OnConnected is called once per build after every connector's
	// resource has a creation-time decision made and the node's descriptor
	// set layout is known, before any Process call.
	OnConnected(ctx ConnectedContext) error

	// Process records this node's work for one ring slot into encoder,
	// using the resolved set and resources. It returns a Status requesting
	// follow-up action (descriptor update next time, full reconnect).
	Process(run RunContext, encoder hal.CommandEncoder, set hal.DescriptorSet, io IO) (types.Status, error)
}

// NodeBase provides no-op defaults for OnConnected so simple nodes (a
// single compute dispatch with no cached pipeline state) need not implement
// it explicitly; embed it and override what you need.
type NodeBase struct{}

func (NodeBase) OnConnected(ConnectedContext) error { return nil }

// Identifier uniquely names a node instance within a GraphDescription.
type Identifier = string

// Factory constructs a new Node instance for a given type tag, decoding its
// configuration from an opaque map (typically sourced from a
// GraphDescriptionFile's node config section via mapstructure).
type Factory func(config map[string]any) (Node, error)
