// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"sort"

	"github.com/gogpu/framegraph/alloc"
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/track"
)

// compiledNode is one node's resolved wiring after a successful build.
type compiledNode struct {
	id      string
	node    Node
	inputs  []*Connector
	outputs []*Connector

	// inputEdge maps an input connector's name to the edge that feeds it,
	// for runner-side delay lookups; absent for unconnected optional
	// inputs.
	inputEdge map[string]EdgeDesc
}

// Schedule is the compiled, runnable graph a Builder produces: topological
// node order, every node's resolved connectors, the resource table backing
// every output, and a per-node descriptor set allocator (spec.md §4.4 step
// (h)).
type Schedule struct {
	Order []string
	nodes map[string]*compiledNode

	Resources    *ResourceTable
	outputHandle map[string]track.Index // "nodeID/outputName" -> handle
	Descriptors  map[string]*DescriptorSetAllocator

	RingSize uint32
	Hash     uint64
}

// Node returns the compiled node for id, if present.
func (s *Schedule) Node(id string) (*compiledNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Builder runs the connect algorithm (spec.md §4.4) turning a
// GraphDescription plus a node registry into a runnable Schedule.
type Builder struct {
	Registry *Registry
	Device   hal.Device
	Alloc    AllocContext
	Metrics  *Metrics
}

// NewBuilder creates a Builder bound to registry, device, and the
// allocators a build should use to create output resources. metrics may be
// nil; every Metrics method is a no-op in that case.
func NewBuilder(registry *Registry, device hal.Device, primary *alloc.PrimaryAllocator, aliasing *alloc.AliasingAllocator, samplers *alloc.SamplerPool, metrics *Metrics) *Builder {
	return &Builder{
		Registry: registry,
		Device:   device,
		Alloc:    AllocContext{Primary: primary, Aliasing: aliasing, Samplers: samplers},
		Metrics:  metrics,
	}
}

// Build compiles desc into a Schedule against ringSize ring slots.
func (b *Builder) Build(desc *GraphDescription, ringSize uint32) (*Schedule, error) {
	// The aliasing allocator is bump-style and scoped to a single build: its
	// free list (and the lifetime intervals computed below) must not carry
	// over across rebuilds (spec.md §5).
	b.Alloc.Aliasing.Reset()

	nodeDescs := desc.Nodes()
	edges := desc.Edges()

	// (a) Instantiate every enabled node.
	byID := make(map[string]*compiledNode)
	order := make(map[string]NodeDesc)
	for _, nd := range nodeDescs {
		if nd.Disabled {
			continue
		}
		node, err := b.Registry.New(nd.TypeTag, nd.Config)
		if err != nil {
			return nil, err
		}
		byID[nd.Identifier] = &compiledNode{id: nd.Identifier, node: node, inputEdge: make(map[string]EdgeDesc)}
		order[nd.Identifier] = nd
	}

	// Drop edges touching a disabled or unknown node.
	var live []EdgeDesc
	for _, e := range edges {
		if _, ok := byID[e.SrcNode]; !ok {
			continue
		}
		if _, ok := byID[e.DstNode]; !ok {
			continue
		}
		live = append(live, e)
		if e.Delay+1 > ringSize {
			return nil, &BuildError{Stage: "ring-size", Reason: fmt.Sprintf("edge %s.%s -> %s.%s needs ring size >= %d", e.SrcNode, e.SrcOutput, e.DstNode, e.DstInput, e.Delay+1)}
		}
	}

	// (c) Topological order over the delay-0 subgraph, deterministic
	// tie-break by (linearization_order, identifier).
	topo, err := topoSort(byID, order, live)
	if err != nil {
		return nil, err
	}

	// (b)+(d) Resolve inputs/outputs/connections in topological order, so a
	// node's outputs can be derived from its own already-resolved
	// delay-0 inputs before any consumer needs them. Delay>=1 (feedback)
	// edges read a producer's PRIOR iteration's output, so the producer
	// may be scheduled anywhere relative to the consumer — including the
	// same node (a self-loop) — and its output connector may not exist
	// yet on this first pass; those are bound in a second pass below,
	// once every node's outputs exist (spec.md §3's feedback idiom).
	outputsByKey := make(map[string]*Connector) // "nodeID/outputName"
	findFeeding := func(dstNode, dstInput string) *EdgeDesc {
		for i := range live {
			if live[i].DstNode == dstNode && live[i].DstInput == dstInput {
				return &live[i]
			}
		}
		return nil
	}
	for _, id := range topo {
		cn := byID[id]
		cn.inputs = cn.node.DescribeInputs()

		bound := make(map[string]*Connector)
		for _, in := range cn.inputs {
			feeding := findFeeding(id, in.Name)
			if feeding == nil {
				if !in.Optional {
					return nil, &ConnectionMissingError{NodeID: id, InputName: in.Name}
				}
				continue
			}
			if feeding.Delay > 0 {
				continue
			}
			out, ok := outputsByKey[feeding.SrcNode+"/"+feeding.SrcOutput]
			if !ok {
				return nil, &InvalidConnectionError{SrcNodeID: feeding.SrcNode, SrcOutput: feeding.SrcOutput, DstNodeID: id, DstInput: in.Name, Reason: "source output not found (producer scheduled after consumer?)"}
			}
			in.Delay = feeding.Delay
			if err := in.OnConnectOutput(out); err != nil {
				return nil, err
			}
			// Fold this reader's stage/access requirements into the
			// producer's combined usage (spec.md §4.4 step (d)).
			out.Stages |= in.Stages
			out.Access |= in.Access
			bound[in.Name] = out
			cn.inputEdge[in.Name] = *feeding
		}

		cn.outputs = cn.node.DescribeOutputs(IOLayout{Inputs: bound})
		for _, o := range cn.outputs {
			outputsByKey[id+"/"+o.Name] = o
		}
	}

	// Second pass: bind every delay>=1 input now that every node's outputs
	// exist, regardless of topological position.
	for _, id := range topo {
		cn := byID[id]
		for _, in := range cn.inputs {
			if _, done := cn.inputEdge[in.Name]; done {
				continue
			}
			feeding := findFeeding(id, in.Name)
			if feeding == nil {
				continue // already handled (missing/optional) in the first pass
			}
			out, ok := outputsByKey[feeding.SrcNode+"/"+feeding.SrcOutput]
			if !ok {
				return nil, &InvalidConnectionError{SrcNodeID: feeding.SrcNode, SrcOutput: feeding.SrcOutput, DstNodeID: id, DstInput: in.Name, Reason: "source output not found"}
			}
			in.Delay = feeding.Delay
			if err := in.OnConnectOutput(out); err != nil {
				return nil, err
			}
			out.Stages |= in.Stages
			out.Access |= in.Access
			cn.inputEdge[in.Name] = *feeding
		}
	}

	// (f) Create backing resources: one shared instance for persistent
	// outputs, one per ring slot otherwise (see ResourceTable's doc comment
	// for why this already satisfies the delay contract). A non-persistent,
	// non-delay-fed output is released back to the aliasing allocator as
	// soon as its last delay-0 reader has been scheduled, so a later
	// output whose live interval starts after this one ends reuses the
	// same backing memory instead of growing a fresh one (spec.md §4.6).
	topoIndex := make(map[string]int, len(topo))
	for i, id := range topo {
		topoIndex[id] = i
	}
	type liveInterval struct {
		end     int
		delayed bool
	}
	intervals := make(map[string]*liveInterval, len(outputsByKey))
	for _, id := range topo {
		cn := byID[id]
		for _, o := range cn.outputs {
			intervals[id+"/"+o.Name] = &liveInterval{end: topoIndex[id]}
		}
	}
	for _, e := range live {
		key := e.SrcNode + "/" + e.SrcOutput
		iv, ok := intervals[key]
		if !ok {
			continue
		}
		if e.Delay > 0 {
			iv.delayed = true
			continue
		}
		if ri := topoIndex[e.DstNode]; ri > iv.end {
			iv.end = ri
		}
	}

	resources := NewResourceTable()
	outputHandle := make(map[string]track.Index)
	pendingRelease := make(map[string][]*Resource, len(intervals))
	for i, id := range topo {
		cn := byID[id]
		for _, o := range cn.outputs {
			handle := resources.Reserve()
			outputHandle[id+"/"+o.Name] = handle
			if o.Persistent {
				r, err := o.CreateResource(b.Alloc)
				if err != nil {
					return nil, &ResourceError{ResourceName: id + "/" + o.Name, Err: err}
				}
				resources.SetPersistent(handle, r)
				continue
			}
			slots := make([]*Resource, ringSize)
			for s := uint32(0); s < ringSize; s++ {
				r, err := o.CreateResource(b.Alloc)
				if err != nil {
					return nil, &ResourceError{ResourceName: id + "/" + o.Name, Err: err}
				}
				slots[s] = r
			}
			resources.SetSlots(handle, slots)
			pendingRelease[id+"/"+o.Name] = slots
		}

		for key, iv := range intervals {
			if iv.end != i || iv.delayed {
				continue
			}
			slots, ok := pendingRelease[key]
			if !ok {
				continue
			}
			delete(pendingRelease, key)
			for _, r := range slots {
				if r.aliasable {
					b.Alloc.Aliasing.Release(r.allocation)
				}
			}
		}
	}

	// (g) Descriptor set construction, one allocator per node.
	descriptors := make(map[string]*DescriptorSetAllocator)
	for _, id := range topo {
		cn := byID[id]
		da, err := NewDescriptorSetAllocator(b.Device, ringSize, cn.inputs, cn.outputs)
		if err != nil {
			return nil, &BuildError{Stage: "descriptor-set", Reason: "node " + id, Err: err}
		}
		descriptors[id] = da

		// Queue one initial descriptor write per ring slot for every
		// connected input, binding the exact instance that slot's input
		// resolves to under its delay (spec.md §4.4 step (g), §4.1's
		// get_descriptor_update).
		for _, in := range cn.inputs {
			if !in.Kind.bindsDescriptor() {
				continue
			}
			edge, bound := cn.inputEdge[in.Name]
			if !bound {
				continue
			}
			binding, ok := da.Binding(in.Name)
			if !ok {
				continue
			}
			producer, ok := outputHandle[edge.SrcNode+"/"+edge.SrcOutput]
			if !ok {
				continue
			}
			for s := uint32(0); s < ringSize; s++ {
				res, ok := resources.Get(producer, s, ringSize, edge.Delay)
				if !ok {
					continue
				}
				if w, ok := in.GetDescriptorUpdate(binding, res); ok {
					da.QueueWrite(s, w)
				}
			}
		}

		// Every optional input left unconnected still occupies a binding;
		// fill it with a placeholder so the node's first dispatch never
		// reads an uninitialized descriptor (spec.md §4.1).
		for _, in := range cn.inputs {
			if !in.Kind.bindsDescriptor() || !in.Optional {
				continue
			}
			if _, bound := cn.inputEdge[in.Name]; bound {
				continue
			}
			binding, ok := da.Binding(in.Name)
			if !ok {
				continue
			}
			for s := uint32(0); s < ringSize; s++ {
				if err := da.dummyWrite(s, binding, in.DescKind); err != nil {
					return nil, &BuildError{Stage: "descriptor-set", Reason: "node " + id + " placeholder for " + in.Name, Err: err}
				}
			}
		}

		// Queue one initial descriptor write per ring slot for every output,
		// binding its own freshly created instance (delay 0 — an output
		// always observes itself) (spec.md §4.4 step (g)).
		for _, o := range cn.outputs {
			if !o.Kind.bindsDescriptor() {
				continue
			}
			binding, ok := da.Binding(o.Name)
			if !ok {
				continue
			}
			handle, ok := outputHandle[id+"/"+o.Name]
			if !ok {
				continue
			}
			for s := uint32(0); s < ringSize; s++ {
				res, ok := resources.Get(handle, s, ringSize, 0)
				if !ok {
					continue
				}
				if w, ok := o.GetDescriptorUpdate(binding, res); ok {
					da.QueueWrite(s, w)
				}
			}
		}

		for s := uint32(0); s < ringSize; s++ {
			da.Flush(s)
		}
	}

	// OnConnected, now that every connector and descriptor layout is fixed.
	for _, id := range topo {
		cn := byID[id]
		if err := cn.node.OnConnected(ConnectedContext{Device: b.Device, Layout: descriptors[id].Layout}); err != nil {
			return nil, &NodeError{NodeID: id, Phase: "on_connected", Err: err}
		}
	}

	b.Metrics.observeBuild()

	return &Schedule{
		Order:        topo,
		nodes:        byID,
		Resources:    resources,
		outputHandle: outputHandle,
		Descriptors:  descriptors,
		RingSize:     ringSize,
		Hash:         desc.Hash(),
	}, nil
}

// OutputHandle resolves the resource-table handle producing nodeID's
// output named outputName.
func (s *Schedule) OutputHandle(nodeID, outputName string) (track.Index, bool) {
	h, ok := s.outputHandle[nodeID+"/"+outputName]
	return h, ok
}

// topoSort computes a deterministic topological order over the delay-0
// subgraph using Kahn's algorithm with a (linearization_order, identifier)
// tie-break among ready nodes, per spec.md §4.4 step (c).
func topoSort(byID map[string]*compiledNode, descs map[string]NodeDesc, edges []EdgeDesc) ([]string, error) {
	indeg := make(map[string]int, len(byID))
	adj := make(map[string][]string, len(byID))
	for id := range byID {
		indeg[id] = 0
	}
	for _, e := range edges {
		if e.Delay != 0 {
			continue
		}
		adj[e.SrcNode] = append(adj[e.SrcNode], e.DstNode)
		indeg[e.DstNode]++
	}

	var ready []string
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	less := func(a, b string) bool {
		da, db := descs[a], descs[b]
		if da.LinearizationOrder != db.LinearizationOrder {
			return da.LinearizationOrder < db.LinearizationOrder
		}
		return a < b
	}

	var out []string
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		n := ready[0]
		ready = ready[1:]
		out = append(out, n)
		for _, m := range adj[n] {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}
	if len(out) != len(byID) {
		return nil, &BuildError{Stage: "toposort", Reason: "cycle detected in delay-0 subgraph"}
	}
	return out, nil
}
