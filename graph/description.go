// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/framegraph/properties"
)

// NodeDesc is one node instance in a GraphDescription: its identifier, the
// registry type tag used to construct it, whether it is pruned from the
// build, its tie-break position in the topological sort, and its decoded
// configuration.
type NodeDesc struct {
	Identifier         string
	TypeTag            string
	Disabled           bool
	LinearizationOrder int
	Config             map[string]any
}

// EdgeDesc is one connection: an output on SrcNode feeding an input on
// DstNode, optionally reading Delay iterations behind the producer.
type EdgeDesc struct {
	SrcNode, SrcOutput string
	DstNode, DstInput  string
	Delay              uint32
}

// GraphDescription is the declarative, reconnectable structure a Builder
// consumes: which nodes exist, how they're wired, and their configuration.
// It never touches a hal.Device; building the live graph from it is the
// Builder's job (spec.md §2, §4.3).
type GraphDescription struct {
	mu    sync.Mutex
	nodes map[string]*NodeDesc
	edges []EdgeDesc
}

// NewGraphDescription creates an empty description.
func NewGraphDescription() *GraphDescription {
	return &GraphDescription{nodes: make(map[string]*NodeDesc)}
}

// AddNode registers a new node instance, returning the identifier it was
// actually stored under. If desc.Identifier is empty, one is minted as
// "<type>-<uuid8>" (spec.md §4.7's "assigns a unique identifier if
// unspecified"). It returns InvalidArgumentError if an explicit identifier
// is already in use.
func (d *GraphDescription) AddNode(desc NodeDesc) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := desc
	if cp.Identifier == "" {
		for {
			candidate := fmt.Sprintf("%s-%s", desc.TypeTag, uuid.NewString()[:8])
			if _, exists := d.nodes[candidate]; !exists {
				cp.Identifier = candidate
				break
			}
		}
	} else if _, exists := d.nodes[cp.Identifier]; exists {
		return "", &InvalidArgumentError{Argument: "identifier", Reason: fmt.Sprintf("node %q already exists", cp.Identifier)}
	}
	if cp.Config == nil {
		cp.Config = make(map[string]any)
	}
	d.nodes[cp.Identifier] = &cp
	return cp.Identifier, nil
}

// RemoveNode deletes a node and every connection touching it.
func (d *GraphDescription) RemoveNode(identifier string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.nodes, identifier)
	kept := d.edges[:0]
	for _, e := range d.edges {
		if e.SrcNode != identifier && e.DstNode != identifier {
			kept = append(kept, e)
		}
	}
	d.edges = kept
}

// AddConnection records an edge. A delay-0 self-loop (a node feeding its
// own input within the same iteration) is rejected since it can never be
// scheduled; a delay>=1 self-loop (reading the node's own prior output) is
// the standard feedback idiom and is allowed (spec.md §3).
func (d *GraphDescription) AddConnection(e EdgeDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[e.SrcNode]; !ok {
		return &InvalidArgumentError{Argument: "SrcNode", Reason: fmt.Sprintf("unknown node %q", e.SrcNode)}
	}
	if _, ok := d.nodes[e.DstNode]; !ok {
		return &InvalidArgumentError{Argument: "DstNode", Reason: fmt.Sprintf("unknown node %q", e.DstNode)}
	}
	if e.SrcNode == e.DstNode && e.Delay == 0 {
		return &InvalidConnectionError{
			SrcNodeID: e.SrcNode, SrcOutput: e.SrcOutput,
			DstNodeID: e.DstNode, DstInput: e.DstInput,
			Reason: "delay-0 self-loop has no valid schedule",
		}
	}
	for i, existing := range d.edges {
		if existing.DstNode == e.DstNode && existing.DstInput == e.DstInput {
			d.edges[i] = e
			return nil
		}
	}
	d.edges = append(d.edges, e)
	return nil
}

// RemoveConnection deletes whatever edge feeds dstNode's dstInput, if any.
func (d *GraphDescription) RemoveConnection(dstNode, dstInput string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.edges[:0]
	for _, e := range d.edges {
		if !(e.DstNode == dstNode && e.DstInput == dstInput) {
			kept = append(kept, e)
		}
	}
	d.edges = kept
}

// SetNodeConfig replaces a node's decoded configuration. Config changes
// alone never alter the structural hash (spec.md §4.3's fast-rebind path).
func (d *GraphDescription) SetNodeConfig(identifier string, config map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[identifier]
	if !ok {
		return &InvalidArgumentError{Argument: "identifier", Reason: fmt.Sprintf("unknown node %q", identifier)}
	}
	n.Config = config
	return nil
}

// GetNodeConfig returns a node's current configuration.
func (d *GraphDescription) GetNodeConfig(identifier string) (map[string]any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[identifier]
	if !ok {
		return nil, false
	}
	return n.Config, true
}

// Nodes returns every node description, sorted by identifier for
// deterministic iteration.
func (d *GraphDescription) Nodes() []NodeDesc {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]NodeDesc, 0, len(d.nodes))
	for _, n := range d.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// Edges returns every connection.
func (d *GraphDescription) Edges() []EdgeDesc {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]EdgeDesc, len(d.edges))
	copy(out, d.edges)
	return out
}

// ToProperties serializes the description through a Properties tree
// (spec.md §4.7's to_properties), so it can round-trip through any
// Properties implementation, not just the flat file format below.
func (d *GraphDescription) ToProperties(p properties.Properties) {
	nodes := d.Nodes()
	edges := d.Edges()

	p.BeginChild("nodes")
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.Identifier)
		p.BeginChild(n.Identifier)
		p.SetText("type", n.TypeTag)
		p.SetBool("disabled", n.Disabled)
		p.SetInt32("linearization_order", int32(n.LinearizationOrder))
		if len(n.Config) > 0 {
			if raw, err := json.Marshal(n.Config); err == nil {
				p.SetJSON("config", raw)
			}
		}
		p.EndChild()
	}
	if raw, err := json.Marshal(ids); err == nil {
		p.SetJSON("_ids", raw)
	}
	p.EndChild()

	p.BeginChild("connections")
	p.SetInt32("_count", int32(len(edges)))
	for i, e := range edges {
		p.BeginChild(fmt.Sprintf("%d", i))
		p.SetText("src", e.SrcNode)
		p.SetText("src_output", e.SrcOutput)
		p.SetText("dst", e.DstNode)
		p.SetText("dst_input", e.DstInput)
		p.SetUint32("delay", e.Delay)
		p.EndChild()
	}
	p.EndChild()
}

// FromProperties rebuilds a GraphDescription from a Properties tree
// produced by ToProperties (spec.md §4.7's from_properties).
func FromProperties(p properties.Properties) (*GraphDescription, error) {
	d := NewGraphDescription()

	if p.BeginChild("nodes") {
		var ids []string
		if raw, ok := p.JSON("_ids"); ok {
			_ = json.Unmarshal(raw, &ids)
		}
		for _, id := range ids {
			if !p.BeginChild(id) {
				p.EndChild()
				continue
			}
			nd := NodeDesc{
				Identifier:         id,
				TypeTag:            p.Text("type", ""),
				Disabled:           p.Bool("disabled", false),
				LinearizationOrder: int(p.Int32("linearization_order", 0)),
			}
			if raw, ok := p.JSON("config"); ok {
				_ = json.Unmarshal(raw, &nd.Config)
			}
			p.EndChild()
			if _, err := d.AddNode(nd); err != nil {
				return nil, err
			}
		}
	}
	p.EndChild()

	if p.BeginChild("connections") {
		count := int(p.Int32("_count", 0))
		for i := 0; i < count; i++ {
			key := fmt.Sprintf("%d", i)
			if !p.BeginChild(key) {
				p.EndChild()
				continue
			}
			e := EdgeDesc{
				SrcNode:   p.Text("src", ""),
				SrcOutput: p.Text("src_output", ""),
				DstNode:   p.Text("dst", ""),
				DstInput:  p.Text("dst_input", ""),
				Delay:     p.Uint32("delay", 0),
			}
			p.EndChild()
			if err := d.AddConnection(e); err != nil {
				return nil, err
			}
		}
	}
	p.EndChild()

	return d, nil
}

// GraphDescriptionFile is the on-disk document shape a GraphDescription
// round-trips through (spec.md §6): a flat nodes/connections array,
// simpler than the general Properties tree above and the shape an
// embedding application's file format actually stores.
type GraphDescriptionFile struct {
	Nodes       []NodeDesc `json:"nodes"`
	Connections []EdgeDesc `json:"connections"`
}

// ToFile snapshots the description into its file representation.
func (d *GraphDescription) ToFile() GraphDescriptionFile {
	return GraphDescriptionFile{Nodes: d.Nodes(), Connections: d.Edges()}
}

// FromFile rebuilds a GraphDescription from a file representation.
func FromFile(f GraphDescriptionFile) (*GraphDescription, error) {
	d := NewGraphDescription()
	for _, n := range f.Nodes {
		if _, err := d.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Connections {
		if err := d.AddConnection(e); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Hash computes an FNV-1a structural hash over the description: each
// node's (identifier, type tag, disabled flag, linearization order) and
// each edge's (src, src output, dst, dst input, delay). Node configuration
// is deliberately excluded so a config-only edit never triggers a full
// rebuild (spec.md §4.3).
func (d *GraphDescription) Hash() uint64 {
	nodes := d.Nodes()
	edges := d.Edges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].DstNode != edges[j].DstNode {
			return edges[i].DstNode < edges[j].DstNode
		}
		return edges[i].DstInput < edges[j].DstInput
	})

	h := fnv.New64a()
	for _, n := range nodes {
		fmt.Fprintf(h, "N|%s|%s|%t|%d\n", n.Identifier, n.TypeTag, n.Disabled, n.LinearizationOrder)
	}
	for _, e := range edges {
		fmt.Fprintf(h, "E|%s|%s|%s|%s|%d\n", e.SrcNode, e.SrcOutput, e.DstNode, e.DstInput, e.Delay)
	}
	return h.Sum64()
}
