// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/framegraph/alloc"
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/track"
	"github.com/gogpu/framegraph/types"
)

// Resource is the opaque, connector-owned payload exchanged along an edge.
// Its concrete shape is fixed by the producing output connector's kind
// (spec.md §3); Resource itself only carries the union of fields every
// kind might populate, plus the bookkeeping the runner needs regardless of
// kind: combined stage/access requirements and the image's current layout.
type Resource struct {
	Kind types.PayloadKind

	// Single-image / combined-image-sampler payloads (ManagedVkImage,
	// VkTexture).
	Image    hal.Image
	Sampler  hal.Sampler
	Backing  interface{ Destroy() } // not set by CreateResource; the backing allocation is kept in allocation below

	// Array payloads (ImageArray, BufferArray); unmanaged — node or an
	// external caller fills slots after creation.
	Images  []hal.Image
	Buffers []hal.Buffer

	// Single-buffer payload (ManagedVkBuffer).
	Buffer hal.Buffer

	// Acceleration-structure payload (VkTLAS); built externally, never by
	// the graph core.
	AccelStruct hal.AccelerationStructure

	// Host-side payloads (SpecialStatic[T], Any).
	Host interface{}
	refs int

	// CombinedStage/CombinedAccess are the union of every reader's required
	// pipeline stage and access, reduced during connect step (d) and used
	// by on_pre_process/on_post_process to size barriers.
	CombinedStage types.PipelineStage
	CombinedAccess types.Access

	// allocation/aliasable back a ManagedVkImage/ManagedVkBuffer output so
	// the builder can release it to the AliasingAllocator once its live
	// interval (last delay-0 reader) has passed, letting a later output
	// with a disjoint interval reuse the same backing memory (spec.md
	// §4.6, §9's aliasing bucket policy).
	allocation alloc.Allocation
	aliasable  bool

	// CurrentLayout is the image layout recorded after the last barrier
	// that touched this resource; spec.md §3 requires it always equal the
	// layout emitted by that barrier.
	CurrentLayout types.ImageLayout

	// Pending is a per-resource list of descriptor writes. The runner does
	// not read it: it flushes only the node's DescriptorSetAllocator queue.
	Pending []hal.DescriptorWrite
}

// IncRef/DecRef implement the Any connector's reference counting across its
// N readers (spec.md §4.1, §9 "shared ownership").
func (r *Resource) IncRef() { r.refs++ }
func (r *Resource) DecRef() int {
	r.refs--
	return r.refs
}

// ResourceTable stores every output's resource instances: one shared
// instance for persistent outputs, or RingSize instances for non-persistent
// ones. Reading an input of delay d against ring slot s is equivalent to
// reading the instance produced d iterations ago — since the ring size
// invariant (spec.md §3, "ring size ≥ max delay + 1") guarantees slot
// (s-d+R)%R has not yet been overwritten by the in-progress iteration, a
// plain per-ring-slot array already satisfies the delay contract without a
// separate set of "extra" delay instances (see DESIGN.md's resolution of
// this open point).
type ResourceTable struct {
	allocator *track.IndexAllocator
	entries   map[track.Index]*tableEntry
}

type tableEntry struct {
	persistent bool
	single     *Resource   // persistent
	slots      []*Resource // non-persistent, len == ring size
}

// NewResourceTable creates an empty table.
func NewResourceTable() *ResourceTable {
	return &ResourceTable{
		allocator: track.NewIndexAllocator(),
		entries:   make(map[track.Index]*tableEntry),
	}
}

// Reserve allocates a new output slot and returns its handle.
func (t *ResourceTable) Reserve() track.Index {
	return t.allocator.Alloc()
}

// SetPersistent installs the single shared instance for a persistent
// output's handle.
func (t *ResourceTable) SetPersistent(idx track.Index, r *Resource) {
	t.entries[idx] = &tableEntry{persistent: true, single: r}
}

// SetSlots installs the per-ring-slot instances for a non-persistent
// output's handle. len(slots) must equal the ring size.
func (t *ResourceTable) SetSlots(idx track.Index, slots []*Resource) {
	t.entries[idx] = &tableEntry{persistent: false, slots: slots}
}

// Get resolves the resource an input of the given delay observes for
// output idx at ring slot s, with ring size R.
func (t *ResourceTable) Get(idx track.Index, ringSlot, ringSize, delay uint32) (*Resource, bool) {
	e, ok := t.entries[idx]
	if !ok {
		return nil, false
	}
	if e.persistent {
		return e.single, true
	}
	if ringSize == 0 {
		return nil, false
	}
	i := RingSlot{Size: ringSize}.Delayed(ringSlot, delay)
	if int(i) >= len(e.slots) {
		return nil, false
	}
	return e.slots[i], true
}

// All returns every resource instance currently in the table, for teardown.
func (t *ResourceTable) All() []*Resource {
	var out []*Resource
	for _, e := range t.entries {
		if e.persistent {
			if e.single != nil {
				out = append(out, e.single)
			}
			continue
		}
		for _, r := range e.slots {
			if r != nil {
				out = append(out, r)
			}
		}
	}
	return out
}

// Reset clears the table entirely, ready for the next build.
func (t *ResourceTable) Reset() {
	t.entries = make(map[track.Index]*tableEntry)
	t.allocator.Reset()
}
