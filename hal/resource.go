// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import "github.com/gogpu/framegraph/types"

// Resource is implemented by every GPU object the façade hands back to the
// graph layer. Resources are explicitly destroyed by their owner (the
// resource table or descriptor allocator), never garbage collected.
type Resource interface {
	// Destroy releases the underlying GPU object. Destroy on an
	// already-destroyed resource is a no-op.
	Destroy()
}

// Image is a device-resident image resource, backed by its own dedicated
// memory (see Device.CreateImage).
type Image interface {
	Resource

	Extent() (width, height, depth uint32)
	Format() ImageFormat
	Usage() types.ImageUsage

	// View returns (creating on first call) an image view over the full
	// resource, used for descriptor writes and attachment binding.
	View() ImageView
}

// ImageView is a typed view over an Image used by descriptor writes and
// attachment bindings.
type ImageView interface {
	Resource
	Image() Image
}

// Buffer is a device-resident buffer resource.
type Buffer interface {
	Resource

	Size() uint64
	Usage() types.BufferUsage
}

// AccelerationStructure is an opaque ray-tracing acceleration structure
// (TLAS/BLAS). The graph core only ever handles TLAS handles produced
// outside the graph and threaded through as VkTLAS-kind connectors; it never
// builds or compacts them.
type AccelerationStructure interface {
	Resource
}

// Sampler is an immutable sampler object.
type Sampler interface {
	Resource
}

// DescriptorSetLayout describes the binding slots of a descriptor set,
// derived by the builder from the union of a node's input/output connector
// descriptor kinds (spec.md §4.4).
type DescriptorSetLayout interface {
	Resource
	Bindings() []DescriptorBindingLayout
}

// DescriptorBindingLayout is one binding slot within a DescriptorSetLayout.
type DescriptorBindingLayout struct {
	Binding uint32
	Kind    types.DescriptorKind
	Count   uint32
	Stages  types.PipelineStage
}

// DescriptorPool allocates DescriptorSet instances from a fixed layout.
type DescriptorPool interface {
	Resource
	Allocate(layout DescriptorSetLayout) (DescriptorSet, error)
}

// DescriptorSet is one allocated, writable descriptor set. The descriptor
// allocator batches writes across a frame into a single call to
// Device.UpdateDescriptorSets rather than issuing one call per binding
// (spec.md §4.4).
type DescriptorSet interface {
	Resource
}

// DescriptorWrite is one binding update within a batched descriptor update.
// Exactly one of Image, Buffer, or AccelStruct is populated, matching Kind.
type DescriptorWrite struct {
	Set     DescriptorSet
	Binding uint32
	Kind    types.DescriptorKind

	Image       ImageView
	ImageLayout ImageLayout
	Buffer      Buffer
	BufferSize  uint64
	AccelStruct AccelerationStructure
	Sampler     Sampler
}

// Fence is a GPU-to-CPU synchronization primitive signaled when a submitted
// command buffer finishes executing. The graph maintains one fence per ring
// slot and waits on it before reusing that slot (spec.md §5).
type Fence interface {
	Resource

	// Wait blocks until the fence is signaled or timeoutNanos elapses (0
	// means wait forever). Returns ErrFenceTimeout on timeout.
	Wait(timeoutNanos uint64) error
	// Reset clears the fence back to the unsignaled state.
	Reset() error
	// Signaled reports whether the fence is currently signaled, without
	// blocking.
	Signaled() (bool, error)
}

// ImageFormat is an opaque device pixel format handle; the façade never
// interprets it, only threads it between resource creation and descriptor
// writes.
type ImageFormat uint32

// ImageLayout re-exports types.ImageLayout for hal call sites that prefer
// not to import types directly.
type ImageLayout = types.ImageLayout
