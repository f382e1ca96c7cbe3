// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import (
	"context"

	"github.com/gogpu/framegraph/types"
)

// ImageDesc describes an image resource to create.
type ImageDesc struct {
	Width, Height, Depth uint32
	MipLevels            uint32
	ArrayLayers          uint32
	Format               ImageFormat
	Usage                types.ImageUsage
}

// Device is the façade's entry point: it creates and destroys every GPU
// resource kind the graph core needs, and hands out the Queue used to
// submit recorded command buffers (spec.md §6).
type Device interface {
	// CreateImage allocates a new image resource backed by dedicated
	// memory. The aliasing allocator in the alloc package calls this once
	// per distinct backing allocation, not once per logical resource.
	CreateImage(desc ImageDesc) (Image, error)
	DestroyImage(Image)

	// CreateBuffer allocates a new buffer resource backed by dedicated
	// memory.
	CreateBuffer(size uint64, usage types.BufferUsage) (Buffer, error)
	DestroyBuffer(Buffer)

	// CreateAccelerationStructure wraps an externally-built acceleration
	// structure handle; the graph core never builds these itself.
	CreateAccelerationStructure() (AccelerationStructure, error)
	DestroyAccelerationStructure(AccelerationStructure)

	// CreateSampler creates an immutable sampler.
	CreateSampler(desc SamplerDesc) (Sampler, error)
	DestroySampler(Sampler)

	// CreateDescriptorSetLayout derives a layout from a binding list built
	// by the descriptor allocator from connector descriptor kinds.
	CreateDescriptorSetLayout(bindings []DescriptorBindingLayout) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(DescriptorSetLayout)

	// CreateDescriptorPool creates a pool sized to hold maxSets sets with
	// the given total binding counts.
	CreateDescriptorPool(maxSets uint32, counts map[uint8]uint32) (DescriptorPool, error)
	DestroyDescriptorPool(DescriptorPool)

	// UpdateDescriptorSets applies a batch of writes in a single call,
	// matching the descriptor allocator's deferred-write-queue design
	// (spec.md §4.4).
	UpdateDescriptorSets(writes []DescriptorWrite)

	// CreateFence creates a fence, optionally pre-signaled.
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(Fence)

	// Queue returns the device's single submission queue.
	Queue() Queue

	// NewCommandEncoder begins recording a new command buffer.
	NewCommandEncoder() (CommandEncoder, error)

	// WaitIdle blocks until all work submitted to the device has
	// completed. The graph package does not call it; a rebuild does not
	// wait for the device to go idle before destroying resources.
	WaitIdle() error
}

// SamplerDesc describes a sampler to create. Filtering/addressing modes are
// opaque to the graph core, which only threads sampler handles through
// descriptor writes.
type SamplerDesc struct {
	MagFilter, MinFilter int
	AddressModeU         int
	AddressModeV         int
	AddressModeW         int
	MaxAnisotropy        float32
}

// SubmitInfo describes one command-buffer submission: the encoder to submit,
// semaphores to wait on before execution and signal on completion, and the
// fence to signal when the submission retires (spec.md §5's ring-slot
// wait/signal semaphore pairing).
type SubmitInfo struct {
	CommandBuffer CommandBuffer
	WaitSemas     []Semaphore
	WaitStages    []types.PipelineStage
	SignalSemas   []Semaphore
	SignalFence   Fence
}

// Semaphore is a GPU-to-GPU synchronization primitive used to order
// submissions across nodes within a single ring slot, and across the
// delay-N feedback boundary between ring slots.
type Semaphore interface {
	Resource
}

// Queue submits recorded command buffers. Guarded by QueueGuard so
// submission is safe even if an embedder submits from outside the graph
// runner's driver thread.
type Queue interface {
	// Submit enqueues one submission. Non-blocking; completion is observed
	// via the submission's fence.
	Submit(ctx context.Context, info SubmitInfo) error
}

// CommandBuffer is a finished, submittable recording produced by a
// CommandEncoder's Finish method.
type CommandBuffer interface {
	Resource
}
