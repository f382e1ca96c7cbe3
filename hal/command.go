// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import "github.com/gogpu/framegraph/types"

// ImageBarrier transitions one image (or a mip/layer range of it) between
// two pipeline stage/access/layout states. Recorded by a node's pre- and
// post-process phases around its dispatch (spec.md §4.1, §5).
type ImageBarrier struct {
	Image Image

	SrcStage  types.PipelineStage
	DstStage  types.PipelineStage
	SrcAccess types.Access
	DstAccess types.Access

	OldLayout types.ImageLayout
	NewLayout types.ImageLayout

	BaseMipLevel, MipLevelCount     uint32
	BaseArrayLayer, ArrayLayerCount uint32
}

// BufferBarrier transitions one buffer (or a byte range of it) between two
// pipeline stage/access states.
type BufferBarrier struct {
	Buffer Buffer

	SrcStage  types.PipelineStage
	DstStage  types.PipelineStage
	SrcAccess types.Access
	DstAccess types.Access

	Offset, Size uint64
}

// DispatchDesc describes a compute dispatch.
type DispatchDesc struct {
	GroupCountX, GroupCountY, GroupCountZ uint32
	DescriptorSet                         DescriptorSet
}

// DrawDesc describes a non-indexed draw call against a bound render target
// set up by the node itself; the façade does not model render passes
// beyond the barriers required to reach/leave attachment layouts.
type DrawDesc struct {
	VertexCount, InstanceCount uint32
	FirstVertex, FirstInstance uint32
	DescriptorSet              DescriptorSet
}

// BlitRegion describes one region of an image blit (format/size conversion
// copy).
type BlitRegion struct {
	SrcImage, DstImage         Image
	SrcOffset, SrcExtent       [3]uint32
	DstOffset, DstExtent       [3]uint32
}

// BufferCopyRegion describes one region of a buffer-to-buffer copy.
type BufferCopyRegion struct {
	SrcBuffer, DstBuffer Buffer
	SrcOffset, DstOffset uint64
	Size                 uint64
}

// CommandEncoder records a single command buffer: barriers, dispatches,
// draws, blits, and copies, in the order a node's lifecycle callbacks emit
// them. Finish seals the recording into a submittable CommandBuffer.
//
// A CommandEncoder is single-use and not safe for concurrent recording; the
// runner records every node in a ring slot on its single driver thread
// before calling Finish (spec.md §5).
type CommandEncoder interface {
	PipelineBarrier(images []ImageBarrier, buffers []BufferBarrier)

	Dispatch(DispatchDesc)
	Draw(DrawDesc)
	Blit(BlitRegion, Filter)
	CopyBuffer(BufferCopyRegion)
	CopyBufferToImage(src Buffer, srcOffset uint64, dst Image, region [3]uint32)
	CopyImageToBuffer(src Image, region [3]uint32, dst Buffer, dstOffset uint64)

	// Finish seals the recording. The encoder must not be used afterward.
	Finish() (CommandBuffer, error)
}

// Filter selects the sampling filter used by Blit.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)
