// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

// PipelineStage is a bit in the pipeline-stage mask a barrier waits on or
// signals. Values mirror the Vulkan pipeline stage bits the external HAL
// backend is expected to translate these into.
type PipelineStage uint32

const (
	PipelineStageTopOfPipe PipelineStage = 1 << iota
	PipelineStageDrawIndirect
	PipelineStageVertexInput
	PipelineStageVertexShader
	PipelineStageFragmentShader
	PipelineStageEarlyFragmentTests
	PipelineStageLateFragmentTests
	PipelineStageColorAttachmentOutput
	PipelineStageComputeShader
	PipelineStageTransfer
	PipelineStageRayTracingShader
	PipelineStageAccelerationStructureBuild
	PipelineStageBottomOfPipe
	PipelineStageHost
	PipelineStageAllGraphics
	PipelineStageAllCommands
)

// Contains reports whether all stages in other are present in s.
func (s PipelineStage) Contains(other PipelineStage) bool { return s&other == other }

// Access is a bit in the memory-access mask a barrier waits on or signals.
type Access uint32

const (
	AccessIndirectCommandRead Access = 1 << iota
	AccessVertexAttributeRead
	AccessUniformRead
	AccessInputAttachmentRead
	AccessShaderRead
	AccessShaderWrite
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilAttachmentRead
	AccessDepthStencilAttachmentWrite
	AccessTransferRead
	AccessTransferWrite
	AccessHostRead
	AccessHostWrite
	AccessMemoryRead
	AccessMemoryWrite
	AccessAccelerationStructureRead
	AccessAccelerationStructureWrite
)

// IsWrite reports whether any write-class access bit is set.
func (a Access) IsWrite() bool {
	const writes = AccessShaderWrite | AccessColorAttachmentWrite | AccessDepthStencilAttachmentWrite |
		AccessTransferWrite | AccessHostWrite | AccessMemoryWrite | AccessAccelerationStructureWrite
	return a&writes != 0
}

// ImageUsage describes how an image resource may be used across its
// lifetime. An output reduces the usage of every connected input into the
// resource's creation parameters (spec.md §4.1).
type ImageUsage uint32

const (
	ImageUsageTransferSrc ImageUsage = 1 << iota
	ImageUsageTransferDst
	ImageUsageSampled
	ImageUsageStorage
	ImageUsageColorAttachment
	ImageUsageDepthStencilAttachment
	ImageUsageInputAttachment
)

// BufferUsage describes how a buffer resource may be used across its
// lifetime.
type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageIndirect
	BufferUsageAccelerationStructureInput
)

// ImageLayout is the state an image resource's memory is currently
// organized in. The resource's recorded current layout must always equal
// the layout emitted by the last barrier that touched it (spec.md §3).
type ImageLayout uint8

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutGeneral
	ImageLayoutColorAttachment
	ImageLayoutDepthStencilAttachment
	ImageLayoutDepthStencilReadOnly
	ImageLayoutShaderReadOnly
	ImageLayoutTransferSrc
	ImageLayoutTransferDst
	ImageLayoutPresentSrc
)

func (l ImageLayout) String() string {
	switch l {
	case ImageLayoutUndefined:
		return "undefined"
	case ImageLayoutGeneral:
		return "general"
	case ImageLayoutColorAttachment:
		return "color-attachment"
	case ImageLayoutDepthStencilAttachment:
		return "depth-stencil-attachment"
	case ImageLayoutDepthStencilReadOnly:
		return "depth-stencil-read-only"
	case ImageLayoutShaderReadOnly:
		return "shader-read-only"
	case ImageLayoutTransferSrc:
		return "transfer-src"
	case ImageLayoutTransferDst:
		return "transfer-dst"
	case ImageLayoutPresentSrc:
		return "present-src"
	default:
		return "unknown"
	}
}

// DescriptorKind is the kind of descriptor binding a connector contributes,
// or none if the connector has no binding (spec.md §4.1).
type DescriptorKind uint8

const (
	// DescriptorKindNone means the connector contributes no descriptor
	// binding (e.g. SpecialStatic, Any).
	DescriptorKindNone DescriptorKind = iota
	DescriptorKindSampledImage
	DescriptorKindStorageImage
	DescriptorKindUniformBuffer
	DescriptorKindStorageBuffer
	DescriptorKindCombinedImageSampler
	DescriptorKindAccelerationStructure
)

// PayloadKind is the closed set of resource payload variants a connector
// can exchange (spec.md §1, §4.1).
type PayloadKind uint8

const (
	PayloadKindImage PayloadKind = iota
	PayloadKindImageArray
	PayloadKindBuffer
	PayloadKindBufferArray
	PayloadKindAccelerationStructure
	PayloadKindHostAny
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadKindImage:
		return "image"
	case PayloadKindImageArray:
		return "image-array"
	case PayloadKindBuffer:
		return "buffer"
	case PayloadKindBufferArray:
		return "buffer-array"
	case PayloadKindAccelerationStructure:
		return "acceleration-structure"
	case PayloadKindHostAny:
		return "host-any"
	default:
		return "unknown"
	}
}

// Status is a set of flags a node or connector lifecycle callback returns
// to request follow-up action from the builder or runner (spec.md §4.1,
// §4.2).
type Status uint8

const StatusOK Status = 0

const (
	// StatusNeedsDescriptorUpdate means pending descriptor writes queued by
	// this connector must be applied before the node dispatches.
	StatusNeedsDescriptorUpdate Status = 1 << iota
	// StatusNeedsReconnect means the graph must fully rebuild before the
	// next iteration; the current iteration still finishes recording.
	StatusNeedsReconnect
)

func (s Status) Has(flag Status) bool { return s&flag == flag }

// BlitMode selects how a blit-capable copy maps a source region onto a
// differently-sized destination region. The core defines only the enum; it
// implements no blit node itself (an external node calls
// hal.CommandEncoder.Blit with the region its BlitMode resolves to).
type BlitMode uint8

const (
	// BlitFit scales the source to fit entirely within the destination,
	// preserving aspect ratio, letterboxing if necessary.
	BlitFit BlitMode = iota
	// BlitFill scales the source to fill the destination entirely,
	// preserving aspect ratio, cropping if necessary.
	BlitFill
	// BlitStretch scales the source to exactly match the destination,
	// ignoring aspect ratio.
	BlitStretch
)

func (m BlitMode) String() string {
	switch m {
	case BlitFit:
		return "Fit"
	case BlitFill:
		return "Fill"
	case BlitStretch:
		return "Stretch"
	default:
		return "unknown"
	}
}
