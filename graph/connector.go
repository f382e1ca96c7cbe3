// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/framegraph/alloc"
	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/types"
)

// ConnectorKind is the closed set of payload kinds a connector can carry.
// Earlier designs modeled each kind as its own type implementing a shared
// interface by embedding; this module instead keeps one Connector struct
// tagged by Kind and dispatches its lifecycle methods with a switch, so
// adding behavior common to every kind (descriptor binding, barrier
// bookkeeping) never needs touching eight separate types (spec.md §9).
type ConnectorKind uint8

const (
	KindManagedImage ConnectorKind = iota
	KindImageArray
	KindManagedBuffer
	KindBufferArray
	KindTexture
	KindTLAS
	KindSpecialStatic
	KindAny
)

func (k ConnectorKind) String() string {
	switch k {
	case KindManagedImage:
		return "ManagedVkImage"
	case KindImageArray:
		return "ImageArray"
	case KindManagedBuffer:
		return "ManagedVkBuffer"
	case KindBufferArray:
		return "BufferArray"
	case KindTexture:
		return "VkTexture"
	case KindTLAS:
		return "VkTLAS"
	case KindSpecialStatic:
		return "SpecialStatic"
	case KindAny:
		return "Any"
	default:
		return "unknown"
	}
}

// bindsDescriptor reports whether connectors of kind k bind a descriptor
// set slot at all; SpecialStatic and Any are host-side only.
func (k ConnectorKind) bindsDescriptor() bool {
	switch k {
	case KindSpecialStatic, KindAny:
		return false
	default:
		return true
	}
}

// specialStaticHolder lets SpecialStatic[T] (necessarily generic) plug into
// the non-generic Connector without Connector itself becoming generic.
type specialStaticHolder interface {
	valueAny() any
	consumeReconnect() bool
}

// SpecialStatic holds a CPU-side value a node mutates between runs (a
// push-constant block, a uniform struct); after a Set, the runner reports
// StatusNeedsReconnect for the owning node's dispatch (spec.md §9's supplemented generic
// connector, grounded on merian's special_static node IO).
type SpecialStatic[T any] struct {
	value T
	dirty bool
}

// NewSpecialStatic wraps an initial value.
func NewSpecialStatic[T any](initial T) *SpecialStatic[T] {
	return &SpecialStatic[T]{value: initial}
}

// Get returns the current value.
func (s *SpecialStatic[T]) Get() T { return s.value }

// Set replaces the value and marks the connector dirty, forcing a rebuild
// on the next run iteration.
func (s *SpecialStatic[T]) Set(v T) {
	s.value = v
	s.dirty = true
}

func (s *SpecialStatic[T]) valueAny() any { return s.value }

func (s *SpecialStatic[T]) consumeReconnect() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// DescriptorInfo describes how a connector binds into a descriptor set:
// which binding index, what kind of descriptor, and how many elements (1
// for scalar connectors, ArraySize for ImageArray/BufferArray).
type DescriptorInfo struct {
	Binding uint32
	Kind    types.DescriptorKind
	Count   uint32
	Stages  types.PipelineStage
}

// Connector is the tagged union covering every output and input kind
// spec.md §4.1 enumerates. Output-only and input-only fields are zero on
// the other side; Kind determines which fields are meaningful.
type Connector struct {
	Name string
	Kind ConnectorKind

	// Shared.
	DescKind types.DescriptorKind
	Stages   types.PipelineStage
	Access   types.Access

	// Output determines which field group below is meaningful.
	Output bool

	// Output-only.
	Persistent bool
	ArraySize  uint32

	// Creation hints an output uses to build its resource.
	ImageDesc   hal.ImageDesc
	BufferSize  uint64
	BufferUsage types.BufferUsage
	SamplerDesc hal.SamplerDesc

	// Input-only.
	Delay    uint32
	Optional bool

	// KindSpecialStatic / KindAny payload, set on whichever side owns it.
	Special specialStaticHolder
	AnyKind string // discriminator readers/writers agree on out-of-band

	bound *Connector // set on inputs once OnConnectOutput succeeds
}

// IsOutput reports whether c was declared via one of the New*Output
// constructors.
func (c *Connector) IsOutput() bool { return c.Output }

// NewManagedImageOutput declares a single managed image output.
func NewManagedImageOutput(name string, desc hal.ImageDesc, descKind types.DescriptorKind, stages types.PipelineStage, access types.Access, persistent bool) *Connector {
	return &Connector{Name: name, Kind: KindManagedImage, Output: true, ImageDesc: desc, DescKind: descKind, Stages: stages, Access: access, Persistent: persistent}
}

// NewImageArrayOutput declares an unmanaged array-of-images output with a
// fixed slot count.
func NewImageArrayOutput(name string, count uint32, descKind types.DescriptorKind, stages types.PipelineStage, access types.Access) *Connector {
	return &Connector{Name: name, Kind: KindImageArray, Output: true, ArraySize: count, DescKind: descKind, Stages: stages, Access: access}
}

// NewManagedBufferOutput declares a single managed buffer output.
func NewManagedBufferOutput(name string, size uint64, usage types.BufferUsage, descKind types.DescriptorKind, stages types.PipelineStage, access types.Access, persistent bool) *Connector {
	return &Connector{Name: name, Kind: KindManagedBuffer, Output: true, BufferSize: size, BufferUsage: usage, DescKind: descKind, Stages: stages, Access: access, Persistent: persistent}
}

// NewBufferArrayOutput declares an unmanaged array-of-buffers output.
func NewBufferArrayOutput(name string, count uint32, descKind types.DescriptorKind, stages types.PipelineStage, access types.Access) *Connector {
	return &Connector{Name: name, Kind: KindBufferArray, Output: true, ArraySize: count, DescKind: descKind, Stages: stages, Access: access}
}

// NewTextureOutput declares a combined image+sampler output.
func NewTextureOutput(name string, desc hal.ImageDesc, sampler hal.SamplerDesc, stages types.PipelineStage) *Connector {
	return &Connector{Name: name, Kind: KindTexture, Output: true, ImageDesc: desc, SamplerDesc: sampler, DescKind: types.DescriptorKindCombinedImageSampler, Stages: stages, Access: types.AccessShaderRead}
}

// NewTLASOutput declares an acceleration-structure output built externally;
// the graph core never allocates or destroys it.
func NewTLASOutput(name string, stages types.PipelineStage) *Connector {
	return &Connector{Name: name, Kind: KindTLAS, Output: true, DescKind: types.DescriptorKindAccelerationStructure, Stages: stages, Access: types.AccessShaderRead}
}

// NewSpecialStaticOutput exposes a host-side value for CPU-only
// consumption (push constants, uniform structs assembled on the driver
// thread); it never occupies a descriptor binding.
func NewSpecialStaticOutput(name string, special specialStaticHolder) *Connector {
	return &Connector{Name: name, Kind: KindSpecialStatic, Output: true, Special: special}
}

// NewAnyOutput exposes a reference-counted, type-erased host value shared
// across every reader.
func NewAnyOutput(name, anyKind string) *Connector {
	return &Connector{Name: name, Kind: KindAny, Output: true, AnyKind: anyKind}
}

// NewInput declares an input connector of the given kind, delay, and
// optionality. descKind must match whatever output kind the graph expects to
// bind here; it fixes this input's descriptor layout slot even if it ends up
// unconnected (an optional input still occupies a binding, filled with a
// placeholder — see DescriptorSetAllocator.dummyWrite).
func NewInput(name string, kind ConnectorKind, descKind types.DescriptorKind, delay uint32, optional bool, stages types.PipelineStage, access types.Access) *Connector {
	return &Connector{Name: name, Kind: kind, DescKind: descKind, Delay: delay, Optional: optional, Stages: stages, Access: access}
}

// OnConnectOutput binds an input to the output connector feeding it,
// validating kind and descriptor-kind compatibility (spec.md §4.4 step (d)).
func (c *Connector) OnConnectOutput(out *Connector) error {
	if out.Kind != c.Kind {
		return &InvalidConnectionError{Reason: "connector kind mismatch: " + out.Kind.String() + " -> " + c.Kind.String()}
	}
	if c.Kind.bindsDescriptor() && c.DescKind != out.DescKind {
		return &InvalidConnectionError{Reason: "descriptor kind mismatch: " + out.Kind.String() + " -> " + c.Kind.String()}
	}
	if c.Delay > 0 && out.Kind != KindManagedImage && out.Kind != KindManagedBuffer && out.Kind != KindTexture && out.Kind != KindImageArray && out.Kind != KindBufferArray {
		return &InvalidConnectionError{Reason: "delay not supported on " + out.Kind.String()}
	}
	c.bound = out
	return nil
}

// DescriptorInfo reports the binding shape c occupies, or ok=false for
// host-only kinds (SpecialStatic, Any).
func (c *Connector) DescriptorInfo(binding uint32) (DescriptorInfo, bool) {
	if !c.Kind.bindsDescriptor() {
		return DescriptorInfo{}, false
	}
	count := c.ArraySize
	if count == 0 {
		count = 1
	}
	return DescriptorInfo{Binding: binding, Kind: c.DescKind, Count: count, Stages: c.Stages}, true
}

// GetDescriptorUpdate builds the write c's connector would queue to bind r
// into its descriptor slot at binding, per spec.md §4.1's
// get_descriptor_update contract. ok is false for host-only kinds, for the
// ImageArray/BufferArray kinds (whose slots are populated by the node or
// caller after creation, not by connect), and when r lacks the payload c's
// kind binds.
func (c *Connector) GetDescriptorUpdate(binding uint32, r *Resource) (hal.DescriptorWrite, bool) {
	if r == nil {
		return hal.DescriptorWrite{}, false
	}
	switch c.Kind {
	case KindManagedImage, KindTexture:
		if r.Image == nil {
			return hal.DescriptorWrite{}, false
		}
		layout := types.ImageLayoutShaderReadOnly
		if c.Access.IsWrite() {
			layout = types.ImageLayoutGeneral
		}
		w := hal.DescriptorWrite{Binding: binding, Kind: c.DescKind, Image: r.Image.View(), ImageLayout: layout}
		if r.Sampler != nil {
			w.Sampler = r.Sampler
		}
		return w, true
	case KindManagedBuffer:
		if r.Buffer == nil {
			return hal.DescriptorWrite{}, false
		}
		return hal.DescriptorWrite{Binding: binding, Kind: c.DescKind, Buffer: r.Buffer, BufferSize: c.BufferSize}, true
	case KindTLAS:
		if r.AccelStruct == nil {
			return hal.DescriptorWrite{}, false
		}
		return hal.DescriptorWrite{Binding: binding, Kind: c.DescKind, AccelStruct: r.AccelStruct}, true
	default:
		return hal.DescriptorWrite{}, false
	}
}

// AllocContext carries the allocators a CreateResource call needs.
type AllocContext struct {
	Primary  *alloc.PrimaryAllocator
	Aliasing *alloc.AliasingAllocator
	Samplers *alloc.SamplerPool
}

// CreateResource builds the backing resource for an output connector
// (spec.md §4.4 step (f)). It dispatches on c.Kind alone and does not check
// c.Output; the builder calls it only for output connectors.
func (c *Connector) CreateResource(ctx AllocContext) (*Resource, error) {
	switch c.Kind {
	case KindManagedImage:
		if c.Persistent {
			a, err := ctx.Primary.Allocate(alloc.Spec{Kind: alloc.KindImage, Image: c.ImageDesc})
			if err != nil {
				return nil, err
			}
			return &Resource{Kind: types.PayloadKindImage, Image: a.Image, CombinedStage: c.Stages, CombinedAccess: c.Access, allocation: a}, nil
		}
		a, err := ctx.Aliasing.Acquire(alloc.Spec{Kind: alloc.KindImage, Image: c.ImageDesc})
		if err != nil {
			return nil, err
		}
		return &Resource{Kind: types.PayloadKindImage, Image: a.Image, CombinedStage: c.Stages, CombinedAccess: c.Access, allocation: a, aliasable: true}, nil
	case KindImageArray:
		return &Resource{Kind: types.PayloadKindImageArray, Images: make([]hal.Image, c.ArraySize), CombinedStage: c.Stages, CombinedAccess: c.Access}, nil
	case KindManagedBuffer:
		if c.Persistent {
			a, err := ctx.Primary.Allocate(alloc.Spec{Kind: alloc.KindBuffer, BufferSize: c.BufferSize, BufferUsage: c.BufferUsage})
			if err != nil {
				return nil, err
			}
			return &Resource{Kind: types.PayloadKindBuffer, Buffer: a.Buffer, CombinedStage: c.Stages, CombinedAccess: c.Access, allocation: a}, nil
		}
		a, err := ctx.Aliasing.Acquire(alloc.Spec{Kind: alloc.KindBuffer, BufferSize: c.BufferSize, BufferUsage: c.BufferUsage})
		if err != nil {
			return nil, err
		}
		return &Resource{Kind: types.PayloadKindBuffer, Buffer: a.Buffer, CombinedStage: c.Stages, CombinedAccess: c.Access, allocation: a, aliasable: true}, nil
	case KindBufferArray:
		return &Resource{Kind: types.PayloadKindBufferArray, Buffers: make([]hal.Buffer, c.ArraySize), CombinedStage: c.Stages, CombinedAccess: c.Access}, nil
	case KindTexture:
		a, err := ctx.Primary.Allocate(alloc.Spec{Kind: alloc.KindImage, Image: c.ImageDesc})
		if err != nil {
			return nil, err
		}
		s, err := ctx.Samplers.Acquire(c.SamplerDesc)
		if err != nil {
			return nil, err
		}
		return &Resource{Kind: types.PayloadKindImage, Image: a.Image, Sampler: s, CombinedStage: c.Stages, CombinedAccess: c.Access}, nil
	case KindTLAS:
		return &Resource{Kind: types.PayloadKindAccelerationStructure}, nil
	case KindSpecialStatic:
		return &Resource{Kind: types.PayloadKindHostAny, Host: c.Special.valueAny()}, nil
	case KindAny:
		return &Resource{Kind: types.PayloadKindHostAny}, nil
	default:
		return nil, &ConnectorError{ConnectorName: c.Name, Err: &InvalidArgumentError{Argument: "kind", Reason: "unsupported connector kind"}}
	}
}
