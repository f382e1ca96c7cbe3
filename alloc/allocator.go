// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package alloc

import (
	"fmt"

	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/types"
)

// Kind distinguishes the two backing resource shapes the allocators manage.
type Kind uint8

const (
	KindImage Kind = iota
	KindBuffer
)

// Spec is what the builder asks an allocator to satisfy: either an image
// description or a buffer size/usage pair. Exactly one half is populated,
// selected by Kind.
type Spec struct {
	Kind Kind

	Image hal.ImageDesc

	BufferSize  uint64
	BufferUsage types.BufferUsage
}

// Allocation is a backing hal resource handed out by either allocator. The
// resource field matching Kind is populated; the other is nil.
type Allocation struct {
	Kind   Kind
	Image  hal.Image
	Buffer hal.Buffer

	spec Spec
}

// Spec returns the creation parameters the allocation was created or
// reused for.
func (a Allocation) Spec() Spec { return a.spec }

// PrimaryAllocator always creates a fresh, dedicated backing resource. The
// builder uses it for resources marked persistent and for any resource
// whose lifetime interval overlaps every other candidate in its size class
// (spec.md §4.1's "persistent vs aliasable resources").
type PrimaryAllocator struct {
	device hal.Device
}

// NewPrimaryAllocator creates a PrimaryAllocator bound to device.
func NewPrimaryAllocator(device hal.Device) *PrimaryAllocator {
	return &PrimaryAllocator{device: device}
}

// Allocate creates a new backing resource for spec.
func (p *PrimaryAllocator) Allocate(spec Spec) (Allocation, error) {
	switch spec.Kind {
	case KindImage:
		img, err := p.device.CreateImage(spec.Image)
		if err != nil {
			return Allocation{}, fmt.Errorf("alloc: create image: %w", err)
		}
		return Allocation{Kind: KindImage, Image: img, spec: spec}, nil
	case KindBuffer:
		buf, err := p.device.CreateBuffer(spec.BufferSize, spec.BufferUsage)
		if err != nil {
			return Allocation{}, fmt.Errorf("alloc: create buffer: %w", err)
		}
		return Allocation{Kind: KindBuffer, Buffer: buf, spec: spec}, nil
	default:
		return Allocation{}, fmt.Errorf("alloc: unknown kind %d", spec.Kind)
	}
}

// Release destroys the backing resource immediately.
func (p *PrimaryAllocator) Release(a Allocation) {
	switch a.Kind {
	case KindImage:
		if a.Image != nil {
			p.device.DestroyImage(a.Image)
		}
	case KindBuffer:
		if a.Buffer != nil {
			p.device.DestroyBuffer(a.Buffer)
		}
	}
}
