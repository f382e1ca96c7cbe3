// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"sync"

	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/types"
)

// DescriptorSetAllocator derives a single descriptor set layout by walking
// a node's input connectors followed by its output connectors in
// declaration order, assigning each connector that binds a descriptor
// (bindsDescriptor) the next free binding index. It then owns one
// hal.DescriptorSet per ring slot and a deferred write queue flushed by the
// runner immediately before the node dispatches (spec.md §2, §4.1).
type DescriptorSetAllocator struct {
	device hal.Device

	Layout hal.DescriptorSetLayout
	pool   hal.DescriptorPool
	Sets   []hal.DescriptorSet // len == ring size

	bindingOf map[string]uint32
	infos     []DescriptorInfo

	mu      sync.Mutex
	pending map[uint32][]hal.DescriptorWrite // ring slot -> queued writes

	dummyImage  hal.Image
	dummyBuffer hal.Buffer
	dummyCount  int
}

// NewDescriptorSetAllocator derives the layout from inputs followed by
// outputs and allocates ringSize descriptor sets from a freshly created
// pool.
func NewDescriptorSetAllocator(device hal.Device, ringSize uint32, inputs, outputs []*Connector) (*DescriptorSetAllocator, error) {
	a := &DescriptorSetAllocator{
		device:    device,
		bindingOf: make(map[string]uint32),
		pending:   make(map[uint32][]hal.DescriptorWrite),
	}

	var bindingLayouts []hal.DescriptorBindingLayout
	counts := make(map[uint8]uint32)
	next := uint32(0)
	assign := func(c *Connector) {
		info, ok := c.DescriptorInfo(next)
		if !ok {
			return
		}
		a.bindingOf[c.Name] = info.Binding
		a.infos = append(a.infos, info)
		bindingLayouts = append(bindingLayouts, hal.DescriptorBindingLayout{
			Binding: info.Binding,
			Kind:    info.Kind,
			Count:   info.Count,
			Stages:  info.Stages,
		})
		counts[uint8(info.Kind)] += info.Count * ringSize
		next++
	}
	for _, c := range inputs {
		assign(c)
	}
	for _, c := range outputs {
		assign(c)
	}

	layout, err := device.CreateDescriptorSetLayout(bindingLayouts)
	if err != nil {
		return nil, &ResourceError{ResourceName: "descriptor-set-layout", Err: err}
	}
	a.Layout = layout

	pool, err := device.CreateDescriptorPool(ringSize, counts)
	if err != nil {
		return nil, &ResourceError{ResourceName: "descriptor-pool", Err: err}
	}
	a.pool = pool

	a.Sets = make([]hal.DescriptorSet, ringSize)
	for i := uint32(0); i < ringSize; i++ {
		set, err := pool.Allocate(layout)
		if err != nil {
			return nil, &ResourceError{ResourceName: fmt.Sprintf("descriptor-set[%d]", i), Err: err}
		}
		a.Sets[i] = set
	}
	return a, nil
}

// Binding returns the binding index assigned to the connector named name.
func (a *DescriptorSetAllocator) Binding(name string) (uint32, bool) {
	b, ok := a.bindingOf[name]
	return b, ok
}

// QueueWrite enqueues a descriptor write to apply the next time Flush is
// called for ringSlot.
func (a *DescriptorSetAllocator) QueueWrite(ringSlot uint32, w hal.DescriptorWrite) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w.Set = a.Sets[ringSlot]
	a.pending[ringSlot] = append(a.pending[ringSlot], w)
}

// Flush applies every queued write for ringSlot and clears its queue. The
// runner calls this before every node dispatch, and again right after a
// node's Process returned StatusNeedsDescriptorUpdate.
func (a *DescriptorSetAllocator) Flush(ringSlot uint32) {
	a.mu.Lock()
	writes := a.pending[ringSlot]
	delete(a.pending, ringSlot)
	a.mu.Unlock()
	if len(writes) == 0 {
		return
	}
	a.device.UpdateDescriptorSets(writes)
}

// dummyWrite fills an unconnected optional input's binding with a 1x1
// placeholder resource so shader reads never touch uninitialized descriptor
// memory (spec.md §4.1). Kinds other than image and buffer descriptors get
// no placeholder write.
func (a *DescriptorSetAllocator) dummyWrite(ringSlot uint32, binding uint32, kind types.DescriptorKind) error {
	switch kind {
	case types.DescriptorKindSampledImage, types.DescriptorKindStorageImage, types.DescriptorKindCombinedImageSampler:
		if a.dummyImage == nil {
			img, err := a.device.CreateImage(hal.ImageDesc{Width: 1, Height: 1, Depth: 1, MipLevels: 1, ArrayLayers: 1})
			if err != nil {
				return &ResourceError{ResourceName: "dummy-image", Err: err}
			}
			a.dummyImage = img
		}
		a.QueueWrite(ringSlot, hal.DescriptorWrite{Binding: binding, Kind: kind, Image: a.dummyImage.View(), ImageLayout: types.ImageLayoutShaderReadOnly})
		a.dummyCount++
	case types.DescriptorKindUniformBuffer, types.DescriptorKindStorageBuffer:
		if a.dummyBuffer == nil {
			buf, err := a.device.CreateBuffer(16, types.BufferUsageStorage)
			if err != nil {
				return &ResourceError{ResourceName: "dummy-buffer", Err: err}
			}
			a.dummyBuffer = buf
		}
		a.QueueWrite(ringSlot, hal.DescriptorWrite{Binding: binding, Kind: kind, Buffer: a.dummyBuffer, BufferSize: 16})
		a.dummyCount++
	}
	return nil
}

// DummyCount reports how many placeholder descriptor writes have been
// queued for unconnected optional inputs, for tests asserting the
// always-valid-descriptor-set contract.
func (a *DescriptorSetAllocator) DummyCount() int { return a.dummyCount }

// Destroy releases the descriptor pool, layout, and any dummy resources.
func (a *DescriptorSetAllocator) Destroy() {
	if a.pool != nil {
		a.device.DestroyDescriptorPool(a.pool)
	}
	if a.Layout != nil {
		a.device.DestroyDescriptorSetLayout(a.Layout)
	}
	if a.dummyImage != nil {
		a.device.DestroyImage(a.dummyImage)
	}
	if a.dummyBuffer != nil {
		a.device.DestroyBuffer(a.dummyBuffer)
	}
}
