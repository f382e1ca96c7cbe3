// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package fakehal is a trivial in-memory implementation of the hal façade,
// used by graph package tests and the cmd/graphdemo command. It performs no
// real GPU work: every resource is a plain Go struct, every fence signals
// immediately, and command recording just appends to a log callers can
// inspect in tests.
package fakehal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/types"
)

// Device is a fake hal.Device. Zero value is not usable; use NewDevice.
type Device struct {
	mu       sync.Mutex
	images   map[*image]struct{}
	buffers  map[*buffer]struct{}
	queue    *Queue
	closed   bool
	idCursor uint64
	writes   []hal.DescriptorWrite
}

// NewDevice creates a ready-to-use fake device.
func NewDevice() *Device {
	d := &Device{
		images:  make(map[*image]struct{}),
		buffers: make(map[*buffer]struct{}),
	}
	d.queue = &Queue{device: d}
	return d
}

func (d *Device) nextID() uint64 {
	return atomic.AddUint64(&d.idCursor, 1)
}

type image struct {
	id   uint64
	desc hal.ImageDesc
	view *imageView
}

func (i *image) Destroy()                                      {}
func (i *image) Extent() (w, h, d uint32)                       { return i.desc.Width, i.desc.Height, i.desc.Depth }
func (i *image) Format() hal.ImageFormat                        { return i.desc.Format }
func (i *image) Usage() types.ImageUsage                        { return i.desc.Usage }
func (i *image) View() hal.ImageView {
	if i.view == nil {
		i.view = &imageView{img: i}
	}
	return i.view
}

type imageView struct{ img *image }

func (v *imageView) Destroy()          {}
func (v *imageView) Image() hal.Image { return v.img }

type buffer struct {
	id    uint64
	size  uint64
	usage types.BufferUsage
}

func (b *buffer) Destroy()                   {}
func (b *buffer) Size() uint64               { return b.size }
func (b *buffer) Usage() types.BufferUsage   { return b.usage }

type accelStruct struct{ id uint64 }

func (a *accelStruct) Destroy() {}

type sampler struct {
	id   uint64
	desc hal.SamplerDesc
}

func (s *sampler) Destroy() {}

type descSetLayout struct {
	id       uint64
	bindings []hal.DescriptorBindingLayout
}

func (l *descSetLayout) Destroy()                                    {}
func (l *descSetLayout) Bindings() []hal.DescriptorBindingLayout     { return l.bindings }

type descPool struct {
	id uint64
}

func (p *descPool) Destroy() {}
func (p *descPool) Allocate(layout hal.DescriptorSetLayout) (hal.DescriptorSet, error) {
	return &descSet{id: p.id}, nil
}

type descSet struct{ id uint64 }

func (s *descSet) Destroy() {}

// Fence is a fake fence, always immediately signaled once created via
// CreateFence(true), or signaled explicitly by tests via Signal.
type Fence struct {
	mu       sync.Mutex
	signaled bool
}

func (f *Fence) Destroy() {}

func (f *Fence) Wait(timeoutNanos uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signaled {
		return hal.ErrFenceTimeout
	}
	return nil
}

func (f *Fence) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signaled = false
	return nil
}

func (f *Fence) Signaled() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled, nil
}

// Signal marks the fence signaled; the fake Queue.Submit calls this
// immediately since there's no real GPU work to wait for.
func (f *Fence) Signal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signaled = true
}

func (d *Device) CreateImage(desc hal.ImageDesc) (hal.Image, error) {
	img := &image{id: d.nextID(), desc: desc}
	d.mu.Lock()
	d.images[img] = struct{}{}
	d.mu.Unlock()
	return img, nil
}

func (d *Device) DestroyImage(img hal.Image) {
	if i, ok := img.(*image); ok {
		d.mu.Lock()
		delete(d.images, i)
		d.mu.Unlock()
	}
}

func (d *Device) CreateBuffer(size uint64, usage types.BufferUsage) (hal.Buffer, error) {
	buf := &buffer{id: d.nextID(), size: size, usage: usage}
	d.mu.Lock()
	d.buffers[buf] = struct{}{}
	d.mu.Unlock()
	return buf, nil
}

func (d *Device) DestroyBuffer(buf hal.Buffer) {
	if b, ok := buf.(*buffer); ok {
		d.mu.Lock()
		delete(d.buffers, b)
		d.mu.Unlock()
	}
}

func (d *Device) CreateAccelerationStructure() (hal.AccelerationStructure, error) {
	return &accelStruct{id: d.nextID()}, nil
}

func (d *Device) DestroyAccelerationStructure(hal.AccelerationStructure) {}

func (d *Device) CreateSampler(desc hal.SamplerDesc) (hal.Sampler, error) {
	return &sampler{id: d.nextID(), desc: desc}, nil
}

func (d *Device) DestroySampler(hal.Sampler) {}

func (d *Device) CreateDescriptorSetLayout(bindings []hal.DescriptorBindingLayout) (hal.DescriptorSetLayout, error) {
	return &descSetLayout{id: d.nextID(), bindings: bindings}, nil
}

func (d *Device) DestroyDescriptorSetLayout(hal.DescriptorSetLayout) {}

func (d *Device) CreateDescriptorPool(maxSets uint32, counts map[uint8]uint32) (hal.DescriptorPool, error) {
	return &descPool{id: d.nextID()}, nil
}

func (d *Device) DestroyDescriptorPool(hal.DescriptorPool) {}

func (d *Device) UpdateDescriptorSets(writes []hal.DescriptorWrite) {
	d.mu.Lock()
	d.writes = append(d.writes, writes...)
	d.mu.Unlock()
}

// Writes returns every descriptor write flushed through UpdateDescriptorSets
// so far, for test assertions.
func (d *Device) Writes() []hal.DescriptorWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]hal.DescriptorWrite, len(d.writes))
	copy(out, d.writes)
	return out
}

func (d *Device) CreateFence(signaled bool) (hal.Fence, error) {
	return &Fence{signaled: signaled}, nil
}

func (d *Device) DestroyFence(hal.Fence) {}

func (d *Device) Queue() hal.Queue { return d.queue }

func (d *Device) NewCommandEncoder() (hal.CommandEncoder, error) {
	return &Encoder{}, nil
}

func (d *Device) WaitIdle() error { return nil }

// Queue is a fake hal.Queue: submission is synchronous and always
// immediately signals the fence.
type Queue struct {
	device *Device

	mu  sync.Mutex
	log []hal.SubmitInfo
}

func (q *Queue) Submit(ctx context.Context, info hal.SubmitInfo) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	q.mu.Lock()
	q.log = append(q.log, info)
	q.mu.Unlock()

	if info.SignalFence != nil {
		if f, ok := info.SignalFence.(*Fence); ok {
			f.Signal()
		}
	}
	return nil
}

// Submissions returns every SubmitInfo recorded so far, for test assertions.
func (q *Queue) Submissions() []hal.SubmitInfo {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]hal.SubmitInfo, len(q.log))
	copy(out, q.log)
	return out
}

// Encoder is a fake hal.CommandEncoder: it records calls into Ops for
// inspection and produces a CommandBuffer carrying the same log.
type Encoder struct {
	Ops []string

	finished bool
}

func (e *Encoder) PipelineBarrier(images []hal.ImageBarrier, buffers []hal.BufferBarrier) {
	e.Ops = append(e.Ops, fmt.Sprintf("barrier(images=%d,buffers=%d)", len(images), len(buffers)))
}

func (e *Encoder) Dispatch(d hal.DispatchDesc) {
	e.Ops = append(e.Ops, fmt.Sprintf("dispatch(%d,%d,%d)", d.GroupCountX, d.GroupCountY, d.GroupCountZ))
}

func (e *Encoder) Draw(d hal.DrawDesc) {
	e.Ops = append(e.Ops, fmt.Sprintf("draw(%d)", d.VertexCount))
}

func (e *Encoder) Blit(r hal.BlitRegion, f hal.Filter) {
	e.Ops = append(e.Ops, "blit")
}

func (e *Encoder) CopyBuffer(r hal.BufferCopyRegion) {
	e.Ops = append(e.Ops, "copy-buffer")
}

func (e *Encoder) CopyBufferToImage(src hal.Buffer, srcOffset uint64, dst hal.Image, region [3]uint32) {
	e.Ops = append(e.Ops, "copy-buffer-to-image")
}

func (e *Encoder) CopyImageToBuffer(src hal.Image, region [3]uint32, dst hal.Buffer, dstOffset uint64) {
	e.Ops = append(e.Ops, "copy-image-to-buffer")
}

func (e *Encoder) Finish() (hal.CommandBuffer, error) {
	e.finished = true
	return &commandBuffer{ops: e.Ops}, nil
}

type commandBuffer struct{ ops []string }

func (c *commandBuffer) Destroy() {}
