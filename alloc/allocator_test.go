// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package alloc

import (
	"testing"

	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/internal/fakehal"
	"github.com/gogpu/framegraph/types"
)

var testImageSpec = Spec{Kind: KindImage, Image: hal.ImageDesc{Width: 4, Height: 4, Depth: 1, MipLevels: 1, ArrayLayers: 1}}

func TestPrimaryAllocator_AllocateImage(t *testing.T) {
	device := fakehal.NewDevice()
	p := NewPrimaryAllocator(device)
	a, err := p.Allocate(testImageSpec)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a.Kind != KindImage || a.Image == nil {
		t.Fatalf("a = %+v, want a populated image allocation", a)
	}
	if a.Spec() != testImageSpec {
		t.Fatalf("Spec() = %+v, want %+v", a.Spec(), testImageSpec)
	}
}

func TestPrimaryAllocator_AllocateBuffer(t *testing.T) {
	device := fakehal.NewDevice()
	p := NewPrimaryAllocator(device)
	spec := Spec{Kind: KindBuffer, BufferSize: 256, BufferUsage: types.BufferUsageStorage}
	a, err := p.Allocate(spec)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a.Kind != KindBuffer || a.Buffer == nil {
		t.Fatalf("a = %+v, want a populated buffer allocation", a)
	}
}

func TestPrimaryAllocator_AllocateUnknownKind(t *testing.T) {
	device := fakehal.NewDevice()
	p := NewPrimaryAllocator(device)
	if _, err := p.Allocate(Spec{Kind: Kind(99)}); err == nil {
		t.Fatal("expected an error for an unknown Spec.Kind")
	}
}

func TestPrimaryAllocator_EachAllocateCreatesANewResource(t *testing.T) {
	device := fakehal.NewDevice()
	p := NewPrimaryAllocator(device)
	a1, err := p.Allocate(testImageSpec)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := p.Allocate(testImageSpec)
	if err != nil {
		t.Fatal(err)
	}
	if a1.Image == a2.Image {
		t.Fatal("PrimaryAllocator must never hand out the same backing resource twice")
	}
}
