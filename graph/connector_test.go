// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"testing"

	"github.com/gogpu/framegraph/types"
)

func TestConnector_OnConnectOutputRejectsKindMismatch(t *testing.T) {
	out := NewManagedBufferOutput("out", 64, types.BufferUsageStorage, types.DescriptorKindStorageBuffer, types.PipelineStageComputeShader, types.AccessShaderWrite, false)
	in := NewInput("in", KindManagedImage, types.DescriptorKindStorageImage, 0, false, types.PipelineStageComputeShader, types.AccessShaderRead)
	if err := in.OnConnectOutput(out); err == nil {
		t.Fatal("expected a kind mismatch error")
	}
}

func TestConnector_OnConnectOutputRejectsDescKindMismatch(t *testing.T) {
	out := NewManagedImageOutput("out", testImageDesc, types.DescriptorKindSampledImage, types.PipelineStageComputeShader, types.AccessShaderWrite, false)
	in := NewInput("in", KindManagedImage, types.DescriptorKindStorageImage, 0, false, types.PipelineStageComputeShader, types.AccessShaderRead)
	if err := in.OnConnectOutput(out); err == nil {
		t.Fatal("expected a descriptor kind mismatch error")
	}
}

func TestConnector_OnConnectOutputAcceptsMatchingKinds(t *testing.T) {
	out := NewManagedImageOutput("out", testImageDesc, types.DescriptorKindStorageImage, types.PipelineStageComputeShader, types.AccessShaderWrite, false)
	in := NewInput("in", KindManagedImage, types.DescriptorKindStorageImage, 0, false, types.PipelineStageComputeShader, types.AccessShaderRead)
	if err := in.OnConnectOutput(out); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestConnector_DelayRejectedOnUnsupportedKind(t *testing.T) {
	out := NewTLASOutput("tlas", types.PipelineStageRayTracingShader)
	in := NewInput("in", KindTLAS, types.DescriptorKindAccelerationStructure, 1, false, types.PipelineStageRayTracingShader, types.AccessShaderRead)
	if err := in.OnConnectOutput(out); err == nil {
		t.Fatal("expected delay on VkTLAS to be rejected")
	}
}

func TestConnector_SpecialStaticNeverBindsDescriptor(t *testing.T) {
	s := NewSpecialStatic(42)
	c := NewSpecialStaticOutput("cfg", s)
	if _, ok := c.DescriptorInfo(0); ok {
		t.Fatal("SpecialStatic must not bind a descriptor")
	}
}

func TestConnector_SpecialStaticSetMarksDirty(t *testing.T) {
	s := NewSpecialStatic(1)
	if s.consumeReconnect() {
		t.Fatal("a fresh SpecialStatic must not start dirty")
	}
	s.Set(2)
	if s.Get() != 2 {
		t.Fatalf("Get() = %v, want 2", s.Get())
	}
	if !s.consumeReconnect() {
		t.Fatal("Set must mark the connector dirty")
	}
	if s.consumeReconnect() {
		t.Fatal("consumeReconnect must clear the dirty flag")
	}
}

func TestConnector_DescriptorInfoArraySize(t *testing.T) {
	c := NewImageArrayOutput("arr", 4, types.DescriptorKindSampledImage, types.PipelineStageFragmentShader, types.AccessShaderRead)
	info, ok := c.DescriptorInfo(3)
	if !ok {
		t.Fatal("ImageArray must bind a descriptor")
	}
	if info.Count != 4 || info.Binding != 3 {
		t.Fatalf("info = %+v, want Count=4 Binding=3", info)
	}
}
