// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hal is the device façade the frame graph core is built against.
//
// The graph package never talks to a concrete GPU API directly: every
// resource creation, descriptor write, barrier, and submit goes through the
// small set of interfaces in this package (Device, Queue, CommandEncoder,
// Fence). A real backend (Vulkan, DX12, Metal, ...) implements them; this
// repository ships only a trivial in-memory one (internal/fakehal) used by
// tests and the demo command — bootstrapping a real backend is explicitly
// out of scope for the graph core.
//
// # Design Principles
//
// The façade prioritizes portability over safety and delegates validation
// to the graph layer:
//
//   - Most methods are unsafe in terms of GPU state validation.
//   - Validation is the caller's (graph package's) responsibility.
//   - Only unrecoverable errors are returned (out of memory, device lost).
//
// # Resource Types
//
// All GPU resources (images, buffers, acceleration structures, descriptor
// sets, samplers, fences) implement the Resource interface, which provides
// a Destroy method. Resources must be explicitly destroyed.
//
// # Thread Safety
//
// Unless stated otherwise, hal interfaces are not thread-safe. The graph
// builder (with its allocators) creates resources on the goroutine that
// calls Build; the graph runner makes its calls on a single driver thread
// (see internal/thread). Queue submission is serialized by QueueGuard
// regardless, matching spec.md §5's "device queue is guarded by a mutex
// around every submit/present" for embedders that submit from elsewhere.
//
// # Error Handling
//
//   - ErrDeviceOutOfMemory - GPU memory exhausted.
//   - ErrDeviceLost - GPU disconnected or driver reset; fatal.
//   - ErrFenceTimeout - a Wait call exceeded its deadline.
package hal
