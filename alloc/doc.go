// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package alloc provides the two resource allocation strategies the graph
// builder chooses between for each resource during connect (spec.md §4.1,
// §4.6): PrimaryAllocator, which always creates a fresh backing hal
// resource, and AliasingAllocator, which hands out a backing resource
// already created for an earlier resource whose lifetime interval has
// ended.
//
// Bootstrapping the actual GPU memory allocator (sub-allocating byte ranges
// out of a handful of big VkDeviceMemory blocks) is explicitly out of scope
// for this repository; both allocators here create one dedicated hal
// resource per distinct backing allocation and let the façade implementation
// worry about the memory underneath.
//
// Scratch, a bump allocator over one pre-sized host byte buffer, rounds out
// the package; the graph package does not use it.
package alloc
