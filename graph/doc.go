// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package graph implements a declarative, reconnectable frame graph: a DAG
// of Nodes exchanging Resources through typed Connectors, executed against
// a multi-frame-in-flight ring with automatic resource allocation,
// descriptor set management, and inter-node synchronization barriers.
//
// # Components
//
// A GraphDescription records which nodes exist, how they're wired, and
// their configuration, independent of any hal.Device. A Registry maps each
// node's type tag to the Factory that constructs it. A Builder runs the
// connect algorithm against a GraphDescription and Registry, producing a
// Schedule: a topologically ordered node list, a ResourceTable backing
// every output connector, and one DescriptorSetAllocator per node. A Runner
// drives a Schedule's ring of in-flight frames one iteration at a time,
// recording every node's work in schedule order and submitting through a
// hal.QueueGuard.
//
// # Connectors
//
// Connector is a closed tagged union over eight payload kinds
// (ManagedVkImage, ImageArray, ManagedVkBuffer, BufferArray, VkTexture,
// VkTLAS, SpecialStatic[T], Any); its lifecycle methods dispatch on Kind
// rather than through per-kind embedding.
//
// # Reconnection
//
// A node's Process call may return StatusNeedsReconnect to request a full
// rebuild before the next iteration, or StatusNeedsDescriptorUpdate to have
// its queued descriptor writes flushed before it dispatches again.
package graph
