// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package track provides the dense-index arena allocator the graph package
// builds its node and resource tables on.
//
// Index provides dense indexing for O(1) array access into a table. Unlike
// identifiers with epochs (which may be sparse), indices handed out by
// IndexAllocator are always as dense as possible (0, 1, 2, ...), so a table
// keyed by Index never needs more backing storage than its live entry
// count plus whatever was never reclaimed.
//
// # Architecture
//
// graph.ResourceTable owns one IndexAllocator for its output slots; graph
// nodes are keyed by string identifier and do not use this package. Each
// reserved output slot gets an Index from the allocator; a freed index is
// reused by the next Alloc call (LIFO, for cache locality on the backing
// slice).
//
// # Thread Safety
//
// IndexAllocator itself is not safe for concurrent use. SharedIndexAllocator
// wraps one in a mutex for an allocator shared across goroutines; nothing in
// the graph package uses it.
package track

import "sync"

// Index is a dense index into an arena-style table.
type Index uint32

// InvalidIndex represents an unassigned index. Using max uint32 ensures it
// never collides with a valid index.
const InvalidIndex Index = ^Index(0)

// IsValid reports whether this is a valid, allocated index.
func (i Index) IsValid() bool {
	return i != InvalidIndex
}

// IndexAllocator allocates dense indices, reusing freed ones (LIFO) to keep
// the index space as small as possible.
type IndexAllocator struct {
	unused    []Index
	nextIndex Index
}

// NewIndexAllocator creates a new allocator.
func NewIndexAllocator() *IndexAllocator {
	return &IndexAllocator{
		unused: make([]Index, 0, 64),
	}
}

// Alloc allocates a new index, reusing a released one if available.
func (a *IndexAllocator) Alloc() Index {
	if n := len(a.unused); n > 0 {
		idx := a.unused[n-1]
		a.unused = a.unused[:n-1]
		return idx
	}
	idx := a.nextIndex
	a.nextIndex++
	return idx
}

// Free releases idx for reuse. A no-op for InvalidIndex.
func (a *IndexAllocator) Free(idx Index) {
	if idx == InvalidIndex {
		return
	}
	a.unused = append(a.unused, idx)
}

// Len returns the number of currently allocated (live) indices.
func (a *IndexAllocator) Len() int {
	return int(a.nextIndex) - len(a.unused)
}

// HighWaterMark returns the highest index ever allocated, or InvalidIndex
// if none have been. Callers use this to size backing arrays.
func (a *IndexAllocator) HighWaterMark() Index {
	if a.nextIndex == 0 {
		return InvalidIndex
	}
	return a.nextIndex - 1
}

// Reset clears the allocator, invalidating every previously allocated
// index. graph.ResourceTable.Reset calls it when the table is cleared.
func (a *IndexAllocator) Reset() {
	a.unused = a.unused[:0]
	a.nextIndex = 0
}

// SharedIndexAllocator is a mutex-guarded IndexAllocator for call sites
// reached from more than one goroutine.
type SharedIndexAllocator struct {
	mu    sync.Mutex
	inner *IndexAllocator
}

// NewSharedIndexAllocator creates a new shared allocator.
func NewSharedIndexAllocator() *SharedIndexAllocator {
	return &SharedIndexAllocator{inner: NewIndexAllocator()}
}

func (s *SharedIndexAllocator) Alloc() Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Alloc()
}

func (s *SharedIndexAllocator) Free(idx Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Free(idx)
}

func (s *SharedIndexAllocator) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Len()
}

func (s *SharedIndexAllocator) HighWaterMark() Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.HighWaterMark()
}
