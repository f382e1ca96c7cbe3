// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package alloc

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/gogpu/framegraph/hal"
)

// AliasingAllocator hands backing resources to resources whose lifetime
// intervals the builder has proven disjoint (spec.md §4.6's resource
// aliasing step), instead of creating a new one for each. Candidates are
// bucketed by an "order" — the power-of-two class of their footprint —
// mirroring a buddy allocator's order-indexed free lists, except each free
// list entry here is a whole backing hal resource rather than a byte
// sub-range: the graph core does not sub-allocate within a single GPU
// allocation (bootstrapping that allocator backend is explicitly out of
// scope, spec.md §1).
//
// A bucket's free list holds resources already created and currently
// unused because their previous owner's lifetime interval ended. Acquire
// pops a compatible entry if one exists; otherwise it creates a fresh one.
// Release pushes a no-longer-needed resource back. Reset destroys every
// backing resource across all buckets, called once per graph rebuild since
// lifetime intervals are recomputed from scratch on every connect (spec.md
// §4.6, §5).
type AliasingAllocator struct {
	device hal.Device

	mu    sync.Mutex
	free  map[bucketKey][]Allocation
	stats Stats
}

// Stats reports aliasing effectiveness, read through StatsSnapshot.
type Stats struct {
	Created uint64
	Reused  uint64
	Live    int
}

type bucketKey struct {
	kind  Kind
	order int
	// desc distinguishes buckets that round to the same order but are not
	// creation-compatible (different usage or format).
	desc descFingerprint
}

type descFingerprint struct {
	width, height, depth uint32
	mipLevels, layers    uint32
	format               hal.ImageFormat
	usage                uint32
}

// NewAliasingAllocator creates an AliasingAllocator bound to device.
func NewAliasingAllocator(device hal.Device) *AliasingAllocator {
	return &AliasingAllocator{
		device: device,
		free:   make(map[bucketKey][]Allocation),
	}
}

// Acquire returns a backing resource for spec, reusing a free one from an
// earlier resource's bucket when available.
func (a *AliasingAllocator) Acquire(spec Spec) (Allocation, error) {
	key := bucketFor(spec)

	a.mu.Lock()
	if list := a.free[key]; len(list) > 0 {
		alloc := list[len(list)-1]
		a.free[key] = list[:len(list)-1]
		a.stats.Reused++
		a.mu.Unlock()
		return alloc, nil
	}
	a.mu.Unlock()

	alloc, err := (&PrimaryAllocator{device: a.device}).Allocate(spec)
	if err != nil {
		return Allocation{}, err
	}

	a.mu.Lock()
	a.stats.Created++
	a.stats.Live++
	a.mu.Unlock()

	return alloc, nil
}

// Release returns alloc to its bucket's free list for the next compatible
// Acquire within the same rebuild.
func (a *AliasingAllocator) Release(alloc Allocation) {
	key := bucketFor(alloc.spec)
	a.mu.Lock()
	a.free[key] = append(a.free[key], alloc)
	a.mu.Unlock()
}

// Reset destroys every backing resource across every bucket and clears the
// allocator, ready for the next rebuild's lifetime assignment.
func (a *AliasingAllocator) Reset() {
	a.mu.Lock()
	free := a.free
	a.free = make(map[bucketKey][]Allocation)
	a.stats = Stats{}
	a.mu.Unlock()

	primary := &PrimaryAllocator{device: a.device}
	for _, list := range free {
		for _, alloc := range list {
			primary.Release(alloc)
		}
	}
}

// StatsSnapshot returns the current aliasing statistics.
func (a *AliasingAllocator) StatsSnapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func bucketFor(spec Spec) bucketKey {
	switch spec.Kind {
	case KindImage:
		footprint := uint64(spec.Image.Width) * uint64(spec.Image.Height) * uint64(spec.Image.Depth)
		return bucketKey{
			kind:  KindImage,
			order: order(footprint),
			desc: descFingerprint{
				width:     spec.Image.Width,
				height:    spec.Image.Height,
				depth:     spec.Image.Depth,
				mipLevels: spec.Image.MipLevels,
				layers:    spec.Image.ArrayLayers,
				format:    spec.Image.Format,
				usage:     uint32(spec.Image.Usage),
			},
		}
	case KindBuffer:
		return bucketKey{
			kind:  KindBuffer,
			order: order(spec.BufferSize),
			desc:  descFingerprint{usage: uint32(spec.BufferUsage)},
		}
	default:
		panic(fmt.Sprintf("alloc: unknown kind %d", spec.Kind))
	}
}

// order returns floor(log2(next power of two >= n)), the buddy-style size
// class used to bucket candidates for reuse.
func order(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}
