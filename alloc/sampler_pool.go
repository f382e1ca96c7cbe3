// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package alloc

import (
	"sync"

	"github.com/gogpu/framegraph/hal"
)

// SamplerPool refcounts samplers by description so that nodes requesting
// the same filtering/addressing combination across a rebuild share one
// hal.Sampler instead of creating a duplicate per connector (spec.md §5's
// sampler reuse requirement).
type SamplerPool struct {
	device hal.Device

	mu      sync.Mutex
	entries map[hal.SamplerDesc]*samplerEntry
}

type samplerEntry struct {
	sampler hal.Sampler
	refs    int
}

// NewSamplerPool creates a SamplerPool bound to device.
func NewSamplerPool(device hal.Device) *SamplerPool {
	return &SamplerPool{
		device:  device,
		entries: make(map[hal.SamplerDesc]*samplerEntry),
	}
}

// Acquire returns a sampler matching desc, creating one if this is the
// first request for it, and increments its reference count.
func (p *SamplerPool) Acquire(desc hal.SamplerDesc) (hal.Sampler, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[desc]; ok {
		e.refs++
		return e.sampler, nil
	}

	sampler, err := p.device.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	p.entries[desc] = &samplerEntry{sampler: sampler, refs: 1}
	return sampler, nil
}

// Release decrements desc's reference count, destroying the sampler once
// it reaches zero.
func (p *SamplerPool) Release(desc hal.SamplerDesc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[desc]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		p.device.DestroySampler(e.sampler)
		delete(p.entries, desc)
	}
}

// Len returns the number of distinct sampler descriptions currently pooled.
func (p *SamplerPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
