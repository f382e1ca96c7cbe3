// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package alloc

import (
	"testing"

	"github.com/gogpu/framegraph/hal"
	"github.com/gogpu/framegraph/internal/fakehal"
)

func TestSamplerPool_AcquireSameDescSharesOneSampler(t *testing.T) {
	device := fakehal.NewDevice()
	pool := NewSamplerPool(device)
	desc := hal.SamplerDesc{MagFilter: 1, MinFilter: 1}

	s1, err := pool.Acquire(desc)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := pool.Acquire(desc)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatal("expected two Acquire calls for the same desc to share one sampler")
	}
	if pool.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", pool.Len())
	}
}

func TestSamplerPool_DistinctDescsGetDistinctSamplers(t *testing.T) {
	device := fakehal.NewDevice()
	pool := NewSamplerPool(device)
	a, err := pool.Acquire(hal.SamplerDesc{MagFilter: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := pool.Acquire(hal.SamplerDesc{MagFilter: 2})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("distinct sampler descriptions must not share a sampler")
	}
	if pool.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pool.Len())
	}
}

func TestSamplerPool_ReleaseDropsEntryAtZeroRefs(t *testing.T) {
	device := fakehal.NewDevice()
	pool := NewSamplerPool(device)
	desc := hal.SamplerDesc{MagFilter: 1}
	if _, err := pool.Acquire(desc); err != nil {
		t.Fatal(err)
	}
	if _, err := pool.Acquire(desc); err != nil {
		t.Fatal(err)
	}
	pool.Release(desc)
	if pool.Len() != 1 {
		t.Fatalf("Len() after one Release of two refs = %d, want 1 (still held)", pool.Len())
	}
	pool.Release(desc)
	if pool.Len() != 0 {
		t.Fatalf("Len() after releasing the last ref = %d, want 0", pool.Len())
	}
}

func TestSamplerPool_ReleaseUnknownDescIsNoop(t *testing.T) {
	device := fakehal.NewDevice()
	pool := NewSamplerPool(device)
	pool.Release(hal.SamplerDesc{MagFilter: 9})
	if pool.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", pool.Len())
	}
}
