// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package track

import (
	"sync"
	"testing"
)

func TestIndex_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		index Index
		want  bool
	}{
		{"zero is valid", Index(0), true},
		{"positive is valid", Index(100), true},
		{"max-1 is valid", Index(^uint32(0) - 1), true},
		{"invalid index", InvalidIndex, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.index.IsValid(); got != tt.want {
				t.Errorf("Index(%d).IsValid() = %v, want %v", tt.index, got, tt.want)
			}
		})
	}
}

func TestIndexAllocator_Alloc(t *testing.T) {
	a := NewIndexAllocator()

	idx0 := a.Alloc()
	if idx0 != 0 {
		t.Errorf("First alloc returned %d, want 0", idx0)
	}

	idx1 := a.Alloc()
	if idx1 != 1 {
		t.Errorf("Second alloc returned %d, want 1", idx1)
	}

	idx2 := a.Alloc()
	if idx2 != 2 {
		t.Errorf("Third alloc returned %d, want 2", idx2)
	}
}

func TestIndexAllocator_Free(t *testing.T) {
	a := NewIndexAllocator()

	idx0 := a.Alloc()
	idx1 := a.Alloc()
	idx2 := a.Alloc()

	a.Free(idx1)

	if a.Len() != 2 {
		t.Errorf("Len after free = %d, want 2", a.Len())
	}

	a.Free(InvalidIndex) // must not panic

	_ = idx0
	_ = idx2
}

func TestIndexAllocator_Reuse(t *testing.T) {
	a := NewIndexAllocator()

	idx0 := a.Alloc()
	idx1 := a.Alloc()
	idx2 := a.Alloc()

	a.Free(idx2)
	a.Free(idx1)
	a.Free(idx0)

	realloc0 := a.Alloc()
	if realloc0 != idx0 {
		t.Errorf("First realloc = %d, want %d (reuse)", realloc0, idx0)
	}

	realloc1 := a.Alloc()
	if realloc1 != idx1 {
		t.Errorf("Second realloc = %d, want %d (reuse)", realloc1, idx1)
	}

	realloc2 := a.Alloc()
	if realloc2 != idx2 {
		t.Errorf("Third realloc = %d, want %d (reuse)", realloc2, idx2)
	}

	fresh := a.Alloc()
	if fresh != 3 {
		t.Errorf("Fresh alloc = %d, want 3", fresh)
	}
}

func TestIndexAllocator_Len(t *testing.T) {
	a := NewIndexAllocator()

	if a.Len() != 0 {
		t.Errorf("Initial len = %d, want 0", a.Len())
	}

	a.Alloc()
	if a.Len() != 1 {
		t.Errorf("Len after 1 alloc = %d, want 1", a.Len())
	}

	a.Alloc()
	a.Alloc()
	if a.Len() != 3 {
		t.Errorf("Len after 3 allocs = %d, want 3", a.Len())
	}

	a.Free(Index(1))
	if a.Len() != 2 {
		t.Errorf("Len after 1 free = %d, want 2", a.Len())
	}
}

func TestIndexAllocator_HighWaterMark(t *testing.T) {
	a := NewIndexAllocator()

	if a.HighWaterMark() != InvalidIndex {
		t.Errorf("Empty HWM = %d, want InvalidIndex", a.HighWaterMark())
	}

	a.Alloc() // 0
	if a.HighWaterMark() != 0 {
		t.Errorf("HWM after 1 alloc = %d, want 0", a.HighWaterMark())
	}

	a.Alloc() // 1
	a.Alloc() // 2
	if a.HighWaterMark() != 2 {
		t.Errorf("HWM after 3 allocs = %d, want 2", a.HighWaterMark())
	}

	a.Free(Index(1))
	if a.HighWaterMark() != 2 {
		t.Errorf("HWM after free = %d, want 2 (unchanged)", a.HighWaterMark())
	}
}

func TestIndexAllocator_Reset(t *testing.T) {
	a := NewIndexAllocator()

	a.Alloc()
	a.Alloc()
	a.Alloc()
	a.Free(Index(1))

	a.Reset()

	if a.Len() != 0 {
		t.Errorf("Len after reset = %d, want 0", a.Len())
	}

	idx := a.Alloc()
	if idx != 0 {
		t.Errorf("First alloc after reset = %d, want 0", idx)
	}
}

func TestSharedIndexAllocator(t *testing.T) {
	s := NewSharedIndexAllocator()

	idx0 := s.Alloc()
	if idx0 != 0 {
		t.Errorf("First alloc = %d, want 0", idx0)
	}

	idx1 := s.Alloc()
	if idx1 != 1 {
		t.Errorf("Second alloc = %d, want 1", idx1)
	}

	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	s.Free(idx0)
	if s.Len() != 1 {
		t.Errorf("Len after free = %d, want 1", s.Len())
	}

	if s.HighWaterMark() != 1 {
		t.Errorf("HWM = %d, want 1", s.HighWaterMark())
	}

	realloc := s.Alloc()
	if realloc != idx0 {
		t.Errorf("Realloc = %d, want %d", realloc, idx0)
	}
}

func TestSharedIndexAllocator_Concurrent(t *testing.T) {
	a := NewSharedIndexAllocator()
	const goroutines = 100
	const allocsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < allocsPerGoroutine; j++ {
				idx := a.Alloc()
				if j%3 == 0 {
					a.Free(idx)
				}
			}
		}()
	}

	wg.Wait()

	size := a.Len()
	if size < 0 || size > goroutines*allocsPerGoroutine {
		t.Errorf("Final len %d is out of expected range", size)
	}
}

func TestHandle_Lifecycle(t *testing.T) {
	alloc := NewSharedIndexAllocator()

	h := NewHandle(alloc)
	if h.Index() != 0 {
		t.Errorf("First handle index = %d, want 0", h.Index())
	}
	if h.IsReleased() {
		t.Error("new handle should not be released")
	}

	h2 := NewHandle(alloc)
	if h2.Index() != 1 {
		t.Errorf("Second handle index = %d, want 1", h2.Index())
	}

	if alloc.Len() != 2 {
		t.Errorf("Allocator len = %d, want 2", alloc.Len())
	}

	h.Release()
	if !h.IsReleased() {
		t.Error("handle should be released after Release()")
	}
	if alloc.Len() != 1 {
		t.Errorf("Allocator len after release = %d, want 1", alloc.Len())
	}

	h.Release() // double release must be safe

	h3 := NewHandle(alloc)
	if h3.Index() != 0 {
		t.Errorf("Third handle index = %d, want 0 (reused)", h3.Index())
	}
}

func TestHandle_NilAllocator(t *testing.T) {
	h := NewHandle(nil)

	if h.Index() != InvalidIndex {
		t.Errorf("Nil allocator index = %d, want InvalidIndex", h.Index())
	}

	h.Release() // must be safe
}

func TestHandle_Concurrent(t *testing.T) {
	alloc := NewSharedIndexAllocator()
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)

	handles := make([]*Handle, goroutines)

	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			handles[i] = NewHandle(alloc)
		}()
	}
	wg.Wait()

	seen := make(map[Index]bool)
	for i, h := range handles {
		if h == nil {
			t.Errorf("handle %d is nil", i)
			continue
		}
		idx := h.Index()
		if !idx.IsValid() {
			t.Errorf("handle %d has invalid index", i)
		}
		if seen[idx] {
			t.Errorf("duplicate index %d", idx)
		}
		seen[idx] = true
	}

	if alloc.Len() != goroutines {
		t.Errorf("Allocator len = %d, want %d", alloc.Len(), goroutines)
	}

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			handles[i].Release()
		}()
	}
	wg.Wait()

	if alloc.Len() != 0 {
		t.Errorf("Allocator len after release = %d, want 0", alloc.Len())
	}
}

func BenchmarkIndexAllocator_Alloc(b *testing.B) {
	a := NewIndexAllocator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Alloc()
	}
}

func BenchmarkIndexAllocator_AllocFree(b *testing.B) {
	a := NewIndexAllocator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx := a.Alloc()
		a.Free(idx)
	}
}

func BenchmarkSharedIndexAllocator_Concurrent(b *testing.B) {
	a := NewSharedIndexAllocator()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := a.Alloc()
			a.Free(idx)
		}
	})
}
