package mempool

import (
	"testing"
	"unsafe"
)

func TestPoolAllocateUntilExhausted(t *testing.T) {
	p := newPool(16, 4, false)

	seen := make(map[unsafe.Pointer]bool)
	for i := 0; i < 4; i++ {
		ptr, ok := p.allocate()
		if !ok {
			t.Fatalf("allocation %d failed with capacity 4", i)
		}
		if seen[ptr] {
			t.Fatalf("allocation %d returned a duplicate slot", i)
		}
		seen[ptr] = true
	}

	if _, ok := p.allocate(); ok {
		t.Error("expected allocation to fail on an exhausted pool")
	}
}

func TestPoolSlotsStayInOneBlock(t *testing.T) {
	p := newPool(16, 4, false)

	for i := 0; i < 4; i++ {
		ptr, ok := p.allocate()
		if !ok {
			t.Fatalf("allocation %d failed", i)
		}
		off := uintptr(ptr) - p.base
		if off >= 64 {
			t.Errorf("slot %d at offset %d, want all 4 slots within the 64-byte block", i, off)
		}
		if off%16 != 0 {
			t.Errorf("slot %d at offset %d, not 16-byte aligned", i, off)
		}
	}
}

func TestPoolBaseAlignment(t *testing.T) {
	for _, slotSize := range []int{1, 8, 64, 4096} {
		p := newPool(slotSize, 8, false)
		if p.base%poolBaseAlign != 0 {
			t.Errorf("slotSize %d: pool base %#x not %d-byte aligned", slotSize, p.base, poolBaseAlign)
		}
	}
}

func TestPoolDeallocateValidation(t *testing.T) {
	p := newPool(16, 4, false)

	ptr, ok := p.allocate()
	if !ok {
		t.Fatal("allocation failed")
	}

	// Foreign pointer
	foreign := new(int64)
	if p.deallocate(unsafe.Pointer(foreign)) {
		t.Error("expected deallocate to reject a pointer outside the pool")
	}

	// Misaligned interior pointer
	if p.deallocate(unsafe.Add(ptr, 1)) {
		t.Error("expected deallocate to reject a misaligned slot address")
	}

	// The real slot
	if !p.deallocate(ptr) {
		t.Error("expected deallocate to accept the allocated slot")
	}
}

func TestPoolReusesFreedSlotFirst(t *testing.T) {
	p := newPool(32, 8, false)

	a, _ := p.allocate()
	b, _ := p.allocate()

	p.deallocate(a)
	p.deallocate(b)

	// Free list is a stack: the most recently freed slot comes back first.
	r1, _ := p.allocate()
	if r1 != b {
		t.Errorf("expected the last freed slot %p, got %p", b, r1)
	}
	r2, _ := p.allocate()
	if r2 != a {
		t.Errorf("expected the earlier freed slot %p, got %p", a, r2)
	}
}

func TestPoolContains(t *testing.T) {
	p := newPool(16, 4, false)

	ptr, _ := p.allocate()
	if !p.contains(ptr) {
		t.Error("expected contains to be true for an allocated slot")
	}

	foreign := new(int64)
	if p.contains(unsafe.Pointer(foreign)) {
		t.Error("expected contains to be false for a foreign pointer")
	}
}

func TestPoolZeroOnFree(t *testing.T) {
	p := newPool(16, 2, true)

	ptr, _ := p.allocate()
	bytes := (*[16]byte)(ptr)
	for i := range bytes {
		bytes[i] = 0xAB
	}

	p.deallocate(ptr)

	again, _ := p.allocate()
	if again != ptr {
		t.Fatalf("expected the freed slot back, got %p instead of %p", again, ptr)
	}
	for i, b := range *(*[16]byte)(again) {
		if b != 0 {
			t.Fatalf("byte %d = %#x after zero-on-free, want 0", i, b)
		}
	}
}

func TestPoolStatsCounters(t *testing.T) {
	p := newPool(16, 4, false)

	a, _ := p.allocate()
	b, _ := p.allocate()
	p.deallocate(a)

	s := p.stats()
	if s.SlotSize != 16 {
		t.Errorf("SlotSize = %d, want 16", s.SlotSize)
	}
	if s.Capacity != 4 {
		t.Errorf("Capacity = %d, want 4", s.Capacity)
	}
	if s.InUse != 1 {
		t.Errorf("InUse = %d, want 1", s.InUse)
	}
	if s.Available != 3 {
		t.Errorf("Available = %d, want 3", s.Available)
	}
	if s.Allocations != 2 {
		t.Errorf("Allocations = %d, want 2", s.Allocations)
	}
	if s.Deallocations != 1 {
		t.Errorf("Deallocations = %d, want 1", s.Deallocations)
	}

	p.deallocate(b)
}

func TestPoolSingleSlot(t *testing.T) {
	p := newPool(1<<20, 1, false)

	ptr, ok := p.allocate()
	if !ok {
		t.Fatal("allocation from a one-slot pool failed")
	}
	if _, ok := p.allocate(); ok {
		t.Error("second allocation should fail")
	}
	if !p.deallocate(ptr) {
		t.Error("deallocate failed")
	}
	if _, ok := p.allocate(); !ok {
		t.Error("allocation after free should succeed")
	}
}
