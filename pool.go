package mempool

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// poolBaseAlign is the alignment of every pool's first slot. Power-of-two
// slot offsets then inherit min(slotSize, poolBaseAlign) alignment.
const poolBaseAlign = 64

// pool is a fixed-capacity arena of equal power-of-two slots serving one
// size class. Storage is reserved in a single block at construction and
// never grows, shrinks, or compacts.
type pool struct {
	mu         sync.Mutex
	storage    []byte           // backing block; pins slot memory for the pool's lifetime
	freeSlots  []unsafe.Pointer // LIFO stack of free slot addresses
	baseOff    int              // offset of the first slot within storage
	base       uintptr          // address of the first slot (containment checks only)
	limit      uintptr          // base + slotSize*slotCount
	slotSize   int
	slotCount  int
	zeroOnFree bool

	// Counters are atomics so Stats() can read them without the pool lock.
	inUse         int64
	allocations   uint64
	deallocations uint64
}

// newPool reserves storage for slotCount slots of slotSize bytes and fills
// the free stack with every slot address. The block is over-allocated so the
// first slot lands on a poolBaseAlign boundary.
func newPool(slotSize, slotCount int, zeroOnFree bool) *pool {
	storage := make([]byte, slotSize*slotCount+poolBaseAlign-1)

	baseOff := 0
	if rem := uintptr(unsafe.Pointer(&storage[0])) % poolBaseAlign; rem != 0 {
		baseOff = int(poolBaseAlign - rem)
	}

	p := &pool{
		storage:    storage,
		freeSlots:  make([]unsafe.Pointer, 0, slotCount),
		baseOff:    baseOff,
		base:       uintptr(unsafe.Pointer(&storage[baseOff])),
		slotSize:   slotSize,
		slotCount:  slotCount,
		zeroOnFree: zeroOnFree,
	}
	p.limit = p.base + uintptr(slotSize*slotCount)

	// Pushed in descending address order so a fresh pool hands slots out
	// ascending from the base.
	for i := slotCount - 1; i >= 0; i-- {
		p.freeSlots = append(p.freeSlots, unsafe.Pointer(&storage[baseOff+i*slotSize]))
	}
	return p
}

// allocate pops a free slot. Returns (nil, false) when the pool is
// exhausted; the caller decides whether to fall back.
func (p *pool) allocate() (unsafe.Pointer, bool) {
	p.mu.Lock()
	n := len(p.freeSlots)
	if n == 0 {
		p.mu.Unlock()
		return nil, false
	}
	ptr := p.freeSlots[n-1]
	p.freeSlots = p.freeSlots[:n-1]
	p.mu.Unlock()

	atomic.AddInt64(&p.inUse, 1)
	atomic.AddUint64(&p.allocations, 1)
	return ptr, true
}

// deallocate returns a slot to the free stack. The address must lie within
// the pool's storage range and sit on a slot boundary; anything else is
// rejected with no state change. Releasing a slot that is already free is
// caller misuse and is not detected.
func (p *pool) deallocate(ptr unsafe.Pointer) bool {
	addr := uintptr(ptr)
	if addr < p.base || addr >= p.limit {
		return false
	}
	off := int(addr - p.base)
	if off%p.slotSize != 0 {
		return false
	}

	if p.zeroOnFree {
		start := p.baseOff + off
		clear(p.storage[start : start+p.slotSize])
	}

	p.mu.Lock()
	p.freeSlots = append(p.freeSlots, ptr)
	p.mu.Unlock()

	atomic.AddInt64(&p.inUse, -1)
	atomic.AddUint64(&p.deallocations, 1)
	return true
}

// contains reports whether ptr falls inside this pool's slot range.
func (p *pool) contains(ptr unsafe.Pointer) bool {
	addr := uintptr(ptr)
	return addr >= p.base && addr < p.limit
}

// available returns the number of free slots.
func (p *pool) available() int {
	p.mu.Lock()
	n := len(p.freeSlots)
	p.mu.Unlock()
	return n
}

func (p *pool) capacity() int {
	return p.slotCount
}

// stats builds a lock-free snapshot from the pool's atomic counters.
func (p *pool) stats() PoolStats {
	inUse := int(atomic.LoadInt64(&p.inUse))
	return PoolStats{
		SlotSize:      p.slotSize,
		Capacity:      p.slotCount,
		InUse:         inUse,
		Available:     p.slotCount - inUse,
		Allocations:   atomic.LoadUint64(&p.allocations),
		Deallocations: atomic.LoadUint64(&p.deallocations),
	}
}
