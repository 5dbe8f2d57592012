package mempool

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// defaultAlignment is the guarantee of Allocate(): every returned address
// is at least 16-byte aligned, matching what general-purpose allocators
// promise for untyped memory.
const defaultAlignment = 16

// Config groups the construction-time knobs of an Allocator.
type Config struct {
	// Strategy sizes each class pool when it is first used. Nil selects
	// DefaultStrategy().
	Strategy Strategy

	// ZeroOnFree wipes slot contents when a pool slot is released, so
	// recycled slots never leak prior payloads.
	ZeroOnFree bool
}

// DefaultConfig returns sane defaults for a general-purpose allocator.
func DefaultConfig() Config {
	return Config{
		Strategy:   DefaultStrategy(),
		ZeroOnFree: false,
	}
}

// Allocator routes allocation requests to size-class pools and falls back
// to ordinary heap buffers for oversized requests or exhausted pools.
//
// Routing rounds a request up to the next power of two and serves it from
// the pool of that class, materializing the pool on first use. Requests
// above MaxSupportedSize, and requests a full pool cannot take, are served
// from the fallback ledger instead. Client code never needs to know which
// path served it: Deallocate works out ownership from the address alone.
type Allocator struct {
	pools    [numSizeClasses]atomic.Pointer[pool]
	poolInit [numSizeClasses]sync.Once

	strategyMu sync.RWMutex
	strategy   Strategy
	zeroOnFree bool

	// Lifetime counters; active = allocations - deallocations.
	totalAllocations    uint64
	totalDeallocations  uint64
	fallbackAllocations uint64

	// Fallback ledger. A fallback allocation is a garbage-collected buffer;
	// the ledger pins it while its address is outstanding, which keeps the
	// memory valid even when the only reference lives inside pool storage
	// the collector cannot see. Deallocate unpins.
	fallbackMu sync.Mutex
	fallbacks  map[uintptr][]byte

	closeOnce sync.Once
	closed    int32 // 1 => allocator closed; hot-path check
}

// New builds an allocator from config. Pools are not reserved up front:
// each size class materializes on its first allocation.
func New(config Config) *Allocator {
	strategy := config.Strategy
	if strategy == nil {
		strategy = DefaultStrategy()
	}
	return &Allocator{
		strategy:   strategy,
		zeroOnFree: config.ZeroOnFree,
		fallbacks:  make(map[uintptr][]byte),
	}
}

// NewWithDefaults constructs an allocator using DefaultConfig().
func NewWithDefaults() *Allocator {
	return New(DefaultConfig())
}

// Allocate returns a block of at least size bytes, 16-byte aligned, or nil
// when size is not positive or the allocator is closed. Blocks up to
// MaxSupportedSize come from size-class pools; anything larger, or any
// request arriving at a full pool, is served by the fallback path. The
// returned memory is valid until the matching Deallocate.
func (a *Allocator) Allocate(size int) unsafe.Pointer {
	return a.AllocateAligned(size, defaultAlignment)
}

// AllocateAligned is Allocate with an explicit alignment requirement.
// align must be a power of two. Alignments within a class's guarantee
// (min(slotSize, 64)) are served from pools; stricter ones fall back.
func (a *Allocator) AllocateAligned(size, align int) unsafe.Pointer {
	if atomic.LoadInt32(&a.closed) == 1 {
		return nil
	}
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil
	}

	if size > maxPooledSize {
		return a.allocateFallback(size, align)
	}

	class := sizeClassIndex(size)
	if align > alignGuarantee(class) {
		return a.allocateFallback(size, align)
	}

	if p := a.poolFor(class); p != nil {
		if ptr, ok := p.allocate(); ok {
			atomic.AddUint64(&a.totalAllocations, 1)
			return ptr
		}
	}

	// Pool exhausted (or torn down by Close); fall back.
	return a.allocateFallback(size, align)
}

// Deallocate releases a block obtained from Allocate/AllocateAligned and
// reports whether the release took effect. A nil pointer returns false. An
// address inside a pool is returned to that pool; a misaligned in-pool
// address is rejected. Any other address is treated as a fallback
// allocation and released unconditionally.
func (a *Allocator) Deallocate(ptr unsafe.Pointer) bool {
	if ptr == nil {
		return false
	}
	if atomic.LoadInt32(&a.closed) == 1 {
		return false
	}

	if p := a.ownerOf(ptr); p != nil {
		if !p.deallocate(ptr) {
			return false
		}
		atomic.AddUint64(&a.totalDeallocations, 1)
		return true
	}

	a.fallbackMu.Lock()
	delete(a.fallbacks, uintptr(ptr))
	a.fallbackMu.Unlock()

	atomic.AddUint64(&a.totalDeallocations, 1)
	return true
}

// SetStrategy replaces the pool-sizing strategy for classes that have not
// materialized yet. Existing pools keep their size.
func (a *Allocator) SetStrategy(s Strategy) {
	if s == nil {
		return
	}
	a.strategyMu.Lock()
	a.strategy = s
	a.strategyMu.Unlock()
}

// Close idempotently tears the allocator down: the fallback ledger is
// dropped and pool references released. Outstanding pointers stay valid
// while their holders retain them, but no further allocations are served.
func (a *Allocator) Close() error {
	a.closeOnce.Do(func() {
		atomic.StoreInt32(&a.closed, 1)

		a.fallbackMu.Lock()
		a.fallbacks = nil
		a.fallbackMu.Unlock()

		for i := range a.pools {
			a.pools[i].Store(nil)
		}
	})
	return nil
}

// poolFor returns the pool serving class, creating it on first use. Racing
// creators synchronize on the class's once; losers use the winner's pool.
// Returns nil only after Close.
func (a *Allocator) poolFor(class int) *pool {
	if p := a.pools[class].Load(); p != nil {
		return p
	}

	a.poolInit[class].Do(func() {
		slotSize := sizeClassSlot(class)

		a.strategyMu.RLock()
		bytes := a.strategy.PoolBytes(slotSize)
		a.strategyMu.RUnlock()

		count := bytes / slotSize
		if count < 1 {
			count = 1
		}
		a.pools[class].Store(newPool(slotSize, count, a.zeroOnFree))
	})

	return a.pools[class].Load()
}

// ownerOf scans materialized pools for the one whose storage contains ptr.
// At most numSizeClasses probes.
func (a *Allocator) ownerOf(ptr unsafe.Pointer) *pool {
	for i := range a.pools {
		if p := a.pools[i].Load(); p != nil && p.contains(ptr) {
			return p
		}
	}
	return nil
}

// allocateFallback serves a request from an ordinary heap buffer and pins
// it in the ledger until its address is deallocated. The buffer is padded
// so the returned address honors align.
func (a *Allocator) allocateFallback(size, align int) unsafe.Pointer {
	buf := make([]byte, size+align-1)

	off := 0
	if rem := uintptr(unsafe.Pointer(&buf[0])) % uintptr(align); rem != 0 {
		off = int(uintptr(align) - rem)
	}
	ptr := unsafe.Pointer(&buf[off])

	a.fallbackMu.Lock()
	if a.fallbacks == nil {
		a.fallbackMu.Unlock()
		return nil
	}
	a.fallbacks[uintptr(ptr)] = buf
	a.fallbackMu.Unlock()

	atomic.AddUint64(&a.totalAllocations, 1)
	atomic.AddUint64(&a.fallbackAllocations, 1)
	return ptr
}

// alignGuarantee is the alignment every slot of a class provides: the slot
// size itself, capped by the pool base alignment.
func alignGuarantee(class int) int {
	slot := sizeClassSlot(class)
	if slot < poolBaseAlign {
		return slot
	}
	return poolBaseAlign
}
