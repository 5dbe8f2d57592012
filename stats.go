package mempool

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// PoolStats is a point-in-time snapshot of one size-class pool.
type PoolStats struct {
	SlotSize      int    // bytes per slot
	Capacity      int    // total slots in the pool
	InUse         int    // slots currently handed out
	Available     int    // slots ready to serve
	Allocations   uint64 // lifetime allocations from this pool
	Deallocations uint64 // lifetime returns to this pool
}

// Stats aggregates allocator-wide counters with per-pool snapshots. Pools
// holds one entry per materialized class, ordered by slot size.
type Stats struct {
	TotalAllocations    uint64
	TotalDeallocations  uint64
	ActiveAllocations   int64
	FallbackAllocations uint64
	PoolsInUse          int
	Pools               []PoolStats
}

// Stats captures current counters. Counters are read individually, so a
// snapshot taken during concurrent traffic is approximate but never
// torn per-field.
func (a *Allocator) Stats() Stats {
	allocs := atomic.LoadUint64(&a.totalAllocations)
	deallocs := atomic.LoadUint64(&a.totalDeallocations)

	s := Stats{
		TotalAllocations:    allocs,
		TotalDeallocations:  deallocs,
		ActiveAllocations:   int64(allocs) - int64(deallocs),
		FallbackAllocations: atomic.LoadUint64(&a.fallbackAllocations),
	}

	for i := range a.pools {
		if p := a.pools[i].Load(); p != nil {
			s.Pools = append(s.Pools, p.stats())
		}
	}
	s.PoolsInUse = len(s.Pools)
	return s
}

// String renders the allocator-wide summary block.
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Allocator Statistics ===\n")
	fmt.Fprintf(&b, "Total allocations: %d\n", s.TotalAllocations)
	fmt.Fprintf(&b, "Total deallocations: %d\n", s.TotalDeallocations)
	fmt.Fprintf(&b, "Active allocations: %d\n", s.ActiveAllocations)
	fmt.Fprintf(&b, "Fallback allocations: %d\n", s.FallbackAllocations)
	fmt.Fprintf(&b, "Active pools: %d\n", s.PoolsInUse)
	fmt.Fprintf(&b, "Max supported block size: %d bytes\n", maxPooledSize)
	return b.String()
}

// DetailedStatus renders the summary block plus one line per materialized
// pool. The allocator never prints; callers hand the string to their
// logger or stdout as they see fit.
func (a *Allocator) DetailedStatus() string {
	s := a.Stats()

	var b strings.Builder
	b.WriteString(s.String())

	if len(s.Pools) == 0 {
		b.WriteString("No active pools\n")
		return b.String()
	}
	for _, p := range s.Pools {
		fmt.Fprintf(&b, "Pool[%dB]: %d/%d in use, %d allocs, %d deallocs\n",
			p.SlotSize, p.InUse, p.Capacity, p.Allocations, p.Deallocations)
	}
	return b.String()
}
