package mempool

// defaultSlotsPerPool is the slot count FixedCountStrategy uses when built
// by DefaultStrategy().
const defaultSlotsPerPool = 256

// Strategy decides how large a pool becomes when its size class is first
// used. It is consulted exactly once per class, at pool creation; changing
// or replacing a strategy never resizes existing pools.
//
// PoolBytes is authoritative: a pool holds PoolBytes(slotSize)/slotSize
// slots (at least one). SlotCount exists for reporting and for strategies
// that think in object counts; the built-in strategies keep both consistent.
type Strategy interface {
	SlotCount(slotSize int) int
	PoolBytes(slotSize int) int
}

// FixedCountStrategy gives every pool the same number of slots regardless
// of slot size.
type FixedCountStrategy struct {
	Count int
}

func (s FixedCountStrategy) SlotCount(slotSize int) int { return s.Count }
func (s FixedCountStrategy) PoolBytes(slotSize int) int { return s.Count * slotSize }

// ScaledCountStrategy spends roughly the same byte budget on every pool, so
// small-slot pools get many slots and large-slot pools few. Counts are
// clamped to [MinCount, MaxCount]; a MaxCount of zero means unbounded.
type ScaledCountStrategy struct {
	BudgetBytes int
	MinCount    int
	MaxCount    int
}

func (s ScaledCountStrategy) SlotCount(slotSize int) int {
	n := s.BudgetBytes / slotSize
	if n < s.MinCount {
		n = s.MinCount
	}
	if s.MaxCount > 0 && n > s.MaxCount {
		n = s.MaxCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (s ScaledCountStrategy) PoolBytes(slotSize int) int {
	return s.SlotCount(slotSize) * slotSize
}

// DefaultStrategy returns the stock strategy: 256 slots per pool.
func DefaultStrategy() Strategy {
	return FixedCountStrategy{Count: defaultSlotsPerPool}
}
