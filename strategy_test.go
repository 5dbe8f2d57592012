package mempool

import "testing"

func TestFixedCountStrategy(t *testing.T) {
	s := FixedCountStrategy{Count: 128}

	if got := s.SlotCount(16); got != 128 {
		t.Errorf("SlotCount(16) = %d, want 128", got)
	}
	if got := s.PoolBytes(16); got != 128*16 {
		t.Errorf("PoolBytes(16) = %d, want %d", got, 128*16)
	}
}

func TestScaledCountStrategyClamping(t *testing.T) {
	s := ScaledCountStrategy{BudgetBytes: 1024, MinCount: 4, MaxCount: 64}

	// 1024/256 = 4 slots, within bounds.
	if got := s.SlotCount(256); got != 4 {
		t.Errorf("SlotCount(256) = %d, want 4", got)
	}
	// 1024/8 = 128 slots, capped at 64.
	if got := s.SlotCount(8); got != 64 {
		t.Errorf("SlotCount(8) = %d, want 64", got)
	}
	// 1024/1024 = 1 slot, raised to the minimum.
	if got := s.SlotCount(1024); got != 4 {
		t.Errorf("SlotCount(1024) = %d, want 4", got)
	}
}

func TestScaledCountStrategyUnboundedMax(t *testing.T) {
	s := ScaledCountStrategy{BudgetBytes: 1 << 20}

	if got := s.SlotCount(1); got != 1<<20 {
		t.Errorf("SlotCount(1) = %d, want %d", got, 1<<20)
	}
	// Budget smaller than one slot still yields a single slot.
	if got := s.SlotCount(1 << 21); got != 1 {
		t.Errorf("SlotCount(big) = %d, want 1", got)
	}
}

func TestDefaultStrategy(t *testing.T) {
	s := DefaultStrategy()

	fixed, ok := s.(FixedCountStrategy)
	if !ok {
		t.Fatalf("DefaultStrategy() = %T, want FixedCountStrategy", s)
	}
	if fixed.Count != defaultSlotsPerPool {
		t.Errorf("default count = %d, want %d", fixed.Count, defaultSlotsPerPool)
	}
}
