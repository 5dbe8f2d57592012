package mempool

const mebibyte = 1 << 20

// SmallObjectConfig favors dense small classes: each pool gets a tight
// byte budget, so tiny slots are plentiful and big ones scarce.
func SmallObjectConfig() Config {
	return Config{
		Strategy: ScaledCountStrategy{
			BudgetBytes: 256 * 1024,
			MinCount:    8,
			MaxCount:    4096,
		},
		ZeroOnFree: false,
	}
}

// ThroughputConfig sizes every pool for sustained churn.
func ThroughputConfig() Config {
	return Config{
		Strategy:   FixedCountStrategy{Count: 1024},
		ZeroOnFree: false,
	}
}

// LowMemoryConfig keeps pools small for constrained environments.
func LowMemoryConfig() Config {
	return Config{
		Strategy:   FixedCountStrategy{Count: 64},
		ZeroOnFree: false,
	}
}

// SecureConfig wipes slots on release so recycled memory never carries
// previous payloads.
func SecureConfig() Config {
	return Config{
		Strategy:   FixedCountStrategy{Count: defaultSlotsPerPool},
		ZeroOnFree: true,
	}
}

// LargeBlockConfig trades slot count for headroom in the big classes: a
// generous byte budget with a low ceiling keeps large pools shallow.
func LargeBlockConfig() Config {
	return Config{
		Strategy: ScaledCountStrategy{
			BudgetBytes: 8 * mebibyte,
			MinCount:    2,
			MaxCount:    512,
		},
		ZeroOnFree: false,
	}
}
