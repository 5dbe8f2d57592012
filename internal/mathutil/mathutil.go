package mathutil

import "math/bits"

// NextPowerOf2 returns the next power of 2 greater than or equal to n.
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// CeilLog2 returns the smallest k such that 1<<k >= n. Values of n <= 1 map to 0.
func CeilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
