package mempool

import "github.com/unkn0wn-root/tamari/internal/mathutil"

const (
	// maxPoolSizeBits bounds pooled slot sizes: the largest class holds
	// slots of 1<<maxPoolSizeBits bytes. Larger requests bypass the pools.
	maxPoolSizeBits = 20
	numSizeClasses  = maxPoolSizeBits + 1

	// maxPooledSize is the largest request a size-class pool can serve (1 MiB).
	maxPooledSize = 1 << maxPoolSizeBits
)

// sizeClassIndex maps a request size to the smallest class whose slot size
// holds it, clamped to the top class. Sizes <= 1 share class 0 (1-byte
// slots). Allocation paths reject sizes above maxPooledSize before routing,
// so the clamp only guards direct callers.
func sizeClassIndex(size int) int {
	if size <= 1 {
		return 0
	}
	k := mathutil.CeilLog2(size)
	if k > maxPoolSizeBits {
		return maxPoolSizeBits
	}
	return k
}

// sizeClassSlot returns the slot size in bytes for a class index.
func sizeClassSlot(class int) int {
	return 1 << class
}

// SizeCategory reports the size bucket a request belongs to: its size
// rounded up to the next power of two. For sizes within MaxSupportedSize
// this is the slot size of the pool that would serve the request.
func SizeCategory(size int) int {
	if size <= 1 {
		return 1
	}
	return mathutil.NextPowerOf2(size)
}

// MaxSupportedSize returns the largest allocation the size-class pools can
// serve. Requests above it always use the system-allocator fallback.
func MaxSupportedSize() int {
	return maxPooledSize
}
