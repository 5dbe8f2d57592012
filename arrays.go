package mempool

import (
	"math"
	"reflect"
	"unsafe"
)

// ConstructArray allocates one contiguous run of count elements of T,
// zeroes it and returns it as a slice view over the allocation. The run is
// a single block: small runs come from a pool, large ones fall back. T
// obeys the same pointer-free rule as Construct. Returns nil when count is
// not positive, count*sizeof(T) overflows, or the allocator cannot serve.
func ConstructArray[T any](a *Allocator, count int) []T {
	t := reflect.TypeFor[T]()
	assertPointerFree(t)

	if count <= 0 {
		return nil
	}
	elem := int(t.Size())
	if elem > 0 && count > math.MaxInt/elem {
		return nil
	}

	size := count * elem
	if size == 0 {
		size = 1
	}
	ptr := a.Allocate(size)
	if ptr == nil {
		return nil
	}

	s := unsafe.Slice((*T)(ptr), count)
	clear(s)
	return s
}

// DestroyArray releases a run obtained from ConstructArray through its
// base address. A nil slice reports false.
func DestroyArray[T any](a *Allocator, s []T) bool {
	data := unsafe.SliceData(s)
	if data == nil {
		return false
	}
	return a.Deallocate(unsafe.Pointer(data))
}
