package mempool

// vectorMinCap is the first capacity a growing vector reserves.
const vectorMinCap = 4

// Vector is a dynamic array whose backing runs live in pool memory. All
// growth goes through the adapter: a larger run is allocated, elements are
// copied over and the old run is released. Operations that need memory
// report failure instead of panicking, so a vector on an exhausted
// allocator degrades to rejected appends rather than a crash.
type Vector[T any] struct {
	adapter Adapter[T]
	data    []T // backing run; len(data) is the capacity
	length  int
}

// NewVector returns an empty vector drawing from a. No memory is reserved
// until the first append.
func NewVector[T any](a *Allocator) *Vector[T] {
	return &Vector[T]{adapter: NewAdapter[T](a)}
}

// NewVectorWith returns an empty vector using an existing adapter.
func NewVectorWith[T any](ad Adapter[T]) *Vector[T] {
	return &Vector[T]{adapter: ad}
}

// Append places val after the last element, growing the backing run when
// full. Returns false when growth memory cannot be obtained; the vector is
// unchanged in that case.
func (v *Vector[T]) Append(val T) bool {
	if v.length == len(v.data) {
		if !v.grow(v.length + 1) {
			return false
		}
	}
	v.data[v.length] = val
	v.length++
	return true
}

// Get returns the element at index i, or the zero value and false when i
// is out of range.
func (v *Vector[T]) Get(i int) (T, bool) {
	if i < 0 || i >= v.length {
		var zero T
		return zero, false
	}
	return v.data[i], true
}

// Set overwrites the element at index i. Out-of-range indexes report
// false.
func (v *Vector[T]) Set(i int, val T) bool {
	if i < 0 || i >= v.length {
		return false
	}
	v.data[i] = val
	return true
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int {
	return v.length
}

// Cap returns the capacity of the current backing run.
func (v *Vector[T]) Cap() int {
	return len(v.data)
}

// Reserve grows the backing run so at least n elements fit without
// reallocation. Reserving below the current capacity is a no-op. Returns
// false when memory cannot be obtained.
func (v *Vector[T]) Reserve(n int) bool {
	if n <= len(v.data) {
		return true
	}
	return v.grow(n)
}

// Truncate drops elements from the tail until n remain. The dropped slots
// are zeroed so stale payloads do not linger in pool memory. Growing via
// Truncate is not possible; n at or above Len leaves the vector unchanged.
func (v *Vector[T]) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= v.length {
		return
	}
	clear(v.data[n:v.length])
	v.length = n
}

// Release returns the backing run to the allocator and resets the vector
// to empty. The vector remains usable; the next append allocates fresh.
func (v *Vector[T]) Release() {
	if v.data != nil {
		v.adapter.Deallocate(v.data)
		v.data = nil
	}
	v.length = 0
}

// grow swaps the backing run for one holding at least want elements,
// doubling from the current capacity.
func (v *Vector[T]) grow(want int) bool {
	newCap := len(v.data) * 2
	if newCap < vectorMinCap {
		newCap = vectorMinCap
	}
	for newCap < want {
		newCap *= 2
	}

	run := v.adapter.Allocate(newCap)
	if run == nil {
		return false
	}
	copy(run, v.data[:v.length])
	if v.data != nil {
		v.adapter.Deallocate(v.data)
	}
	v.data = run
	return true
}
