package mempool

// Adapter binds a concrete element type to an Allocator so generic
// containers can draw typed runs from pool memory without touching the
// unsafe surface themselves. Element types obey the pointer-free rule of
// Construct. The zero Adapter is not usable; build one with NewAdapter.
type Adapter[T any] struct {
	alloc *Allocator
}

// NewAdapter binds T to a.
func NewAdapter[T any](a *Allocator) Adapter[T] {
	return Adapter[T]{alloc: a}
}

// Allocate returns a zeroed run of n elements, or nil when the allocator
// cannot serve. Nil is the container-level out-of-memory signal.
func (ad Adapter[T]) Allocate(n int) []T {
	if ad.alloc == nil {
		return nil
	}
	return ConstructArray[T](ad.alloc, n)
}

// Deallocate releases a run previously returned by Allocate. Runs may be
// released through any adapter equal to the allocating one.
func (ad Adapter[T]) Deallocate(s []T) {
	if ad.alloc == nil {
		return
	}
	DestroyArray(ad.alloc, s)
}

// Equal reports whether both adapters draw from the same allocator, which
// is exactly the condition under which memory from one can be released
// through the other.
func (ad Adapter[T]) Equal(other Adapter[T]) bool {
	return ad.alloc == other.alloc
}

// Allocator exposes the bound allocator, mostly for rebinding.
func (ad Adapter[T]) Allocator() *Allocator {
	return ad.alloc
}

// Rebind derives an adapter for element type U backed by the same
// allocator as ad.
func Rebind[U, T any](ad Adapter[T]) Adapter[U] {
	return Adapter[U]{alloc: ad.alloc}
}
