package mempool

const (
	tableMinSlots = 16 // initial slot count; power of two for mask probing

	// Slot states. Deleted slots (tombstones) keep probe chains intact
	// until the next rehash sweeps them out.
	slotEmpty   = uint8(0)
	slotFilled  = uint8(1)
	slotDeleted = uint8(2)
)

type tableSlot[K comparable, V any] struct {
	key   K
	value V
	state uint8
}

// Table is an open-addressing hash map whose slot array lives in pool
// memory. Collisions resolve by linear probing; deletions leave tombstones
// that rehashing clears. The slot array is one contiguous arena run, so a
// table's entire payload occupies a single allocation at any time.
//
// Key and value types obey the pointer-free rule of Construct, which rules
// out string keys; hash the string yourself and key on the digest when you
// need string-keyed pool tables.
type Table[K comparable, V any] struct {
	adapter Adapter[tableSlot[K, V]]
	hasher  hasher[K]
	slots   []tableSlot[K, V]
	filled  int // live entries
	used    int // live entries plus tombstones; drives the load factor
}

// NewTable returns an empty table drawing from a. The slot array is not
// allocated until the first insert.
func NewTable[K comparable, V any](a *Allocator) *Table[K, V] {
	return &Table[K, V]{
		adapter: NewAdapter[tableSlot[K, V]](a),
		hasher:  newHasher[K](),
	}
}

// Put inserts or overwrites the value for key. Returns false when the
// slot array cannot be allocated or grown; the table is unchanged in that
// case.
func (t *Table[K, V]) Put(key K, value V) bool {
	if t.slots == nil {
		if !t.rehash(tableMinSlots) {
			return false
		}
	}
	// Keep used strictly under 3/4 of the slot count so probes terminate.
	if (t.used+1)*4 > len(t.slots)*3 {
		if !t.rehash(t.growTarget()) {
			return false
		}
	}

	mask := uint64(len(t.slots) - 1)
	idx := t.hasher.hash(key) & mask
	grave := -1

	for {
		s := &t.slots[idx]
		switch s.state {
		case slotEmpty:
			if grave >= 0 {
				s = &t.slots[grave]
			} else {
				t.used++
			}
			s.key = key
			s.value = value
			s.state = slotFilled
			t.filled++
			return true
		case slotDeleted:
			// Remember the first tombstone; keep probing in case the key
			// exists further down the chain.
			if grave < 0 {
				grave = int(idx)
			}
		case slotFilled:
			if s.key == key {
				s.value = value
				return true
			}
		}
		idx = (idx + 1) & mask
	}
}

// Get returns the value for key and whether it was present.
func (t *Table[K, V]) Get(key K) (V, bool) {
	if t.slots == nil {
		var zero V
		return zero, false
	}

	mask := uint64(len(t.slots) - 1)
	idx := t.hasher.hash(key) & mask

	for {
		s := &t.slots[idx]
		switch s.state {
		case slotEmpty:
			var zero V
			return zero, false
		case slotFilled:
			if s.key == key {
				return s.value, true
			}
		}
		idx = (idx + 1) & mask
	}
}

// Delete removes key and reports whether it was present. The slot becomes
// a tombstone; memory is reclaimed at the next rehash.
func (t *Table[K, V]) Delete(key K) bool {
	if t.slots == nil {
		return false
	}

	mask := uint64(len(t.slots) - 1)
	idx := t.hasher.hash(key) & mask

	for {
		s := &t.slots[idx]
		switch s.state {
		case slotEmpty:
			return false
		case slotFilled:
			if s.key == key {
				var zero tableSlot[K, V]
				*s = zero
				s.state = slotDeleted
				t.filled--
				return true
			}
		}
		idx = (idx + 1) & mask
	}
}

// Len returns the number of live entries.
func (t *Table[K, V]) Len() int {
	return t.filled
}

// Release returns the slot array to the allocator and resets the table to
// empty. The table remains usable; the next insert allocates fresh.
func (t *Table[K, V]) Release() {
	if t.slots != nil {
		t.adapter.Deallocate(t.slots)
		t.slots = nil
	}
	t.filled = 0
	t.used = 0
}

// growTarget doubles the slot count only when live entries justify it;
// a tombstone-heavy table rehashes at the same size to sweep graves.
func (t *Table[K, V]) growTarget() int {
	if t.filled*2 >= len(t.slots) {
		return len(t.slots) * 2
	}
	return len(t.slots)
}

// rehash moves live entries into a fresh arena run of n slots. The old
// run is released afterwards, so peak usage is briefly both runs.
func (t *Table[K, V]) rehash(n int) bool {
	fresh := t.adapter.Allocate(n)
	if fresh == nil {
		return false
	}

	old := t.slots
	t.slots = fresh
	t.used = t.filled

	mask := uint64(n - 1)
	for i := range old {
		if old[i].state != slotFilled {
			continue
		}
		idx := t.hasher.hash(old[i].key) & mask
		for t.slots[idx].state == slotFilled {
			idx = (idx + 1) & mask
		}
		t.slots[idx] = old[i]
	}

	if old != nil {
		t.adapter.Deallocate(old)
	}
	return true
}
