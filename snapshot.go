package mempool

import (
	"fmt"
	"io"
	"time"

	cbor "github.com/fxamacker/cbor/v2"
)

// snapshotSchema versions the wire layout; bump when fields change shape.
const snapshotSchema = 1

// PoolSnapshot is the wire form of one pool's stats.
type PoolSnapshot struct {
	SlotSize      int    `cbor:"s"`
	Capacity      int    `cbor:"c"`
	InUse         int    `cbor:"u"`
	Available     int    `cbor:"a"`
	Allocations   uint64 `cbor:"al"`
	Deallocations uint64 `cbor:"dl"`
}

// Snapshot is a point-in-time dump of one allocator, wire-friendly for
// diagnostic capture and offline comparison. Schema is checked on decode.
type Snapshot struct {
	Schema              int            `cbor:"v"`
	TakenAt             int64          `cbor:"t"` // unix nanos
	Name                string         `cbor:"n,omitempty"`
	Strategy            string         `cbor:"st,omitempty"`
	TotalAllocations    uint64         `cbor:"ta"`
	TotalDeallocations  uint64         `cbor:"td"`
	ActiveAllocations   int64          `cbor:"aa"`
	FallbackAllocations uint64         `cbor:"fa"`
	Pools               []PoolSnapshot `cbor:"p,omitempty"`
}

// TakeSnapshot captures a's current stats under the given display name.
func TakeSnapshot(a *Allocator, name string) Snapshot {
	stats := a.Stats()

	a.strategyMu.RLock()
	strategy := describeStrategy(a.strategy)
	a.strategyMu.RUnlock()

	s := Snapshot{
		Schema:              snapshotSchema,
		TakenAt:             time.Now().UnixNano(),
		Name:                name,
		Strategy:            strategy,
		TotalAllocations:    stats.TotalAllocations,
		TotalDeallocations:  stats.TotalDeallocations,
		ActiveAllocations:   stats.ActiveAllocations,
		FallbackAllocations: stats.FallbackAllocations,
	}
	for _, p := range stats.Pools {
		s.Pools = append(s.Pools, PoolSnapshot{
			SlotSize:      p.SlotSize,
			Capacity:      p.Capacity,
			InUse:         p.InUse,
			Available:     p.Available,
			Allocations:   p.Allocations,
			Deallocations: p.Deallocations,
		})
	}
	return s
}

// EncodeSnapshot writes s to w as a single CBOR item.
func EncodeSnapshot(w io.Writer, s Snapshot) error {
	if err := cbor.NewEncoder(w).Encode(s); err != nil {
		return wrapError("encode snapshot", err)
	}
	return nil
}

// DecodeSnapshot reads one CBOR snapshot from r and rejects unknown
// schema versions.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := cbor.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, wrapError("decode snapshot", err)
	}
	if s.Schema != snapshotSchema {
		return Snapshot{}, wrapError("decode snapshot",
			fmt.Errorf("%w: schema %d", ErrSnapshotSchema, s.Schema))
	}
	return s, nil
}

// SnapshotAll streams a count-prefixed CBOR sequence holding one snapshot
// per materialized allocator, named as registered.
func (m *Manager) SnapshotAll(w io.Writer) error {
	snaps := make([]Snapshot, 0, 8)
	m.allocators.Range(func(key, value interface{}) bool {
		snaps = append(snaps, TakeSnapshot(value.(*Allocator), key.(string)))
		return true
	})

	enc := cbor.NewEncoder(w)
	if err := enc.Encode(len(snaps)); err != nil {
		return wrapError("encode snapshots", err)
	}
	for _, s := range snaps {
		if err := enc.Encode(s); err != nil {
			return wrapError("encode snapshots", err)
		}
	}
	return nil
}

// DecodeSnapshots reads a stream produced by SnapshotAll.
func DecodeSnapshots(r io.Reader) ([]Snapshot, error) {
	dec := cbor.NewDecoder(r)

	var n int
	if err := dec.Decode(&n); err != nil {
		return nil, wrapError("decode snapshots", err)
	}

	out := make([]Snapshot, 0, n)
	for i := 0; i < n; i++ {
		var s Snapshot
		if err := dec.Decode(&s); err != nil {
			return nil, wrapError("decode snapshots", err)
		}
		if s.Schema != snapshotSchema {
			return nil, wrapError("decode snapshots",
				fmt.Errorf("%w: schema %d", ErrSnapshotSchema, s.Schema))
		}
		out = append(out, s)
	}
	return out, nil
}

// describeStrategy renders a strategy for human-facing dumps.
func describeStrategy(s Strategy) string {
	switch v := s.(type) {
	case FixedCountStrategy:
		return fmt.Sprintf("fixed(%d slots)", v.Count)
	case ScaledCountStrategy:
		return fmt.Sprintf("scaled(%dB budget, %d..%d slots)", v.BudgetBytes, v.MinCount, v.MaxCount)
	default:
		return fmt.Sprintf("%T", s)
	}
}
