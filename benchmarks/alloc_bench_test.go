package main_test

import (
	"fmt"
	"testing"

	mempool "github.com/unkn0wn-root/tamari"
)

var sink []byte

func BenchmarkAllocateDeallocate(b *testing.B) {
	alloc := mempool.NewWithDefaults()
	defer alloc.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr := alloc.Allocate(64)
		alloc.Deallocate(ptr)
	}
}

func BenchmarkAllocateParallel(b *testing.B) {
	alloc := mempool.NewWithDefaults()
	defer alloc.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			ptr := alloc.Allocate(64)
			alloc.Deallocate(ptr)
		}
	})
}

func BenchmarkAllocateSizeSweep(b *testing.B) {
	for _, size := range []int{16, 256, 4096, 65536} {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			alloc := mempool.New(mempool.Config{
				Strategy: mempool.FixedCountStrategy{Count: 1024},
			})
			defer alloc.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ptr := alloc.Allocate(size)
				alloc.Deallocate(ptr)
			}
		})
	}
}

func BenchmarkAllocateContention(b *testing.B) {
	alloc := mempool.NewWithDefaults()
	defer alloc.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		// Everyone fights over the same size class
		for pb.Next() {
			ptr := alloc.Allocate(128)
			alloc.Deallocate(ptr)
		}
	})
}

func BenchmarkFallbackOversize(b *testing.B) {
	alloc := mempool.NewWithDefaults()
	defer alloc.Close()

	size := mempool.MaxSupportedSize() + 1

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr := alloc.Allocate(size)
		alloc.Deallocate(ptr)
	}
}

// Pool recycling against the garbage-collected heap, same block size.
func BenchmarkPoolVsHeap(b *testing.B) {
	b.Run("pool", func(b *testing.B) {
		alloc := mempool.NewWithDefaults()
		defer alloc.Close()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			ptr := alloc.Allocate(512)
			alloc.Deallocate(ptr)
		}
	})

	b.Run("heap", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			sink = make([]byte, 512)
		}
	})
}

type payload struct {
	ID    int64
	Score float64
	Flags [6]uint32
}

func BenchmarkConstructDestroy(b *testing.B) {
	alloc := mempool.NewWithDefaults()
	defer alloc.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := mempool.Construct(alloc, payload{ID: int64(i)})
		mempool.Destroy(alloc, p)
	}
}

func BenchmarkVectorAppend(b *testing.B) {
	alloc := mempool.NewWithDefaults()
	defer alloc.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v := mempool.NewVector[int64](alloc)
		for j := 0; j < 128; j++ {
			v.Append(int64(j))
		}
		v.Release()
	}
}

func BenchmarkTablePutGet(b *testing.B) {
	alloc := mempool.NewWithDefaults()
	defer alloc.Close()

	tbl := mempool.NewTable[int, int64](alloc)
	for i := 0; i < 1024; i++ {
		tbl.Put(i, int64(i))
	}
	defer tbl.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%4 == 0 {
			tbl.Put(i%1024, int64(i))
		} else {
			tbl.Get(i % 1024)
		}
	}
}
