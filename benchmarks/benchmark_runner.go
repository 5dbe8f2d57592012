package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

func main() {
	fmt.Println("=== TAMARI Allocator Benchmark Suite ===")
	fmt.Println("Running allocation benchmarks against the Go heap")
	fmt.Println()

	benchmarks := []struct {
		name        string
		pattern     string
		description string
		benchtime   string
	}{
		{
			name:        "Allocate/Deallocate Cycle",
			pattern:     "BenchmarkAllocateDeallocate",
			description: "Single-goroutine pool recycling",
			benchtime:   "3s",
		},
		{
			name:        "Parallel Cycle",
			pattern:     "BenchmarkAllocateParallel",
			description: "Pool recycling across all cores",
			benchtime:   "3s",
		},
		{
			name:        "Size Sweep",
			pattern:     "BenchmarkAllocateSizeSweep",
			description: "Cycle cost across size classes",
			benchtime:   "2s",
		},
		{
			name:        "Single-Class Contention",
			pattern:     "BenchmarkAllocateContention",
			description: "All goroutines on one free stack",
			benchtime:   "3s",
		},
		{
			name:        "Oversize Fallback",
			pattern:     "BenchmarkFallbackOversize",
			description: "Requests past the largest class",
			benchtime:   "2s",
		},
		{
			name:        "Pool vs Heap",
			pattern:     "BenchmarkPoolVsHeap",
			description: "Pool recycling against make([]byte, n)",
			benchtime:   "3s",
		},
		{
			name:        "Typed Construction",
			pattern:     "BenchmarkConstructDestroy",
			description: "Construct/Destroy round trips",
			benchtime:   "2s",
		},
		{
			name:        "Container Workloads",
			pattern:     "BenchmarkVectorAppend|BenchmarkTablePutGet",
			description: "Vector and Table on pool memory",
			benchtime:   "2s",
		},
	}

	totalStart := time.Now()

	for i, bench := range benchmarks {
		fmt.Printf("[%d/%d] %s\n", i+1, len(benchmarks), bench.name)
		fmt.Printf("Description: %s\n", bench.description)
		fmt.Printf("Running: go test -bench=%s -benchmem -benchtime=%s\n", bench.pattern, bench.benchtime)
		fmt.Println(strings.Repeat("-", 80))

		start := time.Now()

		cmd := exec.Command("go", "test", "-bench="+bench.pattern, "-benchmem", "-benchtime="+bench.benchtime, ".")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		err := cmd.Run()

		duration := time.Since(start)

		if err != nil {
			fmt.Printf(" - Benchmark failed: %v\n", err)
		} else {
			fmt.Printf(" + Benchmark completed in %v\n", duration)
		}

		fmt.Println()
	}

	totalDuration := time.Since(totalStart)
	fmt.Printf("All benchmarks completed in %v\n", totalDuration)
	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Println("Key performance areas tested:")
	fmt.Println("- Pool recycling vs garbage-collected allocation")
	fmt.Println("- Per-class free stack contention")
	fmt.Println("- Fallback path cost for oversize requests")
	fmt.Println("- Typed construction overhead")
	fmt.Println("- Container behavior on pool memory")
}
