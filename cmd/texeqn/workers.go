package main

import "runtime"

// Worker sizing constants.
const (
	minWorkers = 1
	// maxWorkers caps concurrent TeX runs; each backend process is heavy.
	maxWorkers = 8
	cpuDivisor = 2
)

// resolveWorkers determines how many pages are expanded in parallel.
// Priority: explicit flag > GOMAXPROCS-based calculation.
func resolveWorkers(flagWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(n, minWorkers), maxWorkers)
}
