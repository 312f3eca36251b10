package batch

import (
	"runtime"
)

// OptimalConcurrency sizes the worker count for browser-bound scans.
// Each concurrent scan pins a browser context, which is far heavier
// than an HTTP fetch, so the ceiling is low.
func OptimalConcurrency() int {
	optimal := runtime.NumCPU()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	availMB := (m.Sys - m.Alloc) / 1024 / 1024

	// A rendering browser context costs on the order of 150MB.
	maxByMemory := int(availMB / 150)

	if optimal > 6 {
		optimal = 6
	}
	if optimal < 1 {
		optimal = 1
	}
	if maxByMemory > 0 && maxByMemory < optimal {
		return maxByMemory
	}
	return optimal
}
