package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides the specified total number (items) according to the
// number of CPU cores, and executes the specified function (fn) in parallel
// for each range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}

	// Number of items per worker, ceiling division.
	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of
// items exceeds the threshold. Below the threshold the goroutine overhead
// outweighs the gain, so the work runs sequentially.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
