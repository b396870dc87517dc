package aesmodes

import "sync"

// forEachRange calls fn on disjoint [lo, hi) ranges that together cover
// [0, n) blocks. size is the input length in bytes; below the configured
// threshold, or with a single worker, fn runs once on the caller's goroutine.
func (o *options) forEachRange(n, size int, fn func(lo, hi int)) {
	workers := o.workers
	if workers <= 1 || size < o.threshold || n < 2 {
		fn(0, n)
		return
	}
	workers = min(workers, n)
	per := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += per {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, min(lo+per, n))
	}
	wg.Wait()
}
