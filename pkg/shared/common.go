package shared

import (
	"sync"
)

// ForEveryWithBoundedGoroutines calls f for every index in [0, n) from at most
// limit goroutines at a time and waits for all of them to finish.
func ForEveryWithBoundedGoroutines(limit, n int, f func(i int)) {
	if limit < 1 {
		limit = 1
	}
	guard := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		guard <- struct{}{} // would block if guard channel is already filled
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f(i)
			<-guard
		}(i)
	}
	wg.Wait()
}
