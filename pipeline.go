package cio

import "sync"

// task calls fn for every index in [0, n), spread over workersCount goroutines.
// fn must only write to data owned by its index.
func task(workersCount int, n int, fn func(i int)) {
	if workersCount <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	workersCount = min(workersCount, n)
	chunkSize := (n + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, n))
	}
	wg.Wait()
}
