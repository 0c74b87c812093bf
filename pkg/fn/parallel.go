package fn

import "sync"

// ParMapResult applies f to every item with at most workers goroutines in
// flight. Results are returned in input order. workers <= 0 means one
// goroutine per item.
func ParMapResult[T, U any](items []T, workers int, f func(T) Result[U]) []Result[U] {
	out := make([]Result[U], len(items))
	if len(items) == 0 {
		return out
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item T) {
			defer func() {
				<-sem
				wg.Done()
			}()
			out[i] = f(item)
		}(i, item)
	}
	wg.Wait()
	return out
}
