package concurrency

import (
	"context"
	"sync"
)

type Options struct {
	// MaxWorkers bounds the number of goroutines. <= 0 means sequential.
	MaxWorkers int
}

// ForEach runs fn over items with a bounded worker pool and collects the
// errors. Results are communicated through fn's side effects, so items must
// not share mutable state (the geocoding fill writes disjoint table rows).
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts Options,
	fn func(ctx context.Context, index int, item T) error,
) []error {
	if len(items) == 0 {
		return nil
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int, len(items))
	errCh := make(chan error, len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if err := fn(ctx, i, items[i]); err != nil {
					errCh <- err
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errs
}
