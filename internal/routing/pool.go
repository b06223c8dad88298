package routing

import (
	"context"
	"errors"
	"sync"
)

const defaultWorkers = 4

// runPool calls fn for every index in [0, total) using a fixed number of
// goroutines. It stops handing out work once ctx is done and returns the
// context error in that case. Once every index has been handed out, a late
// cancellation no longer matters and the errors fn returned are joined.
func runPool(ctx context.Context, workers, total int, fn func(idx int) error) error {
	if err := ctx.Err(); err != nil || total == 0 {
		return err
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > total {
		workers = total
	}

	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := fn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

	var cancelled error
Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if cancelled != nil {
		return cancelled
	}

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
