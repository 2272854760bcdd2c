package concurrency

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelOptions configura el comportamiento del procesamiento paralelo
type ParallelOptions struct {
	// MaxWorkers es el número máximo de trabajadores en paralelo
	MaxWorkers int
}

// DefaultOptions devuelve opciones predeterminadas para procesamiento paralelo
func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 10,
	}
}

func (o ParallelOptions) workers(n int) int {
	w := o.MaxWorkers
	if w <= 0 {
		w = 10
	}
	if w > n {
		w = n
	}
	return w
}

// ProcessParallel runs itemFunc for every item with at most MaxWorkers in
// flight and returns results in input order. Items not started because ctx
// was cancelled report ctx.Err().
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	resultList := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for w := 0; w < opts.workers(len(items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				resultList[i], errs[i] = itemFunc(ctx, i, items[i])
			}
		}()
	}
	wg.Wait()

	var errorList []error
	for _, err := range errs {
		if err != nil {
			errorList = append(errorList, err)
		}
	}
	return resultList, errorList
}

// All runs every fn concurrently and waits for all of them to settle, even
// after one has failed. On any failure it returns no results and the error
// of the lowest-indexed failing fn.
func All[R any](ctx context.Context, opts ParallelOptions, fns ...func(ctx context.Context) (R, error)) ([]R, error) {
	if len(fns) == 0 {
		return []R{}, nil
	}

	results := make([]R, len(fns))
	errs := make([]error, len(fns))

	var g errgroup.Group
	g.SetLimit(opts.workers(len(fns)))
	for i, fn := range fns {
		g.Go(func() error {
			results[i], errs[i] = fn(ctx)
			return errs[i]
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
