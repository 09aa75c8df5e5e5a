// Package fanout runs a function across a slice of items with bounded
// concurrency, preserving input order in the results. The rewrite service
// uses it to parse and rewrite source files in parallel.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of processing a single item.
// Either Value is populated (on success) or Err is non-nil (on failure).
type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for each item using at most maxWorkers concurrent
// goroutines. Results are returned in input order; one item failing does not
// stop the others.
//
// Items not yet started when ctx is canceled record ctx.Err() without
// calling fn. Items already running complete (fn is responsible for checking
// ctx internally if it supports cancellation).
//
// Run blocks until all goroutines complete. A maxWorkers below 1 is treated
// as 1. If items is empty, it returns an empty non-nil slice immediately.
func Run[T, R any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return []Result[R]{}
	}

	results := make([]Result[R], len(items))

	var g errgroup.Group
	g.SetLimit(max(maxWorkers, 1))

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[R]{Err: err}
				return nil
			}
			val, err := fn(ctx, item)
			results[i] = Result[R]{Value: val, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Errors returns the non-nil errors in results, in input order.
func Errors[R any](results []Result[R]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
