// Package health provides a thread-safe registry of health checks. The doctor
// command uses it to report whether the external tools and the project
// configuration are ready.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthRegistry = (*Registry)(nil)

// Result is the outcome of one check.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Healthy reports whether the check passed.
func (r Result) Healthy() bool { return r.Err == nil }

// Registry is a thread-safe implementation of [ports.HealthRegistry].
// Components that implement [ports.HealthChecker] are registered at startup
// and checked by the doctor command.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
	timeout  time.Duration
}

// New creates an empty health check registry. A positive timeout bounds each
// individual check.
func New(timeout time.Duration) *Registry {
	return &Registry{timeout: timeout}
}

// Register adds a health checker to the registry. Safe for concurrent use.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// Run executes all registered checks concurrently and returns their results
// in registration order. The slice is copied under a read lock so checks run
// without holding the lock.
func (r *Registry) Run(ctx context.Context) []Result {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make([]Result, len(checkers))

	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			checkCtx := ctx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				checkCtx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}

			start := time.Now()
			err := c.HealthCheck(checkCtx)
			results[i] = Result{Name: c.Name(), Err: err, Duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// CheckAll executes all registered health checks and returns results keyed by
// checker name. Nil values indicate healthy components. When two checkers
// share a name, the one registered last wins.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	results := r.Run(ctx)
	out := make(map[string]error, len(results))
	for _, res := range results {
		out[res.Name] = res.Err
	}
	return out
}
