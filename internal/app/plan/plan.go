// Package plan stages filesystem actions for a use case and executes them in
// order, keeping track of what completed so the use case can compensate.
//
// A Plan never rolls itself back. Commit stops at the first failing step and
// reports it as a domain failure; the lifecycle runner then calls the owning
// use case's Rollback, which delegates to Plan.Rollback:
//
//	p := plan.New()
//	p.AddAction(plan.EnsureDir("src/Entities"))
//	p.AddAction(plan.WriteFile("src/Entities/Order.php", body, false))
//	err := p.Commit(ctx)
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/platform/logging"
)

// ErrAlreadyCommitted is returned when AddAction or Commit is called on a
// plan that has already been committed.
var ErrAlreadyCommitted = errors.New("plan: already committed")

// ErrNilAction is returned when a nil action is staged.
var ErrNilAction = errors.New("plan: nil action")

// Plan is an ordered list of actions. It is safe for concurrent use, but a
// plan is committed once.
type Plan struct {
	mu        sync.Mutex
	steps     []domain.Action
	completed []domain.Action
	committed bool
}

// New creates an empty plan.
func New() *Plan {
	return &Plan{}
}

// AddAction stages action for execution by Commit.
func (p *Plan) AddAction(action domain.Action) error {
	if action == nil {
		return ErrNilAction
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.committed {
		return ErrAlreadyCommitted
	}
	p.steps = append(p.steps, action)
	return nil
}

// Steps returns the descriptions of all staged actions in order.
func (p *Plan) Steps() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Description()
	}
	return out
}

// Commit executes the staged actions in insertion order. On the first
// failure it returns a domain failure wrapping the step's error; steps that
// completed before it remain applied until Rollback is called.
func (p *Plan) Commit(ctx context.Context) error {
	p.mu.Lock()
	if p.committed {
		p.mu.Unlock()
		return ErrAlreadyCommitted
	}
	p.committed = true
	steps := p.steps
	p.mu.Unlock()

	logger := logging.FromContext(ctx)

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("executing %s: %w", step.Description(), err)
		}

		logger.DebugContext(ctx, "executing action",
			slog.String("operation", "Plan.Commit"),
			slog.Int("step", i+1),
			slog.Int("total", len(steps)),
			slog.String("action", step.Description()),
		)

		if err := step.Execute(ctx); err != nil {
			logger.ErrorContext(ctx, "action failed",
				slog.String("operation", "Plan.Commit"),
				slog.Int("failed_step", i+1),
				slog.String("action", step.Description()),
				slog.Any("error", err),
			)
			return domain.WrapDomainFailure(step.Description(), err)
		}

		p.mu.Lock()
		p.completed = append(p.completed, step)
		p.mu.Unlock()
	}

	return nil
}

// Rollback reverses completed steps, last first. Rollback errors are logged
// and do not stop the remaining steps; the joined errors are returned.
// Rolled back steps are forgotten, so a second call is a no-op.
func (p *Plan) Rollback(ctx context.Context) error {
	p.mu.Lock()
	completed := p.completed
	p.completed = nil
	p.mu.Unlock()

	logger := logging.FromContext(ctx)

	var errs []error
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]

		logger.InfoContext(ctx, "rolling back action",
			slog.String("operation", "Plan.Rollback"),
			slog.Int("step", i+1),
			slog.String("action", step.Description()),
		)

		if err := step.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "rollback failed",
				slog.String("operation", "Plan.Rollback"),
				slog.Int("step", i+1),
				slog.String("action", step.Description()),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("rolling back %s: %w", step.Description(), err))
		}
	}

	return errors.Join(errs...)
}
