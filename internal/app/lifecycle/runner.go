// Package lifecycle wraps a single use case handler call with Started and
// Completed events and with rollback on domain failures.
//
// Per invocation the state machine is Idle -> Running -> Completed or
// RolledBack. There is no retry, no backoff, and no cancellation from
// outside: the handler runs exactly once.
//
//	runner := lifecycle.NewRunner(dispatcher, actors, clock, metrics, logger)
//	order, err := lifecycle.Invoke(ctx, runner, uc, func(ctx context.Context) (*Order, error) {
//	    return uc.Handle(ctx, input)
//	})
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/cleanarch/internal/app/actor"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/usecase"
	"github.com/jsamuelsen11/cleanarch/internal/platform/logging"
	"github.com/jsamuelsen11/cleanarch/internal/platform/telemetry"
)

// ErrObserver wraps an error returned by a lifecycle observer.
var ErrObserver = errors.New("lifecycle: observer failed")

// ErrNilUseCase is returned when Invoke is called without a use case.
var ErrNilUseCase = errors.New("lifecycle: nil use case")

// Runner holds the collaborators shared by every invocation.
type Runner struct {
	dispatcher *Dispatcher
	actors     *actor.Registry
	clock      clockwork.Clock
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

// NewRunner creates a Runner. Nil collaborators fall back to an empty
// dispatcher, an empty registry, the real clock, no-op metrics, and a
// discarding logger.
func NewRunner(
	dispatcher *Dispatcher,
	actors *actor.Registry,
	clock clockwork.Clock,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *Runner {
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	if actors == nil {
		actors = actor.New()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = telemetry.NoopMetrics()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		dispatcher: dispatcher,
		actors:     actors,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Dispatcher returns the dispatcher observers subscribe to.
func (r *Runner) Dispatcher() *Dispatcher { return r.dispatcher }

// Actors returns the registry executors are bound in.
func (r *Runner) Actors() *actor.Registry { return r.actors }

// Invoke runs handler once on behalf of uc.
//
// Started is dispatched before the handler and Completed after it returns
// successfully. A handler error in the domain failure category triggers
// uc.Rollback exactly once; the original error is then returned unchanged.
// Any other error is returned unchanged without rollback. Observer errors
// are propagated wrapped in ErrObserver: a failing Started observer prevents
// the handler from running, a failing Completed observer is reported next to
// the handler's value.
func Invoke[T any](ctx context.Context, r *Runner, uc usecase.UseCase, handler func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if uc == nil {
		return zero, ErrNilUseCase
	}

	executor, _ := r.actors.CurrentExecutor(actor.TypeOf(uc))
	id := uuid.New()
	name := uc.Name()

	ctx, span := telemetry.Tracer().Start(ctx, "usecase "+name,
		trace.WithAttributes(
			telemetry.AttrUseCase.String(name),
			attrActor(executor),
		),
	)
	defer span.End()

	started := usecase.Event{ID: id, Kind: usecase.Started, UseCase: uc, Executor: executor, At: r.clock.Now()}
	if err := r.dispatcher.Dispatch(ctx, started); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, fmt.Errorf("%w: %s %s: %w", ErrObserver, name, usecase.Started, err)
	}

	result, err := handler(ctx)
	r.metrics.UseCaseDuration.Record(ctx, r.clock.Since(started.At).Seconds(),
		metric.WithAttributes(telemetry.AttrUseCase.String(name)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if domain.IsDomainFailure(err) {
			r.rollback(ctx, uc, id, err)
		}
		return zero, err
	}

	completed := usecase.Event{ID: id, Kind: usecase.Completed, UseCase: uc, Executor: executor, At: r.clock.Now()}
	if err := r.dispatcher.Dispatch(ctx, completed); err != nil {
		span.RecordError(err)
		return result, fmt.Errorf("%w: %s %s: %w", ErrObserver, name, usecase.Completed, err)
	}

	return result, nil
}

// rollback calls the use case's compensation hook. Its error is logged and
// never replaces the domain failure that caused it.
func (r *Runner) rollback(ctx context.Context, uc usecase.UseCase, id uuid.UUID, cause error) {
	name := uc.Name()

	r.logger.WarnContext(ctx, "domain failure, rolling back use case",
		slog.String("operation", "lifecycle.Invoke"),
		slog.String("usecase", name),
		slog.String("invocation_id", id.String()),
		slog.Any("error", cause),
	)
	r.metrics.UseCaseRollbacks.Add(ctx, 1, metric.WithAttributes(telemetry.AttrUseCase.String(name)))

	if err := uc.Rollback(ctx); err != nil {
		r.logger.ErrorContext(ctx, "rollback failed",
			slog.String("operation", "lifecycle.Invoke"),
			slog.String("usecase", name),
			slog.String("invocation_id", id.String()),
			slog.Any("error", err),
		)
	}
}
