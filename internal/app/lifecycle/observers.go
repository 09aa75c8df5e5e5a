package lifecycle

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/cleanarch/internal/domain/usecase"
	"github.com/jsamuelsen11/cleanarch/internal/platform/telemetry"
)

// LogObserver logs every event it receives at DEBUG.
func LogObserver(logger *slog.Logger) Observer {
	return func(ctx context.Context, event usecase.Event) error {
		logger.DebugContext(ctx, "use case "+event.Kind.String(),
			slog.String("usecase", event.UseCase.Name()),
			slog.String("actor", event.ActorID()),
			slog.String("invocation_id", event.ID.String()),
		)
		return nil
	}
}

// MetricsObserver counts events by use case and kind.
func MetricsObserver(m *telemetry.Metrics) Observer {
	return func(ctx context.Context, event usecase.Event) error {
		m.UseCaseInvocations.Add(ctx, 1, metric.WithAttributes(
			telemetry.AttrUseCase.String(event.UseCase.Name()),
			telemetry.AttrEvent.String(event.Kind.String()),
		))
		return nil
	}
}

// SubscribeAll registers fn for both Started and Completed.
func (d *Dispatcher) SubscribeAll(fn Observer) {
	d.Subscribe(usecase.Started, fn)
	d.Subscribe(usecase.Completed, fn)
}

func attrActor(executor usecase.Executor) attribute.KeyValue {
	if executor == nil {
		return attribute.String("usecase.actor", "system")
	}
	return attribute.String("usecase.actor", executor.ActorID())
}
