package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/jsamuelsen11/cleanarch/internal/app/lifecycle"
	"github.com/jsamuelsen11/cleanarch/internal/app/plan"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time check that ScaffoldService implements ports.ScaffoldService.
var _ ports.ScaffoldService = (*ScaffoldService)(nil)

// phpIdentifier matches a PHP class name (ASCII subset).
var phpIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ScaffoldUseCase creates one layer file. Its rollback undoes the staged
// filesystem changes that completed before the failure.
type ScaffoldUseCase struct {
	Layer domain.Layer
	plan  *plan.Plan
}

// Name implements usecase.UseCase.
func (uc *ScaffoldUseCase) Name() string { return "make:" + uc.Layer.String() }

// Rollback implements usecase.UseCase.
func (uc *ScaffoldUseCase) Rollback(ctx context.Context) error {
	return uc.plan.Rollback(ctx)
}

// ScaffoldService implements ports.ScaffoldService by rendering the layer
// stub and writing it into the layer directory.
type ScaffoldService struct {
	layers          ports.LayerResolver
	stubs           ports.StubStore
	runner          *lifecycle.Runner
	markerNamespace string
	logger          *slog.Logger
}

// NewScaffoldService creates a ScaffoldService. markerNamespace is the
// namespace of the marker interfaces the generated classes implement.
func NewScaffoldService(
	layers ports.LayerResolver,
	stubs ports.StubStore,
	runner *lifecycle.Runner,
	markerNamespace string,
	logger *slog.Logger,
) *ScaffoldService {
	return &ScaffoldService{
		layers:          layers,
		stubs:           stubs,
		runner:          runner,
		markerNamespace: markerNamespace,
		logger:          logger,
	}
}

// Make implements ports.ScaffoldService.
func (s *ScaffoldService) Make(ctx context.Context, layer domain.Layer, className string) (string, error) {
	s.logger.InfoContext(ctx, "scaffolding class",
		slog.String("layer", layer.String()),
		slog.String("class", className),
	)

	if err := validateClassName(layer, className); err != nil {
		return "", err
	}

	spec := s.layers.Resolve(layer)
	if !spec.Configured() {
		return "", fmt.Errorf("%w: layer %s has no path or namespace", domain.ErrNotConfigured, layer)
	}

	body, err := s.stubs.Render(layer.StubName(), map[string]string{
		"namespace":       spec.Namespace,
		"className":       className,
		"markerInterface": declaration.Join(s.markerNamespace, layer.MarkerInterface()),
		"markerShortName": layer.MarkerInterface(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render stub",
			slog.String("operation", "Make"),
			slog.String("layer", layer.String()),
			slog.Any("error", err),
		)
		return "", err
	}

	target := filepath.Join(spec.Path, className+".php")

	uc := &ScaffoldUseCase{Layer: layer, plan: plan.New()}
	if err := uc.plan.AddAction(plan.EnsureDir(spec.Path)); err != nil {
		return "", err
	}
	if err := uc.plan.AddAction(plan.WriteFile(target, body, false)); err != nil {
		return "", err
	}

	_, err = lifecycle.Invoke(ctx, s.runner, uc, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, uc.plan.Commit(ctx)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to scaffold class",
			slog.String("operation", "Make"),
			slog.String("path", target),
			slog.Any("error", err),
		)
		return "", err
	}

	return target, nil
}

func validateClassName(layer domain.Layer, className string) error {
	fields := make(map[string]string)
	if !layer.IsValid() {
		fields["layer"] = fmt.Sprintf("unknown layer %q", layer)
	}
	switch {
	case className == "":
		fields["name"] = "is required"
	case !phpIdentifier.MatchString(className):
		fields["name"] = fmt.Sprintf("%q is not a valid PHP class name", className)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
