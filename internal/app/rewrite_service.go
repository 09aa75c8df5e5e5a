package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen11/cleanarch/internal/app/fanout"
	"github.com/jsamuelsen11/cleanarch/internal/app/lifecycle"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
	"github.com/jsamuelsen11/cleanarch/internal/domain/usecase"
	"github.com/jsamuelsen11/cleanarch/internal/platform/telemetry"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time check that RewriteService implements ports.RewriteService.
var _ ports.RewriteService = (*RewriteService)(nil)

// RewriteUseCase is the use case executed by RewriteService. Files are
// rewritten independently, so there is nothing to compensate.
type RewriteUseCase struct {
	usecase.Base
}

// Name implements usecase.UseCase.
func (*RewriteUseCase) Name() string { return "rewrite" }

// RewriteService tags the classes of every configured layer with the layer's
// marker interface, editing the PHP sources in place.
type RewriteService struct {
	layers          ports.LayerResolver
	parser          ports.DeclarationParser
	runner          *lifecycle.Runner
	markerNamespace string
	workers         int
	metrics         *telemetry.Metrics
	logger          *slog.Logger
}

// NewRewriteService creates a RewriteService. Files are processed by at most
// workers goroutines.
func NewRewriteService(
	layers ports.LayerResolver,
	parser ports.DeclarationParser,
	runner *lifecycle.Runner,
	markerNamespace string,
	workers int,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *RewriteService {
	if metrics == nil {
		metrics = telemetry.NoopMetrics()
	}
	return &RewriteService{
		layers:          layers,
		parser:          parser,
		runner:          runner,
		markerNamespace: markerNamespace,
		workers:         workers,
		metrics:         metrics,
		logger:          logger,
	}
}

// Rewrite implements ports.RewriteService.
func (s *RewriteService) Rewrite(ctx context.Context, req ports.RewriteRequest) (*ports.RewriteReport, error) {
	rules := declaration.LayerRules(s.layers.All(), s.markerNamespace)
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no layer is configured", domain.ErrNotConfigured)
	}

	files, err := s.collect(ctx, req.Paths)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to collect files",
			slog.String("operation", "Rewrite"),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "rewriting files",
		slog.Int("files", len(files)),
		slog.Bool("dry_run", req.DryRun),
	)

	return lifecycle.Invoke(ctx, s.runner, &RewriteUseCase{}, func(ctx context.Context) (*ports.RewriteReport, error) {
		results := fanout.Run(ctx, s.workers, files, func(ctx context.Context, path string) (ports.FileReport, error) {
			return s.rewriteFile(ctx, rules, path, req.DryRun)
		})

		report := &ports.RewriteReport{DryRun: req.DryRun, Files: make([]ports.FileReport, len(results))}
		for i, r := range results {
			fr := r.Value
			fr.Path = files[i]
			fr.Err = r.Err
			report.Files[i] = fr

			if r.Err != nil {
				continue
			}
			report.Total.Add(fr.Report)
			if fr.Report.Changed() {
				report.Changed = append(report.Changed, fr.Path)
			}
		}

		s.recordNodes(ctx, report.Total)
		return report, nil
	})
}

func (s *RewriteService) rewriteFile(ctx context.Context, rules declaration.RuleSet, path string, dryRun bool) (ports.FileReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.FileReport{}, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return ports.FileReport{}, err
	}

	file, err := s.parser.Parse(ctx, path, src)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping unparsable file",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return ports.FileReport{}, err
	}

	report := rules.ApplyAll(file.Declarations())
	if !report.Changed() || dryRun {
		return ports.FileReport{Report: report}, nil
	}

	if err := os.WriteFile(path, file.Render(), info.Mode().Perm()); err != nil {
		return ports.FileReport{}, fmt.Errorf("writing %s: %w", path, err)
	}

	s.logger.DebugContext(ctx, "file rewritten",
		slog.String("path", path),
		slog.Int("modified", report.Modified),
	)
	return ports.FileReport{Report: report}, nil
}

// collect returns the sorted, de-duplicated PHP files under paths. With no
// paths, the configured layer directories are scanned and missing ones are
// skipped; an explicitly requested path must exist.
func (s *RewriteService) collect(ctx context.Context, paths []string) ([]string, error) {
	explicit := len(paths) > 0
	if !explicit {
		for _, spec := range s.layers.All() {
			if spec.Configured() {
				paths = append(paths, spec.Path)
			}
		}
	}

	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				s.logger.DebugContext(ctx, "layer directory missing", slog.String("path", root))
				continue
			}
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, root)
			}
			return nil, err
		}

		if !info.IsDir() {
			if isPHPFile(root) {
				files = append(files, filepath.Clean(root))
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isPHPFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func (s *RewriteService) recordNodes(ctx context.Context, total declaration.Report) {
	for result, n := range map[declaration.MutationResult]int{
		declaration.Modified:  total.Modified,
		declaration.Unchanged: total.Unchanged,
		declaration.Skipped:   total.Skipped,
	} {
		if n > 0 {
			s.metrics.RewriteNodes.Add(ctx, int64(n),
				metric.WithAttributes(telemetry.AttrResult.String(result.String())))
		}
	}
}

func isPHPFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".php")
}
