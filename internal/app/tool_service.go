package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time check that ToolService implements ports.ToolService.
var _ ports.ToolService = (*ToolService)(nil)

// ToolService implements ports.ToolService by running the deptrac and
// rector binaries installed in the project.
type ToolService struct {
	deptrac    ports.ProcessRunner
	rector     ports.ProcessRunner
	deptracBin string
	rectorBin  string
	logger     *slog.Logger
}

// NewToolService creates a ToolService. deptracBin and rectorBin are the
// executable paths, typically under vendor/bin.
func NewToolService(deptrac, rector ports.ProcessRunner, deptracBin, rectorBin string, logger *slog.Logger) *ToolService {
	return &ToolService{
		deptrac:    deptrac,
		rector:     rector,
		deptracBin: deptracBin,
		rectorBin:  rectorBin,
		logger:     logger,
	}
}

// Check runs the dependency-direction analysis.
func (s *ToolService) Check(ctx context.Context, verbose bool) (ports.ProcessResult, error) {
	var args []string
	if verbose {
		args = append(args, "-v")
	}

	s.logger.InfoContext(ctx, "running deptrac", slog.Any("args", args))

	res, err := s.deptrac.Run(ctx, s.deptracBin, args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "deptrac failed",
			slog.String("operation", "Check"),
			slog.Any("error", err),
		)
		return res, err
	}
	return res, nil
}

// Rector applies the rector rules.
func (s *ToolService) Rector(ctx context.Context, dryRun, clearCache bool) (ports.ProcessResult, error) {
	var args []string
	if dryRun {
		args = append(args, "--dry-run")
	}
	if clearCache {
		args = append(args, "--clear-cache")
	}

	s.logger.InfoContext(ctx, "running rector", slog.Any("args", args))

	res, err := s.rector.Run(ctx, s.rectorBin, args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "rector failed",
			slog.String("operation", "Rector"),
			slog.Any("error", err),
		)
		return res, err
	}
	return res, nil
}
