package ports

import (
	"context"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
)

// RewriteService tags layer classes with their marker interfaces.
// Implemented by the application layer; called by the rewrite and watch commands.
type RewriteService interface {
	// Rewrite applies the layer rules to every PHP file under the requested
	// paths (or all configured layer paths when none are given). Per-file
	// parse or write failures are collected in the report; a hard error is
	// returned only when the batch itself cannot run.
	Rewrite(ctx context.Context, req RewriteRequest) (*RewriteReport, error)
}

// RewriteRequest selects what to rewrite.
type RewriteRequest struct {
	Paths  []string
	DryRun bool
}

// FileReport is the outcome for one file.
type FileReport struct {
	Path   string
	Report declaration.Report
	Err    error
}

// RewriteReport summarizes a rewrite batch.
type RewriteReport struct {
	Files   []FileReport
	Total   declaration.Report
	Changed []string
	DryRun  bool
}

// Failed returns the file reports that carry an error.
func (r *RewriteReport) Failed() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// ScaffoldService generates layer files from stubs.
type ScaffoldService interface {
	// Make writes a new file for className in the given layer and returns its
	// path. Returns domain.ErrValidation for an invalid class name,
	// domain.ErrNotConfigured for an unconfigured layer, and a domain
	// failure wrapping domain.ErrConflict when the file already exists.
	Make(ctx context.Context, layer domain.Layer, className string) (string, error)
}

// InstallService writes the project configuration files.
type InstallService interface {
	Install(ctx context.Context, force bool) (*InstallReport, error)
}

// InstallReport lists what Install did with each file.
type InstallReport struct {
	Written []string
	Kept    []string
	// RectorSnippet is set when rector.php was kept and the rules must be
	// added by hand.
	RectorSnippet string
}

// ToolService runs the external architecture tools.
type ToolService interface {
	Check(ctx context.Context, verbose bool) (ProcessResult, error)
	Rector(ctx context.Context, dryRun, clearCache bool) (ProcessResult, error)
}
