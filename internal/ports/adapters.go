package ports

import (
	"context"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
)

// LayerResolver answers where each architectural layer lives.
// Implemented by the layerconfig adapter; read-only and safe for concurrent use.
type LayerResolver interface {
	// Resolve returns the path and namespace of one layer. Unconfigured
	// layers come back with empty Path and Namespace, never an error.
	Resolve(layer domain.Layer) domain.LayerSpec

	// All returns every layer in canonical order.
	All() []domain.LayerSpec
}

// SourceFile is one parsed PHP file. Declarations are mutated in place by
// rules; Render produces the source with those mutations applied.
type SourceFile interface {
	Path() string
	Declarations() []declaration.Node
	Changed() bool
	Render() []byte
}

// DeclarationParser turns PHP source into declaration nodes.
type DeclarationParser interface {
	Parse(ctx context.Context, path string, src []byte) (SourceFile, error)
}

// ProcessResult is the outcome of a finished external process.
type ProcessResult struct {
	ExitCode int
	Output   []string
}

// Success reports whether the process exited with code 0.
func (r ProcessResult) Success() bool { return r.ExitCode == 0 }

// ProcessRunner executes external tools. A non-zero exit code is reported in
// the result; only a failure to start (or a tripped breaker, or an exceeded
// deadline) is returned as an error.
type ProcessRunner interface {
	Run(ctx context.Context, name string, args ...string) (ProcessResult, error)
}

// StubStore renders named file templates.
type StubStore interface {
	// Render fills the named stub with vars. Returns domain.ErrNotFound for
	// an unknown stub and domain.ErrValidation for a malformed or
	// unresolvable placeholder.
	Render(name string, vars map[string]string) ([]byte, error)
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfigRenderer produces the contents of the project configuration files
// written by install.
type ConfigRenderer interface {
	// Defaults returns the layer specs for a project rooted at baseFolder.
	Defaults(baseFolder string) []domain.LayerSpec

	// LayerConfig encodes specs in the php-clean-architecture.yaml format.
	LayerConfig(specs []domain.LayerSpec) ([]byte, error)

	// Deptrac encodes a deptrac.yaml analysing basePath with one directory
	// collector per configured layer and the layered ruleset.
	Deptrac(basePath string, specs []domain.LayerSpec) ([]byte, error)
}
