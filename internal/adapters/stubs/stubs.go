// Package stubs renders the file templates used by scaffolding and install.
//
// Templates are embedded in the binary. A project may override any of them
// by placing a file with the same name (e.g. entity.stub) in its stubs
// directory.
package stubs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Stub names understood by Store.Render besides the per-layer stubs named by
// domain.Layer.StubName.
const (
	RectorConfig = "rector.php"
	RectorRule   = "rector_rule"
)

const extension = ".stub"

//go:embed templates/*.stub
var embedded embed.FS

// Compile-time check that Store implements ports.StubStore.
var _ ports.StubStore = (*Store)(nil)

// Store looks templates up in the override directory first, then in the
// embedded set.
type Store struct {
	override fs.FS
	builtin  fs.FS
}

// New creates a Store. An empty overrideDir disables overrides.
func New(overrideDir string) *Store {
	builtin, err := fs.Sub(embedded, "templates")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}

	s := &Store{builtin: builtin}
	if overrideDir != "" {
		s.override = os.DirFS(overrideDir)
	}
	return s
}

// Render implements ports.StubStore.
func (s *Store) Render(name string, vars map[string]string) ([]byte, error) {
	tmpl, err := s.load(name)
	if err != nil {
		return nil, err
	}

	out, err := RenderString(string(tmpl), vars)
	if err != nil {
		return nil, fmt.Errorf("rendering stub %s: %w", name, err)
	}
	return []byte(out), nil
}

func (s *Store) load(name string) ([]byte, error) {
	file := name + extension
	if !fs.ValidPath(file) {
		return nil, fmt.Errorf("stub %q: %w", name, domain.ErrValidation)
	}

	if s.override != nil {
		data, err := fs.ReadFile(s.override, file)
		switch {
		case err == nil:
			return data, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("reading stub override %s: %w", file, err)
		}
	}

	data, err := fs.ReadFile(s.builtin, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stub %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading stub %s: %w", file, err)
	}
	return data, nil
}
