package app_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/cleanarch/internal/adapters/layerconfig"
	"github.com/jsamuelsen11/cleanarch/internal/app/lifecycle"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/usecase"
	"github.com/jsamuelsen11/cleanarch/internal/platform/logging"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

const markerNamespace = `CleanArchitecture\Contracts`

// --- mocks ---

type mockProcessRunner struct {
	mock.Mock
}

func (m *mockProcessRunner) Run(ctx context.Context, name string, args ...string) (ports.ProcessResult, error) {
	ret := m.Called(ctx, name, args)
	return ret.Get(0).(ports.ProcessResult), ret.Error(1)
}

type mockPrompter struct {
	mock.Mock
}

func (m *mockPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	ret := m.Called(ctx, question)
	return ret.Bool(0), ret.Error(1)
}

// --- lifecycle recorder ---

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) observe(_ context.Context, e usecase.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.UseCase.Name()+":"+e.Kind.String())
	return nil
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newRunner() (*lifecycle.Runner, *recorder) {
	rec := &recorder{}
	runner := lifecycle.NewRunner(nil, nil, nil, nil, logging.Discard())
	runner.Dispatcher().SubscribeAll(rec.observe)
	return runner, rec
}

// --- filesystem fixtures ---

func projectLayers() *layerconfig.Resolver {
	return layerconfig.New(
		domain.LayerSpec{Layer: domain.LayerEntities, Path: "src/Entities", Namespace: `App\Entities`},
		domain.LayerSpec{Layer: domain.LayerServices, Path: "src/Services", Namespace: `App\Services`},
	)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
