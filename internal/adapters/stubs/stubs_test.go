package stubs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/cleanarch/internal/adapters/stubs"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

func layerVars() map[string]string {
	return map[string]string{
		"namespace":       `App\Entities`,
		"className":       "Order",
		"markerInterface": `CleanArchitecture\Contracts\EntityInterface`,
		"markerShortName": "EntityInterface",
	}
}

func TestRenderString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		vars    map[string]string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", want: ""},
		{name: "no placeholders", input: "plain", want: "plain"},
		{name: "trims key", input: "a {{ name }} b", vars: map[string]string{"name": "x"}, want: "a x b"},
		{name: "repeated", input: "{{n}}{{n}}", vars: map[string]string{"n": "1"}, want: "11"},
		{name: "missing", input: "{{nope}}", wantErr: true},
		{name: "unclosed", input: "{{open", vars: map[string]string{"open": "x"}, wantErr: true},
		{name: "empty expression", input: "{{  }}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := stubs.RenderString(tt.input, tt.vars)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_RendersEveryLayerStub(t *testing.T) {
	t.Parallel()

	store := stubs.New("")
	for _, layer := range domain.Layers() {
		out, err := store.Render(layer.StubName(), layerVars())
		require.NoError(t, err, "layer %s", layer)

		body := string(out)
		assert.Contains(t, body, `namespace App\Entities;`)
		assert.Contains(t, body, `use CleanArchitecture\Contracts\EntityInterface;`)
		assert.Contains(t, body, "final class Order implements EntityInterface")
		assert.NotContains(t, body, "{{")
	}
}

func TestStore_OverrideWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entity.stub"), []byte("custom {{className}}"), 0o644))

	store := stubs.New(dir)

	out, err := store.Render("entity", layerVars())
	require.NoError(t, err)
	assert.Equal(t, "custom Order", string(out))

	out, err = store.Render("service", layerVars())
	require.NoError(t, err)
	assert.Contains(t, string(out), "final class Order", "non-overridden stubs fall back to the embedded set")
}

func TestStore_UnknownStub(t *testing.T) {
	t.Parallel()

	_, err := stubs.New("").Render("gateway", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = stubs.New("").Render("../etc/passwd", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_MissingVariable(t *testing.T) {
	t.Parallel()

	_, err := stubs.New("").Render("entity", map[string]string{"namespace": "App"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_RectorStubs(t *testing.T) {
	t.Parallel()

	store := stubs.New("")

	rule, err := store.Render(stubs.RectorRule, map[string]string{
		"ruleClass":       `CleanArchitecture\Rector\Rules\AddEntityInterfaceRector`,
		"targetNamespace": `App\Entities`,
	})
	require.NoError(t, err)
	assert.Contains(t, string(rule), `\CleanArchitecture\Rector\Rules\AddEntityInterfaceRector::class`)

	cfg, err := store.Render(stubs.RectorConfig, map[string]string{"basePath": "src", "rules": string(rule)})
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "__DIR__ . '/src'")
	assert.Contains(t, string(cfg), "'App\\Entities'")
}
