package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/cleanarch/internal/adapters/cli"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/layerconfig"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/watch"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/domain/declaration"
	"github.com/jsamuelsen11/cleanarch/internal/platform/health"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// --- fakes ---

type fakeTools struct {
	res       ports.ProcessResult
	err       error
	calls     []string
	lastFlags []bool
}

func (f *fakeTools) Check(_ context.Context, verbose bool) (ports.ProcessResult, error) {
	f.calls = append(f.calls, "check")
	f.lastFlags = []bool{verbose}
	return f.res, f.err
}

func (f *fakeTools) Rector(_ context.Context, dryRun, clearCache bool) (ports.ProcessResult, error) {
	f.calls = append(f.calls, "rector")
	f.lastFlags = []bool{dryRun, clearCache}
	return f.res, f.err
}

type fakeScaffold struct {
	layer domain.Layer
	name  string
	err   error
}

func (f *fakeScaffold) Make(_ context.Context, layer domain.Layer, className string) (string, error) {
	f.layer, f.name = layer, className
	if f.err != nil {
		return "", f.err
	}
	return "src/" + layer.Title() + "/" + className + ".php", nil
}

type fakeInstall struct {
	force  bool
	report *ports.InstallReport
}

func (f *fakeInstall) Install(_ context.Context, force bool) (*ports.InstallReport, error) {
	f.force = force
	return f.report, nil
}

type fakeRewrite struct {
	reqs   []ports.RewriteRequest
	report *ports.RewriteReport
}

func (f *fakeRewrite) Rewrite(_ context.Context, req ports.RewriteRequest) (*ports.RewriteReport, error) {
	f.reqs = append(f.reqs, req)
	r := *f.report
	r.DryRun = req.DryRun
	return &r, nil
}

type fakeHealth []health.Result

func (f fakeHealth) Run(context.Context) []health.Result { return f }

// fakeWatcher delivers one batch and returns.
type fakeWatcher struct {
	roots []string
	batch []string
}

func (f *fakeWatcher) Run(ctx context.Context, handler watch.Handler) error {
	return handler(ctx, f.batch)
}

// --- harness ---

func run(t *testing.T, deps *cli.Deps, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	build := func(context.Context, cli.GlobalOptions) (*cli.Deps, error) { return deps, nil }
	code := cli.Run(context.Background(), args, build, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// --- check / rector ---

func TestCheck_PropagatesExitCode(t *testing.T) {
	tools := &fakeTools{res: ports.ProcessResult{ExitCode: 3, Output: []string{"Violations: 2"}}}

	code, out, _ := run(t, &cli.Deps{Tools: tools}, "check", "-v")

	assert.Equal(t, 3, code)
	assert.Equal(t, "Violations: 2\n", out)
	assert.Equal(t, []bool{true}, tools.lastFlags)
}

func TestCheck_StartFailure(t *testing.T) {
	tools := &fakeTools{err: errors.New("deptrac: binary not found")}

	code, _, errOut := run(t, &cli.Deps{Tools: tools}, "check")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "binary not found")
}

func TestRector_Flags(t *testing.T) {
	tools := &fakeTools{}

	code, out, _ := run(t, &cli.Deps{Tools: tools}, "rector", "--dry-run", "--clear-cache")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Applying rector rules...")
	assert.Equal(t, []bool{true, true}, tools.lastFlags)
}

// --- make ---

func TestMake_Commands(t *testing.T) {
	tests := []struct {
		command string
		layer   domain.Layer
		label   string
	}{
		{"make:entity", domain.LayerEntities, "Entity"},
		{"make:repository", domain.LayerRepositories, "Repository"},
		{"make:use-case", domain.LayerUseCases, "Use case"},
		{"make:controller", domain.LayerControllers, "Controller"},
		{"make:service", domain.LayerServices, "Service"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			scaffold := &fakeScaffold{}

			code, out, _ := run(t, &cli.Deps{Scaffold: scaffold}, tt.command, "Order")

			require.Equal(t, 0, code)
			assert.Equal(t, tt.layer, scaffold.layer)
			assert.Equal(t, "Order", scaffold.name)
			assert.Equal(t, fmt.Sprintf("%s created: src/%s/Order.php\n", tt.label, tt.layer.Title()), out)
		})
	}
}

func TestMake_RequiresName(t *testing.T) {
	code, _, errOut := run(t, &cli.Deps{Scaffold: &fakeScaffold{}}, "make:entity")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "specify the Entity name")
}

func TestMake_Conflict(t *testing.T) {
	scaffold := &fakeScaffold{err: domain.WrapDomainFailure("write src/Entities/Order.php", domain.ErrConflict)}

	code, _, errOut := run(t, &cli.Deps{Scaffold: scaffold}, "make:entity", "Order")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "conflict")
}

// --- install ---

func TestInstall_PrintsSnippetForKeptRector(t *testing.T) {
	install := &fakeInstall{report: &ports.InstallReport{
		Written:       []string{"deptrac.yaml"},
		Kept:          []string{"rector.php"},
		RectorSnippet: "    ->withConfiguredRule(...)",
	}}

	code, out, _ := run(t, &cli.Deps{Install: install}, "install", "--force")

	assert.Equal(t, 0, code)
	assert.True(t, install.force)
	assert.Contains(t, out, "Wrote deptrac.yaml")
	assert.Contains(t, out, "rector.php was not overwritten.")
	assert.Contains(t, out, "->withConfiguredRule(...)")
	assert.Contains(t, out, "Done!")
}

// --- rewrite ---

func TestRewrite_ReportsAndFailsOnBrokenFiles(t *testing.T) {
	rewrite := &fakeRewrite{report: &ports.RewriteReport{
		Files: []ports.FileReport{
			{Path: "src/Entities/Order.php", Report: declaration.Report{Modified: 1}},
			{Path: "src/Entities/Broken.php", Err: errors.New("syntax error")},
		},
		Total:   declaration.Report{Modified: 1},
		Changed: []string{"src/Entities/Order.php"},
	}}

	code, out, _ := run(t, &cli.Deps{Rewrite: rewrite}, "rewrite", "--dry-run", "src/Entities")

	assert.Equal(t, 1, code)
	assert.Equal(t, []ports.RewriteRequest{{Paths: []string{"src/Entities"}, DryRun: true}}, rewrite.reqs)
	assert.Contains(t, out, "would tag src/Entities/Order.php (1)")
	assert.Contains(t, out, "skipped src/Entities/Broken.php: syntax error")
	assert.Contains(t, out, "1 classes would tag in 1 files")
}

// --- watch ---

func TestWatch_RewritesBatchAndRunsCheck(t *testing.T) {
	watcher := &fakeWatcher{batch: []string{"src/Entities/Order.php"}}
	rewrite := &fakeRewrite{report: &ports.RewriteReport{}}
	tools := &fakeTools{res: ports.ProcessResult{Output: []string{"No violations"}}}

	deps := &cli.Deps{
		Rewrite: rewrite,
		Tools:   tools,
		Layers: layerconfig.New(
			domain.LayerSpec{Layer: domain.LayerEntities, Path: "src/Entities", Namespace: `App\Entities`},
		),
		NewWatcher: func(roots []string) (cli.Watcher, error) {
			watcher.roots = roots
			return watcher, nil
		},
		WatchRunsCheck: true,
	}

	code, out, _ := run(t, deps, "watch")

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"src/Entities"}, watcher.roots)
	assert.Equal(t, []ports.RewriteRequest{{Paths: []string{"src/Entities/Order.php"}}}, rewrite.reqs)
	assert.Equal(t, []string{"check"}, tools.calls)
	assert.Contains(t, out, "No violations")
}

func TestWatch_CheckFlagOverridesConfig(t *testing.T) {
	tools := &fakeTools{}
	deps := &cli.Deps{
		Rewrite: &fakeRewrite{report: &ports.RewriteReport{}},
		Tools:   tools,
		Layers: layerconfig.New(
			domain.LayerSpec{Layer: domain.LayerEntities, Path: "src/Entities", Namespace: `App\Entities`},
		),
		NewWatcher: func([]string) (cli.Watcher, error) {
			return &fakeWatcher{batch: []string{"src/Entities/Order.php"}}, nil
		},
		WatchRunsCheck: true,
	}

	code, _, _ := run(t, deps, "watch", "--check=false")

	assert.Equal(t, 0, code)
	assert.Empty(t, tools.calls)
}

func TestWatch_NothingConfigured(t *testing.T) {
	deps := &cli.Deps{Layers: layerconfig.New()}

	code, _, errOut := run(t, deps, "watch")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not configured")
}

// --- doctor ---

func TestDoctor(t *testing.T) {
	deps := &cli.Deps{Health: fakeHealth{
		{Name: "layer-config"},
		{Name: "deptrac", Err: errors.New("binary not found at vendor/bin/deptrac")},
	}}

	code, out, _ := run(t, deps, "doctor")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "ok    layer-config")
	assert.Contains(t, out, "FAIL  deptrac: binary not found at vendor/bin/deptrac")
}

// --- root ---

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := run(t, &cli.Deps{}, "deploy")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown command")
}

func TestBuilderError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	build := func(context.Context, cli.GlobalOptions) (*cli.Deps, error) {
		return nil, errors.New("validating config: log.level")
	}

	code := cli.Run(context.Background(), []string{"doctor"}, build, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "validating config")
}

func TestGlobalFlagsReachBuilder(t *testing.T) {
	var got cli.GlobalOptions
	build := func(_ context.Context, opts cli.GlobalOptions) (*cli.Deps, error) {
		got = opts
		return &cli.Deps{Health: fakeHealth{}}, nil
	}

	code := cli.Run(context.Background(), []string{"--config", "ci.yaml", "--log-level", "debug", "doctor"},
		build, &bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, 0, code)
	assert.Equal(t, cli.GlobalOptions{ConfigFile: "ci.yaml", LogLevel: "debug"}, got)
}
