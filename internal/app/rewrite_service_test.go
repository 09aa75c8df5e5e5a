package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/cleanarch/internal/adapters/layerconfig"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/php"
	"github.com/jsamuelsen11/cleanarch/internal/app"
	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/platform/logging"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

const orderSource = `<?php

namespace App\Entities;

final class Order
{
}
`

const orderTagged = `<?php

namespace App\Entities;

final class Order implements \CleanArchitecture\Contracts\EntityInterface
{
}
`

const mailerSource = `<?php

namespace App\Services;

use CleanArchitecture\Contracts\ServiceInterface;

class Mailer implements ServiceInterface
{
}
`

func newRewriteService(layers *layerconfig.Resolver) (*app.RewriteService, *recorder) {
	runner, rec := newRunner()
	svc := app.NewRewriteService(layers, php.NewParser(), runner, markerNamespace, 2, nil, logging.Discard())
	return svc, rec
}

func TestRewrite_TagsLayerClasses(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "src/Entities/Order.php", orderSource)
	writeFile(t, "src/Services/Mailer.php", mailerSource)
	writeFile(t, "src/Entities/README.md", "not php")

	svc, rec := newRewriteService(projectLayers())

	report, err := svc.Rewrite(context.Background(), ports.RewriteRequest{})
	require.NoError(t, err)

	assert.Len(t, report.Files, 2)
	assert.Empty(t, report.Failed())
	assert.Equal(t, []string{"src/Entities/Order.php"}, report.Changed)
	assert.Equal(t, 1, report.Total.Modified)
	assert.Equal(t, 1, report.Total.Unchanged)

	assert.Equal(t, orderTagged, readFile(t, "src/Entities/Order.php"))
	assert.Equal(t, mailerSource, readFile(t, "src/Services/Mailer.php"), "already tagged class must be left alone")

	assert.Equal(t, []string{"rewrite:started", "rewrite:completed"}, rec.snapshot())
}

func TestRewrite_IsIdempotent(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "src/Entities/Order.php", orderSource)

	svc, _ := newRewriteService(projectLayers())

	_, err := svc.Rewrite(context.Background(), ports.RewriteRequest{})
	require.NoError(t, err)
	second, err := svc.Rewrite(context.Background(), ports.RewriteRequest{})
	require.NoError(t, err)

	assert.Empty(t, second.Changed)
	assert.Equal(t, orderTagged, readFile(t, "src/Entities/Order.php"))
}

func TestRewrite_DryRunLeavesFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "src/Entities/Order.php", orderSource)

	svc, _ := newRewriteService(projectLayers())

	report, err := svc.Rewrite(context.Background(), ports.RewriteRequest{DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, []string{"src/Entities/Order.php"}, report.Changed)
	assert.Equal(t, orderSource, readFile(t, "src/Entities/Order.php"))
}

func TestRewrite_ParseFailureDoesNotAbortBatch(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "src/Entities/Broken.php", "<?php\nclass {\n")
	writeFile(t, "src/Entities/Order.php", orderSource)

	svc, _ := newRewriteService(projectLayers())

	report, err := svc.Rewrite(context.Background(), ports.RewriteRequest{})
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "src/Entities/Broken.php", failed[0].Path)
	assert.ErrorIs(t, failed[0].Err, php.ErrSyntax)
	assert.Equal(t, orderTagged, readFile(t, "src/Entities/Order.php"))
}

func TestRewrite_ExplicitPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "src/Entities/Order.php", orderSource)
	writeFile(t, "src/Entities/Invoice.php", "<?php\nnamespace App\\Entities;\nclass Invoice {}\n")

	svc, _ := newRewriteService(projectLayers())

	report, err := svc.Rewrite(context.Background(), ports.RewriteRequest{
		Paths: []string{"src/Entities/Order.php", "src/Entities/Order.php"},
	})
	require.NoError(t, err)

	assert.Len(t, report.Files, 1, "duplicate paths are collapsed")
	assert.Equal(t, "<?php\nnamespace App\\Entities;\nclass Invoice {}\n", readFile(t, "src/Entities/Invoice.php"))
}

func TestRewrite_MissingExplicitPath(t *testing.T) {
	t.Chdir(t.TempDir())

	svc, _ := newRewriteService(projectLayers())

	_, err := svc.Rewrite(context.Background(), ports.RewriteRequest{Paths: []string{"nowhere"}})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRewrite_MissingLayerDirectoryIsSkipped(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "src/Entities/Order.php", orderSource)

	svc, _ := newRewriteService(projectLayers())

	report, err := svc.Rewrite(context.Background(), ports.RewriteRequest{})
	require.NoError(t, err)
	assert.Len(t, report.Files, 1)
}

func TestRewrite_NothingConfigured(t *testing.T) {
	t.Chdir(t.TempDir())

	svc, rec := newRewriteService(layerconfig.New())

	_, err := svc.Rewrite(context.Background(), ports.RewriteRequest{})

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, rec.snapshot())
}
