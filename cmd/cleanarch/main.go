// Package main is the entry point of the cleanarch command. It parses the
// command line, wires all dependencies using samber/do v2 once the global
// flags are known, and exits with the code of the command that ran.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"

	"github.com/jsamuelsen11/cleanarch/internal/adapters/cli"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/layerconfig"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/php"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/process"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/prompt"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/stubs"
	"github.com/jsamuelsen11/cleanarch/internal/adapters/watch"
	"github.com/jsamuelsen11/cleanarch/internal/app"
	"github.com/jsamuelsen11/cleanarch/internal/app/actor"
	"github.com/jsamuelsen11/cleanarch/internal/app/lifecycle"
	"github.com/jsamuelsen11/cleanarch/internal/domain/usecase"
	"github.com/jsamuelsen11/cleanarch/internal/platform/config"
	"github.com/jsamuelsen11/cleanarch/internal/platform/health"
	"github.com/jsamuelsen11/cleanarch/internal/platform/logging"
	"github.com/jsamuelsen11/cleanarch/internal/platform/telemetry"
	"github.com/jsamuelsen11/cleanarch/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	healthCheckTimeout  = 5 * time.Second
	otelShutdownTimeout = 5 * time.Second
)

// Named injector keys for the two process runners.
const (
	deptracRunner = "runner.deptrac"
	rectorRunner  = "runner.rector"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var otel *otelProviders
	build := func(ctx context.Context, opts cli.GlobalOptions) (*cli.Deps, error) {
		deps, providers, err := buildDeps(ctx, opts)
		otel = providers
		return deps, err
	}

	code := cli.Run(ctx, os.Args[1:], build, os.Stdout, os.Stderr)

	if otel != nil {
		otelCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := otel.Shutdown(otelCtx); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
		}
	}
	return code
}

func buildDeps(ctx context.Context, opts cli.GlobalOptions) (*cli.Deps, *otelProviders, error) {
	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(config.WithConfigFile(opts.ConfigFile))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	deps, err := do.Invoke[*cli.Deps](injector)
	if err != nil {
		return nil, otel, fmt.Errorf("resolving dependencies: %w", err)
	}
	return deps, otel, nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. The providers are
// nil when telemetry is disabled; metrics is then a no-op set.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{metrics: telemetry.NoopMetrics()}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

// currentActor identifies the user running the command.
func currentActor() usecase.Executor {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return usecase.Actor(u.Username)
	}
	if name := os.Getenv("USER"); name != "" {
		return usecase.Actor(name)
	}
	return nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	tools := &cfg.Tools
	deptracBin := filepath.Join(tools.BinDir, tools.Deptrac)
	rectorBin := filepath.Join(tools.BinDir, tools.Rector)

	do.Provide(injector, func(_ do.Injector) (*layerconfig.Resolver, error) {
		return layerconfig.Load(cfg.Project.ConfigFile, logger), nil
	})

	do.ProvideNamed(injector, deptracRunner, func(i do.Injector) (*process.Runner, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return process.New(tools, tools.Deptrac, metrics, logger, process.WithBinary(deptracBin)), nil
	})

	do.ProvideNamed(injector, rectorRunner, func(i do.Injector) (*process.Runner, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return process.New(tools, tools.Rector, metrics, logger, process.WithBinary(rectorBin)), nil
	})

	// The lifecycle runner: observers log and count every use case, and the
	// current user is bound as the executor of each one.
	do.Provide(injector, func(i do.Injector) (*lifecycle.Runner, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		dispatcher := lifecycle.NewDispatcher()
		dispatcher.SubscribeAll(lifecycle.LogObserver(logger))
		dispatcher.SubscribeAll(lifecycle.MetricsObserver(metrics))

		actors := actor.New()
		if executor := currentActor(); executor != nil {
			actor.ActingAs[*app.RewriteUseCase](actors, executor)
			actor.ActingAs[*app.ScaffoldUseCase](actors, executor)
			actor.ActingAs[*app.InstallUseCase](actors, executor)
		}

		return lifecycle.NewRunner(dispatcher, actors, clockwork.NewRealClock(), metrics, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (*stubs.Store, error) {
		return stubs.New(cfg.Scaffold.StubsDir), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.RewriteService, error) {
		layers := do.MustInvoke[*layerconfig.Resolver](i)
		runner := do.MustInvoke[*lifecycle.Runner](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return app.NewRewriteService(layers, php.NewParser(), runner,
			cfg.Rewrite.MarkerNamespace, cfg.Rewrite.Workers, metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ScaffoldService, error) {
		layers := do.MustInvoke[*layerconfig.Resolver](i)
		store := do.MustInvoke[*stubs.Store](i)
		runner := do.MustInvoke[*lifecycle.Runner](i)
		return app.NewScaffoldService(layers, store, runner, cfg.Rewrite.MarkerNamespace, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.InstallService, error) {
		layers := do.MustInvoke[*layerconfig.Resolver](i)
		store := do.MustInvoke[*stubs.Store](i)
		runner := do.MustInvoke[*lifecycle.Runner](i)
		return app.NewInstallService(layers, layerconfig.Renderer{}, store,
			prompt.New(os.Stdin, os.Stdout), runner,
			app.InstallOptions{
				LayerFile:      cfg.Project.ConfigFile,
				BaseFolder:     cfg.Project.BaseFolder,
				RulesNamespace: tools.RectorRulesNamespace,
			}, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ToolService, error) {
		deptrac := do.MustInvokeNamed[*process.Runner](i, deptracRunner)
		rector := do.MustInvokeNamed[*process.Runner](i, rectorRunner)
		return app.NewToolService(deptrac, rector, deptracBin, rectorBin, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*health.Registry, error) {
		registry := health.New(healthCheckTimeout)
		registry.Register(layerconfig.NewHealthCheck(do.MustInvoke[*layerconfig.Resolver](i)))
		registry.Register(do.MustInvokeNamed[*process.Runner](i, deptracRunner))
		registry.Register(do.MustInvokeNamed[*process.Runner](i, rectorRunner))
		return registry, nil
	})

	do.Provide(injector, func(i do.Injector) (*cli.Deps, error) {
		return &cli.Deps{
			Install:  do.MustInvoke[ports.InstallService](i),
			Scaffold: do.MustInvoke[ports.ScaffoldService](i),
			Rewrite:  do.MustInvoke[ports.RewriteService](i),
			Tools:    do.MustInvoke[ports.ToolService](i),
			Layers:   do.MustInvoke[*layerconfig.Resolver](i),
			Health:   do.MustInvoke[*health.Registry](i),
			Logger:   logger,
			NewWatcher: func(roots []string) (cli.Watcher, error) {
				w, err := watch.New(roots, cfg.Watch.Debounce, clockwork.NewRealClock(), logger)
				if err != nil {
					return nil, err
				}
				return w, nil
			},
			WatchRunsCheck: cfg.Watch.RunCheck,
		}, nil
	})
}
