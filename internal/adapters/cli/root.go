// Package cli is the cobra command tree of the cleanarch binary. Commands
// only parse flags, call a port, and print the outcome; wiring happens in
// the Builder supplied by main.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/cleanarch/internal/adapters/watch"
	"github.com/jsamuelsen11/cleanarch/internal/platform/health"
	"github.com/jsamuelsen11/cleanarch/internal/platform/logging"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// ExitError carries a process exit code out of a command. Commands that run
// an external tool return the tool's exit code this way.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Watcher is a started file watcher.
type Watcher interface {
	Run(ctx context.Context, handler watch.Handler) error
}

// HealthReporter runs the doctor checks.
type HealthReporter interface {
	Run(ctx context.Context) []health.Result
}

// Deps are the services the commands call.
type Deps struct {
	Install  ports.InstallService
	Scaffold ports.ScaffoldService
	Rewrite  ports.RewriteService
	Tools    ports.ToolService
	Layers   ports.LayerResolver
	Health   HealthReporter
	Logger   *slog.Logger

	// NewWatcher starts watching roots.
	NewWatcher func(roots []string) (Watcher, error)

	// WatchRunsCheck is the default of the watch --check flag.
	WatchRunsCheck bool
}

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string
}

// Builder creates the dependencies once the global flags are parsed.
type Builder func(ctx context.Context, opts GlobalOptions) (*Deps, error)

// app holds the lazily built dependencies of one invocation.
type app struct {
	build Builder
	opts  GlobalOptions
	deps  *Deps
}

// load builds the dependencies on first use and stores the command logger
// in the command context.
func (a *app) load(cmd *cobra.Command) (*Deps, error) {
	if a.deps == nil {
		deps, err := a.build(cmd.Context(), a.opts)
		if err != nil {
			return nil, err
		}
		a.deps = deps
	}
	if a.deps.Logger != nil {
		logger := a.deps.Logger.With(slog.String("command", cmd.Name()))
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	}
	return a.deps, nil
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, build Builder, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(build)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

// NewRootCmd builds the full command tree.
func NewRootCmd(build Builder) *cobra.Command {
	a := &app{build: build}

	cmd := &cobra.Command{
		Use:           "cleanarch",
		Short:         "Enforce and scaffold a layered PHP architecture",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&a.opts.ConfigFile, "config", "", "tool configuration file (default .cleanarch.yaml)")
	cmd.PersistentFlags().StringVar(&a.opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		installCmd(a),
		checkCmd(a),
		rectorCmd(a),
		rewriteCmd(a),
		watchCmd(a),
		doctorCmd(a),
	)
	for _, c := range makeCmds(a) {
		cmd.AddCommand(c)
	}

	return cmd
}

// printLines writes tool output line by line.
func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// exitCode converts a tool result into a command error.
func exitCode(res ports.ProcessResult) error {
	if res.Success() {
		return nil
	}
	return &ExitError{Code: res.ExitCode}
}
