// Package process runs the external architecture tools (deptrac, rector)
// with a circuit breaker, an optional rate limiter, a per-run timeout, and
// OpenTelemetry tracing.
//
// The runner applies processing in this order:
//
//	Circuit Breaker → Rate Limiter → OTEL Span → Timeout → exec
//
// Construction:
//
//	runner := process.New(&cfg.Tools, "deptrac", metrics, logger)
//	res, err := runner.Run(ctx, "vendor/bin/deptrac", "-v")
//
// A non-zero exit code is a result, not an error, and does not count as a
// breaker failure. Only failures to start the process trip the breaker.
package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/cleanarch/internal/platform/config"
	"github.com/jsamuelsen11/cleanarch/internal/platform/telemetry"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// ErrStart is returned when the process cannot be started.
var ErrStart = errors.New("process: failed to start")

// Compile-time checks.
var (
	_ ports.ProcessRunner = (*Runner)(nil)
	_ ports.HealthChecker = (*Runner)(nil)
)

// Runner executes external processes for one named tool.
type Runner struct {
	tool    string
	binary  string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[ports.ProcessResult]
	limiter *rate.Limiter // nil when rate limiting is disabled
	stream  io.Writer     // optional live copy of combined output
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStream copies the process output to w while it runs, in addition to
// collecting it in the result.
func WithStream(w io.Writer) Option {
	return func(r *Runner) { r.stream = w }
}

// WithBinary sets the path checked by HealthCheck.
func WithBinary(path string) Option {
	return func(r *Runner) { r.binary = path }
}

// New creates a runner for the named tool. If metrics is nil, metric
// recording is skipped.
func New(cfg *config.ToolsConfig, tool string, metrics *telemetry.Metrics, logger *slog.Logger, opts ...Option) *Runner {
	cb := gobreaker.NewCircuitBreaker[ports.ProcessResult](gobreaker.Settings{
		Name:        tool,
		MaxRequests: toUint32(cfg.CircuitBreaker.HalfOpenLimit),
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.CircuitBreaker.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	var limiter *rate.Limiter
	if cfg.RateLimit.RunsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RunsPerSecond), cfg.RateLimit.Burst)
	}

	r := &Runner{
		tool:    tool,
		timeout: cfg.Timeout,
		breaker: cb,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args and waits for it to exit.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (ports.ProcessResult, error) {
	start := time.Now()

	res, err := r.breaker.Execute(func() (ports.ProcessResult, error) {
		if err := r.waitForRateLimit(ctx); err != nil {
			return ports.ProcessResult{}, err
		}

		spanCtx, span := telemetry.Tracer().Start(ctx, "exec "+r.tool,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				telemetry.AttrTool.String(r.tool),
				attribute.String("process.command", name),
				attribute.StringSlice("process.args", args),
			),
		)
		defer span.End()

		res, err := r.exec(spanCtx, name, args)
		span.SetAttributes(attribute.Int("process.exit_code", res.ExitCode))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return res, err
	})

	r.recordMetrics(ctx, start, res, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "tool run failed",
			slog.String("operation", "process.Run"),
			slog.String("tool", r.tool),
			slog.String("command", name),
			slog.Any("error", err),
		)
		return res, fmt.Errorf("running %s: %w", r.tool, err)
	}

	r.logger.DebugContext(ctx, "tool finished",
		slog.String("operation", "process.Run"),
		slog.String("tool", r.tool),
		slog.Int("exit_code", res.ExitCode),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (r *Runner) exec(ctx context.Context, name string, args []string) (ports.ProcessResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var out bytes.Buffer
	var w io.Writer = &out
	if r.stream != nil {
		w = io.MultiWriter(&out, r.stream)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		return ports.ProcessResult{ExitCode: -1}, fmt.Errorf("%w: %s: %w", ErrStart, name, err)
	}

	err := cmd.Wait()
	res := ports.ProcessResult{ExitCode: cmd.ProcessState.ExitCode(), Output: splitLines(out.Bytes())}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return res, err
	}
	return res, nil
}

// Name returns the tool name (e.g., "deptrac").
func (r *Runner) Name() string { return r.tool }

// HealthCheck reports whether the tool binary is present and the breaker is
// closed. No process is started.
func (r *Runner) HealthCheck(_ context.Context) error {
	if r.binary != "" {
		if _, err := exec.LookPath(r.binary); err != nil {
			return fmt.Errorf("%s: binary not found at %s: %w", r.tool, r.binary, err)
		}
	}

	state := r.breaker.State()
	switch state {
	case gobreaker.StateClosed:
		return nil
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", r.tool)
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", r.tool)
	default:
		return fmt.Errorf("%s: unknown circuit breaker state %v", r.tool, state)
	}
}

// waitForRateLimit blocks until the rate limiter allows the run or the
// context is canceled. Returns nil immediately when rate limiting is disabled.
func (r *Runner) waitForRateLimit(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// recordMetrics records run duration and count. Metrics are recorded outside
// the circuit breaker so that circuit-open rejections are captured. Safe to
// call with nil metrics.
func (r *Runner) recordMetrics(ctx context.Context, start time.Time, res ports.ProcessResult, err error) {
	if r.metrics == nil {
		return
	}

	result := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "circuit_open"
	case err != nil:
		result = "error"
	case !res.Success():
		result = "violations"
	}

	attrs := metric.WithAttributes(
		telemetry.AttrTool.String(r.tool),
		telemetry.AttrResult.String(result),
	)

	r.metrics.ProcessDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	r.metrics.ProcessRuns.Add(ctx, 1, attrs)
}

func splitLines(b []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines
}

// toUint32 safely converts a non-negative int to uint32, clamping at the
// uint32 maximum. Negative values are treated as zero.
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
