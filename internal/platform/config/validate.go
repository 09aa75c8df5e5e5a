package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Log.validate(),
		c.Telemetry.validate(),
		c.Project.validate(),
		c.Tools.validate(),
		c.Rewrite.validate(),
		c.Watch.validate(),
	)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}

func (p *ProjectConfig) validate() error {
	var errs []error

	if strings.TrimSpace(p.ConfigFile) == "" {
		errs = append(errs, errors.New("project.config_file must not be empty"))
	}
	if strings.Contains(p.BaseFolder, "..") {
		errs = append(errs, fmt.Errorf("project.base_folder must not contain path traversal, got %q", p.BaseFolder))
	}

	return errors.Join(errs...)
}

func (t *ToolsConfig) validate() error {
	var errs []error

	if t.Deptrac == "" {
		errs = append(errs, errors.New("tools.deptrac must not be empty"))
	}
	if t.Rector == "" {
		errs = append(errs, errors.New("tools.rector must not be empty"))
	}
	if t.Timeout <= 0 {
		errs = append(errs, errors.New("tools.timeout must be positive"))
	}
	if t.RateLimit.RunsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("tools.rate_limit.runs_per_second must be >= 0, got %f", t.RateLimit.RunsPerSecond))
	}
	if t.RateLimit.RunsPerSecond > 0 && t.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("tools.rate_limit.burst must be >= 1, got %d", t.RateLimit.Burst))
	}
	if t.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("tools.circuit_breaker.max_failures must be >= 1, got %d",
			t.CircuitBreaker.MaxFailures))
	}

	return errors.Join(errs...)
}

func (r *RewriteConfig) validate() error {
	var errs []error

	ns := r.MarkerNamespace
	if strings.Trim(ns, `\`) == "" {
		errs = append(errs, errors.New("rewrite.marker_namespace must not be empty"))
	} else if strings.HasSuffix(ns, `\`) || strings.Contains(ns, `\\`) {
		errs = append(errs, fmt.Errorf("rewrite.marker_namespace has an empty segment: %q", ns))
	}
	if r.Workers < 1 {
		errs = append(errs, fmt.Errorf("rewrite.workers must be >= 1, got %d", r.Workers))
	}

	return errors.Join(errs...)
}

func (w *WatchConfig) validate() error {
	if w.Debounce <= 0 {
		return errors.New("watch.debounce must be positive")
	}
	return nil
}
