// Package config provides configuration loading and validation for the tool.
// Configuration is layered: built-in defaults -> .cleanarch.yaml (optional)
// -> CLEANARCH_ environment variables.
//
// This is the tool's own configuration. The layer layout of the PHP project
// lives in php-clean-architecture.yaml and is read by the layerconfig adapter.
package config

import "time"

// Config holds all configuration for the tool.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Project   ProjectConfig   `koanf:"project"`
	Tools     ToolsConfig     `koanf:"tools"`
	Rewrite   RewriteConfig   `koanf:"rewrite"`
	Scaffold  ScaffoldConfig  `koanf:"scaffold"`
	Watch     WatchConfig     `koanf:"watch"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// ProjectConfig locates the PHP project.
type ProjectConfig struct {
	// ConfigFile is the layer configuration file, relative to the working
	// directory.
	ConfigFile string `koanf:"config_file"`

	// BaseFolder is the source root used by install. Empty means detect:
	// "src" when that directory exists, "app" otherwise.
	BaseFolder string `koanf:"base_folder"`
}

// ToolsConfig holds settings for the external deptrac and rector binaries.
type ToolsConfig struct {
	BinDir               string               `koanf:"bin_dir"`
	Deptrac              string               `koanf:"deptrac"`
	Rector               string               `koanf:"rector"`
	RectorRulesNamespace string               `koanf:"rector_rules_namespace"`
	Timeout              time.Duration        `koanf:"timeout"`
	RateLimit            RateLimitConfig      `koanf:"rate_limit"`
	CircuitBreaker       CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// RateLimitConfig throttles external process starts. A zero
// RunsPerSecond disables the limiter.
type RateLimitConfig struct {
	RunsPerSecond float64 `koanf:"runs_per_second"`
	Burst         int     `koanf:"burst"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RewriteConfig holds settings for the native marker interface rewrite.
type RewriteConfig struct {
	MarkerNamespace string `koanf:"marker_namespace"`
	Workers         int    `koanf:"workers"`
}

// ScaffoldConfig holds settings for make:* commands.
type ScaffoldConfig struct {
	StubsDir string `koanf:"stubs_dir"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
	RunCheck bool          `koanf:"run_check"`
}
