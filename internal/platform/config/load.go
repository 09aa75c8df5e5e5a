package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "CLEANARCH_"
	defaultConfigFile = ".cleanarch.yaml"
)

// Option configures the Load function.
type Option func(*loadOptions)

type loadOptions struct {
	configFile string
	required   bool
}

// WithConfigFile sets the tool configuration file. An explicitly set file
// must exist; the default .cleanarch.yaml is optional.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		if path == "" {
			return
		}
		o.configFile = path
		o.required = true
	}
}

// Load reads configuration using a 3-layer hierarchy (highest precedence last):
//
//  1. Built-in defaults
//  2. Config file (.cleanarch.yaml in the working directory, if present)
//  3. Environment variables (CLEANARCH_ prefix)
//
// Environment variable mapping uses key matching against known config keys
// to resolve ambiguity between nesting separators and field-internal underscores:
//
//	CLEANARCH_LOG_LEVEL                    -> log.level
//	CLEANARCH_REWRITE_MARKER_NAMESPACE     -> rewrite.marker_namespace
//	CLEANARCH_TOOLS_CIRCUIT_BREAKER_TIMEOUT -> tools.circuit_breaker.timeout
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{configFile: defaultConfigFile}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	// Layer 1: Defaults.
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Layer 2: Config file.
	if err := loadFile(k, o); err != nil {
		return nil, err
	}

	// Layer 3: Environment variables with CLEANARCH_ prefix.
	// Build a reverse lookup from known koanf keys so that env vars like
	// CLEANARCH_WATCH_RUN_CHECK correctly resolve to "watch.run_check"
	// instead of being ambiguously split as "watch.run.check".
	envLookup := buildEnvLookup(k.Keys())

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			key = strings.ToLower(key)

			if koanfKey, ok := envLookup[key]; ok {
				return koanfKey, value
			}

			// Fallback: simple underscore-to-dot replacement.
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func loadFile(k *koanf.Koanf, o *loadOptions) error {
	if _, err := os.Stat(o.configFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !o.required {
			return nil
		}
		return fmt.Errorf("loading config %s: %w", o.configFile, err)
	}

	if err := k.Load(file.Provider(o.configFile), yaml.Parser()); err != nil {
		return fmt.Errorf("loading config %s: %w", o.configFile, err)
	}
	return nil
}

// buildEnvLookup creates a reverse mapping from env-style keys to koanf dotted keys.
// For each koanf key like "watch.run_check", the env form "watch_run_check"
// is computed by replacing dots with underscores. This allows unambiguous matching
// when an env var arrives (e.g. CLEANARCH_WATCH_RUN_CHECK -> "watch.run_check").
func buildEnvLookup(keys []string) map[string]string {
	lookup := make(map[string]string, len(keys))
	for _, key := range keys {
		envKey := strings.ReplaceAll(key, ".", "_")
		lookup[envKey] = key
	}
	return lookup
}
