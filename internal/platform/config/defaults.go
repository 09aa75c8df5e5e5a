package config

const (
	defaultWorkers = 4

	defaultCircuitBreakerMaxFailures = 3
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by the config file and env vars.
func defaults() map[string]any {
	return map[string]any{
		"log.level":  "warn",
		"log.format": "text",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "cleanarch",

		"project.config_file": "php-clean-architecture.yaml",
		"project.base_folder": "",

		"tools.bin_dir":                         "vendor/bin",
		"tools.deptrac":                         "deptrac",
		"tools.rector":                          "rector",
		"tools.rector_rules_namespace":          `CleanArchitecture\Rector\Rules`,
		"tools.timeout":                         "10m",
		"tools.rate_limit.runs_per_second":      0,
		"tools.rate_limit.burst":                1,
		"tools.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"tools.circuit_breaker.timeout":         "30s",
		"tools.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"rewrite.marker_namespace": `CleanArchitecture\Contracts`,
		"rewrite.workers":          defaultWorkers,

		"scaffold.stubs_dir": "",

		"watch.debounce":  "300ms",
		"watch.run_check": false,
	}
}
