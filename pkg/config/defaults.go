package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. It is called after loading configuration from file and
// environment variables to fill in missing values with sensible
// defaults.
//
// Zero values (0, "", false) are replaced with defaults; explicit values
// are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyManagerDefaults(&cfg.Manager)
	applyMetricsDefaults(&cfg.Metrics)
	applySnapshotDefaults(&cfg.Snapshot)
	applyHTTPAPIDefaults(&cfg.HTTPAPI)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyManagerDefaults sets submission pipeline defaults.
func applyManagerDefaults(cfg *ManagerConfig) {
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 100
	}
	// ReentrancyDetection has no zero-value default to apply here: it
	// defaults to true at the struct-literal level in GetDefaultConfig,
	// since the bool zero value (false) is indistinguishable from an
	// explicit opt-out.
}

// applyMetricsDefaults sets metrics server defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applySnapshotDefaults sets snapshot collaborator defaults.
func applySnapshotDefaults(cfg *SnapshotConfig) {
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.Enabled && cfg.Path == "" {
		cfg.Path = "/tmp/nexus-snapshot"
	}
}

// applyHTTPAPIDefaults sets introspection API defaults.
func applyHTTPAPIDefaults(cfg *HTTPAPIConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 8080
	}
}

// GetDefaultConfig returns a Config struct with all default values
// applied. Useful for generating sample configuration files, tests, and
// running nexusctl without an explicit config file.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Manager: ManagerConfig{
			ReentrancyDetection: true,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
