package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Manager(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Manager.MaxIterations != 100 {
		t.Errorf("Expected default max iterations 100, got %d", cfg.Manager.MaxIterations)
	}
}

func TestApplyDefaults_Snapshot(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Snapshot.FlushInterval != 30*time.Second {
		t.Errorf("Expected default flush interval 30s, got %v", cfg.Snapshot.FlushInterval)
	}
	if cfg.Snapshot.Path != "" {
		t.Errorf("Expected no default snapshot path when disabled, got %q", cfg.Snapshot.Path)
	}
}

func TestApplyDefaults_SnapshotPathWhenEnabled(t *testing.T) {
	cfg := &Config{Snapshot: SnapshotConfig{Enabled: true}}
	ApplyDefaults(cfg)

	if cfg.Snapshot.Path == "" {
		t.Error("Expected a default snapshot path once enabled")
	}
}

func TestApplyDefaults_MetricsPortOnlyWhenEnabled(t *testing.T) {
	disabled := &Config{}
	ApplyDefaults(disabled)
	if disabled.Metrics.Port != 0 {
		t.Errorf("Expected no default metrics port when disabled, got %d", disabled.Metrics.Port)
	}

	enabled := &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(enabled)
	if enabled.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090 when enabled, got %d", enabled.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/nexus.log",
		},
		Manager: ManagerConfig{
			MaxIterations: 10,
		},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/nexus.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.Manager.MaxIterations != 10 {
		t.Errorf("Expected explicit max iterations 10 to be preserved, got %d", cfg.Manager.MaxIterations)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.Manager.MaxIterations == 0 {
		t.Error("Default config missing max iterations")
	}
}
