package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_MissingLogOutput(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Output = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for missing log output")
	}
}

func TestValidate_MetricsPortOutOfRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for metrics port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_NegativeTolerance(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Manager.Tolerance = -0.5

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for negative tolerance")
	}
}

func TestValidate_SnapshotEnabledWithoutPath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Snapshot.Enabled = true
	cfg.Snapshot.Path = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for snapshot enabled without a path")
	}
}

func TestValidate_HTTPAPIPortOutOfRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.HTTPAPI.Enabled = true
	cfg.HTTPAPI.Port = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for negative HTTP API port")
	}
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}
		// Validate should not normalize; that is ApplyDefaults's job.
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}
