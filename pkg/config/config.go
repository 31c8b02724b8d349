package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents a nexus process's static configuration.
//
// This structure captures everything about how the default NexusManager
// runs: log output, the completion pipeline's tuning knobs, the Prometheus
// metrics server, and the Badger-backed snapshot collaborator. Dynamic
// state — registered owners, hooks, equality rules — is built in code at
// startup and has no config surface.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (NEXUS_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Manager tunes the default NexusManager's submission pipeline.
	Manager ManagerConfig `mapstructure:"manager" yaml:"manager"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Snapshot configures the Badger-backed persistence collaborator.
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`

	// HTTPAPI configures the read-only introspection HTTP server.
	HTTPAPI HTTPAPIConfig `mapstructure:"http_api" yaml:"http_api"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized
	// to uppercase).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: text, json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written.
	// Valid values: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ManagerConfig tunes the default NexusManager's submission pipeline.
type ManagerConfig struct {
	// Tolerance is the numeric closeness threshold the default float
	// equality comparer uses when deciding whether a proposed value is a
	// no-op. Zero means exact comparison.
	Tolerance float64 `mapstructure:"tolerance" validate:"gte=0" yaml:"tolerance"`

	// MaxIterations bounds the completion fixed-point search before a
	// submission is rejected as non-converging.
	// Default: 100.
	MaxIterations int `mapstructure:"max_iterations" validate:"omitempty,min=1" yaml:"max_iterations"`

	// ReentrancyDetection enables the goroutine-local guard against a
	// Complete/Validate/Invalidate callback re-entering Submit on the same
	// goroutine. Disabling it is only useful for benchmarking the guard's
	// own overhead.
	// Default: true.
	ReentrancyDetection bool `mapstructure:"reentrancy_detection" yaml:"reentrancy_detection"`
}

// MetricsConfig configures Prometheus metrics collection.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics are collected. nexusctl serve
	// serves /metrics on the HTTP API listener either way, answering 503
	// when Enabled is false.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is validated and, when Enabled, defaulted; nexusctl serve does
	// not read it and opens no separate metrics listener.
	// Default: 9090.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// SnapshotConfig configures the Badger-backed snapshot collaborator that
// persists owners' CurrentValues and restores them via a Forced submission
// at startup.
type SnapshotConfig struct {
	// Enabled controls whether snapshot restore-on-startup and
	// periodic flush-to-disk are active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the Badger database directory.
	Path string `mapstructure:"path" validate:"required_if=Enabled true" yaml:"path"`

	// FlushInterval is how often CurrentValues snapshots are written to
	// Path. Default: 30s.
	FlushInterval time.Duration `mapstructure:"flush_interval" yaml:"flush_interval"`
}

// HTTPAPIConfig configures the read-only introspection HTTP server.
type HTTPAPIConfig struct {
	// Enabled decides whether ApplyDefaults fills in Port. nexusctl serve
	// starts the HTTP API whatever its value.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port the introspection API listens on; 0 makes
	// nexusctl serve listen on an OS-chosen port.
	// Default: 8080 when Enabled.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (NEXUS_*)
//  2. Configuration file
//  3. Default values
//
// When no configuration file is found, Load returns GetDefaultConfig()
// and environment variables are not consulted.
//
// Parameters:
//   - configPath: path to config file (empty string uses default location)
//
// Returns the loaded and validated configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with user-friendly error messages when an
// explicitly specified config file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  nexusctl init\n\n"+
				"Or specify a custom config file:\n"+
				"  nexusctl <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  nexusctl init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves cfg to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: config files may record a snapshot path that is sensitive on
	// shared hosts.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// setupViper configures viper with environment variable and config file
// search settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the NEXUS_ prefix and underscores.
	// Example: NEXUS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows, so bind every key
	// explicitly to let env vars set values the config file leaves out.
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"manager.tolerance", "manager.max_iterations", "manager.reentrancy_detection",
		"metrics.enabled", "metrics.port",
		"snapshot.enabled", "snapshot.path", "snapshot.flush_interval",
		"http_api.enabled", "http_api.port",
	} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("manager.reentrancy_detection", true)

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if it exists. Returns
// (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the combined decode hook for custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings and numbers to time.Duration,
// enabling config files to use human-readable durations like "30s", "5m".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "nexus")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "nexus")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
