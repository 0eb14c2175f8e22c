// Package config provides configuration types, defaults, validation and
// persistence for recents.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/recents/internal/log"
	"github.com/zjrosen/recents/internal/paths"
	"github.com/zjrosen/recents/internal/tracing"
)

// Config holds all configuration options for recents.
type Config struct {
	// DataDir holds recent_files.json. Empty means the platform default
	// (see paths.ResolveDataDir).
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// PersistCleanup makes `list` write the registry back when stale
	// entries were dropped during load. Mutating commands always persist
	// the cleaned registry.
	PersistCleanup bool `mapstructure:"persist_cleanup" yaml:"persist_cleanup"`

	// Debug enables the debug log.
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// LogFile is the debug log path. Empty means <data_dir>/debug.log.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// LogLevel is the minimum level written: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// TracingConfig holds OpenTelemetry tracing options.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled" yaml:"enabled"`
	Exporter     string  `mapstructure:"exporter" yaml:"exporter"`           // "none", "file", "stdout", "otlp"
	FilePath     string  `mapstructure:"file_path" yaml:"file_path"`         // default: <data_dir>/traces/traces.jsonl
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"` // default: localhost:4317
	SampleRate   float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// Provider converts the config into a tracing.Config, filling the trace
// file path from dataDir when unset.
func (t TracingConfig) Provider(dataDir string) tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = t.Enabled
	if t.Exporter != "" {
		cfg.Exporter = t.Exporter
	}
	cfg.FilePath = t.FilePath
	if cfg.FilePath == "" && dataDir != "" {
		cfg.FilePath = paths.TracesPath(dataDir)
	}
	if t.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = t.OTLPEndpoint
	}
	if t.SampleRate > 0 {
		cfg.SampleRate = t.SampleRate
	}
	return cfg
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir:        "",
		PersistCleanup: false,
		Debug:          false,
		LogFile:        "",
		LogLevel:       "debug",
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     tracing.ExporterFile,
			FilePath:     "",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// EnvPrefix is the prefix for environment overrides (RECENTS_DATA_DIR, ...).
const EnvPrefix = "RECENTS"

// SetDefaults registers Defaults() and env bindings on v.
func SetDefaults(v *viper.Viper) {
	setDefaultValues(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaultValues(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("persist_cleanup", d.PersistCleanup)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Load reads configPath (if it exists) into v and unmarshals the result.
// A missing file is not an error; a malformed one is.
func Load(v *viper.Viper, configPath string) (Config, error) {
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !isNotFound(err) {
				log.ErrorErr(log.CatConfig, "Failed to read config", err, "path", configPath)
				return Config{}, fmt.Errorf("reading config %s: %w", configPath, err)
			}
			log.Debug(log.CatConfig, "No config file, using defaults", "path", configPath)
		} else {
			log.Debug(log.CatConfig, "Loaded config", "path", configPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Validate checks option values.
func Validate(c Config) error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTracing checks tracing options.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	switch t.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}

	if t.Enabled && t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as commented YAML.
func DefaultConfigTemplate() string {
	return `# recents configuration

# Directory holding recent_files.json.
# Default: $RECENTS_DATA_DIR, else <user config dir>/recents
# data_dir: ~/.local/share/recents

# Write the registry back when 'list' drops entries whose files are gone.
# Mutating commands (add, remove, open, save, prune) always persist.
persist_cleanup: false

# Debug logging (also enabled by --debug or RECENTS_DEBUG=1)
debug: false
# log_file: /tmp/recents-debug.log   # default: <data_dir>/debug.log
log_level: debug

# OpenTelemetry tracing
tracing:
  enabled: false
  exporter: file            # none, file, stdout, otlp
  # file_path: /tmp/traces.jsonl   # default: <data_dir>/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig writes DefaultConfigTemplate to configPath, creating
// parent directories. An existing file is left alone.
func WriteDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}

	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
