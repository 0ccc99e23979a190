package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/viant/sqlitekit/database"
	"github.com/viant/sqlitekit/engine"
)

// Config is the root configuration. It is loaded from YAML and can be
// overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig contains connection settings.
type DatabaseConfig struct {
	// Path is a file path, a file: URI or ":memory:".
	Path string `yaml:"path"`

	// Mode is one of "ro", "rw" or "rwc". Default: "rwc"
	Mode string `yaml:"mode"`

	// Key is the encryption key, ignored by engine builds without
	// encryption.
	Key string `yaml:"key"`

	// BusyTimeoutMS is how long a statement waits on a lock, in
	// milliseconds. Default: 100
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`

	// Functions installs the bundled SQL functions on open.
	Functions bool `yaml:"functions"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns a Config with defaults applied.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          ":memory:",
			Mode:          engine.DefaultFlags.String(),
			BusyTimeoutMS: database.DefaultBusyTimeout,
			Functions:     true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads configuration in three layers: defaults, the YAML file at path
// (skipped when path is empty), then environment variables named
// SQLITEKIT_SECTION_KEY, e.g. SQLITEKIT_DATABASE_PATH.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SQLITEKIT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SQLITEKIT_DATABASE_MODE"); v != "" {
		cfg.Database.Mode = v
	}
	if v := os.Getenv("SQLITEKIT_DATABASE_KEY"); v != "" {
		cfg.Database.Key = v
	}
	if v := os.Getenv("SQLITEKIT_DATABASE_BUSY_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SQLITEKIT_DATABASE_BUSY_TIMEOUT_MS: %w", err)
		}
		cfg.Database.BusyTimeoutMS = ms
	}
	if v := os.Getenv("SQLITEKIT_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SQLITEKIT_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if _, err := engine.ParseMode(c.Database.Mode); err != nil {
		errs = append(errs, "database.mode must be ro, rw or rwc")
	}
	if c.Database.BusyTimeoutMS < 0 {
		errs = append(errs, "database.busy_timeout_ms must not be negative")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Sprintf("logging.level %q is not a level", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, "logging.format must be console or json")
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr":
	default:
		errs = append(errs, "logging.output must be stdout or stderr")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// OpenOptions maps the database settings to connection options.
func (d DatabaseConfig) OpenOptions(logger zerolog.Logger) ([]database.Option, error) {
	flags, err := engine.ParseMode(d.Mode)
	if err != nil {
		return nil, err
	}
	opts := []database.Option{
		database.WithFlags(flags),
		database.WithBusyTimeout(d.BusyTimeoutMS),
		database.WithLogger(logger),
	}
	if d.Key != "" {
		opts = append(opts, database.WithKey(d.Key))
	}
	return opts, nil
}
