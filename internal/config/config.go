package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"deskbridge/internal/database"
	"deskbridge/internal/infrastructure/logging"
)

// Environment variables read by Load
const (
	EnvConfigPath            = "DESKBRIDGE_CONFIG"
	EnvEnvironment           = "DESKBRIDGE_ENV"
	EnvLogLevel              = "DESKBRIDGE_LOG_LEVEL"
	EnvLogFile               = "DESKBRIDGE_LOG_FILE"
	EnvSkipNonBrowserWindows = "DESKBRIDGE_SKIP_NON_BROWSER_WINDOWS"
	EnvDevServerAddr         = "DESKBRIDGE_DEV_ADDR"
)

// DefaultDevServerAddr binds the dev server to loopback only
const DefaultDevServerAddr = "127.0.0.1:34115"

// Config is the application configuration
type Config struct {
	Environment string           `yaml:"environment"`
	Logging     LoggingConfig    `yaml:"logging"`
	Database    *database.Config `yaml:"database"`
	Explorer    ExplorerConfig   `yaml:"explorer"`
	DevServer   DevServerConfig  `yaml:"devServer"`
}

// LoggingConfig selects the minimum level and an optional log file
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ExplorerConfig tunes the active selection query
type ExplorerConfig struct {
	// SkipNonBrowserWindows skips shell windows that are not file browsers
	// instead of failing the whole scan.
	SkipNonBrowserWindows bool `yaml:"skipNonBrowserWindows"`
}

// DevServerConfig configures the local HTTP surface used by bridgectl serve
type DevServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration for env before any file or overrides
func Default(env string) *Config {
	if env == "" {
		env = "production"
	}
	level := "info"
	if env == "development" {
		level = "debug"
	}
	return &Config{
		Environment: env,
		Logging:     LoggingConfig{Level: level},
		Database:    database.ConfigForEnvironment(env),
		DevServer:   DevServerConfig{Addr: DefaultDevServerAddr},
	}
}

// DefaultPath returns DESKBRIDGE_CONFIG or config.yaml under the user config directory
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "deskbridge", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file at path (a
// missing file is not an error), then environment overrides, and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default(os.Getenv(EnvEnvironment))

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvironment() {
	if c.Database == nil {
		c.Database = database.ConfigForEnvironment(c.Environment)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvDevServerAddr); v != "" {
		c.DevServer.Addr = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvSkipNonBrowserWindows)); err == nil {
		c.Explorer.SkipNonBrowserWindows = v
	}
	c.Database.LoadFromEnvironment()
}

// Validate checks every section
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if strings.TrimSpace(c.DevServer.Addr) == "" {
		return fmt.Errorf("devServer.addr cannot be empty")
	}
	if c.Database == nil {
		return fmt.Errorf("database section is missing")
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// LogLevel returns the parsed logging level. Validate has already rejected
// unknown names.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}
