package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every database environment override
const EnvPrefix = "DESKBRIDGE_DB_"

// defaultFileName is used when no path is configured
const defaultFileName = "deskbridge.db"

// Config holds the SQLite connection options for capability storage
type Config struct {
	Path                  string        `json:"path" yaml:"path"`
	MaxConnections        int           `json:"maxConnections" yaml:"maxConnections"`
	MaxIdleConns          int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime       time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	ConnMaxIdleTime       time.Duration `json:"connMaxIdleTime" yaml:"connMaxIdleTime"`
	ForceSingleConnection bool          `json:"forceSingleConnection" yaml:"forceSingleConnection"`
	AutoMigrate           bool          `json:"autoMigrate" yaml:"autoMigrate"`

	JournalMode     string `json:"journalMode" yaml:"journalMode"`         // WAL, DELETE, MEMORY...
	SynchronousMode string `json:"synchronousMode" yaml:"synchronousMode"` // OFF, NORMAL, FULL, EXTRA
	CacheSize       int    `json:"cacheSize" yaml:"cacheSize"`             // KB
	BusyTimeout     int    `json:"busyTimeout" yaml:"busyTimeout"`         // milliseconds
	ForeignKeys     bool   `json:"foreignKeys" yaml:"foreignKeys"`
}

// DefaultConfig returns the production configuration
func DefaultConfig() *Config {
	return &Config{
		Path:            defaultFileName,
		MaxConnections:  4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		AutoMigrate:     true,
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		CacheSize:       2000,
		BusyTimeout:     5000,
		ForeignKeys:     true,
	}
}

// DevelopmentConfig keeps the database next to the working directory
func DevelopmentConfig() *Config {
	config := DefaultConfig()
	config.Path = "deskbridge_dev.db"
	return config
}

// TestConfig returns an in-memory configuration. A single connection keeps
// every query on the same in-memory database.
func TestConfig() *Config {
	config := DefaultConfig()
	config.Path = ":memory:"
	config.ForceSingleConnection = true
	config.JournalMode = "MEMORY"
	config.SynchronousMode = "OFF"
	config.CacheSize = 1000
	config.BusyTimeout = 1000
	return config
}

// ConfigForEnvironment returns the configuration for development, test or production.
// Production stores the database under the user config directory.
func ConfigForEnvironment(env string) *Config {
	switch env {
	case "development":
		return DevelopmentConfig()
	case "test":
		return TestConfig()
	default:
		config := DefaultConfig()
		if dir, err := os.UserConfigDir(); err == nil {
			config.Path = filepath.Join(dir, "deskbridge", defaultFileName)
		}
		return config
	}
}

// parseBoolEnv reads a boolean environment variable. The second result
// reports whether a recognizable value was present.
func parseBoolEnv(key string) (bool, bool) {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return false, false
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}
	switch value {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	}
	return false, false
}

// LoadFromEnvironment applies DESKBRIDGE_DB_* overrides. Malformed numeric
// values are ignored.
func (c *Config) LoadFromEnvironment() {
	if path := os.Getenv(EnvPrefix + "PATH"); path != "" {
		c.Path = path
	}
	if v, err := strconv.Atoi(os.Getenv(EnvPrefix + "MAX_CONNECTIONS")); err == nil && v > 0 {
		c.MaxConnections = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvPrefix + "MAX_IDLE_CONNECTIONS")); err == nil && v >= 0 {
		c.MaxIdleConns = v
	}
	if v, err := time.ParseDuration(os.Getenv(EnvPrefix + "CONN_MAX_LIFETIME")); err == nil {
		c.ConnMaxLifetime = v
	}
	if mode := os.Getenv(EnvPrefix + "JOURNAL_MODE"); mode != "" {
		c.JournalMode = strings.ToUpper(mode)
	}
	if mode := os.Getenv(EnvPrefix + "SYNCHRONOUS_MODE"); mode != "" {
		c.SynchronousMode = strings.ToUpper(mode)
	}
	if v, err := strconv.Atoi(os.Getenv(EnvPrefix + "BUSY_TIMEOUT")); err == nil && v >= 0 {
		c.BusyTimeout = v
	}
	if v, ok := parseBoolEnv(EnvPrefix + "AUTO_MIGRATE"); ok {
		c.AutoMigrate = v
	}
	if v, ok := parseBoolEnv(EnvPrefix + "FORCE_SINGLE_CONNECTION"); ok {
		c.ForceSingleConnection = v
	}
}

var (
	validJournalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	validSyncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// Validate checks the configuration and creates the database directory if needed
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if !c.IsInMemory() {
		if dir := filepath.Dir(c.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	if c.MaxConnections <= 0 {
		return fmt.Errorf("maxConnections must be positive, got %d", c.MaxConnections)
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxConnections {
		return fmt.Errorf("maxIdleConns must be between 0 and maxConnections (%d), got %d", c.MaxConnections, c.MaxIdleConns)
	}
	if c.ConnMaxLifetime < 0 || c.ConnMaxIdleTime < 0 {
		return fmt.Errorf("connection lifetimes cannot be negative")
	}

	if !validJournalModes[strings.ToUpper(c.JournalMode)] {
		return fmt.Errorf("invalid journalMode: %s", c.JournalMode)
	}
	if c.IsInMemory() && strings.EqualFold(c.JournalMode, "WAL") {
		return fmt.Errorf("journalMode cannot be WAL when using in-memory database")
	}
	if !validSyncModes[strings.ToUpper(c.SynchronousMode)] {
		return fmt.Errorf("invalid synchronousMode: %s", c.SynchronousMode)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cacheSize must be positive, got %d", c.CacheSize)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busyTimeout cannot be negative, got %d", c.BusyTimeout)
	}
	return nil
}

// GetConnectionString builds the go-sqlite3 DSN with pragma parameters
func (c *Config) GetConnectionString() string {
	values := url.Values{}
	if c.ForeignKeys {
		values.Set("_foreign_keys", "on")
	} else {
		values.Set("_foreign_keys", "off")
	}
	values.Set("_journal_mode", c.JournalMode)
	values.Set("_synchronous", c.SynchronousMode)
	// negative cache size is interpreted by SQLite as KB
	values.Set("_cache_size", strconv.Itoa(-c.CacheSize))
	values.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout))

	path := strings.NewReplacer("?", "%3F", "&", "%26").Replace(c.Path)
	return path + "?" + values.Encode()
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// IsInMemory returns true if the database is configured to use in-memory storage
func (c *Config) IsInMemory() bool {
	return c.Path == ":memory:"
}
