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

const (
	// DriverCGO is github.com/mattn/go-sqlite3
	DriverCGO = "sqlite3"
	// DriverPureGo is modernc.org/sqlite
	DriverPureGo = "sqlite"

	memoryPath = ":memory:"
)

// parseBoolEnv reads key as a boolean. The second result reports whether the
// variable was set to a recognized value.
func parseBoolEnv(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}
	switch strings.ToLower(value) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// Config holds the database connection options
type Config struct {
	Path                  string        `mapstructure:"path" yaml:"path"`
	Driver                string        `mapstructure:"driver" yaml:"driver"`
	MaxConnections        int           `mapstructure:"max_connections" yaml:"max_connections"`
	MaxIdleConns          int           `mapstructure:"max_idle_connections" yaml:"max_idle_connections"`
	ConnMaxLifetime       time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ForceSingleConnection bool          `mapstructure:"force_single_connection" yaml:"force_single_connection"`

	JournalMode     string `mapstructure:"journal_mode" yaml:"journal_mode"`
	SynchronousMode string `mapstructure:"synchronous_mode" yaml:"synchronous_mode"`
	CacheSize       int    `mapstructure:"cache_size" yaml:"cache_size"`     // KB
	BusyTimeout     int    `mapstructure:"busy_timeout" yaml:"busy_timeout"` // milliseconds
	ForeignKeys     bool   `mapstructure:"foreign_keys" yaml:"foreign_keys"`

	Environment string `mapstructure:"environment" yaml:"environment"`
}

// DefaultConfig returns the production defaults. Path is empty and is
// resolved from the data directory by the caller.
func DefaultConfig() *Config {
	return &Config{
		Driver:          DriverCGO,
		MaxConnections:  4,
		MaxIdleConns:    1,
		ConnMaxLifetime: 0,
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		CacheSize:       2000,
		BusyTimeout:     8000,
		ForeignKeys:     true,
		Environment:     "production",
	}
}

// DevelopmentConfig keeps the database next to the working directory
func DevelopmentConfig() *Config {
	config := DefaultConfig()
	config.Path = filepath.Join(".", "zeitig.db")
	config.Environment = "development"
	return config
}

// TestConfig returns an in-memory configuration
func TestConfig() *Config {
	config := DefaultConfig()
	config.Path = memoryPath
	config.Environment = "test"
	config.ForceSingleConnection = true
	config.JournalMode = "MEMORY"
	config.SynchronousMode = "OFF"
	config.CacheSize = 1000
	config.BusyTimeout = 1000
	return config
}

// ConfigForEnvironment returns the defaults for env
func ConfigForEnvironment(env string) *Config {
	switch env {
	case "development":
		return DevelopmentConfig()
	case "test":
		return TestConfig()
	default:
		return DefaultConfig()
	}
}

// LoadFromEnvironment overrides fields from ZEITIG_DB_* variables
func (c *Config) LoadFromEnvironment() error {
	if path := os.Getenv("ZEITIG_DB_PATH"); path != "" {
		c.Path = path
	}
	if driver := os.Getenv("ZEITIG_DB_DRIVER"); driver != "" {
		c.Driver = driver
	}
	if v := os.Getenv("ZEITIG_DB_MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("ZEITIG_DB_MAX_CONNECTIONS: invalid value %q", v)
		}
		c.MaxConnections = n
	}
	if v := os.Getenv("ZEITIG_DB_JOURNAL_MODE"); v != "" {
		c.JournalMode = v
	}
	if v := os.Getenv("ZEITIG_DB_SYNCHRONOUS_MODE"); v != "" {
		c.SynchronousMode = v
	}
	if v := os.Getenv("ZEITIG_DB_BUSY_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("ZEITIG_DB_BUSY_TIMEOUT: invalid value %q", v)
		}
		c.BusyTimeout = n
	}
	if fk, ok := parseBoolEnv("ZEITIG_DB_FOREIGN_KEYS"); ok {
		c.ForeignKeys = fk
	}
	if single, ok := parseBoolEnv("ZEITIG_DB_FORCE_SINGLE_CONNECTION"); ok {
		c.ForceSingleConnection = single
	}
	if env := os.Getenv("ZEITIG_ENVIRONMENT"); env != "" {
		c.Environment = env
	}
	return nil
}

// Validate checks the configuration and creates the database directory
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	switch c.Driver {
	case DriverCGO, DriverPureGo:
	default:
		return fmt.Errorf("unsupported driver %q (want %q or %q)", c.Driver, DriverCGO, DriverPureGo)
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
		return fmt.Errorf("maxIdleConns must be between 0 and %d, got %d", c.MaxConnections, c.MaxIdleConns)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busyTimeout cannot be negative, got %d", c.BusyTimeout)
	}

	journalModes := map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	if !journalModes[strings.ToUpper(c.JournalMode)] {
		return fmt.Errorf("invalid journalMode: %s", c.JournalMode)
	}
	if c.IsInMemory() && strings.EqualFold(c.JournalMode, "WAL") {
		return fmt.Errorf("journalMode WAL is not supported for in-memory databases")
	}

	syncModes := map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
	if !syncModes[strings.ToUpper(c.SynchronousMode)] {
		return fmt.Errorf("invalid synchronousMode: %s", c.SynchronousMode)
	}

	switch c.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}
	return nil
}

// GetConnectionString builds the DSN for the configured driver
func (c *Config) GetConnectionString() string {
	path := c.Path
	if strings.ContainsAny(path, "?&") {
		path = strings.ReplaceAll(path, "?", "%3F")
		path = strings.ReplaceAll(path, "&", "%26")
	}

	foreignKeys := "off"
	if c.ForeignKeys {
		foreignKeys = "on"
	}

	values := url.Values{}
	if c.Driver == DriverPureGo {
		values.Add("_pragma", "foreign_keys("+foreignKeys+")")
		values.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout))
		values.Add("_pragma", "journal_mode("+c.JournalMode+")")
		values.Add("_pragma", "synchronous("+c.SynchronousMode+")")
		values.Add("_pragma", fmt.Sprintf("cache_size(%d)", -c.CacheSize))
		return path + "?" + values.Encode()
	}

	values.Set("_foreign_keys", foreignKeys)
	values.Set("_journal_mode", c.JournalMode)
	values.Set("_synchronous", c.SynchronousMode)
	values.Set("_cache_size", strconv.Itoa(-c.CacheSize))
	values.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout))
	return path + "?" + values.Encode()
}

// IsInMemory reports whether the database lives only in memory
func (c *Config) IsInMemory() bool {
	return c.Path == memoryPath
}
