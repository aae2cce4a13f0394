// Package config loads the application settings with viper from an
// optional zeitig.toml (or .yaml) file, ZEITIG_ environment variables and
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"zeitig/internal/database"
	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/platform"
)

const envPrefix = "ZEITIG"

// Config is the complete application configuration
type Config struct {
	Database database.Config `mapstructure:"database"`
	Tracker  TrackerConfig   `mapstructure:"tracker"`
	Autosave AutosaveConfig  `mapstructure:"autosave"`
	Log      LogConfig       `mapstructure:"log"`

	// DataDir holds the database, the snapshot and the config file
	DataDir string `mapstructure:"data_dir"`
}

// TrackerConfig tunes the session state machine
type TrackerConfig struct {
	Tick       time.Duration `mapstructure:"tick"`
	MinSession time.Duration `mapstructure:"min_session"`
}

// AutosaveConfig controls the snapshot written next to the database
type AutosaveConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Delay   time.Duration `mapstructure:"delay"`
	Path    string        `mapstructure:"path"`
}

// LogConfig selects the log level and destination. An empty File logs to stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Options locate the configuration
type Options struct {
	// ConfigFile is an explicit config path; empty searches the data
	// directory and the working directory for zeitig.{toml,yaml}
	ConfigFile string
	Paths      platform.PathResolver
}

func setDefaults(v *viper.Viper) {
	db := database.DefaultConfig()
	v.SetDefault("database.path", db.Path)
	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.max_connections", db.MaxConnections)
	v.SetDefault("database.max_idle_connections", db.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.force_single_connection", db.ForceSingleConnection)
	v.SetDefault("database.journal_mode", db.JournalMode)
	v.SetDefault("database.synchronous_mode", db.SynchronousMode)
	v.SetDefault("database.cache_size", db.CacheSize)
	v.SetDefault("database.busy_timeout", db.BusyTimeout)
	v.SetDefault("database.foreign_keys", db.ForeignKeys)
	v.SetDefault("database.environment", db.Environment)

	v.SetDefault("tracker.tick", time.Second)
	v.SetDefault("tracker.min_session", 30*time.Second)

	v.SetDefault("autosave.enabled", true)
	v.SetDefault("autosave.delay", 5*time.Second)
	v.SetDefault("autosave.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("data_dir", "")
}

// Load reads the configuration into v, which may be nil
func Load(v *viper.Viper, opts Options) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	if opts.Paths == nil {
		opts.Paths = platform.NewPathResolver()
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		dir, err := opts.Paths.DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data directory: %w", err)
		}
		dataDir = dir
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(platform.ConfigFileName)
		v.AddConfigPath(dataDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Database.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if cfg.Database.Path == "" {
		if cfg.Database.Environment == "development" {
			cfg.Database.Path = database.DevelopmentConfig().Path
		} else {
			cfg.Database.Path = filepath.Join(cfg.DataDir, platform.DatabaseFileName)
		}
	}
	if cfg.Autosave.Path == "" {
		cfg.Autosave.Path = filepath.Join(cfg.DataDir, platform.SnapshotFileName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that are not checked on database connect
func (c *Config) Validate() error {
	if c.Tracker.Tick <= 0 {
		return fmt.Errorf("tracker.tick must be positive, got %v", c.Tracker.Tick)
	}
	if c.Tracker.MinSession < 0 {
		return fmt.Errorf("tracker.min_session cannot be negative, got %v", c.Tracker.MinSession)
	}
	if c.Autosave.Enabled && c.Autosave.Delay <= 0 {
		return fmt.Errorf("autosave.delay must be positive, got %v", c.Autosave.Delay)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}
