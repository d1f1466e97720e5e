// Package config loads application configuration from a yaml file,
// environment variables, and CLI flags, in increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/BitWorks/xbrlstudio/internal/store"
)

// Config holds the runtime settings for the filing store and its CLI.
type Config struct {
	// DatabasePath is the SQLite file holding entities and filings.
	DatabasePath string

	// NameResolution selects the LastFiling strategy: "calendar"
	// (default) or "scan-order" (legacy compatibility).
	NameResolution string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// CacheTTL bounds the parsed-filing cache lifetime.
	CacheTTL time.Duration
}

// Init wires defaults, the config file, and the env prefix into a
// viper instance. Called once from the CLI before commands run.
// cfgFile overrides the default search path when non-empty.
func Init(v *viper.Viper, cfgFile string) {
	v.SetDefault("database", defaultDatabasePath())
	v.SetDefault("name_resolution", "calendar")
	v.SetDefault("log_level", "info")
	v.SetDefault("cache_ttl", "5m")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".xbrlstudio"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("XBRLSTUDIO")
	v.AutomaticEnv()

	// A missing config file is fine; defaults and env apply.
	_ = v.ReadInConfig()
}

// FromViper materializes a Config from a prepared viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		DatabasePath:   v.GetString("database"),
		NameResolution: v.GetString("name_resolution"),
		LogLevel:       v.GetString("log_level"),
		CacheTTL:       v.GetDuration("cache_ttl"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.NameResolution {
	case "calendar", "scan-order":
	default:
		return fmt.Errorf("invalid name_resolution %q: want calendar or scan-order", c.NameResolution)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	return nil
}

// Resolution maps the configured strategy name to the store option
// value.
func (c Config) Resolution() store.NameResolution {
	if c.NameResolution == "scan-order" {
		return store.NameByScanOrder
	}
	return store.NameByCalendar
}

// SlogLevel maps the configured log level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "xbrlstudio.db"
	}
	return filepath.Join(home, ".xbrlstudio", "xbrlstudio.db")
}
