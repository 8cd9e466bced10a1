package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/akyairhashvil/roadmap/internal/util"
)

// Config is the runtime configuration. Values come from defaults, then the
// YAML file, then ROADMAP_* environment variables.
type Config struct {
	DBPath         string        `mapstructure:"db_path"`
	Addr           string        `mapstructure:"addr"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
	WatchInterval  time.Duration `mapstructure:"watch_interval"`
	HistoryDepth   int           `mapstructure:"history_depth"`
	DocumentKey    string        `mapstructure:"document_key"`
	Passphrase     string        `mapstructure:"passphrase"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		DBPath:         filepath.Join(util.DataDir(AppName), DBFileName),
		Addr:           DefaultAddr,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		PersistTimeout: DefaultPersistTimeout,
		WatchInterval:  DefaultWatchInterval,
		HistoryDepth:   DefaultHistoryDepth,
		DocumentKey:    DefaultDocumentKey,
	}
}

// DefaultPath is the config file read when Load is given no path.
func DefaultPath() string {
	return filepath.Join(util.ConfigDir(AppName), ConfigFileName)
}

// Load reads configuration. An explicit path must exist; with an empty path
// the default location is used only if present.
func Load(path string) (*Config, error) {
	defaults := DefaultConfig()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("persist_timeout", defaults.PersistTimeout)
	v.SetDefault("watch_interval", defaults.WatchInterval)
	v.SetDefault("history_depth", defaults.HistoryDepth)
	v.SetDefault("document_key", defaults.DocumentKey)
	v.SetDefault("passphrase", "")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.PersistTimeout <= 0 {
		return fmt.Errorf("persist_timeout must be positive, got %s", c.PersistTimeout)
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch_interval must be positive, got %s", c.WatchInterval)
	}
	if c.HistoryDepth < 0 {
		return fmt.Errorf("history_depth must not be negative, got %d", c.HistoryDepth)
	}
	if strings.TrimSpace(c.DocumentKey) == "" {
		return fmt.Errorf("document_key must not be empty")
	}
	return nil
}
