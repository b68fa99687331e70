// Package config provides application configuration for the modeling
// service: defaults, JSON or YAML file loading, environment overrides,
// and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/johnymontana/dgraph-client-app-sub001/errors"
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "DGRAPHVIEW_"

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Layout  LayoutConfig  `json:"layout" yaml:"layout"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string   `json:"addr" yaml:"addr"`
	ReadTimeout     Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	// RateLimit is requests per second per client; RateBurst is the bucket
	// size. Zero RateLimit disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `json:"rate_burst" yaml:"rate_burst"`
	// MaxBodyBytes bounds request payload size.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// LayoutConfig configures layout sessions.
type LayoutConfig struct {
	// TickInterval is the continuous stepping interval.
	TickInterval Duration `json:"tick_interval" yaml:"tick_interval"`
	// BroadcastInterval is how often position frames go out per stream.
	BroadcastInterval Duration `json:"broadcast_interval" yaml:"broadcast_interval"`
	// MaxSessions caps live continuous layout sessions.
	MaxSessions int `json:"max_sessions" yaml:"max_sessions"`
	// OneShotIterations is the iteration count for static layouts.
	OneShotIterations int `json:"one_shot_iterations" yaml:"one_shot_iterations"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
	// Format is "text" or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			RateLimit:       50,
			RateBurst:       100,
			MaxBodyBytes:    16 << 20,
		},
		Layout: LayoutConfig{
			TickInterval:      Duration(50 * time.Millisecond),
			BroadcastInterval: Duration(100 * time.Millisecond),
			MaxSessions:       32,
			OneShotIterations: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path, layered over defaults and under
// environment overrides. An empty path skips file loading.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapFatal(errors.ErrConfigNotFound, "Config", "Load", path)
			}
			return nil, errors.WrapFatal(err, "Config", "Load", "read config file")
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.WrapInvalid(err, "Config", "Load", "parse yaml config")
			}
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, errors.WrapInvalid(err, "Config", "Load", "parse json config")
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides for the settings an
// operator most commonly changes.
func (c *Config) applyEnv() {
	if v := os.Getenv(envPrefix + "ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(envPrefix + "RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Server.RateLimit = f
		}
	}
	if v := os.Getenv(envPrefix + "MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Layout.MaxSessions = n
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate", "server.addr must not be empty")
	}
	if c.Server.RateLimit < 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate", "server.rate_limit must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate", "server.max_body_bytes must be positive")
	}
	if c.Layout.TickInterval <= 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate", "layout.tick_interval must be positive")
	}
	if c.Layout.BroadcastInterval <= 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate", "layout.broadcast_interval must be positive")
	}
	if c.Layout.MaxSessions <= 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate", "layout.max_sessions must be positive")
	}
	if c.Layout.OneShotIterations <= 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate", "layout.one_shot_iterations must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("logging.level %q not one of debug/info/warn/error", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return errors.WrapFatal(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("logging.format %q not one of text/json", c.Logging.Format))
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}
	copied := *c
	return &copied
}
