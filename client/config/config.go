// Package config loads the feed client configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Authors AuthorsConfig `yaml:"authors"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
}

// APIConfig configures the remote API client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Empty means no timeout.
	Timeout    string      `yaml:"timeout"`
	UpdatePost UpdateRoute `yaml:"update_post"`
}

// UpdateRoute is the wire route for post updates. The backend contract is not
// fixed, so it is disabled until both fields are set. Path may contain {id}.
type UpdateRoute struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
}

func (r UpdateRoute) Enabled() bool {
	return r.Method != "" && r.Path != ""
}

// SessionConfig configures where the session (user id + token) is persisted.
type SessionConfig struct {
	Driver string `yaml:"driver"` // sqlite3 (cgo) or sqlite (pure go)
	Path   string `yaml:"path"`
}

type AuthorsConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`
}

type UIConfig struct {
	WordWrap int    `yaml:"word_wrap"`
	Style    string `yaml:"style"` // auto, dark, light, notty
}

// Dir returns the per-user configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "socialfeed")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
		},
		Session: SessionConfig{
			Driver: "sqlite3",
			Path:   filepath.Join(dir, "session.db"),
		},
		Authors: AuthorsConfig{
			CacheSize: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(dir, "feed.log"),
		},
		UI: UIConfig{
			WordWrap: 72,
			Style:    "auto",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FEED_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("FEED_SESSION_PATH"); v != "" {
		c.Session.Path = v
	}
	if v := os.Getenv("FEED_SESSION_DRIVER"); v != "" {
		c.Session.Driver = v
	}
	if v := os.Getenv("FEED_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}

	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
		}
	}

	if (c.API.UpdatePost.Method == "") != (c.API.UpdatePost.Path == "") {
		return fmt.Errorf("api.update_post needs both method and path")
	}

	switch c.Session.Driver {
	case "sqlite3", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown session.driver %q", c.Session.Driver)
	}

	if c.Session.Driver != "memory" && c.Session.Path == "" {
		return fmt.Errorf("session.path is required")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}

	return nil
}

// GetTimeout returns the API timeout; zero means none.
func (c *Config) GetTimeout() time.Duration {
	if c.API.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0
	}
	return d
}
