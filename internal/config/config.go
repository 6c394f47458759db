// Package config loads the page builder configuration from a yaml file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level pagebuilder configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Preview PreviewConfig `yaml:"preview"`
	History HistoryConfig `yaml:"history"`
	Pages   []string      `yaml:"pages"` // page keys this dashboard manages
	Debug   bool          `yaml:"debug"`
}

// BackendConfig points the API client at the page-components backend.
type BackendConfig struct {
	BaseURL string            `yaml:"base_url"`
	Timeout string            `yaml:"timeout,omitempty"` // e.g. "10s"; default 10s
	Headers map[string]string `yaml:"headers,omitempty"` // env vars expanded
	Retry   *RetryConfig      `yaml:"retry,omitempty"`
}

// RetryConfig tunes transport-level retry on the list call.
type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries,omitempty"` // default: 3
	BaseDelay  string `yaml:"base_delay,omitempty"`  // default: 100ms
	MaxDelay   string `yaml:"max_delay,omitempty"`   // default: 5s
}

// PreviewConfig controls the preview server surface.
type PreviewConfig struct {
	Listen         string   `yaml:"listen,omitempty"`          // default ":7070"
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"` // empty = allow all (dev)
	AssetsDir      string   `yaml:"assets_dir,omitempty"`      // rendering surface static files
	LiveReload     bool     `yaml:"live_reload,omitempty"`     // watch assets, push reload
}

// HistoryConfig selects the operation history store.
type HistoryConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" (default), "postgres", or "" to disable
	DSN    string `yaml:"dsn,omitempty"`    // file path for sqlite, conninfo for postgres
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{BaseURL: "http://localhost:8080"},
		Preview: PreviewConfig{Listen: ":7070"},
		History: HistoryConfig{Driver: "sqlite", DSN: "pagebuilder.db"},
		Pages:   []string{"home"},
	}
}

// Load reads a config file, layering it over the defaults. A missing file is
// an error; use Default for the no-file case.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Expand env vars in header values so tokens stay out of the file.
	for key, value := range cfg.Backend.Headers {
		cfg.Backend.Headers[key] = os.ExpandEnv(value)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts that have no safe fallback.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend.base_url is required")
	}
	if len(c.Pages) == 0 {
		return fmt.Errorf("config: at least one page key is required")
	}
	switch c.History.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported history driver %q", c.History.Driver)
	}
	return nil
}

// GetTimeout returns the parsed backend timeout (default: 10s).
func (c *Config) GetTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, 10*time.Second)
}

// GetRetryMaxRetries returns the max retries for the list call (default: 3).
func (c *Config) GetRetryMaxRetries() int {
	if c.Backend.Retry == nil || c.Backend.Retry.MaxRetries <= 0 {
		return 3
	}
	return c.Backend.Retry.MaxRetries
}

// GetRetryBaseDelay returns the initial retry delay (default: 100ms).
func (c *Config) GetRetryBaseDelay() time.Duration {
	if c.Backend.Retry == nil {
		return 100 * time.Millisecond
	}
	return parseDuration(c.Backend.Retry.BaseDelay, 100*time.Millisecond)
}

// GetRetryMaxDelay returns the retry delay cap (default: 5s).
func (c *Config) GetRetryMaxDelay() time.Duration {
	if c.Backend.Retry == nil {
		return 5 * time.Second
	}
	return parseDuration(c.Backend.Retry.MaxDelay, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
