// Package config loads the backoffice YAML configuration
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jzx17/backoffice/pkg/permission"
	"github.com/jzx17/backoffice/pkg/retry"
	"github.com/jzx17/backoffice/pkg/types"
)

// Config is the root of the configuration file
type Config struct {
	API         APIConfig         `yaml:"api"`
	Retry       RetryConfig       `yaml:"retry"`
	Permissions PermissionsConfig `yaml:"permissions"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// APIConfig points the client at the backend
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	UserAgent         string        `yaml:"user_agent"`
}

// RetryConfig is the retry policy as written in the file. MaxRetries is a
// pointer so an explicit 0 can be told apart from an omitted key.
type RetryConfig struct {
	MaxRetries *int          `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

// PermissionsConfig sets how unmapped routes are treated
type PermissionsConfig struct {
	Default string `yaml:"default"`
}

// LoggingConfig selects the log level and handler
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

const (
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "backoffice"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultMetricsAddr = ":9090"
)

// Default returns a configuration with every default applied and no base URL
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}
	if c.API.RequestsPerSecond > 0 && c.API.Burst == 0 {
		c.API.Burst = 1
	}

	defaults := retry.DefaultPolicy()
	if c.Retry.MaxRetries == nil {
		n := defaults.MaxRetries
		c.Retry.MaxRetries = &n
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = defaults.BaseDelay
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = max(defaults.MaxDelay, c.Retry.BaseDelay)
	}

	if c.Permissions.Default == "" {
		c.Permissions.Default = permission.DefaultAllow.String()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
}

// Validate checks the configuration. An empty base URL is allowed so the CLI
// can run against its in-process demo backend.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: api.base_url %q is not an http(s) url", types.ErrInvalidInput, c.API.BaseURL)
		}
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must not be negative", types.ErrInvalidInput)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: api.requests_per_second must not be negative", types.ErrInvalidInput)
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return err
	}
	if _, err := permission.ParseDefault(c.Permissions.Default); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", types.ErrInvalidInput, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", types.ErrInvalidInput, c.Logging.Format)
	}
	return nil
}

// RetryPolicy returns the policy for the API client's executor
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.NewPolicy(retry.WithBaseDelay(c.Retry.BaseDelay), retry.WithMaxDelay(c.Retry.MaxDelay))
	if c.Retry.MaxRetries != nil {
		p.MaxRetries = *c.Retry.MaxRetries
	}
	return p
}

// GateOptions returns the options for permission gates and sessions
func (c *Config) GateOptions() []permission.GateOption {
	d, err := permission.ParseDefault(c.Permissions.Default)
	if err != nil {
		d = permission.DefaultAllow
	}
	return []permission.GateOption{permission.WithDefault(d)}
}
