// Package config manages EBR service configuration via Viper.
//
// Configuration is merged from defaults, an optional ebr.toml file, and
// EBR_-prefixed environment variables, in increasing precedence.
package config

import (
	"time"

	"github.com/elinasafina23/EBR/errors"
)

// Config is the application-level configuration
type Config struct {
	// Environment is the deployment environment identifier
	// (development/staging/production)
	Environment string `mapstructure:"environment"`

	QMIB     QMIBConfig     `mapstructure:"qmib"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Batch    BatchConfig    `mapstructure:"batch"`
}

// QMIBConfig holds connection settings for the AspenTech system:inmation
// QMIB gateway
type QMIBConfig struct {
	// BaseURL of the QMIB REST endpoint, including protocol and port,
	// e.g. https://inmation-gateway:443/api/qmib
	BaseURL string `mapstructure:"base_url"`

	// Username is the service account used for authentication against QMIB
	Username string `mapstructure:"username"`

	// Password for the service account. Bound to EBR_QMIB_PASSWORD.
	Password string `mapstructure:"password"`

	// VerifySSL should be false only when targeting a development QMIB
	// environment with self-signed certificates
	VerifySSL bool `mapstructure:"verify_ssl"`

	// TimeoutSeconds is the per-request timeout when communicating with QMIB
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`

	// MaxAttempts is the total attempt budget per logical QMIB operation
	MaxAttempts int `mapstructure:"max_attempts"`

	// BackoffBaseSeconds is the initial retry delay; it doubles per attempt
	BackoffBaseSeconds float64 `mapstructure:"backoff_base_seconds"`

	// BackoffMaxSeconds caps the retry delay
	BackoffMaxSeconds float64 `mapstructure:"backoff_max_seconds"`

	// RequestsPerMinute throttles outbound QMIB calls (0 = unlimited)
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// DatabaseConfig holds connection information for the EBR persistence layer
type DatabaseConfig struct {
	// Path to the SQLite database file
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port int `mapstructure:"port"`

	// AllowedOrigins lists CORS allowed origins for the API
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BatchConfig holds batch lifecycle settings
type BatchConfig struct {
	// StrictTransitions enforces forward-only status progression
	// (planned -> in_progress -> terminal). Default false: any requested
	// transition is accepted, matching the manual-correction workflow.
	StrictTransitions bool `mapstructure:"strict_transitions"`
}

// Timeout returns the QMIB per-request timeout as a duration
func (q QMIBConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutSeconds * float64(time.Second))
}

// BackoffBase returns the initial retry delay as a duration
func (q QMIBConfig) BackoffBase() time.Duration {
	return time.Duration(q.BackoffBaseSeconds * float64(time.Second))
}

// BackoffMax returns the retry delay cap as a duration
func (q QMIBConfig) BackoffMax() time.Duration {
	return time.Duration(q.BackoffMaxSeconds * float64(time.Second))
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.QMIB.BaseURL == "" {
		return errors.New("qmib.base_url must be set")
	}
	if c.QMIB.Username == "" || c.QMIB.Password == "" {
		return errors.WithHint(
			errors.New("QMIB credentials must not be empty"),
			"set EBR_QMIB_USERNAME and EBR_QMIB_PASSWORD or add them to ebr.toml",
		)
	}
	if c.QMIB.MaxAttempts < 1 {
		return errors.Newf("qmib.max_attempts must be at least 1, got %d", c.QMIB.MaxAttempts)
	}
	return nil
}
