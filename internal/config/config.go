// Package config defines all configuration structures for the BioTerm-Annotator
// service.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    int           `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	ServiceName string   `mapstructure:"service_name"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// OLSConfig holds connection parameters for the primary term registry (EBI
// Ontology Lookup Service v4).  OLS requires no credential and is always
// enabled.
type OLSConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
}

// BioPortalConfig holds connection parameters for the fallback term registry.
// The provider is enabled if and only if APIKey is non-empty.
type BioPortalConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
}

// Enabled reports whether the fallback provider should be constructed.
func (c BioPortalConfig) Enabled() bool { return c.APIKey != "" }

// AnthropicConfig holds parameters for the LLM entity-extraction service.
type AnthropicConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the extractor should be constructed.
func (c AnthropicConfig) Enabled() bool { return c.APIKey != "" }

// AnnotationConfig holds tunables for the matching cascade and batch execution.
type AnnotationConfig struct {
	// MinConfidence is the default confidence floor applied when a request
	// does not supply one.
	MinConfidence float64 `mapstructure:"min_confidence"`

	// UseFallback controls whether the fallback registry participates in the
	// cascade by default.
	UseFallback bool `mapstructure:"use_fallback"`

	// BatchConcurrency bounds the number of terms annotated in parallel.
	BatchConcurrency int `mapstructure:"batch_concurrency"`

	// MaxBatchSize rejects batches larger than this before any provider call.
	MaxBatchSize int `mapstructure:"max_batch_size"`

	// DomainOntologies overrides the built-in per-domain ontology lists.
	// Keys are domain labels, values are ordered lowercase ontology codes.
	DomainOntologies map[string][]string `mapstructure:"domain_ontologies"`
}

// RetryConfig holds the bounded exponential backoff applied to transient
// provider failures.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Multiplier     float64       `mapstructure:"multiplier"`
}

// CacheConfig holds the optional Redis response-cache parameters.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// EventsConfig holds the optional Kafka annotation-event parameters.
type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Config is the root configuration structure for the entire service.
// Every infrastructure component and the annotator service read their
// settings from the relevant sub-struct.  The value is read once at startup
// and treated as immutable afterwards.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	OLS        OLSConfig        `mapstructure:"ols"`
	BioPortal  BioPortalConfig  `mapstructure:"bioportal"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Annotation AnnotationConfig `mapstructure:"annotation"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Events     EventsConfig     `mapstructure:"events"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// OLS
	if c.OLS.BaseURL == "" {
		return fmt.Errorf("config: ols.base_url is required")
	}
	if c.OLS.MaxResults < 1 {
		return fmt.Errorf("config: ols.max_results must be >= 1, got %d", c.OLS.MaxResults)
	}

	// BioPortal (only checked when enabled)
	if c.BioPortal.Enabled() {
		if c.BioPortal.BaseURL == "" {
			return fmt.Errorf("config: bioportal.base_url is required when bioportal.api_key is set")
		}
		if c.BioPortal.MaxResults < 1 {
			return fmt.Errorf("config: bioportal.max_results must be >= 1, got %d", c.BioPortal.MaxResults)
		}
	}

	// Anthropic (only checked when enabled)
	if c.Anthropic.Enabled() {
		if c.Anthropic.Model == "" {
			return fmt.Errorf("config: anthropic.model is required when anthropic.api_key is set")
		}
		if c.Anthropic.MaxTokens < 1 {
			return fmt.Errorf("config: anthropic.max_tokens must be >= 1, got %d", c.Anthropic.MaxTokens)
		}
	}

	// Annotation
	if c.Annotation.MinConfidence < 0 || c.Annotation.MinConfidence > 1 {
		return fmt.Errorf("config: annotation.min_confidence %f is out of range [0, 1]", c.Annotation.MinConfidence)
	}
	if c.Annotation.BatchConcurrency < 1 {
		return fmt.Errorf("config: annotation.batch_concurrency must be >= 1, got %d", c.Annotation.BatchConcurrency)
	}
	if c.Annotation.MaxBatchSize < 1 {
		return fmt.Errorf("config: annotation.max_batch_size must be >= 1, got %d", c.Annotation.MaxBatchSize)
	}

	// Retry
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: retry.max_attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.InitialBackoff <= 0 {
		return fmt.Errorf("config: retry.initial_backoff must be positive, got %s", c.Retry.InitialBackoff)
	}
	if c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		return fmt.Errorf("config: retry.max_backoff %s is below retry.initial_backoff %s",
			c.Retry.MaxBackoff, c.Retry.InitialBackoff)
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("config: retry.multiplier must be >= 1, got %f", c.Retry.Multiplier)
	}

	// Cache
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("config: cache.addr is required when cache.enabled is true")
	}

	// Events
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("config: events.brokers must contain at least one broker when events.enabled is true")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("config: events.topic is required when events.enabled is true")
		}
	}

	return nil
}
