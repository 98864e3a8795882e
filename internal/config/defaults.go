package config

import "time"

// Default value constants.
const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultOLSBaseURL       = "https://www.ebi.ac.uk/ols4/api"
	DefaultBioPortalBaseURL = "https://data.bioontology.org"
	DefaultProviderTimeout  = 30 * time.Second
	DefaultMaxResults       = 10

	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = "claude-haiku-4-5-20251001"
	DefaultMaxTokens        = 2048

	DefaultMinConfidence    = 0.7
	DefaultBatchConcurrency = 5
	DefaultMaxBatchSize     = 100

	DefaultRetryMaxAttempts    = 3
	DefaultRetryInitialBackoff = 1 * time.Second
	DefaultRetryMaxBackoff     = 10 * time.Second
	DefaultRetryMultiplier     = 2.0

	DefaultCacheTTL       = 15 * time.Minute
	DefaultCacheKeyPrefix = "bioterm"

	DefaultEventsTopic = "bioterm.annotations"

	DefaultMetricsNamespace = "bioterm"
)

// DefaultDomainOntologies returns the built-in mapping from domain label to
// the ordered list of ontology codes queried for that domain.  The caller
// owns the returned map.
func DefaultDomainOntologies() map[string][]string {
	return map[string][]string{
		"disease":   {"mondo", "doid", "hp"},
		"chemical":  {"chebi", "drugbank"},
		"gene":      {"hgnc", "ncbigene"},
		"phenotype": {"hp", "mp"},
		"anatomy":   {"uberon", "fma"},
		"organism":  {"ncbitaxon"},
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
// It validates cleanly and is suitable for tests and for `bioterm serve`
// without a config file.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 50
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 100
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.ServiceName == "" {
		cfg.Log.ServiceName = "bioterm"
	}

	// OLS
	if cfg.OLS.BaseURL == "" {
		cfg.OLS.BaseURL = DefaultOLSBaseURL
	}
	if cfg.OLS.Timeout == 0 {
		cfg.OLS.Timeout = DefaultProviderTimeout
	}
	if cfg.OLS.MaxResults == 0 {
		cfg.OLS.MaxResults = DefaultMaxResults
	}

	// BioPortal: api_key intentionally has no default; the provider is
	// disabled until the operator supplies one.
	if cfg.BioPortal.BaseURL == "" {
		cfg.BioPortal.BaseURL = DefaultBioPortalBaseURL
	}
	if cfg.BioPortal.Timeout == 0 {
		cfg.BioPortal.Timeout = DefaultProviderTimeout
	}
	if cfg.BioPortal.MaxResults == 0 {
		cfg.BioPortal.MaxResults = DefaultMaxResults
	}

	// Anthropic: api_key intentionally has no default.
	if cfg.Anthropic.BaseURL == "" {
		cfg.Anthropic.BaseURL = DefaultAnthropicBaseURL
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = DefaultAnthropicModel
	}
	if cfg.Anthropic.MaxTokens == 0 {
		cfg.Anthropic.MaxTokens = DefaultMaxTokens
	}
	if cfg.Anthropic.Timeout == 0 {
		cfg.Anthropic.Timeout = DefaultProviderTimeout
	}

	// Annotation
	if cfg.Annotation.MinConfidence == 0 {
		cfg.Annotation.MinConfidence = DefaultMinConfidence
	}
	if cfg.Annotation.BatchConcurrency == 0 {
		cfg.Annotation.BatchConcurrency = DefaultBatchConcurrency
	}
	if cfg.Annotation.MaxBatchSize == 0 {
		cfg.Annotation.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Annotation.DomainOntologies == nil {
		cfg.Annotation.DomainOntologies = DefaultDomainOntologies()
	}
	// UseFallback defaults to true, but a bool zero value cannot be told apart
	// from an explicit false; the request-level flag covers per-call opt-out.
	if !cfg.Annotation.UseFallback {
		cfg.Annotation.UseFallback = true
	}

	// Retry
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultRetryMaxAttempts
	}
	if cfg.Retry.InitialBackoff == 0 {
		cfg.Retry.InitialBackoff = DefaultRetryInitialBackoff
	}
	if cfg.Retry.MaxBackoff == 0 {
		cfg.Retry.MaxBackoff = DefaultRetryMaxBackoff
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = DefaultRetryMultiplier
	}

	// Cache
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}

	// Events
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}

	// Metrics
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
