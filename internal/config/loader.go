package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "BIOTERM"

// newViper builds a pre-configured Viper instance with the service's standard
// settings: YAML file type, BIOTERM_ env prefix, automatic env binding, and a
// key replacer that maps "." to "_" so that nested keys like "bioportal.api_key"
// resolve to "BIOTERM_BIOPORTAL_API_KEY".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath, merges any BIOTERM_* environment
// variable overrides, applies service defaults for unset fields, and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from BIOTERM_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised deployments.
//
// Environment variable naming convention:
//
//	BIOTERM_<SECTION>_<FIELD>   e.g.  BIOTERM_OLS_BASE_URL, BIOTERM_CACHE_ADDR
func LoadFromEnv() (*Config, error) {
	v := newViper()
	bindEnvKeys(v)
	return unmarshalAndFinalize(v)
}

// bindEnvKeys registers every known configuration key so AutomaticEnv picks
// up values even when no config file seeded viper's key set.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.host", "server.port", "server.mode",
		"server.read_timeout", "server.write_timeout", "server.idle_timeout",
		"server.shutdown_timeout", "server.rate_limit_rps", "server.rate_limit_burst",
		"log.level", "log.format", "log.service_name",
		"ols.base_url", "ols.timeout", "ols.max_results",
		"bioportal.api_key", "bioportal.base_url", "bioportal.timeout", "bioportal.max_results",
		"anthropic.api_key", "anthropic.base_url", "anthropic.model",
		"anthropic.max_tokens", "anthropic.timeout",
		"annotation.min_confidence", "annotation.use_fallback",
		"annotation.batch_concurrency", "annotation.max_batch_size",
		"retry.max_attempts", "retry.initial_backoff", "retry.max_backoff", "retry.multiplier",
		"cache.enabled", "cache.addr", "cache.password", "cache.db", "cache.ttl", "cache.key_prefix",
		"events.enabled", "events.brokers", "events.topic",
		"metrics.enabled", "metrics.namespace",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level and rate-limit
// thresholds; callers are responsible for applying only the safe subset of
// changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// If the changed file fails to parse or validate, onChange is NOT called so
// the application never enters a broken state.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors are ignored here since callers call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
