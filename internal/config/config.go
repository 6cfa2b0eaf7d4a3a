// Package config loads engine configuration from an optional YAML file and
// environment variables. All tuning thresholds live here as named,
// overridable settings rather than literals.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/openshelf/enricher/internal/dupdetect"
	"github.com/openshelf/enricher/internal/ratelimit"
	"github.com/openshelf/enricher/internal/reconcile"
)

// RetryConfig bounds the provider retry loop.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// ProviderConfig overrides one provider's defaults.
type ProviderConfig struct {
	Enabled   *bool            `mapstructure:"enabled"`
	RateLimit ratelimit.Config `mapstructure:"rate_limit"`
}

// Config is the full engine configuration.
type Config struct {
	Strategy     string                    `mapstructure:"strategy"`
	MaxProviders int                       `mapstructure:"max_providers"`
	Retry        RetryConfig               `mapstructure:"retry"`
	Conflicts    reconcile.DetectorConfig  `mapstructure:"conflicts"`
	Duplicates   dupdetect.Config          `mapstructure:"duplicates"`
	Providers    map[string]ProviderConfig `mapstructure:"providers"`
}

// Load reads configuration from path (optional; empty means defaults plus
// any enricher.yaml in the working directory) with ENRICHER_* environment
// overrides.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("strategy", "priority")
	v.SetDefault("max_providers", -1)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("retry.max_delay", 30*time.Second)
	v.SetDefault("conflicts.string_similarity_threshold", 0.8)
	v.SetDefault("conflicts.numeric_tolerance", 0.05)
	v.SetDefault("conflicts.reliability_gap_threshold", 0.3)
	v.SetDefault("duplicates.min_similarity", 0.3)

	v.SetEnvPrefix("ENRICHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("enricher")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// Missing default config is fine; anything else is not.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
