package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDefaultLocaleRequired = errors.New("translate config: default locale is required")
var ErrSupportedLocalesRequired = errors.New("translate config: at least one supported locale is required")
var ErrDefaultLocaleUnsupported = errors.New("translate config: default locale must be listed as supported")
var ErrReclaimMaxAgeInvalid = errors.New("translate config: reclaim max age must be zero or positive")
var ErrCacheTTLInvalid = errors.New("translate config: cache ttl must be zero or positive")
var ErrLoggingProviderRequired = errors.New("translate config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("translate config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("translate config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("translate config: logging format is invalid")
var ErrProviderAPIKeyRequired = errors.New("translate config: provider api key is required when the openai provider is enabled")

// Config aggregates locale, cache, provider and logging bindings for the
// translation module. Fields intentionally use simple types so host
// applications can extend them later.
type Config struct {
	Enabled  bool
	Locales  LocaleConfig
	Cache    CacheConfig
	Provider ProviderConfig
	Reclaim  ReclaimConfig
	Features Features
	Logging  LoggingConfig
}

// LocaleConfig declares the locales the deployment can answer with.
type LocaleConfig struct {
	Supported []string
	Default   string
}

// CacheConfig captures cache behaviour toggles. DefaultTTL bounds the
// read-through repository cache, not record lifetime.
type CacheConfig struct {
	ReadCache  bool
	DefaultTTL time.Duration
}

// ProviderConfig selects and configures the translation producer.
type ProviderConfig struct {
	Name        string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// ReclaimConfig controls the stale placeholder sweep.
type ReclaimConfig struct {
	MaxAge         time.Duration
	CronExpression string
}

// Features toggles module functionality.
type Features struct {
	Logger  bool
	Reclaim bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a single-locale deployment.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Locales: LocaleConfig{
			Supported: []string{"de"},
			Default:   "de",
		},
		Cache: CacheConfig{
			ReadCache:  true,
			DefaultTTL: time.Minute,
		},
		Provider: ProviderConfig{},
		Reclaim: ReclaimConfig{
			MaxAge:         24 * time.Hour,
			CronExpression: "@hourly",
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Locales.Default) == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales.Supported) == 0 {
		return ErrSupportedLocalesRequired
	}
	if !containsLocale(cfg.Locales.Supported, cfg.Locales.Default) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleUnsupported, cfg.Locales.Default)
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Reclaim.MaxAge < 0 {
		return ErrReclaimMaxAgeInvalid
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Provider.Name), "openai") {
		if strings.TrimSpace(cfg.Provider.APIKey) == "" {
			return ErrProviderAPIKeyRequired
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func containsLocale(supported []string, code string) bool {
	for _, candidate := range supported {
		if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(code)) {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
