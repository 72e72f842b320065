package runtimeconfig

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Locales.Default != "de" {
		t.Fatalf("unexpected default locale %q", cfg.Locales.Default)
	}
}

func TestValidateLocaleRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Locales.Default = ""
	if err := cfg.Validate(); !errors.Is(err, ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Locales.Supported = nil
	if err := cfg.Validate(); !errors.Is(err, ErrSupportedLocalesRequired) {
		t.Fatalf("expected ErrSupportedLocalesRequired, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Locales.Default = "fr"
	if err := cfg.Validate(); !errors.Is(err, ErrDefaultLocaleUnsupported) {
		t.Fatalf("expected ErrDefaultLocaleUnsupported, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Locales.Supported = []string{"DE", "en"}
	cfg.Locales.Default = "de"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("locale matching must be case-insensitive, got %v", err)
	}
}

func TestValidateDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.DefaultTTL = -time.Second
	if err := cfg.Validate(); !errors.Is(err, ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Reclaim.MaxAge = -time.Hour
	if err := cfg.Validate(); !errors.Is(err, ErrReclaimMaxAgeInvalid) {
		t.Fatalf("expected ErrReclaimMaxAgeInvalid, got %v", err)
	}
}

func TestValidateProviderCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.Name = "openai"
	if err := cfg.Validate(); !errors.Is(err, ErrProviderAPIKeyRequired) {
		t.Fatalf("expected ErrProviderAPIKeyRequired, got %v", err)
	}

	cfg.Provider.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateLoggingRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}

	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg.Logging.Format = "json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
