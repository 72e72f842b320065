package translate

import "github.com/goliatone/go-translate/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired    = runtimeconfig.ErrDefaultLocaleRequired
	ErrSupportedLocalesRequired = runtimeconfig.ErrSupportedLocalesRequired
	ErrDefaultLocaleUnsupported = runtimeconfig.ErrDefaultLocaleUnsupported
	ErrReclaimMaxAgeInvalid     = runtimeconfig.ErrReclaimMaxAgeInvalid
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrProviderAPIKeyRequired   = runtimeconfig.ErrProviderAPIKeyRequired
)

type (
	Config         = runtimeconfig.Config
	LocaleConfig   = runtimeconfig.LocaleConfig
	CacheConfig    = runtimeconfig.CacheConfig
	ProviderConfig = runtimeconfig.ProviderConfig
	ReclaimConfig  = runtimeconfig.ReclaimConfig
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
