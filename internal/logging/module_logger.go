package logging

import (
	"context"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

const (
	rootModule    = "translate"
	cacheModule   = "translate.cache"
	localeModule  = "translate.locale"
	hydrateModule = "translate.hydrate"
	reclaimModule = "translate.reclaim"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// CacheLogger returns the logger namespace reserved for the translation cache.
func CacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cacheModule)
}

// LocaleLogger returns the logger namespace reserved for locale negotiation.
func LocaleLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, localeModule)
}

// HydrateLogger returns the logger namespace reserved for hydration stores.
func HydrateLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, hydrateModule)
}

// ReclaimLogger returns the logger namespace reserved for reclaim workers.
func ReclaimLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reclaimModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
