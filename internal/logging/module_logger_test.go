package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

func TestModuleLoggerDefaultsToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, cacheModule)
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	// No-op loggers must absorb calls without panicking.
	logger.Info("cache.lookup")
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	provider := &recordingProvider{logger: &recordingLogger{}}

	logger := ModuleLogger(provider, localeModule)
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}

	if provider.requested != localeModule {
		t.Fatalf("expected provider to receive %q, got %q", localeModule, provider.requested)
	}
	if got := provider.logger.fields["module"]; got != localeModule {
		t.Fatalf("expected module field %q, got %v", localeModule, got)
	}
}

func TestModuleLoggerFallsBackToRootModule(t *testing.T) {
	provider := &recordingProvider{logger: &recordingLogger{}}
	ModuleLogger(provider, "")
	if provider.requested != rootModule {
		t.Fatalf("expected root module request, got %q", provider.requested)
	}
}

func TestWithFieldsSkipsNonFieldsLoggers(t *testing.T) {
	logger := NoOp()
	if got := WithFields(logger, nil); got != logger {
		t.Fatal("expected logger to pass through for empty fields")
	}
}

type recordingProvider struct {
	requested string
	logger    *recordingLogger
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	p.requested = name
	return p.logger
}

type recordingLogger struct {
	fields map[string]any
}

var _ interfaces.Logger = (*recordingLogger)(nil)
var _ interfaces.FieldsLogger = (*recordingLogger)(nil)

func (l *recordingLogger) Trace(string, ...any) {}
func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Fatal(string, ...any) {}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	l.fields = fields
	return l
}
