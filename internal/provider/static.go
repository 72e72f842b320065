package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-translate/internal/cache"
)

// ErrNoTranslation indicates the static provider has no scripted output for
// the given content.
var ErrNoTranslation = errors.New("provider: no translation available")

// Static serves translations from a fixed table keyed by the wrapped source
// text. It backs tests and offline fixtures.
type Static struct {
	name         string
	translations map[string]string
}

// NewStatic constructs a static provider. The name becomes the producer
// attribution on records it fills.
func NewStatic(name string, translations map[string]string) *Static {
	if name == "" {
		name = "static"
	}
	copied := make(map[string]string, len(translations))
	for text, translated := range translations {
		copied[text] = translated
	}
	return &Static{name: name, translations: copied}
}

// Name identifies the producer.
func (s *Static) Name() string {
	return s.name
}

// Translate returns the scripted translation for the wrapped text.
func (s *Static) Translate(_ context.Context, text string, _ cache.OutputOptions) (string, error) {
	translated, ok := s.translations[text]
	if !ok {
		return "", fmt.Errorf("%w for %q", ErrNoTranslation, text)
	}
	return translated, nil
}

var _ cache.Provider = (*Static)(nil)
