package openai

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-translate/internal/cache"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrAPIKeyRequired) {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestNewDefaultsModel(t *testing.T) {
	p, err := New(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !strings.HasPrefix(p.Name(), "openai:") {
		t.Fatalf("Name() = %q", p.Name())
	}
	if p.Name() == "openai:" {
		t.Fatal("expected default model in name")
	}
}

func TestSystemPromptCarriesOptions(t *testing.T) {
	prompt := systemPrompt(cache.OutputOptions{
		Locale:    "de",
		Formality: "formal",
		Tone:      []string{"warm", "concise"},
		Glossary:  map[string]string{"cloud": "Cloud"},
	})

	for _, want := range []string{`"de"`, "formal", "concise, warm", `"cloud" -> "Cloud"`} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %s", want, prompt)
		}
	}
	if !strings.Contains(prompt, "keep every tag") {
		t.Fatalf("prompt must require tag preservation: %s", prompt)
	}
}
