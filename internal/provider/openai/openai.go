// OpenAI-backed translation provider using the go-openai library.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/goliatone/go-translate/internal/cache"
)

const defaultModel = openai.GPT4oMini

// ErrAPIKeyRequired indicates the provider was configured without credentials.
var ErrAPIKeyRequired = errors.New("openai: api key is required")

// Config captures the options exposed by the OpenAI adapter.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Provider translates id-wrapped content through the OpenAI chat API. The
// positional tags of the input must survive in the output, so the prompt
// instructs the model to leave them untouched.
type Provider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// New constructs an OpenAI translation provider.
func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name identifies the producer, including the model for attribution.
func (p *Provider) Name() string {
	return "openai:" + p.model
}

// Translate sends the wrapped text through a chat completion request.
func (p *Provider) Translate(ctx context.Context, text string, options cache.OutputOptions) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(options),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func systemPrompt(options cache.OutputOptions) string {
	canonical := options.Canonical()

	var sb strings.Builder
	sb.WriteString("You translate content into the target locale ")
	sb.WriteString(fmt.Sprintf("%q.", canonical.Locale))
	sb.WriteString(" The input wraps every fragment in numeric tags like <01>...</01>.")
	sb.WriteString(" Translate only the text between tags and keep every tag exactly as it appears.")

	if canonical.Formality != "" {
		sb.WriteString(fmt.Sprintf(" Use a %s register.", canonical.Formality))
	}
	if len(canonical.Tone) > 0 {
		sb.WriteString(" Tone: " + strings.Join(canonical.Tone, ", ") + ".")
	}
	if len(canonical.Glossary) > 0 {
		terms := make([]string, 0, len(canonical.Glossary))
		for term := range canonical.Glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		sb.WriteString(" Preferred terminology:")
		for _, term := range terms {
			sb.WriteString(fmt.Sprintf(" %q -> %q;", term, canonical.Glossary[term]))
		}
	}
	sb.WriteString(" Respond with the translated tagged text only.")
	return sb.String()
}

var _ cache.Provider = (*Provider)(nil)
