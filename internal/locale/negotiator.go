package locale

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// Config fixes the supported locale set and the fallback used when no
// preference matches. It is passed at construction; negotiation never reads
// ambient process state.
type Config struct {
	Supported []string
	Default   string
}

// Negotiator resolves a ranked locale preference list against a fixed
// supported set. Both entry points share one matcher, so header-sourced and
// environment-sourced preferences behave identically.
type Negotiator struct {
	config    Config
	matcher   language.Matcher
	supported []string
	logger    interfaces.Logger
}

// Option customises a Negotiator.
type Option func(*Negotiator)

// WithLogger attaches a logger used to report skipped preference tags.
func WithLogger(logger interfaces.Logger) Option {
	return func(n *Negotiator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New builds a negotiator for the configured locale set. Malformed supported
// tags are skipped; if none parse, every negotiation resolves to the default.
func New(config Config, opts ...Option) *Negotiator {
	n := &Negotiator{
		config: config,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}

	tags := make([]language.Tag, 0, len(config.Supported))
	codes := make([]string, 0, len(config.Supported))
	for _, code := range config.Supported {
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		tag, err := language.Parse(trimmed)
		if err != nil {
			n.logger.Warn("locale.supported.skipped", "code", trimmed, "error", err)
			continue
		}
		tags = append(tags, tag)
		codes = append(codes, trimmed)
	}

	if len(tags) > 0 {
		n.matcher = language.NewMatcher(tags)
		n.supported = codes
	}
	return n
}

// Default returns the configured fallback locale.
func (n *Negotiator) Default() string {
	if n == nil {
		return ""
	}
	return n.config.Default
}

// Supported returns the configured locale codes that parsed successfully.
func (n *Negotiator) Supported() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.supported))
	copy(out, n.supported)
	return out
}

// Negotiate picks the best supported locale from an ordered preference list,
// such as the environment-reported languages of a client. Unparseable entries
// are skipped; when nothing matches the default is returned. It never fails.
func (n *Negotiator) Negotiate(preferences []string) string {
	if n == nil {
		return ""
	}
	tags := make([]language.Tag, 0, len(preferences))
	for _, pref := range preferences {
		trimmed := strings.TrimSpace(pref)
		if trimmed == "" {
			continue
		}
		tag, err := language.Parse(trimmed)
		if err != nil {
			n.logger.Debug("locale.preference.skipped", "tag", trimmed, "error", err)
			continue
		}
		tags = append(tags, tag)
	}
	return n.match(tags)
}

// NegotiateHeader picks the best supported locale from an Accept-Language
// style header. Parse failures are fully absorbed and resolve to the default.
func (n *Negotiator) NegotiateHeader(header string) string {
	if n == nil {
		return ""
	}
	if strings.TrimSpace(header) == "" {
		return n.config.Default
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		n.logger.Debug("locale.header.unparseable", "header", header, "error", err)
		return n.config.Default
	}
	return n.match(tags)
}

func (n *Negotiator) match(preferences []language.Tag) string {
	if n.matcher == nil || len(preferences) == 0 {
		return n.config.Default
	}
	_, index, confidence := n.matcher.Match(preferences...)
	if confidence == language.No || index < 0 || index >= len(n.supported) {
		return n.config.Default
	}
	return n.supported[index]
}
