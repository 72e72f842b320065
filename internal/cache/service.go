package cache

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-translate/internal/linearize"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// Provider computes translations for linearized, id-wrapped content. The
// returned string is expected to preserve the positional tag structure.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text string, options OutputOptions) (string, error)
}

// ResolveRequest asks the cache for a translation of a content tree.
type ResolveRequest struct {
	Content linearize.Node
	BaseKey string
	Keys    []string
	Options OutputOptions
}

// Validate enforces the minimal request shape. Content may be absent; an
// empty tree resolves to an empty document.
func (r ResolveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Keys, validation.Required),
		validation.Field(&r.Options),
	)
}

// Resolution is the outcome of a resolve call. Text always carries something
// renderable: the translation on a hit, the original flattened content when
// the system degrades.
type Resolution struct {
	Text        string
	Original    string
	Fingerprint string
	Producer    string
	Translated  bool
}

// Service is the translation cache aggregate: fingerprint derivation, batch
// lookup, read-through resolution, and placeholder reclamation.
type Service interface {
	// Lookup batch-loads candidate records by normalized keys. Store
	// failures are absorbed: the caller sees an empty result.
	Lookup(ctx context.Context, keys []string) []*TranslationRecord

	// Resolve serves a translation for the request, creating a placeholder
	// and consulting the provider on a miss. It degrades to the original
	// content instead of failing the rendering path.
	Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error)

	// ReclaimEmpty removes the placeholders matching the exact
	// (originalText, outputOptions) pair so future requests retry.
	ReclaimEmpty(ctx context.Context, text linearize.Document, options OutputOptions) (int, error)

	// ReclaimStale removes every placeholder older than maxAge.
	ReclaimStale(ctx context.Context, maxAge time.Duration) (int, error)

	// CountStale reports how many placeholders ReclaimStale would remove.
	CountStale(ctx context.Context, maxAge time.Duration) (int, error)

	// Fingerprint exposes the deterministic cache identity for a document.
	Fingerprint(text linearize.Document, options OutputOptions) string
}

type service struct {
	repo     Repository
	provider Provider
	logger   interfaces.Logger
	now      func() time.Time
}

// ServiceOption customises the cache service.
type ServiceOption func(*service)

// WithProvider attaches the external translation provider consulted on miss.
func WithProvider(provider Provider) ServiceOption {
	return func(s *service) {
		s.provider = provider
	}
}

// WithLogger attaches a logger for degraded-path reporting.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService constructs the cache service on top of a record repository.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Lookup(ctx context.Context, keys []string) []*TranslationRecord {
	normalized := NormalizeKeys(keys)
	if len(normalized) == 0 {
		return []*TranslationRecord{}
	}

	records, err := s.repo.LookupByKeys(ctx, normalized)
	if err != nil {
		s.logger.Warn("cache.lookup.store_unavailable", "keys", normalized, "error", err)
		return []*TranslationRecord{}
	}
	return records
}

func (s *service) Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("cache: invalid resolve request: %w", err)
	}

	doc := linearize.Segments(req.Content, req.BaseKey)
	flat := doc.Flat()
	options := req.Options.Canonical()
	fingerprint := Fingerprint(doc, options)

	resolution := &Resolution{
		Text:        flat,
		Original:    flat,
		Fingerprint: fingerprint,
	}

	for _, record := range s.Lookup(ctx, req.Keys) {
		if record.Fingerprint == fingerprint && record.Usable() {
			resolution.Text = record.TranslatedText
			resolution.Producer = record.TranslatedBy
			resolution.Translated = true
			return resolution, nil
		}
	}

	placeholder := NewPlaceholder(req.Keys, doc, options)
	stored, err := s.repo.Upsert(ctx, placeholder)
	if err != nil {
		// Treat the write as not having happened; rendering still degrades
		// to the original content.
		s.logger.Error("cache.placeholder.store_unavailable", "fingerprint", fingerprint, "error", err)
		return resolution, nil
	}
	if stored.Usable() {
		// A concurrent request or a previous session already filled the row.
		resolution.Text = stored.TranslatedText
		resolution.Producer = stored.TranslatedBy
		resolution.Translated = true
		return resolution, nil
	}

	if s.provider == nil {
		return resolution, nil
	}

	translated, err := s.provider.Translate(ctx, flat, options)
	if err != nil {
		// The placeholder stays behind for reclaim and retry.
		s.logger.Warn("cache.provider.failed", "fingerprint", fingerprint, "provider", s.provider.Name(), "error", err)
		return resolution, nil
	}

	stored.TranslatedBy = s.provider.Name()
	stored.TranslatedText = translated
	stored.UpdatedAt = s.now()
	if _, err := s.repo.Update(ctx, stored); err != nil {
		s.logger.Error("cache.result.store_unavailable", "fingerprint", fingerprint, "error", err)
	}

	resolution.Text = translated
	resolution.Producer = stored.TranslatedBy
	resolution.Translated = true
	return resolution, nil
}

func (s *service) ReclaimEmpty(ctx context.Context, text linearize.Document, options OutputOptions) (int, error) {
	fingerprint := Fingerprint(text, options)
	removed, err := s.repo.ReclaimEmpty(ctx, fingerprint)
	if err != nil {
		return 0, fmt.Errorf("cache: reclaim empty records: %w", err)
	}
	if removed > 0 {
		s.logger.Debug("cache.reclaim.removed", "fingerprint", fingerprint, "count", removed)
	}
	return removed, nil
}

func (s *service) ReclaimStale(ctx context.Context, maxAge time.Duration) (int, error) {
	removed, err := s.repo.ReclaimStale(ctx, s.cutoff(maxAge))
	if err != nil {
		return 0, fmt.Errorf("cache: reclaim stale records: %w", err)
	}
	if removed > 0 {
		s.logger.Debug("cache.reclaim.stale_removed", "max_age", maxAge, "count", removed)
	}
	return removed, nil
}

func (s *service) CountStale(ctx context.Context, maxAge time.Duration) (int, error) {
	count, err := s.repo.CountStale(ctx, s.cutoff(maxAge))
	if err != nil {
		return 0, fmt.Errorf("cache: count stale records: %w", err)
	}
	return count, nil
}

func (s *service) Fingerprint(text linearize.Document, options OutputOptions) string {
	return Fingerprint(text, options)
}

func (s *service) cutoff(maxAge time.Duration) time.Time {
	if maxAge < 0 {
		maxAge = 0
	}
	return s.now().Add(-maxAge)
}
