package hydrate

import (
	"context"
	"sync"

	"github.com/goliatone/go-translate/internal/cache"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// Lookuper batch-loads candidate translation records. The cache service
// satisfies this contract.
type Lookuper interface {
	Lookup(ctx context.Context, keys []string) []*cache.TranslationRecord
}

// Resolver serves cache misses through the shared read-through path. The
// cache service satisfies this contract.
type Resolver interface {
	Resolve(ctx context.Context, req cache.ResolveRequest) (*cache.Resolution, error)
}

// Snapshot computes the initial hydration payload for a server-rendered page:
// each requested key mapped to its usable translated text. Placeholders are
// never included, so a pending translation simply stays absent and the client
// falls through to the resolver.
func Snapshot(ctx context.Context, source Lookuper, keys []string) map[string]string {
	normalized := cache.NormalizeKeys(keys)
	out := make(map[string]string, len(normalized))
	if source == nil || len(normalized) == 0 {
		return out
	}

	requested := make(map[string]struct{}, len(normalized))
	for _, key := range normalized {
		requested[key] = struct{}{}
	}

	for _, record := range source.Lookup(ctx, normalized) {
		if !record.Usable() {
			continue
		}
		for _, key := range record.Keys {
			if _, ok := requested[key]; !ok {
				continue
			}
			if _, exists := out[key]; !exists {
				out[key] = record.TranslatedText
			}
		}
	}
	return out
}

// Store is the client-side read-through cache for one rendering session. It
// is seeded with the server snapshot; misses fall through to the resolver and
// successful resolutions are kept for the remainder of the session. A store
// is never shared across sessions.
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	resolver Resolver
	logger   interfaces.Logger
}

// StoreOption customises a hydration store.
type StoreOption func(*Store)

// WithLogger attaches a logger for miss and failure reporting.
func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore seeds a session store from a hydration snapshot.
func NewStore(snapshot map[string]string, resolver Resolver, opts ...StoreOption) *Store {
	s := &Store{
		values:   normalizeSnapshot(snapshot),
		resolver: resolver,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get serves a key synchronously from the snapshot or from previously
// resolved values.
func (s *Store) Get(key string) (string, bool) {
	normalized := cache.NormalizeKeys([]string{key})
	if len(normalized) == 0 {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[normalized[0]]
	return value, ok
}

// Resolve serves the request from session state when possible and otherwise
// falls through to the shared resolver. Only completed translations are
// cached; a degraded resolution is returned for rendering but never recorded
// as a success.
func (s *Store) Resolve(ctx context.Context, req cache.ResolveRequest) (string, error) {
	keys := cache.NormalizeKeys(req.Keys)

	s.mu.RLock()
	for _, key := range keys {
		if value, ok := s.values[key]; ok {
			s.mu.RUnlock()
			return value, nil
		}
	}
	s.mu.RUnlock()

	if s.resolver == nil {
		return "", nil
	}

	resolution, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return "", err
	}
	if !resolution.Translated {
		s.logger.Debug("hydrate.resolve.degraded", "keys", keys)
		return resolution.Text, nil
	}

	s.mu.Lock()
	for _, key := range keys {
		s.values[key] = resolution.Text
	}
	s.mu.Unlock()
	return resolution.Text, nil
}

// Reset tears the session state down and reseeds it, matching a navigation
// or reload. Nothing survives across sessions.
func (s *Store) Reset(snapshot map[string]string) {
	s.mu.Lock()
	s.values = normalizeSnapshot(snapshot)
	s.mu.Unlock()
}

// Len reports how many entries the session currently holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func normalizeSnapshot(snapshot map[string]string) map[string]string {
	values := make(map[string]string, len(snapshot))
	for key, value := range snapshot {
		normalized := cache.NormalizeKeys([]string{key})
		if len(normalized) == 0 {
			continue
		}
		values[normalized[0]] = value
	}
	return values
}
