package cache

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryRepository stores translation records in-memory. It backs tests and
// zero-configuration embedding; the bun repository is the durable twin.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*TranslationRecord
	byKey   map[string]map[string]struct{}
	now     func() time.Time
}

// MemoryOption customises a MemoryRepository.
type MemoryOption func(*MemoryRepository)

// WithMemoryClock overrides the timestamp source, mainly for tests.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(r *MemoryRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	r := &MemoryRepository{
		records: map[string]*TranslationRecord{},
		byKey:   map[string]map[string]struct{}{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Upsert stores the record unless its identity already exists; in that case
// the stored record wins and only newly observed keys are merged in.
func (r *MemoryRepository) Upsert(_ context.Context, record *TranslationRecord) (*TranslationRecord, error) {
	if record == nil {
		return nil, ErrRecordNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := record.ID.String()
	if existing, ok := r.records[id]; ok {
		for _, key := range record.Keys {
			if !slices.Contains(existing.Keys, key) {
				existing.Keys = append(existing.Keys, key)
			}
			r.indexKey(key, id)
		}
		return existing.Clone(), nil
	}

	stored := record.Clone()
	now := r.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	r.records[id] = stored
	for _, key := range stored.Keys {
		r.indexKey(key, id)
	}
	return stored.Clone(), nil
}

// Update rewrites an existing record in place.
func (r *MemoryRepository) Update(_ context.Context, record *TranslationRecord) (*TranslationRecord, error) {
	if record == nil {
		return nil, ErrRecordNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := record.ID.String()
	existing, ok := r.records[id]
	if !ok {
		return nil, &NotFoundError{Fingerprint: record.Fingerprint}
	}

	for _, key := range existing.Keys {
		r.unindexKey(key, id)
	}

	stored := record.Clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.now()
	r.records[id] = stored
	for _, key := range stored.Keys {
		r.indexKey(key, id)
	}
	return stored.Clone(), nil
}

// LookupByKeys returns every record sharing at least one key with the input.
// Results are ordered by creation time for deterministic iteration.
func (r *MemoryRepository) LookupByKeys(_ context.Context, keys []string) ([]*TranslationRecord, error) {
	if len(keys) == 0 {
		return []*TranslationRecord{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := map[string]struct{}{}
	for _, key := range keys {
		for id := range r.byKey[key] {
			matched[id] = struct{}{}
		}
	}

	out := make([]*TranslationRecord, 0, len(matched))
	for id := range matched {
		if record, ok := r.records[id]; ok {
			out = append(out, record.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ReclaimEmpty removes placeholder records for the fingerprint.
func (r *MemoryRepository) ReclaimEmpty(_ context.Context, fingerprint string) (int, error) {
	if fingerprint == "" {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, record := range r.records {
		if record.Fingerprint == fingerprint && !record.Usable() {
			r.remove(id, record)
			removed++
		}
	}
	return removed, nil
}

// ReclaimStale removes every placeholder last touched before the cutoff.
func (r *MemoryRepository) ReclaimStale(_ context.Context, olderThan time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, record := range r.records {
		if !record.Usable() && record.UpdatedAt.Before(olderThan) {
			r.remove(id, record)
			removed++
		}
	}
	return removed, nil
}

// CountStale reports how many placeholders ReclaimStale would remove.
func (r *MemoryRepository) CountStale(_ context.Context, olderThan time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, record := range r.records {
		if !record.Usable() && record.UpdatedAt.Before(olderThan) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) remove(id string, record *TranslationRecord) {
	for _, key := range record.Keys {
		r.unindexKey(key, id)
	}
	delete(r.records, id)
}

func (r *MemoryRepository) indexKey(key, id string) {
	ids, ok := r.byKey[key]
	if !ok {
		ids = map[string]struct{}{}
		r.byKey[key] = ids
	}
	ids[id] = struct{}{}
}

func (r *MemoryRepository) unindexKey(key, id string) {
	if ids, ok := r.byKey[key]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byKey, key)
		}
	}
}

var _ Repository = (*MemoryRepository)(nil)
