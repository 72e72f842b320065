package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRecordNotFound indicates an update targeted a translation record that no
// longer exists.
var ErrRecordNotFound = errors.New("cache: translation record not found")

// NotFoundError describes a missing translation record and unwraps to
// ErrRecordNotFound.
type NotFoundError struct {
	Fingerprint string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Fingerprint == "" {
		return "cache: translation record not found"
	}
	return fmt.Sprintf("cache: translation record %q not found", e.Fingerprint)
}

func (e *NotFoundError) Unwrap() error {
	return ErrRecordNotFound
}

// Repository persists translation records and their denormalized key index.
// Implementations must treat lookups as read-only and must never delete
// usable records through the reclaim operations.
type Repository interface {
	// Upsert inserts a record keyed by its deterministic identity. When the
	// record already exists the stored row is returned unchanged apart from
	// newly observed lookup keys, which are merged into the index.
	Upsert(ctx context.Context, record *TranslationRecord) (*TranslationRecord, error)

	// Update rewrites a record in place, typically to attach a provider
	// response to a placeholder.
	Update(ctx context.Context, record *TranslationRecord) (*TranslationRecord, error)

	// LookupByKeys returns every record whose key set intersects the given
	// normalized keys. Empty input yields an empty result, not an error.
	LookupByKeys(ctx context.Context, keys []string) ([]*TranslationRecord, error)

	// ReclaimEmpty deletes the placeholder records for a fingerprint,
	// returning the number removed. Usable records are never touched.
	ReclaimEmpty(ctx context.Context, fingerprint string) (int, error)

	// ReclaimStale deletes every placeholder last touched before the cutoff.
	ReclaimStale(ctx context.Context, olderThan time.Time) (int, error)

	// CountStale reports how many placeholders ReclaimStale would remove.
	CountStale(ctx context.Context, olderThan time.Time) (int, error)
}
