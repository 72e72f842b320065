package cache

import (
	"context"
	"fmt"
	"slices"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	repocache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewTranslationRepository builds the generic record repository used for
// identity and fingerprint reads.
func NewTranslationRepository(db *bun.DB) repository.Repository[*TranslationRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*TranslationRecord]{
		NewRecord: func() *TranslationRecord { return &TranslationRecord{} },
		GetID: func(r *TranslationRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *TranslationRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "fingerprint"
		},
		GetIdentifierValue: func(r *TranslationRecord) string {
			if r == nil {
				return ""
			}
			return r.Fingerprint
		},
	})
}

// BunRepository persists translation records with bun, maintaining the
// denormalized key index alongside the record table.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*TranslationRecord]
	now  func() time.Time
}

// NewBunRepository creates a repository without read caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a repository whose fingerprint reads go
// through the provided cache service.
func NewBunRepositoryWithCache(db *bun.DB, cacheService repocache.CacheService, serializer repocache.KeySerializer) *BunRepository {
	base := NewTranslationRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRepository{
		db:   db,
		repo: base,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// GetByFingerprint returns the record stored under a fingerprint.
func (r *BunRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*TranslationRecord, error) {
	record, err := r.repo.GetByIdentifier(ctx, fingerprint)
	if err != nil {
		return nil, mapRepositoryError(err, fingerprint)
	}
	return record, nil
}

// Upsert inserts the record keyed by its deterministic identity; an existing
// row wins and only newly observed lookup keys are merged into the index.
func (r *BunRepository) Upsert(ctx context.Context, record *TranslationRecord) (*TranslationRecord, error) {
	if record == nil {
		return nil, ErrRecordNotFound
	}

	insert := record.Clone()
	now := r.now()
	if insert.CreatedAt.IsZero() {
		insert.CreatedAt = now
	}
	if insert.UpdatedAt.IsZero() {
		insert.UpdatedAt = now
	}

	var stored TranslationRecord
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(insert).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}

		if err := upsertKeys(ctx, tx, insert.ID, insert.Keys); err != nil {
			return err
		}

		if err := tx.NewSelect().
			Model(&stored).
			Where("t.id = ?", insert.ID).
			Scan(ctx); err != nil {
			return err
		}

		// Keep the denormalized keys column aligned with the index rows.
		merged := mergeKeys(stored.Keys, insert.Keys)
		if len(merged) != len(stored.Keys) {
			stored.Keys = merged
			stored.UpdatedAt = now
			if _, err := tx.NewUpdate().
				Model(&stored).
				Column("keys", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache: upsert translation: %w", err)
	}
	return &stored, nil
}

// Update rewrites a record and resynchronises its key index rows.
func (r *BunRepository) Update(ctx context.Context, record *TranslationRecord) (*TranslationRecord, error) {
	if record == nil {
		return nil, ErrRecordNotFound
	}

	updated := record.Clone()
	updated.UpdatedAt = r.now()

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(updated).
			Column("keys", "original_text", "output_options", "translated_by", "translated_text", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &NotFoundError{Fingerprint: updated.Fingerprint}
		}

		if _, err := tx.NewDelete().
			Model((*translationKey)(nil)).
			Where("translation_id = ?", updated.ID).
			Exec(ctx); err != nil {
			return err
		}
		return upsertKeys(ctx, tx, updated.ID, updated.Keys)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LookupByKeys resolves the key index first, then loads matching records in
// creation order.
func (r *BunRepository) LookupByKeys(ctx context.Context, keys []string) ([]*TranslationRecord, error) {
	if len(keys) == 0 {
		return []*TranslationRecord{}, nil
	}

	var ids []uuid.UUID
	if err := r.db.NewSelect().
		Model((*translationKey)(nil)).
		Column("tk.translation_id").
		Distinct().
		Where("tk.key IN (?)", bun.In(keys)).
		Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("cache: lookup key index: %w", err)
	}
	if len(ids) == 0 {
		return []*TranslationRecord{}, nil
	}

	records := make([]*TranslationRecord, 0, len(ids))
	if err := r.db.NewSelect().
		Model(&records).
		Where("t.id IN (?)", bun.In(ids)).
		OrderExpr("t.created_at ASC, t.id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("cache: load translations: %w", err)
	}
	return records, nil
}

// ReclaimEmpty deletes the placeholders stored under a fingerprint.
func (r *BunRepository) ReclaimEmpty(ctx context.Context, fingerprint string) (int, error) {
	if fingerprint == "" {
		return 0, nil
	}
	return r.reclaim(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("t.fingerprint = ?", fingerprint)
	})
}

// ReclaimStale deletes every placeholder last touched before the cutoff.
func (r *BunRepository) ReclaimStale(ctx context.Context, olderThan time.Time) (int, error) {
	return r.reclaim(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("t.updated_at < ?", olderThan)
	})
}

// CountStale reports how many placeholders ReclaimStale would remove.
func (r *BunRepository) CountStale(ctx context.Context, olderThan time.Time) (int, error) {
	count, err := r.db.NewSelect().
		Model((*TranslationRecord)(nil)).
		Where("t.translated_by = ''").
		Where("t.updated_at < ?", olderThan).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache: count stale placeholders: %w", err)
	}
	return count, nil
}

func (r *BunRepository) reclaim(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) (int, error) {
	removed := 0
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var ids []uuid.UUID
		query := tx.NewSelect().
			Model((*TranslationRecord)(nil)).
			Column("t.id").
			Where("t.translated_by = ''")
		if err := filter(query).Scan(ctx, &ids); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if _, err := tx.NewDelete().
			Model((*translationKey)(nil)).
			Where("translation_id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*TranslationRecord)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Where("translated_by = ''").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = int(affected)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache: reclaim placeholders: %w", err)
	}
	return removed, nil
}

func upsertKeys(ctx context.Context, tx bun.Tx, id uuid.UUID, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	rows := make([]translationKey, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, translationKey{TranslationID: id, Key: key})
	}
	_, err := tx.NewInsert().
		Model(&rows).
		On("CONFLICT (translation_id, key) DO NOTHING").
		Exec(ctx)
	return err
}

func mergeKeys(existing, incoming []string) []string {
	merged := slices.Clone(existing)
	for _, key := range incoming {
		if !slices.Contains(merged, key) {
			merged = append(merged, key)
		}
	}
	return merged
}

func mapRepositoryError(err error, fingerprint string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Fingerprint: fingerprint}
	}
	return fmt.Errorf("cache: translation repository error: %w", err)
}

var _ Repository = (*BunRepository)(nil)
