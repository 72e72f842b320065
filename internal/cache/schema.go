package cache

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Models returns every bun model the cache persists, in creation order.
func Models() []any {
	return []any{
		(*TranslationRecord)(nil),
		(*translationKey)(nil),
	}
}

// CreateSchema creates the cache tables and indexes when they do not exist.
// Production deployments normally apply the embedded SQL migrations instead;
// this helper covers tests and zero-setup embedding.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("cache: create table %T: %w", model, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_translations_fingerprint ON translations(fingerprint)",
		"CREATE INDEX IF NOT EXISTS idx_translations_translated_by ON translations(translated_by)",
		"CREATE INDEX IF NOT EXISTS idx_translation_keys_key ON translation_keys(key)",
	}
	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("cache: create index: %w", err)
		}
	}
	return nil
}
