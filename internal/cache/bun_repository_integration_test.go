package cache_test

import (
	"context"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-translate/internal/cache"
	"github.com/goliatone/go-translate/internal/identity"
	"github.com/goliatone/go-translate/internal/linearize"
	"github.com/goliatone/go-translate/pkg/testsupport"
)

func newTestBunDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	if err := cache.CreateSchema(context.Background(), bunDB); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return bunDB
}

func documentFor(t *testing.T, text string) linearize.Document {
	t.Helper()
	return linearize.Segments(linearize.Text(text), "0")
}

func identityForTest(name string) uuid.UUID {
	return identity.UUID("go-translate:test:" + name)
}

func TestBunRepositoryUpsertAndLookup(t *testing.T) {
	db := newTestBunDB(t)
	repo := cache.NewBunRepository(db)
	ctx := context.Background()

	doc := documentFor(t, "Hello")
	options := cache.OutputOptions{Locale: "de"}

	first, err := repo.Upsert(ctx, cache.NewPlaceholder([]string{"Hello"}, doc, options))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	second, err := repo.Upsert(ctx, cache.NewPlaceholder([]string{"hello", "greeting"}, doc, options))
	if err != nil {
		t.Fatalf("Upsert() second call error = %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected idempotent upsert, got ids %s and %s", first.ID, second.ID)
	}

	records, err := repo.LookupByKeys(ctx, []string{"greeting"})
	if err != nil {
		t.Fatalf("LookupByKeys() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != first.ID {
		t.Fatalf("expected merged key lookup to match, got %v", records)
	}
	if records[0].Usable() {
		t.Fatal("placeholder must not be usable")
	}

	none, err := repo.LookupByKeys(ctx, []string{"missing"})
	if err != nil {
		t.Fatalf("LookupByKeys(missing) error = %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %v", none)
	}
}

func TestBunRepositoryUpdateAttachesResult(t *testing.T) {
	db := newTestBunDB(t)
	repo := cache.NewBunRepository(db)
	ctx := context.Background()

	record, err := repo.Upsert(ctx, cache.NewPlaceholder([]string{"hello"}, documentFor(t, "Hello"), cache.OutputOptions{Locale: "de"}))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	record.TranslatedBy = "provider-test"
	record.TranslatedText = "<0>Hallo</0>"
	if _, err := repo.Update(ctx, record); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := repo.GetByFingerprint(ctx, record.Fingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint() error = %v", err)
	}
	if !stored.Usable() || stored.TranslatedText != "<0>Hallo</0>" {
		t.Fatalf("expected stored result, got %+v", stored)
	}
}

func TestBunRepositoryReclaimEmptyLeavesUsableRecords(t *testing.T) {
	db := newTestBunDB(t)
	repo := cache.NewBunRepository(db)
	ctx := context.Background()

	doc := documentFor(t, "Hello")
	options := cache.OutputOptions{Locale: "de"}
	fingerprint := cache.Fingerprint(doc, options)

	usable, err := repo.Upsert(ctx, cache.NewPlaceholder([]string{"hello"}, doc, options))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	usable.TranslatedBy = "provider-test"
	usable.TranslatedText = "<0>Hallo</0>"
	if _, err := repo.Update(ctx, usable); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Duplicate placeholder sharing the fingerprint, as the concurrent
	// first-request race can produce.
	pending := cache.NewPlaceholder([]string{"hello"}, doc, options)
	pending.ID = identityForTest("bun-duplicate")
	if _, err := repo.Upsert(ctx, pending); err != nil {
		t.Fatalf("Upsert() duplicate error = %v", err)
	}

	removed, err := repo.ReclaimEmpty(ctx, fingerprint)
	if err != nil {
		t.Fatalf("ReclaimEmpty() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 reclaimed placeholder, got %d", removed)
	}

	records, err := repo.LookupByKeys(ctx, []string{"hello"})
	if err != nil {
		t.Fatalf("LookupByKeys() error = %v", err)
	}
	if len(records) != 1 || !records[0].Usable() {
		t.Fatalf("expected only the usable record to survive, got %v", records)
	}

	again, err := repo.ReclaimEmpty(ctx, fingerprint)
	if err != nil {
		t.Fatalf("ReclaimEmpty() second call error = %v", err)
	}
	if again != 0 {
		t.Fatalf("expected zero count, got %d", again)
	}
}

func TestBunRepositoryReclaimStale(t *testing.T) {
	db := newTestBunDB(t)
	repo := cache.NewBunRepository(db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, cache.NewPlaceholder([]string{"hello"}, documentFor(t, "Hello"), cache.OutputOptions{Locale: "de"})); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	future := time.Now().UTC().Add(time.Hour)
	count, err := repo.CountStale(ctx, future)
	if err != nil {
		t.Fatalf("CountStale() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stale placeholder, got %d", count)
	}

	removed, err := repo.ReclaimStale(ctx, future)
	if err != nil {
		t.Fatalf("ReclaimStale() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
}

func TestBunRepositoryWithReadCache(t *testing.T) {
	db := newTestBunDB(t)

	cfg := repocache.DefaultConfig()
	cfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}

	repo := cache.NewBunRepositoryWithCache(db, cacheService, repocache.NewDefaultKeySerializer())
	ctx := context.Background()

	record, err := repo.Upsert(ctx, cache.NewPlaceholder([]string{"hello"}, documentFor(t, "Hello"), cache.OutputOptions{Locale: "de"}))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	stored, err := repo.GetByFingerprint(ctx, record.Fingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint() error = %v", err)
	}
	if stored.ID != record.ID {
		t.Fatalf("expected cached read to return record %s, got %s", record.ID, stored.ID)
	}
}
