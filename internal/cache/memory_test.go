package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-translate/internal/identity"
	"github.com/goliatone/go-translate/internal/linearize"
)

func identityForTest(name string) uuid.UUID {
	return identity.UUID("go-translate:test:" + name)
}

func testDocument(t *testing.T, text string) linearize.Document {
	t.Helper()
	return linearize.Segments(linearize.Text(text), "0")
}

func TestMemoryRepositoryUpsertIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	doc := testDocument(t, "Hello")
	options := OutputOptions{Locale: "de"}

	first, err := repo.Upsert(ctx, NewPlaceholder([]string{"hello"}, doc, options))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	second, err := repo.Upsert(ctx, NewPlaceholder([]string{"hello", "greeting"}, doc, options))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected one record, got ids %s and %s", first.ID, second.ID)
	}

	records, err := repo.LookupByKeys(ctx, []string{"greeting"})
	if err != nil {
		t.Fatalf("LookupByKeys() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected merged key to resolve, got %d records", len(records))
	}
}

func TestMemoryRepositoryLookupByKeysOverlap(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	greeting := NewPlaceholder([]string{"hello", "greeting"}, testDocument(t, "Hello"), OutputOptions{Locale: "de"})
	farewell := NewPlaceholder([]string{"goodbye"}, testDocument(t, "Goodbye"), OutputOptions{Locale: "de"})
	for _, record := range []*TranslationRecord{greeting, farewell} {
		if _, err := repo.Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	records, err := repo.LookupByKeys(ctx, []string{"greeting", "missing"})
	if err != nil {
		t.Fatalf("LookupByKeys() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != greeting.ID {
		t.Fatalf("expected overlap match on greeting, got %v", records)
	}

	empty, err := repo.LookupByKeys(ctx, nil)
	if err != nil {
		t.Fatalf("LookupByKeys(nil) error = %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty result, got %d", len(empty))
	}
}

func TestMemoryRepositoryUpdate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	record, err := repo.Upsert(ctx, NewPlaceholder([]string{"hello"}, testDocument(t, "Hello"), OutputOptions{Locale: "de"}))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	record.TranslatedBy = "provider-test"
	record.TranslatedText = "<0>Hallo</0>"
	updated, err := repo.Update(ctx, record)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.Usable() {
		t.Fatal("expected usable record after update")
	}

	missing := NewPlaceholder([]string{"other"}, testDocument(t, "Other"), OutputOptions{Locale: "de"})
	if _, err := repo.Update(ctx, missing); err == nil {
		t.Fatal("expected error updating missing record")
	}
}

func TestMemoryRepositoryReclaimEmptyPrecision(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	doc := testDocument(t, "Hello")
	options := OutputOptions{Locale: "de"}
	fingerprint := Fingerprint(doc, options)

	usable := NewPlaceholder([]string{"hello"}, doc, options)
	usable.TranslatedBy = "provider-test"
	usable.TranslatedText = "<0>Hallo</0>"
	if _, err := repo.Upsert(ctx, usable); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// A duplicate placeholder for the same fingerprint, as produced by the
	// known concurrent-first-request race.
	pending := NewPlaceholder([]string{"hello"}, doc, options)
	pending.ID = identityForTest("duplicate-placeholder")
	if _, err := repo.Upsert(ctx, pending); err != nil {
		t.Fatalf("Upsert() error = %v", err)
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
		t.Fatalf("expected the usable record to survive, got %v", records)
	}

	again, err := repo.ReclaimEmpty(ctx, fingerprint)
	if err != nil {
		t.Fatalf("ReclaimEmpty() second call error = %v", err)
	}
	if again != 0 {
		t.Fatalf("expected idempotent zero count, got %d", again)
	}
}

func TestMemoryRepositoryReclaimStale(t *testing.T) {
	current := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository(WithMemoryClock(func() time.Time { return current }))
	ctx := context.Background()

	old := NewPlaceholder([]string{"old"}, testDocument(t, "Old"), OutputOptions{Locale: "de"})
	if _, err := repo.Upsert(ctx, old); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	current = current.Add(48 * time.Hour)
	fresh := NewPlaceholder([]string{"fresh"}, testDocument(t, "Fresh"), OutputOptions{Locale: "de"})
	if _, err := repo.Upsert(ctx, fresh); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	cutoff := current.Add(-24 * time.Hour)
	count, err := repo.CountStale(ctx, cutoff)
	if err != nil {
		t.Fatalf("CountStale() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stale placeholder, got %d", count)
	}

	removed, err := repo.ReclaimStale(ctx, cutoff)
	if err != nil {
		t.Fatalf("ReclaimStale() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed placeholder, got %d", removed)
	}

	records, err := repo.LookupByKeys(ctx, []string{"fresh"})
	if err != nil {
		t.Fatalf("LookupByKeys() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatal("expected fresh placeholder to survive")
	}
}
