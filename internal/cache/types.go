package cache

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translate/internal/identity"
	"github.com/goliatone/go-translate/internal/linearize"
)

// OutputOptions captures the translation parameters that participate in cache
// identity. Two values are equal iff every field matches after
// canonicalisation; composite sub-fields compare order-independently.
type OutputOptions struct {
	Locale    string            `json:"locale"`
	Formality string            `json:"formality,omitempty"`
	Tone      []string          `json:"tone,omitempty"`
	Glossary  map[string]string `json:"glossary,omitempty"`
}

// Validate enforces the fields required for cache identity.
func (o OutputOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Locale, validation.Required),
	)
}

// Canonical returns a normalized copy: tone entries are trimmed, deduplicated,
// and sorted so ordering never influences cache identity.
func (o OutputOptions) Canonical() OutputOptions {
	out := OutputOptions{
		Locale:    strings.TrimSpace(o.Locale),
		Formality: strings.TrimSpace(o.Formality),
	}
	if len(o.Tone) > 0 {
		tone := make([]string, 0, len(o.Tone))
		for _, entry := range o.Tone {
			if trimmed := strings.TrimSpace(entry); trimmed != "" {
				tone = append(tone, trimmed)
			}
		}
		slices.Sort(tone)
		out.Tone = slices.Compact(tone)
		if len(out.Tone) == 0 {
			out.Tone = nil
		}
	}
	if len(o.Glossary) > 0 {
		glossary := make(map[string]string, len(o.Glossary))
		for term, preferred := range o.Glossary {
			if trimmed := strings.TrimSpace(term); trimmed != "" {
				glossary[trimmed] = preferred
			}
		}
		if len(glossary) > 0 {
			out.Glossary = glossary
		}
	}
	return out
}

// Equal reports structural equality after canonicalisation.
func (o OutputOptions) Equal(other OutputOptions) bool {
	a, b := o.Canonical(), other.Canonical()
	if a.Locale != b.Locale || a.Formality != b.Formality {
		return false
	}
	if !slices.Equal(a.Tone, b.Tone) {
		return false
	}
	if len(a.Glossary) != len(b.Glossary) {
		return false
	}
	for term, preferred := range a.Glossary {
		if b.Glossary[term] != preferred {
			return false
		}
	}
	return true
}

// TranslationRecord persists one translation request and, once a provider has
// responded, its result. TranslatedBy doubles as the usability sentinel: an
// empty producer marks a pending or failed placeholder that must never be
// served as a real translation.
type TranslationRecord struct {
	bun.BaseModel `bun:"table:translations,alias:t"`

	ID             uuid.UUID          `bun:",pk,type:uuid" json:"id"`
	Fingerprint    string             `bun:"fingerprint,notnull" json:"fingerprint"`
	Keys           []string           `bun:"keys,type:jsonb,notnull" json:"keys"`
	OriginalText   linearize.Document `bun:"original_text,type:jsonb,notnull" json:"original_text"`
	OutputOptions  OutputOptions      `bun:"output_options,type:jsonb,notnull" json:"output_options"`
	TranslatedBy   string             `bun:"translated_by,notnull,default:''" json:"translated_by"`
	TranslatedText string             `bun:"translated_text,notnull,default:''" json:"translated_text"`
	CreatedAt      time.Time          `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time          `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Usable reports whether the record holds a completed translation.
func (r *TranslationRecord) Usable() bool {
	return r != nil && r.TranslatedBy != ""
}

// Clone returns a deep copy so repository internals never leak shared slices.
func (r *TranslationRecord) Clone() *TranslationRecord {
	if r == nil {
		return nil
	}
	copied := *r
	copied.Keys = slices.Clone(r.Keys)
	copied.OriginalText = slices.Clone(r.OriginalText)
	copied.OutputOptions = r.OutputOptions.Canonical()
	return &copied
}

// translationKey is the denormalized lookup index: one row per (record, key)
// pair, queried by overlap during batch lookups.
type translationKey struct {
	bun.BaseModel `bun:"table:translation_keys,alias:tk"`

	TranslationID uuid.UUID `bun:"translation_id,pk,type:uuid"`
	Key           string    `bun:"key,pk"`
}

// Fingerprint derives the deterministic cache identity for a linearized
// document and its output options. The canonical JSON form keeps the hash
// stable across processes and field ordering.
func Fingerprint(text linearize.Document, options OutputOptions) string {
	payload := struct {
		Text    linearize.Document `json:"text"`
		Options OutputOptions      `json:"options"`
	}{
		Text:    text,
		Options: options.Canonical(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		// Only unmarshalable values can fail here; the payload is plain data.
		return ""
	}
	return identity.UUID("go-translate:fingerprint:" + string(raw)).String()
}

// NormalizeKeys case-folds, trims, and deduplicates lookup keys while
// preserving first-seen order. Lookups are case-insensitive by contract.
func NormalizeKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		normalized := strings.ToLower(strings.TrimSpace(key))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NewPlaceholder builds a pending record for a fingerprint. The identity is
// derived from the fingerprint itself, so concurrent first-requests for the
// same content upsert the same row.
func NewPlaceholder(keys []string, text linearize.Document, options OutputOptions) *TranslationRecord {
	canonical := options.Canonical()
	fingerprint := Fingerprint(text, canonical)
	return &TranslationRecord{
		ID:            identity.TranslationUUID(fingerprint),
		Fingerprint:   fingerprint,
		Keys:          NormalizeKeys(keys),
		OriginalText:  slices.Clone(text),
		OutputOptions: canonical,
	}
}
