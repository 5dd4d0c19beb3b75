package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bibleapi/pkg/domain"
	"bibleapi/pkg/store"
)

// ErrIdentifierRequired is returned when neither flags nor the seed name the translation.
var ErrIdentifierRequired = errors.New("translation identifier required")

// Importer writes parsed seeds to the store.
type Importer struct {
	store store.Importer
}

// New returns an importer writing to s.
func New(s store.Importer) *Importer {
	return &Importer{store: s}
}

// Result summarizes one import.
type Result struct {
	Translation domain.Translation
	Verses      int
	Books       int
	Duration    time.Duration
}

// ImportFile parses path and replaces the translation it holds. Non-empty
// fields of override win over the seed's INFORMATION block.
func (i *Importer) ImportFile(ctx context.Context, path string, override Metadata) (Result, error) {
	rc, err := Open(path)
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()

	start := time.Now()
	seedMeta, verses, err := ParseZefania(rc)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	meta := override.Merge(seedMeta)
	if strings.TrimSpace(meta.Identifier) == "" {
		return Result{}, ErrIdentifierRequired
	}
	if meta.Name == "" {
		meta.Name = meta.Identifier
	}

	t, err := i.store.ReplaceTranslation(ctx, meta.Translation(), verses)
	if err != nil {
		return Result{}, fmt.Errorf("replace translation %s: %w", meta.Identifier, err)
	}
	books := make(map[int]struct{})
	for _, v := range verses {
		books[v.BookNum] = struct{}{}
	}
	res := Result{Translation: t, Verses: len(verses), Books: len(books), Duration: time.Since(start)}
	slog.InfoContext(ctx, "translation imported",
		"identifier", t.Identifier,
		"books", res.Books,
		"verses", res.Verses,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
