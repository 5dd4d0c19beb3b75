package store

import (
	"context"

	"bibleapi/pkg/domain"
)

// Store defines the read operations the verse engine issues against the corpus.
type Store interface {
	// translations
	GetTranslation(ctx context.Context, identifier string) (domain.Translation, bool, error)
	ListTranslations(ctx context.Context) ([]domain.Translation, error)

	// range resolution
	ResolveRangeStart(ctx context.Context, translationID int64, loc domain.Location) (int64, bool, error)
	ResolveRangeEnd(ctx context.Context, translationID int64, loc domain.Location) (int64, bool, error)
	ListVersesBetween(ctx context.Context, translationID, startID, endID int64) ([]domain.Verse, error)

	// structure aggregates, zero when nothing matches
	MaxBookNum(ctx context.Context, translationID int64) (int, error)
	BookNameByNum(ctx context.Context, translationID int64, bookNum int) (string, bool, error)
	MaxChapter(ctx context.Context, translationID int64, bookNum int) (int, error)
	MaxVerse(ctx context.Context, translationID int64, bookNum, chapter int) (int, error)

	// index page
	BookNamesByID(ctx context.Context, bookID string) (map[int64]string, error)
	Ready(ctx context.Context) (bool, error)
}

// Importer replaces the full contents of a translation.
// Verses are written in canonical (book_num, chapter, verse) order so that
// row ids follow reading order.
type Importer interface {
	ReplaceTranslation(ctx context.Context, t domain.Translation, verses []domain.Verse) (domain.Translation, error)
}
