package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/sync/errgroup"

	"bibleapi/internal/util"
	"bibleapi/pkg/domain"
	"bibleapi/pkg/reference"
	"bibleapi/pkg/store"
)

// DefaultTranslation is used when a request names no translation.
const DefaultTranslation = "WEB"

// RandomVerse is the only accepted value of the random parameter.
const RandomVerse = "verse"

// ReferenceParser turns reference text into ranges and renders ranges for display.
type ReferenceParser interface {
	Parse(text, language string) ([]domain.Range, error)
	Normalize(ranges []domain.Range) string
}

// Config holds runtime configuration for the verse engine.
type Config struct {
	DatabaseURL        string
	DefaultTranslation string
	Store              store.Store
	Parser             ReferenceParser
	// Rand drives the random verse sampler. Nil uses the global source.
	Rand *rand.Rand
}

// App resolves references against the verse store.
type App struct {
	store              store.Store
	parser             ReferenceParser
	sampler            *Sampler
	defaultTranslation string
	closer             func() error
}

// New constructs the engine. When no Store is given, a gorm store is opened
// from DatabaseURL.
func New(cfg Config) (*App, error) {
	if strings.TrimSpace(cfg.DefaultTranslation) == "" {
		cfg.DefaultTranslation = DefaultTranslation
	}
	if cfg.Parser == nil {
		cfg.Parser = reference.NewParser()
	}

	var closer func() error
	dataStore := cfg.Store
	if dataStore == nil {
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, ErrStoreRequired
		}
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init verse store: %w", err)
		}
		dataStore, closer = gormStore, gormStore.Close
	}

	return &App{
		store:              dataStore,
		parser:             cfg.Parser,
		sampler:            NewSampler(dataStore, cfg.Rand),
		defaultTranslation: cfg.DefaultTranslation,
		closer:             closer,
	}, nil
}

// Close releases the store when the engine opened it.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// Request is one resolution request.
type Request struct {
	Reference    string
	Translation  string
	VerseNumbers bool
	// RandomSet reports whether the random parameter was supplied at all.
	RandomSet bool
	Random    string
}

// Resolve runs translation lookup, range resolution and formatting.
// Expected misses come back as Result values; err is reserved for store
// failures and corpus integrity faults.
func (a *App) Resolve(ctx context.Context, req Request) (Result, error) {
	if req.RandomSet && req.Random != RandomVerse {
		return InvalidParameter{Name: "random", Value: req.Random}, nil
	}

	translation, ok, err := a.LookupTranslation(ctx, req.Translation)
	if err != nil {
		return nil, err
	}
	if !ok {
		return TranslationNotFound{Identifier: a.translationIdentifier(req.Translation)}, nil
	}

	refText := req.Reference
	var fallback string
	if req.RandomSet {
		sample, err := a.sampler.Sample(ctx, translation.ID)
		if err != nil {
			return nil, err
		}
		refText = sample.String()
		if book, ok := reference.BookByNum(sample.BookNum); ok {
			fallback = fmt.Sprintf("%s %d:%d", book.ID, sample.Chapter, sample.Verse)
		}
	}

	ranges, err := a.parser.Parse(refText, translation.LanguageCode)
	if err != nil && fallback != "" {
		// Sampled book names come from the translation and may not be
		// known to the parser; the canonical code always is.
		ranges, err = a.parser.Parse(fallback, translation.LanguageCode)
	}
	if err != nil {
		util.LoggerFromContext(ctx).Debug("reference unparseable", "reference", refText, "err", err)
		return ReferenceNotFound{Reference: refText}, nil
	}

	verses, ok, err := a.Aggregate(ctx, translation.ID, ranges)
	if err != nil {
		return nil, err
	}
	if !ok {
		return ReferenceNotFound{Reference: refText}, nil
	}
	return Found{Passage: Format(verses, translation, a.parser.Normalize(ranges), req.VerseNumbers)}, nil
}

func (a *App) translationIdentifier(identifier string) string {
	if identifier == "" {
		return a.defaultTranslation
	}
	return identifier
}

// LookupTranslation finds a translation by identifier, falling back to the
// configured default when identifier is empty. The match is exact.
func (a *App) LookupTranslation(ctx context.Context, identifier string) (domain.Translation, bool, error) {
	t, ok, err := a.store.GetTranslation(ctx, a.translationIdentifier(identifier))
	if err != nil {
		return domain.Translation{}, false, fmt.Errorf("lookup translation: %w", err)
	}
	return t, ok, nil
}

// IndexEntry is one translation listed on the index page.
type IndexEntry struct {
	Translation domain.Translation
	// SampleBook is the translation's own name for John, empty when absent.
	SampleBook string
}

// Ready reports whether the verse schema exists.
func (a *App) Ready(ctx context.Context) (bool, error) {
	ready, err := a.store.Ready(ctx)
	if err != nil {
		return false, fmt.Errorf("check schema: %w", err)
	}
	return ready, nil
}

// Index lists translations by language and name with their name for John.
// It reports ready=false when the corpus has not been imported yet.
func (a *App) Index(ctx context.Context) (entries []IndexEntry, ready bool, err error) {
	ready, err = a.Ready(ctx)
	if err != nil || !ready {
		return nil, ready, err
	}

	var (
		translations []domain.Translation
		books        map[int64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		translations, err = a.store.ListTranslations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		books, err = a.store.BookNamesByID(gctx, "JHN")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, true, fmt.Errorf("load index: %w", err)
	}

	entries = make([]IndexEntry, 0, len(translations))
	for _, t := range translations {
		entries = append(entries, IndexEntry{Translation: t, SampleBook: books[t.ID]})
	}
	return entries, true, nil
}
