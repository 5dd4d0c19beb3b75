package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"bibleapi/pkg/store"
)

// Sample is a randomly drawn verse location.
type Sample struct {
	Book    string
	BookNum int
	Chapter int
	Verse   int
}

// String renders the sample as "<book> <chapter>:<verse>".
func (s Sample) String() string {
	return fmt.Sprintf("%s %d:%d", s.Book, s.Chapter, s.Verse)
}

// Sampler draws a book, then a chapter, then a verse, each uniformly over
// the bound returned by one aggregate query. Chapters with few verses are
// as likely as chapters with many.
type Sampler struct {
	store store.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a sampler. A nil rng uses the global source.
func NewSampler(s store.Store, rng *rand.Rand) *Sampler {
	return &Sampler{store: s, rng: rng}
}

// NewSeededRand returns a deterministic source for NewSampler.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// draw returns an integer in [1, n].
func (s *Sampler) draw(n int) int {
	if s.rng == nil {
		return rand.IntN(n) + 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n) + 1
}

// Sample picks a random verse of the translation.
func (s *Sampler) Sample(ctx context.Context, translationID int64) (Sample, error) {
	maxBook, err := s.store.MaxBookNum(ctx, translationID)
	if err != nil {
		return Sample{}, fmt.Errorf("max book: %w", err)
	}
	if maxBook < 1 {
		return Sample{}, fmt.Errorf("%w: translation %d", ErrEmptyTranslation, translationID)
	}
	bookNum := s.draw(maxBook)
	book, ok, err := s.store.BookNameByNum(ctx, translationID, bookNum)
	if err != nil {
		return Sample{}, fmt.Errorf("book name: %w", err)
	}
	if !ok {
		return Sample{}, fmt.Errorf("%w: translation %d has no book %d", ErrCorpusGap, translationID, bookNum)
	}

	maxChapter, err := s.store.MaxChapter(ctx, translationID, bookNum)
	if err != nil {
		return Sample{}, fmt.Errorf("max chapter: %w", err)
	}
	if maxChapter < 1 {
		return Sample{}, fmt.Errorf("%w: %s has no chapters", ErrCorpusGap, book)
	}
	chapter := s.draw(maxChapter)

	maxVerse, err := s.store.MaxVerse(ctx, translationID, bookNum, chapter)
	if err != nil {
		return Sample{}, fmt.Errorf("max verse: %w", err)
	}
	if maxVerse < 1 {
		return Sample{}, fmt.Errorf("%w: %s %d has no verses", ErrCorpusGap, book, chapter)
	}
	return Sample{Book: book, BookNum: bookNum, Chapter: chapter, Verse: s.draw(maxVerse)}, nil
}
