package app

import (
	"context"
	"errors"
	"testing"

	"bibleapi/pkg/domain"
	"bibleapi/pkg/store"
)

// countingStore records how many verse queries the engine issues.
type countingStore struct {
	*store.MemoryStore
	verseQueries int
}

func (c *countingStore) ResolveRangeStart(ctx context.Context, tid int64, loc domain.Location) (int64, bool, error) {
	c.verseQueries++
	return c.MemoryStore.ResolveRangeStart(ctx, tid, loc)
}

func (c *countingStore) ResolveRangeEnd(ctx context.Context, tid int64, loc domain.Location) (int64, bool, error) {
	c.verseQueries++
	return c.MemoryStore.ResolveRangeEnd(ctx, tid, loc)
}

func (c *countingStore) ListVersesBetween(ctx context.Context, tid, start, end int64) ([]domain.Verse, error) {
	c.verseQueries++
	return c.MemoryStore.ListVersesBetween(ctx, tid, start, end)
}

func (c *countingStore) MaxBookNum(ctx context.Context, tid int64) (int, error) {
	c.verseQueries++
	return c.MemoryStore.MaxBookNum(ctx, tid)
}

func verse(bookID, book string, num, chapter, v int, text string) domain.Verse {
	return domain.Verse{BookID: bookID, Book: book, BookNum: num, Chapter: chapter, Verse: v, Text: text}
}

func newTestApp(t *testing.T) (*App, *countingStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	ctx := context.Background()
	web := []domain.Verse{
		verse("GEN", "Genesis", 1, 1, 1, "In the beginning"),
		verse("GEN", "Genesis", 1, 1, 2, "the earth"),
		verse("GEN", "Genesis", 1, 1, 3, "Let there be light"),
		verse("GEN", "Genesis", 1, 2, 1, "Thus the heavens"),
		verse("EXO", "Exodus", 2, 1, 1, "Now these are the names"),
	}
	if _, err := mem.ReplaceTranslation(ctx, domain.Translation{
		Identifier: "WEB", Language: "English", LanguageCode: "eng", Name: "World English Bible", License: "Public Domain",
	}, web); err != nil {
		t.Fatalf("seed WEB: %v", err)
	}
	if _, err := mem.ReplaceTranslation(ctx, domain.Translation{
		Identifier: "almeida", Language: "Portuguese", LanguageCode: "por", Name: "João Ferreira de Almeida",
	}, []domain.Verse{verse("GEN", "Gênesis", 1, 1, 1, "No princípio")}); err != nil {
		t.Fatalf("seed almeida: %v", err)
	}
	counting := &countingStore{MemoryStore: mem}
	a, err := New(Config{Store: counting, Rand: NewSeededRand(1)})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, counting
}

func mustFound(t *testing.T, res Result, err error) domain.Passage {
	t.Helper()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	found, ok := res.(Found)
	if !ok {
		t.Fatalf("expected Found, got %#v", res)
	}
	return found.Passage
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestResolveSingleVerse(t *testing.T) {
	a, _ := newTestApp(t)
	res, err := a.Resolve(context.Background(), Request{Reference: "gen 1:2"})
	p := mustFound(t, res, err)
	if len(p.Verses) != 1 {
		t.Fatalf("expected one verse, got %+v", p.Verses)
	}
	v := p.Verses[0]
	if v.BookID != "GEN" || v.BookName != "Genesis" || v.Chapter != 1 || v.Verse != 2 || v.Text != "the earth" {
		t.Fatalf("unexpected verse: %+v", v)
	}
	if p.Reference != "Genesis 1:2" || p.TranslationID != "WEB" || p.TranslationName != "World English Bible" || p.TranslationNote != "Public Domain" {
		t.Fatalf("unexpected passage metadata: %+v", p)
	}
}

func TestResolveRangeOpenEndRunsToChapterEnd(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	tr, _, _ := a.LookupTranslation(ctx, "WEB")
	resolved, ok, err := a.ResolveRange(ctx, tr.ID, domain.Range{
		From: domain.Location{Book: "GEN", Chapter: 1, Verse: 2},
		To:   domain.Location{Book: "GEN", Chapter: 1},
	})
	if err != nil || !ok {
		t.Fatalf("resolve range: ok=%v err=%v", ok, err)
	}
	last, _, _ := a.store.ResolveRangeStart(ctx, tr.ID, domain.Location{Book: "GEN", Chapter: 1, Verse: 3})
	if resolved.EndID != last {
		t.Fatalf("end id = %d, want last verse of chapter %d", resolved.EndID, last)
	}

	single, ok, err := a.ResolveRange(ctx, tr.ID, domain.Range{
		From: domain.Location{Book: "GEN", Chapter: 2, Verse: 1},
		To:   domain.Location{Book: "GEN", Chapter: 2, Verse: 1},
	})
	if err != nil || !ok || single.StartID != single.EndID {
		t.Fatalf("single verse range = %+v ok=%v err=%v", single, ok, err)
	}
}

func TestResolveWholeChapter(t *testing.T) {
	a, _ := newTestApp(t)
	res, err := a.Resolve(context.Background(), Request{Reference: "Genesis 1"})
	p := mustFound(t, res, err)
	if len(p.Verses) != 3 || p.Text != "In the beginningthe earthLet there be light" {
		t.Fatalf("unexpected chapter passage: %+v", p)
	}
}

func TestResolveMissingLocationIsNotFound(t *testing.T) {
	a, _ := newTestApp(t)
	for _, ref := range []string{"Genesis 1:9", "Genesis 7", "John 3:16", "Genesis 1:1; Genesis 9", "not a reference", "Genesis 1:0", "Genesis 1:0-2"} {
		res, err := a.Resolve(context.Background(), Request{Reference: ref})
		if err != nil {
			t.Fatalf("resolve %q: %v", ref, err)
		}
		if _, ok := res.(ReferenceNotFound); !ok {
			t.Fatalf("resolve %q: expected ReferenceNotFound, got %#v", ref, res)
		}
		if msg, _ := ErrorMessage(res); msg != "not found" {
			t.Fatalf("message = %q", msg)
		}
	}
}

func TestResolveUnknownTranslationSkipsVerseQueries(t *testing.T) {
	a, counting := newTestApp(t)
	for _, req := range []Request{
		{Reference: "Genesis 1:1", Translation: "KJV"},
		{Translation: "web", RandomSet: true, Random: "verse"},
	} {
		res, err := a.Resolve(context.Background(), req)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if _, ok := res.(TranslationNotFound); !ok {
			t.Fatalf("expected TranslationNotFound, got %#v", res)
		}
		if msg, _ := ErrorMessage(res); msg != "translation not found" {
			t.Fatalf("message = %q", msg)
		}
	}
	if counting.verseQueries != 0 {
		t.Fatalf("expected no verse queries, got %d", counting.verseQueries)
	}
}

func TestResolveDefaultTranslation(t *testing.T) {
	a, _ := newTestApp(t)
	res, err := a.Resolve(context.Background(), Request{Reference: "Exodus 1:1", Translation: ""})
	if p := mustFound(t, res, err); p.TranslationID != "WEB" {
		t.Fatalf("expected default translation, got %q", p.TranslationID)
	}
}

func TestResolveKeepsOverlappingRanges(t *testing.T) {
	a, _ := newTestApp(t)
	res, err := a.Resolve(context.Background(), Request{Reference: "Genesis 1:1-2, 1; Genesis 1:1"})
	p := mustFound(t, res, err)
	var got []int
	for _, v := range p.Verses {
		got = append(got, v.Verse)
	}
	want := []int{1, 2, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("verses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("verses = %v, want %v", got, want)
		}
	}
}

func TestResolveOutOfOrderRanges(t *testing.T) {
	a, _ := newTestApp(t)
	res, err := a.Resolve(context.Background(), Request{Reference: "Exodus 1:1; Genesis 2:1"})
	p := mustFound(t, res, err)
	if len(p.Verses) != 2 || p.Verses[0].BookID != "EXO" || p.Verses[1].BookID != "GEN" {
		t.Fatalf("expected input order to be kept, got %+v", p.Verses)
	}
}

func TestResolveVerseNumbers(t *testing.T) {
	a, _ := newTestApp(t)
	res, err := a.Resolve(context.Background(), Request{Reference: "Genesis 1:1-2", VerseNumbers: true})
	if p := mustFound(t, res, err); p.Text != "(1) In the beginning(2) the earth" {
		t.Fatalf("text = %q", p.Text)
	}
}

func TestResolveRandom(t *testing.T) {
	a, _ := newTestApp(t)
	for range 20 {
		res, err := a.Resolve(context.Background(), Request{RandomSet: true, Random: "verse"})
		p := mustFound(t, res, err)
		if len(p.Verses) != 1 {
			t.Fatalf("random should yield one verse, got %+v", p.Verses)
		}
	}
}

func TestResolveRandomTranslatedBookName(t *testing.T) {
	a, _ := newTestApp(t)
	res, err := a.Resolve(context.Background(), Request{Translation: "almeida", RandomSet: true, Random: "verse"})
	p := mustFound(t, res, err)
	if len(p.Verses) != 1 || p.Verses[0].BookName != "Gênesis" {
		t.Fatalf("unexpected passage: %+v", p)
	}
}

func TestResolveInvalidRandomValue(t *testing.T) {
	a, counting := newTestApp(t)
	for _, value := range []string{"", "chapter", "Verse"} {
		res, err := a.Resolve(context.Background(), Request{RandomSet: true, Random: value})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if _, ok := res.(InvalidParameter); !ok {
			t.Fatalf("random=%q: expected InvalidParameter, got %#v", value, res)
		}
		if msg, _ := ErrorMessage(res); msg != "unrecognized value for parameter" {
			t.Fatalf("message = %q", msg)
		}
	}
	if counting.verseQueries != 0 {
		t.Fatalf("expected no queries, got %d", counting.verseQueries)
	}
}

func TestFormat(t *testing.T) {
	verses := []domain.Verse{
		verse("GEN", "Genesis", 1, 1, 1, "In the beginning"),
		verse("GEN", "Genesis", 1, 1, 2, "the earth"),
	}
	tr := domain.Translation{Identifier: "WEB", Name: "World English Bible", License: "Public Domain"}

	numbered := Format(verses, tr, "Genesis 1:1-2", true)
	if numbered.Text != "(1) In the beginning(2) the earth" {
		t.Fatalf("numbered text = %q", numbered.Text)
	}
	plain := Format(verses, tr, "Genesis 1:1-2", false)
	if plain.Text != "In the beginningthe earth" {
		t.Fatalf("plain text = %q", plain.Text)
	}
	if len(plain.Verses) != 2 || plain.Verses[1].BookName != "Genesis" || plain.Reference != "Genesis 1:1-2" {
		t.Fatalf("unexpected passage: %+v", plain)
	}

	empty := Format(nil, tr, "", false)
	if empty.Verses == nil || len(empty.Verses) != 0 || empty.Text != "" {
		t.Fatalf("empty input should produce an empty passage, got %+v", empty)
	}
}

func TestIndex(t *testing.T) {
	a, _ := newTestApp(t)
	entries, ready, err := a.Index(context.Background())
	if err != nil || !ready {
		t.Fatalf("index: ready=%v err=%v", ready, err)
	}
	if len(entries) != 2 || entries[0].Translation.Identifier != "WEB" || entries[1].Translation.Identifier != "almeida" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].SampleBook != "" {
		t.Fatalf("WEB fixture has no John, got %q", entries[0].SampleBook)
	}
}
