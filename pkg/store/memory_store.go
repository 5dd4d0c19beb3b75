package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"bibleapi/pkg/domain"
)

// MemoryStore keeps a corpus in-process. It follows the same id ordering
// rules as GormStore and backs tests and local fixtures.
type MemoryStore struct {
	mu           sync.RWMutex
	translations []domain.Translation
	verses       []domain.Verse
	nextTransID  int64
	nextVerseID  int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ReplaceTranslation upserts t by identifier and replaces its verses.
func (m *MemoryStore) ReplaceTranslation(_ context.Context, t domain.Translation, verses []domain.Verse) (domain.Translation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := slices.IndexFunc(m.translations, func(existing domain.Translation) bool {
		return existing.Identifier == t.Identifier
	})
	if idx >= 0 {
		t.ID = m.translations[idx].ID
		m.translations[idx] = t
		m.verses = slices.DeleteFunc(m.verses, func(v domain.Verse) bool {
			return v.TranslationID == t.ID
		})
	} else {
		m.nextTransID++
		t.ID = m.nextTransID
		m.translations = append(m.translations, t)
	}
	for _, v := range SortCanonical(verses) {
		m.nextVerseID++
		v.ID = m.nextVerseID
		v.TranslationID = t.ID
		m.verses = append(m.verses, v)
	}
	return t, nil
}

// GetTranslation looks up a translation by identifier.
func (m *MemoryStore) GetTranslation(_ context.Context, identifier string) (domain.Translation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.translations {
		if t.Identifier == identifier {
			return t, true, nil
		}
	}
	return domain.Translation{}, false, nil
}

// ListTranslations returns translations ordered by language and name.
func (m *MemoryStore) ListTranslations(_ context.Context) ([]domain.Translation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.translations)
	slices.SortStableFunc(out, func(a, b domain.Translation) int {
		return cmp.Or(cmp.Compare(a.Language, b.Language), cmp.Compare(a.Name, b.Name))
	})
	return out, nil
}

// ResolveRangeStart returns the smallest verse id at loc.
func (m *MemoryStore) ResolveRangeStart(_ context.Context, translationID int64, loc domain.Location) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		id    int64
		found bool
	)
	for _, v := range m.verses {
		if matchesLocation(v, translationID, loc) && (!found || v.ID < id) {
			id, found = v.ID, true
		}
	}
	return id, found, nil
}

// ResolveRangeEnd returns the largest verse id at loc.
func (m *MemoryStore) ResolveRangeEnd(_ context.Context, translationID int64, loc domain.Location) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		id    int64
		found bool
	)
	for _, v := range m.verses {
		if matchesLocation(v, translationID, loc) && (!found || v.ID > id) {
			id, found = v.ID, true
		}
	}
	return id, found, nil
}

func matchesLocation(v domain.Verse, translationID int64, loc domain.Location) bool {
	if v.TranslationID != translationID || v.BookID != loc.Book || v.Chapter != loc.Chapter {
		return false
	}
	return !loc.HasVerse() || v.Verse == loc.Verse
}

// ListVersesBetween returns verses with startID <= id <= endID in id order.
func (m *MemoryStore) ListVersesBetween(_ context.Context, translationID, startID, endID int64) ([]domain.Verse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Verse, 0)
	for _, v := range m.verses {
		if v.TranslationID == translationID && v.ID >= startID && v.ID <= endID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b domain.Verse) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// MaxBookNum returns the highest book number of a translation.
func (m *MemoryStore) MaxBookNum(_ context.Context, translationID int64) (int, error) {
	return m.maxOf(func(v domain.Verse) (int, bool) {
		return v.BookNum, v.TranslationID == translationID
	}), nil
}

// BookNameByNum returns the display name of a book number.
func (m *MemoryStore) BookNameByNum(_ context.Context, translationID int64, bookNum int) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.verses {
		if v.TranslationID == translationID && v.BookNum == bookNum {
			return v.Book, true, nil
		}
	}
	return "", false, nil
}

// MaxChapter returns the highest chapter of a book.
func (m *MemoryStore) MaxChapter(_ context.Context, translationID int64, bookNum int) (int, error) {
	return m.maxOf(func(v domain.Verse) (int, bool) {
		return v.Chapter, v.TranslationID == translationID && v.BookNum == bookNum
	}), nil
}

// MaxVerse returns the highest verse of a chapter.
func (m *MemoryStore) MaxVerse(_ context.Context, translationID int64, bookNum, chapter int) (int, error) {
	return m.maxOf(func(v domain.Verse) (int, bool) {
		return v.Verse, v.TranslationID == translationID && v.BookNum == bookNum && v.Chapter == chapter
	}), nil
}

func (m *MemoryStore) maxOf(pick func(domain.Verse) (int, bool)) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := 0
	for _, v := range m.verses {
		if value, ok := pick(v); ok && value > best {
			best = value
		}
	}
	return best
}

// BookNamesByID maps translation id to its display name for bookID.
func (m *MemoryStore) BookNamesByID(_ context.Context, bookID string) (map[int64]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]string)
	for _, v := range m.verses {
		if v.BookID != bookID {
			continue
		}
		if _, ok := out[v.TranslationID]; !ok {
			out[v.TranslationID] = v.Book
		}
	}
	return out, nil
}

// Ready always reports true.
func (m *MemoryStore) Ready(context.Context) (bool, error) {
	return true, nil
}
