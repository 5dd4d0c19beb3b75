package domain

// Translation is one edition of the text corpus.
type Translation struct {
	ID           int64  `json:"-"`
	Identifier   string `json:"identifier"`
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	Name         string `json:"name"`
	License      string `json:"license"`
}

// Verse is a stored verse row. IDs increase with (BookNum, Chapter, Verse)
// within a translation.
type Verse struct {
	ID            int64  `json:"-"`
	TranslationID int64  `json:"-"`
	BookID        string `json:"book_id"`
	Book          string `json:"book"`
	BookNum       int    `json:"book_num"`
	Chapter       int    `json:"chapter"`
	Verse         int    `json:"verse"`
	Text          string `json:"text"`
}

// Location points at a chapter, or at a single verse when Verse > 0.
// Book is the USFM book code (e.g. "JHN").
type Location struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse,omitempty"`
}

// HasVerse reports whether the location names a specific verse.
func (l Location) HasVerse() bool {
	return l.Verse > 0
}

// Range is a contiguous span between two locations. An open From covers
// the whole chapter; an open To runs through the end of its chapter.
type Range struct {
	From Location `json:"from"`
	To   Location `json:"to"`
}

// ResolvedRange holds the concrete row-id bounds of a Range.
type ResolvedRange struct {
	StartID int64
	EndID   int64
}

// VerseRecord is the public projection of a Verse.
type VerseRecord struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Passage is the resolved response for a reference.
type Passage struct {
	Reference       string        `json:"reference"`
	Verses          []VerseRecord `json:"verses"`
	Text            string        `json:"text"`
	TranslationID   string        `json:"translation_id"`
	TranslationName string        `json:"translation_name"`
	TranslationNote string        `json:"translation_note"`
}
