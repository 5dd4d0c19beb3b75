package reference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"bibleapi/pkg/domain"
)

var (
	// ErrUnparseable is returned when no ranges can be derived from the input.
	ErrUnparseable = errors.New("unparseable reference")
	// ErrUnknownBook is returned for book names missing from the book table.
	ErrUnknownBook = errors.New("unknown book")
)

// passageGrammar is one comma or semicolon separated piece of a reference.
// Examples: "John 3:16", "3:16-4:2", "Gen 1-2", "17", "Jude".
//
//nolint:govet // participle grammar tags are not standard struct tags
type passageGrammar struct {
	Book      string `@Book?`
	Chapter   *int   `( @Int`
	Verse     *int   `  ( (":" | ".") @Int )?`
	EndFirst  *int   `  ( "-" @Int`
	EndSecond *int   `    ( (":" | ".") @Int )? )? )?`
}

var passageLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names may carry a numeric prefix and span several words:
	// "1 John", "1John", "Song of Solomon", "Gen."
	{Name: "Book", Pattern: `(?:[1-3]\s*)?\p{L}+(?:\s+\p{L}+)*\.?`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[:.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var passageParser = participle.MustBuild[passageGrammar](
	participle.Lexer(passageLexer),
	participle.Elide("Whitespace"),
)

// Parser turns free-text references into ranges of USFM book locations.
// It is safe for concurrent use.
type Parser struct{}

// NewParser returns a reference parser.
func NewParser() *Parser {
	return &Parser{}
}

type segment struct {
	sep  rune
	text string
}

type cursor struct {
	book      Book
	haveBook  bool
	chapter   int
	verseMode bool
}

// Parse splits text on "," and ";" and resolves each piece against the
// book table. A comma after a verse continues with verses of the same
// chapter ("John 3:16, 18"); otherwise a bare number is a chapter.
// Book names are matched against the English table for every language.
func (p *Parser) Parse(text, language string) ([]domain.Range, error) {
	_ = language
	segments := splitSegments(text)
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty reference", ErrUnparseable)
	}
	var (
		cur    cursor
		ranges = make([]domain.Range, 0, len(segments))
	)
	for _, seg := range segments {
		g, err := passageParser.ParseString("", seg.text)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnparseable, seg.text, err)
		}
		rng, err := cur.apply(seg.sep, g)
		if err != nil {
			return nil, err
		}
		if err := validateRange(rng); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnparseable, seg.text, err)
		}
		ranges = append(ranges, rng)
	}
	return ranges, nil
}

func splitSegments(text string) []segment {
	text = strings.NewReplacer("–", "-", "—", "-").Replace(text)
	var (
		out  []segment
		sep  rune
		last int
	)
	for i, r := range text {
		if r != ',' && r != ';' {
			continue
		}
		out = append(out, segment{sep: sep, text: strings.TrimSpace(text[last:i])})
		sep = r
		last = i + 1
	}
	tail := strings.TrimSpace(text[last:])
	if tail == "" && len(out) == 0 {
		return nil
	}
	return append(out, segment{sep: sep, text: tail})
}

func (c *cursor) apply(sep rune, g *passageGrammar) (domain.Range, error) {
	// A zero location field means "absent", so an explicit 0 must not get through.
	for _, n := range []*int{g.Chapter, g.Verse, g.EndFirst, g.EndSecond} {
		if n != nil && *n < 1 {
			return domain.Range{}, fmt.Errorf("%w: chapter and verse numbers start at 1", ErrUnparseable)
		}
	}
	if g.Book != "" {
		book, ok := LookupBook(g.Book)
		if !ok {
			return domain.Range{}, fmt.Errorf("%w: %w: %q", ErrUnparseable, ErrUnknownBook, g.Book)
		}
		c.book, c.haveBook = book, true
		if g.Chapter == nil {
			c.chapter, c.verseMode = book.Chapters, false
			return domain.Range{
				From: domain.Location{Book: book.ID, Chapter: 1},
				To:   domain.Location{Book: book.ID, Chapter: book.Chapters},
			}, nil
		}
		return c.chapterRange(g), nil
	}
	if !c.haveBook {
		return domain.Range{}, fmt.Errorf("%w: missing book name", ErrUnparseable)
	}
	if g.Chapter == nil {
		return domain.Range{}, fmt.Errorf("%w: empty passage", ErrUnparseable)
	}
	if sep == ',' && c.verseMode && g.Verse == nil {
		return c.verseRange(g), nil
	}
	return c.chapterRange(g), nil
}

// chapterRange reads the leading number as a chapter.
func (c *cursor) chapterRange(g *passageGrammar) domain.Range {
	id := c.book.ID
	from := domain.Location{Book: id, Chapter: *g.Chapter}
	to := from
	switch {
	case g.Verse != nil:
		from.Verse = *g.Verse
		to.Verse = *g.Verse
		if g.EndFirst != nil && g.EndSecond == nil {
			to.Verse = *g.EndFirst
		}
	case g.EndFirst != nil && g.EndSecond == nil:
		to.Chapter = *g.EndFirst
	}
	if g.EndFirst != nil && g.EndSecond != nil {
		to = domain.Location{Book: id, Chapter: *g.EndFirst, Verse: *g.EndSecond}
	}
	c.chapter, c.verseMode = to.Chapter, to.HasVerse()
	return domain.Range{From: from, To: to}
}

// verseRange reads the leading number as a verse of the current chapter.
func (c *cursor) verseRange(g *passageGrammar) domain.Range {
	id := c.book.ID
	from := domain.Location{Book: id, Chapter: c.chapter, Verse: *g.Chapter}
	to := from
	if g.EndFirst != nil {
		to.Verse = *g.EndFirst
		if g.EndSecond != nil {
			to = domain.Location{Book: id, Chapter: *g.EndFirst, Verse: *g.EndSecond}
		}
	}
	c.chapter, c.verseMode = to.Chapter, true
	return domain.Range{From: from, To: to}
}

func validateRange(r domain.Range) error {
	for _, loc := range []domain.Location{r.From, r.To} {
		if loc.Chapter < 1 || loc.Verse < 0 {
			return errors.New("chapter and verse numbers start at 1")
		}
	}
	if r.To.Chapter < r.From.Chapter {
		return errors.New("range ends before it starts")
	}
	if r.To.Chapter == r.From.Chapter && r.From.HasVerse() && r.To.HasVerse() && r.To.Verse < r.From.Verse {
		return errors.New("range ends before it starts")
	}
	return nil
}
