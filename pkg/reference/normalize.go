package reference

import (
	"strconv"
	"strings"

	"bibleapi/pkg/domain"
)

// Normalize renders ranges as a canonical reference string such as
// "John 3:16, 18; Romans 5:8". The output parses back to the same ranges.
func (p *Parser) Normalize(ranges []domain.Range) string {
	var (
		b            strings.Builder
		prevBook     string
		prevChapter  int
		prevVerseEnd bool
	)
	for i, r := range ranges {
		name := r.From.Book
		book, known := BookByID(r.From.Book)
		if known {
			name = book.Name
		}
		sameBook := i > 0 && r.From.Book == prevBook
		switch {
		case i == 0:
		case !sameBook:
			b.WriteString("; ")
		case prevVerseEnd && !r.From.HasVerse():
			// A bare number after a verse would read as another verse.
			b.WriteString("; ")
		default:
			b.WriteString(", ")
		}

		if !sameBook {
			b.WriteString(name)
			if known && isWholeBook(r, book) {
				prevBook, prevChapter, prevVerseEnd = r.From.Book, r.To.Chapter, false
				continue
			}
			b.WriteByte(' ')
			b.WriteString(formatSpan(r))
		} else if prevVerseEnd && r.From.HasVerse() && r.From.Chapter == prevChapter {
			b.WriteString(formatVerseSpan(r))
		} else {
			b.WriteString(formatSpan(r))
		}
		prevBook, prevChapter, prevVerseEnd = r.From.Book, r.To.Chapter, r.To.HasVerse()
	}
	return b.String()
}

func isWholeBook(r domain.Range, book Book) bool {
	return r.From.Book == r.To.Book && !r.From.HasVerse() && !r.To.HasVerse() &&
		r.From.Chapter == 1 && r.To.Chapter == book.Chapters && book.Chapters > 1
}

func formatSpan(r domain.Range) string {
	from, to := r.From, r.To
	switch {
	case !from.HasVerse() && !to.HasVerse():
		if from.Chapter == to.Chapter {
			return itoa(from.Chapter)
		}
		return itoa(from.Chapter) + "-" + itoa(to.Chapter)
	case from.HasVerse() && to.HasVerse():
		if from.Chapter != to.Chapter {
			return loc(from) + "-" + loc(to)
		}
		if from.Verse == to.Verse {
			return loc(from)
		}
		return loc(from) + "-" + itoa(to.Verse)
	case from.HasVerse():
		return loc(from) + "-" + itoa(to.Chapter)
	default:
		return itoa(from.Chapter) + "-" + loc(to)
	}
}

// formatVerseSpan drops the chapter when continuing verses of the
// previous chapter.
func formatVerseSpan(r domain.Range) string {
	from, to := r.From, r.To
	switch {
	case !to.HasVerse():
		return formatSpan(r)
	case to.Chapter != from.Chapter:
		return itoa(from.Verse) + "-" + loc(to)
	case to.Verse == from.Verse:
		return itoa(from.Verse)
	default:
		return itoa(from.Verse) + "-" + itoa(to.Verse)
	}
}

func loc(l domain.Location) string {
	return itoa(l.Chapter) + ":" + itoa(l.Verse)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
