// Package importer loads translations from Zefania XML seed files into the
// verse store.
package importer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"bibleapi/pkg/domain"
	"bibleapi/pkg/reference"
)

var (
	ErrNotZefania     = errors.New("not a Zefania XML document")
	ErrNoVerses       = errors.New("seed contains no verses")
	ErrDuplicateVerse = errors.New("duplicate verse")
	ErrBadNumber      = errors.New("invalid book, chapter or verse number")
)

// Metadata describes the translation a seed file holds.
type Metadata struct {
	Identifier   string
	Name         string
	Language     string
	LanguageCode string
	License      string
}

// Translation converts metadata to a translation row.
func (m Metadata) Translation() domain.Translation {
	return domain.Translation{
		Identifier:   m.Identifier,
		Name:         m.Name,
		Language:     m.Language,
		LanguageCode: m.LanguageCode,
		License:      m.License,
	}
}

// Merge fills empty fields of m from other.
func (m Metadata) Merge(other Metadata) Metadata {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	return Metadata{
		Identifier:   pick(m.Identifier, other.Identifier),
		Name:         pick(m.Name, other.Name),
		Language:     pick(m.Language, other.Language),
		LanguageCode: pick(m.LanguageCode, other.LanguageCode),
		License:      pick(m.License, other.License),
	}
}

var languageNames = map[string]string{
	"eng": "English",
	"deu": "German",
	"ger": "German",
	"fra": "French",
	"fre": "French",
	"spa": "Spanish",
	"por": "Portuguese",
	"ita": "Italian",
	"nld": "Dutch",
	"rus": "Russian",
	"lat": "Latin",
	"grc": "Greek",
	"heb": "Hebrew",
	"zho": "Chinese",
	"chi": "Chinese",
	"ron": "Romanian",
	"cze": "Czech",
	"ces": "Czech",
}

// ParseZefania reads XMLBIBLE/BIBLEBOOK/CHAPTER/VERS. Books are mapped to
// USFM codes by their bnumber; books outside the 66-book canon are skipped.
// Each verse text ends with a newline so concatenated passages stay readable.
func ParseZefania(r io.Reader) (Metadata, []domain.Verse, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("parse seed xml: %w", err)
	}
	root := xmlquery.FindOne(doc, "/XMLBIBLE")
	if root == nil {
		return Metadata{}, nil, ErrNotZefania
	}

	meta := parseInformation(root)
	type location struct{ book, chapter, verse int }
	seen := make(map[location]struct{})
	var verses []domain.Verse

	for _, bookNode := range xmlquery.Find(root, "BIBLEBOOK") {
		bookNum, err := positiveAttr(bookNode, "bnumber")
		if err != nil {
			return meta, nil, err
		}
		book, ok := reference.BookByNum(bookNum)
		if !ok {
			slog.Warn("skipping book outside canon", "bnumber", bookNum, "bname", bookNode.SelectAttr("bname"))
			continue
		}
		name := firstNonEmpty(bookNode.SelectAttr("bname"), bookNode.SelectAttr("bsname"), book.Name)

		for _, chapterNode := range xmlquery.Find(bookNode, "CHAPTER") {
			chapter, err := positiveAttr(chapterNode, "cnumber")
			if err != nil {
				return meta, nil, fmt.Errorf("%s: %w", book.ID, err)
			}
			for _, verseNode := range xmlquery.Find(chapterNode, "VERS") {
				number, err := positiveAttr(verseNode, "vnumber")
				if err != nil {
					return meta, nil, fmt.Errorf("%s %d: %w", book.ID, chapter, err)
				}
				loc := location{bookNum, chapter, number}
				if _, dup := seen[loc]; dup {
					return meta, nil, fmt.Errorf("%w: %s %d:%d", ErrDuplicateVerse, book.ID, chapter, number)
				}
				seen[loc] = struct{}{}
				verses = append(verses, domain.Verse{
					BookID:  book.ID,
					Book:    name,
					BookNum: bookNum,
					Chapter: chapter,
					Verse:   number,
					Text:    verseText(verseNode) + "\n",
				})
			}
		}
	}
	if len(verses) == 0 {
		return meta, nil, ErrNoVerses
	}
	return meta, verses, nil
}

func parseInformation(root *xmlquery.Node) Metadata {
	info := xmlquery.FindOne(root, "INFORMATION")
	field := func(name string) string {
		if info == nil {
			return ""
		}
		if n := xmlquery.FindOne(info, name); n != nil {
			return collapseSpace(n.InnerText())
		}
		return ""
	}
	code := strings.ToLower(field("language"))
	return Metadata{
		Identifier:   firstNonEmpty(field("identifier"), root.SelectAttr("biblename")),
		Name:         firstNonEmpty(field("title"), root.SelectAttr("biblename")),
		Language:     languageNames[code],
		LanguageCode: code,
		License:      field("rights"),
	}
}

// verseText joins the text of a VERS element, leaving out study notes.
func verseText(n *xmlquery.Node) string {
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				b.WriteString(c.Data)
			case xmlquery.ElementNode:
				if strings.EqualFold(c.Data, "NOTE") {
					continue
				}
				if strings.EqualFold(c.Data, "BR") {
					b.WriteByte(' ')
					continue
				}
				walk(c)
			}
		}
	}
	walk(n)
	return collapseSpace(b.String())
}

func positiveAttr(n *xmlquery.Node, name string) (int, error) {
	raw := strings.TrimSpace(n.SelectAttr(name))
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadNumber, name, raw)
	}
	return v, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
