package app

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"bibleapi/pkg/domain"
)

// Format shapes verses and translation metadata into a Passage. Verse texts
// are joined without a separator; with verseNumbers each is prefixed by
// "(<verse>) ".
func Format(verses []domain.Verse, t domain.Translation, ref string, verseNumbers bool) domain.Passage {
	var text strings.Builder
	for _, v := range verses {
		if verseNumbers {
			text.WriteString("(" + strconv.Itoa(v.Verse) + ") ")
		}
		text.WriteString(v.Text)
	}
	return domain.Passage{
		Reference: ref,
		Verses: lo.Map(verses, func(v domain.Verse, _ int) domain.VerseRecord {
			return domain.VerseRecord{
				BookID:   v.BookID,
				BookName: v.Book,
				Chapter:  v.Chapter,
				Verse:    v.Verse,
				Text:     v.Text,
			}
		}),
		Text:            text.String(),
		TranslationID:   t.Identifier,
		TranslationName: t.Name,
		TranslationNote: t.License,
	}
}
