package reference

import (
	"strings"
	"unicode"
)

// Book describes one book of the canon.
type Book struct {
	ID       string // USFM code
	Name     string
	Num      int
	Chapters int
	Aliases  []string
}

// books is the 66-book Protestant canon in canonical order.
var books = []Book{
	{"GEN", "Genesis", 1, 50, []string{"gen", "ge", "gn"}},
	{"EXO", "Exodus", 2, 40, []string{"exod", "exo", "ex"}},
	{"LEV", "Leviticus", 3, 27, []string{"lev", "le", "lv"}},
	{"NUM", "Numbers", 4, 36, []string{"num", "nu", "nm", "nb"}},
	{"DEU", "Deuteronomy", 5, 34, []string{"deut", "deu", "dt"}},
	{"JOS", "Joshua", 6, 24, []string{"josh", "jos", "jsh"}},
	{"JDG", "Judges", 7, 21, []string{"judg", "jdg", "jdgs", "jg"}},
	{"RUT", "Ruth", 8, 4, []string{"rut", "ru", "rth"}},
	{"1SA", "1 Samuel", 9, 31, []string{"1sam", "1sa", "1sm", "isamuel"}},
	{"2SA", "2 Samuel", 10, 24, []string{"2sam", "2sa", "2sm", "iisamuel"}},
	{"1KI", "1 Kings", 11, 22, []string{"1kgs", "1ki", "1kin", "ikings"}},
	{"2KI", "2 Kings", 12, 25, []string{"2kgs", "2ki", "2kin", "iikings"}},
	{"1CH", "1 Chronicles", 13, 29, []string{"1chr", "1ch", "1chron", "ichronicles"}},
	{"2CH", "2 Chronicles", 14, 36, []string{"2chr", "2ch", "2chron", "iichronicles"}},
	{"EZR", "Ezra", 15, 10, []string{"ezr", "ezra"}},
	{"NEH", "Nehemiah", 16, 13, []string{"neh", "ne"}},
	{"EST", "Esther", 17, 10, []string{"esth", "est", "es"}},
	{"JOB", "Job", 18, 42, []string{"job", "jb"}},
	{"PSA", "Psalms", 19, 150, []string{"ps", "psa", "psalm", "pss", "psm"}},
	{"PRO", "Proverbs", 20, 31, []string{"prov", "pro", "prv", "pr"}},
	{"ECC", "Ecclesiastes", 21, 12, []string{"eccl", "ecc", "ec", "qoh"}},
	{"SNG", "Song of Solomon", 22, 8, []string{"song", "sng", "sos", "songofsongs", "canticles"}},
	{"ISA", "Isaiah", 23, 66, []string{"isa", "is"}},
	{"JER", "Jeremiah", 24, 52, []string{"jer", "je", "jr"}},
	{"LAM", "Lamentations", 25, 5, []string{"lam", "la"}},
	{"EZK", "Ezekiel", 26, 48, []string{"ezek", "ezk", "eze"}},
	{"DAN", "Daniel", 27, 12, []string{"dan", "da", "dn"}},
	{"HOS", "Hosea", 28, 14, []string{"hos", "ho"}},
	{"JOL", "Joel", 29, 3, []string{"joel", "jol", "jl"}},
	{"AMO", "Amos", 30, 9, []string{"amos", "amo", "am"}},
	{"OBA", "Obadiah", 31, 1, []string{"obad", "oba", "ob"}},
	{"JON", "Jonah", 32, 4, []string{"jonah", "jon", "jnh"}},
	{"MIC", "Micah", 33, 7, []string{"mic", "mc"}},
	{"NAM", "Nahum", 34, 3, []string{"nah", "nam", "na"}},
	{"HAB", "Habakkuk", 35, 3, []string{"hab", "hb"}},
	{"ZEP", "Zephaniah", 36, 3, []string{"zeph", "zep", "zp"}},
	{"HAG", "Haggai", 37, 2, []string{"hag", "hg"}},
	{"ZEC", "Zechariah", 38, 14, []string{"zech", "zec", "zc"}},
	{"MAL", "Malachi", 39, 4, []string{"mal", "ml"}},
	{"MAT", "Matthew", 40, 28, []string{"matt", "mat", "mt"}},
	{"MRK", "Mark", 41, 16, []string{"mark", "mrk", "mar", "mk", "mr"}},
	{"LUK", "Luke", 42, 24, []string{"luke", "luk", "lk"}},
	{"JHN", "John", 43, 21, []string{"john", "jhn", "jn", "joh"}},
	{"ACT", "Acts", 44, 28, []string{"acts", "act", "ac"}},
	{"ROM", "Romans", 45, 16, []string{"rom", "ro", "rm"}},
	{"1CO", "1 Corinthians", 46, 16, []string{"1cor", "1co", "icorinthians"}},
	{"2CO", "2 Corinthians", 47, 13, []string{"2cor", "2co", "iicorinthians"}},
	{"GAL", "Galatians", 48, 6, []string{"gal", "ga"}},
	{"EPH", "Ephesians", 49, 6, []string{"eph", "ephes"}},
	{"PHP", "Philippians", 50, 4, []string{"phil", "php", "pp"}},
	{"COL", "Colossians", 51, 4, []string{"col", "co"}},
	{"1TH", "1 Thessalonians", 52, 5, []string{"1thess", "1th", "1thes", "ithessalonians"}},
	{"2TH", "2 Thessalonians", 53, 3, []string{"2thess", "2th", "2thes", "iithessalonians"}},
	{"1TI", "1 Timothy", 54, 6, []string{"1tim", "1ti", "itimothy"}},
	{"2TI", "2 Timothy", 55, 4, []string{"2tim", "2ti", "iitimothy"}},
	{"TIT", "Titus", 56, 3, []string{"titus", "tit", "ti"}},
	{"PHM", "Philemon", 57, 1, []string{"philem", "phm", "phlm"}},
	{"HEB", "Hebrews", 58, 13, []string{"heb"}},
	{"JAS", "James", 59, 5, []string{"jas", "jm"}},
	{"1PE", "1 Peter", 60, 5, []string{"1pet", "1pe", "1pt", "ipeter"}},
	{"2PE", "2 Peter", 61, 3, []string{"2pet", "2pe", "2pt", "iipeter"}},
	{"1JN", "1 John", 62, 5, []string{"1john", "1jn", "1jo", "ijohn"}},
	{"2JN", "2 John", 63, 1, []string{"2john", "2jn", "2jo", "iijohn"}},
	{"3JN", "3 John", 64, 1, []string{"3john", "3jn", "3jo", "iiijohn"}},
	{"JUD", "Jude", 65, 1, []string{"jude", "jud", "jd"}},
	{"REV", "Revelation", 66, 22, []string{"rev", "re", "rv", "revelations", "apocalypse"}},
}

var (
	booksByKey = map[string]*Book{}
	booksByID  = map[string]*Book{}
)

func init() {
	for i := range books {
		b := &books[i]
		booksByID[b.ID] = b
		booksByKey[bookKey(b.ID)] = b
		booksByKey[bookKey(b.Name)] = b
		for _, alias := range b.Aliases {
			booksByKey[bookKey(alias)] = b
		}
	}
}

// bookKey lowercases a book name and drops spaces and dots, so that
// "1 John", "1john" and "1 Jn." compare by their letters and digits.
func bookKey(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// LookupBook finds a book by name, abbreviation or USFM code. When there is
// no exact match, a prefix of at least three characters that identifies a
// single book's full name is accepted.
func LookupBook(name string) (Book, bool) {
	key := bookKey(name)
	if key == "" {
		return Book{}, false
	}
	if b, ok := booksByKey[key]; ok {
		return *b, true
	}
	if len(key) < 3 {
		return Book{}, false
	}
	var match *Book
	for i := range books {
		if strings.HasPrefix(bookKey(books[i].Name), key) {
			if match != nil {
				return Book{}, false
			}
			match = &books[i]
		}
	}
	if match == nil {
		return Book{}, false
	}
	return *match, true
}

// BookByID returns the book with the given USFM code.
func BookByID(id string) (Book, bool) {
	b, ok := booksByID[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return Book{}, false
	}
	return *b, true
}

// BookByNum returns the book at a 1-based canonical position.
func BookByNum(num int) (Book, bool) {
	if num < 1 || num > len(books) {
		return Book{}, false
	}
	return books[num-1], true
}
